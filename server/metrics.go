package server

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/zucenko/contagion/model"
)

var (
	cellsByState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "contagion_cells",
		Help: "Cells per state after the last step",
	}, []string{"state"})

	stepsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "contagion_steps_total",
		Help: "Total number of generations computed",
	})

	stepDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "contagion_step_duration_seconds",
		Help:    "Time spent computing one generation",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
	})

	viewersConnected = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "contagion_viewers",
		Help: "Viewers currently attached to a session",
	})

	sessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "contagion_sessions_active",
		Help: "Sessions currently running or paused",
	})

	framesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "contagion_frames_dropped_total",
		Help: "Frames not queued because a viewer was too slow",
	})

	checkpointsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "contagion_checkpoints_total",
		Help: "Checkpoint writes by outcome",
	}, []string{"outcome"}) // outcome=success|failure
)

func recordStep(took time.Duration, counts model.Counts) {
	stepsTotal.Inc()
	stepDuration.Observe(took.Seconds())
	recordCounts(counts)
}

func recordCounts(counts model.Counts) {
	cellsByState.WithLabelValues(model.Susceptible.String()).Set(float64(counts.Susceptible))
	cellsByState.WithLabelValues(model.Infected.String()).Set(float64(counts.Infected))
	cellsByState.WithLabelValues(model.Recovered.String()).Set(float64(counts.Recovered))
	cellsByState.WithLabelValues(model.Dead.String()).Set(float64(counts.Dead))
}

func recordCheckpoint(err error) {
	if err != nil {
		checkpointsTotal.WithLabelValues("failure").Inc()
		return
	}
	checkpointsTotal.WithLabelValues("success").Inc()
}
