package server

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/zucenko/contagion/model"
)

func TestRecordStep(t *testing.T) {
	before := testutil.ToFloat64(stepsTotal)
	recordStep(time.Millisecond, model.Counts{Susceptible: 7, Infected: 2, Dead: 1})

	assert.Equal(t, before+1, testutil.ToFloat64(stepsTotal))
	assert.Equal(t, 7.0, testutil.ToFloat64(cellsByState.WithLabelValues("susceptible")))
	assert.Equal(t, 2.0, testutil.ToFloat64(cellsByState.WithLabelValues("infected")))
	assert.Equal(t, 0.0, testutil.ToFloat64(cellsByState.WithLabelValues("recovered")))
	assert.Equal(t, 1.0, testutil.ToFloat64(cellsByState.WithLabelValues("dead")))
}

func TestRecordCheckpoint(t *testing.T) {
	ok := testutil.ToFloat64(checkpointsTotal.WithLabelValues("success"))
	failed := testutil.ToFloat64(checkpointsTotal.WithLabelValues("failure"))

	recordCheckpoint(nil)
	recordCheckpoint(errors.New("disk full"))

	assert.Equal(t, ok+1, testutil.ToFloat64(checkpointsTotal.WithLabelValues("success")))
	assert.Equal(t, failed+1, testutil.ToFloat64(checkpointsTotal.WithLabelValues("failure")))
}
