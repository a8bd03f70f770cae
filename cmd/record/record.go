package main

import (
	"flag"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/zucenko/contagion/model"
	"github.com/zucenko/contagion/server"
	"github.com/zucenko/contagion/view"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONTAGION_CONFIG"), "path to a YAML config file")
	frames := flag.Int("frames", 0, "generations to record (default: config frames)")
	out := flag.String("out", "contagion.gif", "output GIF file")
	scale := flag.Int("scale", 4, "pixels per cell")
	delay := flag.Int("delay", 20, "delay between frames in 1/100 s")
	seed := flag.Int64("seed", 0, "random seed (0 draws one)")
	flag.Parse()

	cfg, err := server.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	server.ConfigureLogging(cfg)
	if *frames > 0 {
		cfg.Frames = *frames
	}

	if err := record(cfg, *seed, *out, *scale, *delay); err != nil {
		log.Fatal(err)
	}
}

func record(cfg server.Config, seed int64, out string, scale, delay int) error {
	if seed == 0 {
		var err error
		if seed, err = model.NewSeed(); err != nil {
			return err
		}
	}
	m, err := model.New(cfg.Simulation, model.NewSource(seed))
	if err != nil {
		return err
	}

	rec := view.NewRecorder(view.DefaultPalette, scale, delay)
	if err := rec.Add(m.Size(), m.Flat()); err != nil {
		return err
	}
	for i := 0; i < cfg.Frames; i++ {
		m.Step()
		if err := rec.Add(m.Size(), m.Flat()); err != nil {
			return err
		}
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create %s: %w", out, err)
	}
	if err := rec.Encode(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", out, err)
	}

	counts := m.Counts()
	log.WithFields(log.Fields{
		"out":         out,
		"seed":        seed,
		"generations": m.Generation(),
		"infected":    counts.Infected,
		"recovered":   counts.Recovered,
		"dead":        counts.Dead,
	}).Info("recorded")
	return nil
}
