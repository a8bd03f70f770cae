package main

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type viewerConfig struct {
	Server string `env:"SERVER" envDefault:"ws://localhost:8080/play"`
	// Board is the side of the square board area in pixels.
	Board    int    `env:"BOARD" envDefault:"640"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

const panelHeight = 64

func loadViewerConfig() (viewerConfig, error) {
	var cfg viewerConfig
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "CONTAGION_VIEWER_"}); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Board < 64 {
		return cfg, fmt.Errorf("board must be at least 64 pixels, got %d", cfg.Board)
	}
	return cfg, nil
}
