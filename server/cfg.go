package server

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	log "github.com/sirupsen/logrus"
	"github.com/zucenko/contagion/model"
	"gopkg.in/yaml.v3"
)

const EnvPrefix = "CONTAGION_"

type Config struct {
	Listen          string        `yaml:"listen" env:"LISTEN"`
	LogLevel        string        `yaml:"log_level" env:"LOG_LEVEL"`
	Interval        time.Duration `yaml:"interval" env:"INTERVAL"`
	Frames          int           `yaml:"frames" env:"FRAMES"`
	CheckpointEvery int           `yaml:"checkpoint_every" env:"CHECKPOINT_EVERY"`
	StorePath       string        `yaml:"store_path" env:"STORE_PATH"`
	Resume          string        `yaml:"resume" env:"RESUME"`
	Preset          string        `yaml:"preset" env:"PRESET"`
	SeedMap         string        `yaml:"seed_map" env:"SEED_MAP"`
	Simulation      model.Config  `yaml:"simulation" envPrefix:"SIM_"`
}

func DefaultConfig() Config {
	return Config{
		Listen:     ":8080",
		LogLevel:   "info",
		Interval:   100 * time.Millisecond,
		Frames:     200,
		Preset:     "default",
		Simulation: model.DefaultConfig(),
	}
}

// Load builds the configuration from defaults, the named preset, the YAML file
// at path (optional) and CONTAGION_* environment variables, in that order.
func Load(path string) (Config, error) {
	var file []byte
	if path != "" {
		var err error
		file, err = os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	probe := struct {
		Preset string `yaml:"preset" env:"PRESET"`
	}{Preset: "default"}
	if len(file) > 0 {
		if err := yaml.Unmarshal(file, &probe); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := env.ParseWithOptions(&probe, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg := DefaultConfig()
	sim, err := model.Preset(probe.Preset)
	if err != nil {
		return Config{}, err
	}
	cfg.Preset = probe.Preset
	cfg.Simulation = sim

	if len(file) > 0 {
		dec := yaml.NewDecoder(bytes.NewReader(file))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if cfg.SeedMap != "" {
		f, err := os.Open(cfg.SeedMap)
		if err != nil {
			return Config{}, fmt.Errorf("open seed map: %w", err)
		}
		defer f.Close()
		seeds, err := model.ReadSeeds(f)
		if err != nil {
			return Config{}, err
		}
		cfg.Simulation.Seeds = seeds
	}

	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if err := c.Simulation.Validate(); err != nil {
		return err
	}
	if c.Interval <= 0 {
		return fmt.Errorf("%w: interval must be positive, got %v", model.ErrInvalidConfiguration, c.Interval)
	}
	if c.Frames < 1 {
		return fmt.Errorf("%w: frames must be >= 1, got %d", model.ErrInvalidConfiguration, c.Frames)
	}
	if c.CheckpointEvery < 0 {
		return fmt.Errorf("%w: checkpoint_every must not be negative", model.ErrInvalidConfiguration)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", model.ErrInvalidConfiguration, err)
	}
	return nil
}

func ConfigureLogging(c Config) {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
}
