package model

import (
	"errors"
	"fmt"
	"sort"
)

// ErrInvalidConfiguration is returned when a model cannot be built from a Config.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// Config holds the construction parameters and rule constants of a simulation.
// Probabilities are expected in [0,1]; they are not range checked.
type Config struct {
	GridSize                   int     `yaml:"grid_size" env:"GRID_SIZE"`
	RecoverProbability         float64 `yaml:"recover_probability" env:"RECOVER_PROBABILITY"`
	ImmuneProbability          float64 `yaml:"immune_probability" env:"IMMUNE_PROBABILITY"`
	SpreadProbability          float64 `yaml:"spread_probability" env:"SPREAD_PROBABILITY"`
	RecoveryRollProbability    float64 `yaml:"recovery_roll_probability" env:"RECOVERY_ROLL_PROBABILITY"`
	DeathRollProbability       float64 `yaml:"death_roll_probability" env:"DEATH_ROLL_PROBABILITY"`
	InfectionDurationThreshold uint32  `yaml:"infection_duration_threshold" env:"INFECTION_DURATION_THRESHOLD"`
	Seeds                      []Coord `yaml:"seeds" env:"SEEDS"`
}

var presets = map[string]Config{
	"default": {
		GridSize:                   100,
		RecoverProbability:         0.97,
		ImmuneProbability:          0.01,
		SpreadProbability:          3.0 / 8.0,
		RecoveryRollProbability:    0.8,
		DeathRollProbability:       0.03,
		InfectionDurationThreshold: 40,
		Seeds:                      []Coord{{Row: 1, Col: 1}},
	},
	"classic": {
		GridSize:                   7,
		RecoverProbability:         0.97,
		ImmuneProbability:          0.05,
		SpreadProbability:          3.0 / 8.0,
		RecoveryRollProbability:    0.8,
		DeathRollProbability:       0.03,
		InfectionDurationThreshold: 20,
		Seeds:                      []Coord{{Row: 1, Col: 1}},
	},
}

func DefaultConfig() Config {
	cfg, _ := Preset("default")
	return cfg
}

// Preset returns a copy of a named configuration.
func Preset(name string) (Config, error) {
	p, found := presets[name]
	if !found {
		return Config{}, fmt.Errorf("%w: unknown preset %q (known: %v)", ErrInvalidConfiguration, name, PresetNames())
	}
	p.Seeds = append([]Coord(nil), p.Seeds...)
	return p, nil
}

func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for k := range presets {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Validate checks the preconditions that are runtime checked.
func (c Config) Validate() error {
	if c.GridSize < 1 {
		return fmt.Errorf("%w: grid_size must be >= 1, got %d", ErrInvalidConfiguration, c.GridSize)
	}
	return nil
}

// wrap reduces a coordinate onto the torus.
func (c Config) wrap(at Coord) Coord {
	n := c.GridSize
	return Coord{Row: ((at.Row % n) + n) % n, Col: ((at.Col % n) + n) % n}
}
