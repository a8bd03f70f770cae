package model

import (
	"fmt"
	"strconv"
	"strings"
)

type State uint8

const (
	Susceptible State = iota
	Infected
	Recovered
	Dead
)

func (s State) String() string {
	switch s {
	case Susceptible:
		return "susceptible"
	case Infected:
		return "infected"
	case Recovered:
		return "recovered"
	case Dead:
		return "dead"
	default:
		return fmt.Sprintf("n/a:%d", uint8(s))
	}
}

func (s State) Valid() bool {
	return s <= Dead
}

// Terminal reports whether no rule ever moves a cell out of s.
func (s State) Terminal() bool {
	return s == Recovered || s == Dead
}

type Coord struct {
	Row int `yaml:"row"`
	Col int `yaml:"col"`
}

// UnmarshalText parses "row:col".
func (c *Coord) UnmarshalText(text []byte) error {
	row, col, found := strings.Cut(string(text), ":")
	if !found {
		return fmt.Errorf("%w: coordinate %q is not row:col", ErrInvalidConfiguration, text)
	}
	r, err := strconv.Atoi(strings.TrimSpace(row))
	if err != nil {
		return fmt.Errorf("%w: coordinate %q: %v", ErrInvalidConfiguration, text, err)
	}
	cl, err := strconv.Atoi(strings.TrimSpace(col))
	if err != nil {
		return fmt.Errorf("%w: coordinate %q: %v", ErrInvalidConfiguration, text, err)
	}
	c.Row, c.Col = r, cl
	return nil
}

func (c Coord) String() string {
	return fmt.Sprintf("%d:%d", c.Row, c.Col)
}

// Counts is the number of cells per state.
type Counts struct {
	Susceptible int
	Infected    int
	Recovered   int
	Dead        int
}

func (c Counts) Total() int {
	return c.Susceptible + c.Infected + c.Recovered + c.Dead
}

func (c *Counts) add(s State) {
	switch s {
	case Susceptible:
		c.Susceptible++
	case Infected:
		c.Infected++
	case Recovered:
		c.Recovered++
	case Dead:
		c.Dead++
	}
}

// Model is the simulation engine. It owns the grid, the static traits and the
// infection duration counters. A Model is not safe for concurrent use.
type Model struct {
	size       int
	generation uint64
	cfg        Config
	src        Source

	matrix       [][]State
	immune       [][]bool
	canRecover   [][]bool
	daysInfected [][]uint32
}
