package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedSource returns the same draw forever and counts how often it was asked.
type fixedSource struct {
	value float64
	draws int
}

func (f *fixedSource) Float64() float64 {
	f.draws++
	return f.value
}

// blankSnapshot is an n×n all-susceptible grid with every trait false.
func blankSnapshot(n int) Snapshot {
	return newEmptyModel(Config{GridSize: n}, nil).Snapshot()
}

func deterministicConfig() Config {
	return Config{
		SpreadProbability:          1.0,
		RecoveryRollProbability:    1.0,
		DeathRollProbability:       1.0,
		InfectionDurationThreshold: 1,
	}
}

func restore(t *testing.T, snap Snapshot, cfg Config, src Source) *Model {
	t.Helper()
	m, err := Restore(snap, cfg, src)
	require.NoError(t, err)
	return m
}

func TestStepPatientZeroSpreadsThenDies(t *testing.T) {
	snap := blankSnapshot(5)
	snap.Cells[1][1] = Infected
	m := restore(t, snap, deterministicConfig(), &fixedSource{value: 0.5})
	zero := Coord{Row: 1, Col: 1}

	m.Step()
	assert.Equal(t, Infected, m.At(zero))
	assert.EqualValues(t, 1, m.DaysInfected(zero))
	for _, d := range neighbours {
		at := Coord{Row: 1 + d[0], Col: 1 + d[1]}
		assert.Equal(t, Infected, m.At(at), "neighbour %v", at)
	}
	assert.Equal(t, 9, m.Counts().Infected)

	m.Step()
	assert.Equal(t, Dead, m.At(zero))
	assert.EqualValues(t, 2, m.DaysInfected(zero))
	assert.EqualValues(t, 2, m.Generation())
}

func TestStepRecoverCapableCellRecovers(t *testing.T) {
	snap := blankSnapshot(3)
	snap.Cells[1][1] = Infected
	snap.CanRecover[1][1] = true
	snap.DaysInfected[1][1] = 5
	m := restore(t, snap, deterministicConfig(), &fixedSource{value: 0.5})

	m.Step()
	assert.Equal(t, Recovered, m.At(Coord{Row: 1, Col: 1}))
}

func TestStepRollsBelowThresholdDoNothing(t *testing.T) {
	snap := blankSnapshot(3)
	snap.Cells[1][1] = Infected
	snap.CanRecover[1][1] = true
	cfg := deterministicConfig()
	cfg.RecoveryRollProbability = 0.8
	cfg.SpreadProbability = 0
	m := restore(t, snap, cfg, &fixedSource{value: 0.1})
	m.Step()
	m.Step()
	// 0.1 > 1-0.8 is false: the roll fails
	assert.Equal(t, Infected, m.At(Coord{Row: 1, Col: 1}))
	assert.EqualValues(t, 2, m.DaysInfected(Coord{Row: 1, Col: 1}))
	assert.Equal(t, 8, m.Counts().Susceptible)
}

func TestStepImmuneNeighbourStaysSusceptible(t *testing.T) {
	snap := blankSnapshot(5)
	snap.Cells[2][2] = Infected
	snap.Immune[2][3] = true
	cfg := deterministicConfig()
	cfg.InfectionDurationThreshold = 100
	m := restore(t, snap, cfg, &fixedSource{value: 0.99})

	for i := 0; i < 5; i++ {
		m.Step()
		assert.Equal(t, Susceptible, m.At(Coord{Row: 2, Col: 3}))
	}
}

func TestStepEdgeCellsDoNotSpread(t *testing.T) {
	snap := blankSnapshot(5)
	snap.Cells[0][2] = Infected
	snap.Cells[3][0] = Infected
	cfg := deterministicConfig()
	cfg.InfectionDurationThreshold = 100
	src := &fixedSource{value: 0.99}
	m := restore(t, snap, cfg, src)

	m.Step()
	counts := m.Counts()
	assert.Equal(t, 2, counts.Infected)
	assert.Equal(t, 23, counts.Susceptible)
	assert.Zero(t, src.draws)
	assert.EqualValues(t, 1, m.DaysInfected(Coord{Row: 0, Col: 2}))
}

func TestStepWrapsAroundTorus(t *testing.T) {
	snap := blankSnapshot(4)
	snap.Cells[3][3] = Infected
	cfg := deterministicConfig()
	cfg.InfectionDurationThreshold = 100
	m := restore(t, snap, cfg, &fixedSource{value: 0.5})

	m.Step()
	for _, at := range []Coord{{0, 0}, {0, 3}, {3, 0}, {2, 2}, {0, 2}, {2, 0}} {
		assert.Equal(t, Infected, m.At(at), "cell %v", at)
	}
}

func TestStepWritesAreVisibleLaterInTheScan(t *testing.T) {
	snap := blankSnapshot(5)
	snap.Cells[1][1] = Infected
	snap.Cells[1][2] = Infected
	cfg := deterministicConfig()
	cfg.InfectionDurationThreshold = 100
	src := &fixedSource{value: 0.5}
	m := restore(t, snap, cfg, src)

	m.Step()
	// (1,1) rolls for its 7 susceptible neighbours. (1,2) then only rolls for
	// (1,3), (0,3) and (2,3): the others were infected earlier in this scan.
	// Cells infected during the scan do not spread in the same step.
	assert.Equal(t, 10, src.draws)
	assert.Equal(t, 12, m.Counts().Infected)
}

func TestStepTerminalStatesAreAbsorbing(t *testing.T) {
	snap := blankSnapshot(3)
	snap.Cells[1][0] = Recovered
	snap.Cells[2][1] = Dead
	snap.Cells[1][1] = Infected
	cfg := deterministicConfig()
	cfg.InfectionDurationThreshold = 100
	m := restore(t, snap, cfg, &fixedSource{value: 0.99})

	for i := 0; i < 10; i++ {
		m.Step()
		assert.Equal(t, Recovered, m.At(Coord{Row: 1, Col: 0}))
		assert.Equal(t, Dead, m.At(Coord{Row: 2, Col: 1}))
	}
}

func TestStepInvariantsHoldOnRandomRuns(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GridSize = 24
	cfg.ImmuneProbability = 0.1
	cfg.RecoverProbability = 0.6
	cfg.InfectionDurationThreshold = 4
	cfg.DeathRollProbability = 0.3
	cfg.Seeds = []Coord{{1, 1}, {12, 12}, {20, 5}}

	for seed := int64(1); seed <= 5; seed++ {
		m, err := New(cfg, NewSource(seed))
		require.NoError(t, err)

		for gen := 0; gen < 60; gen++ {
			before := m.Snapshot()
			m.Step()
			after := m.Snapshot()
			n := after.Size
			for r := 0; r < n; r++ {
				for c := 0; c < n; c++ {
					was, now := before.Cells[r][c], after.Cells[r][c]
					if was.Terminal() {
						require.Equal(t, was, now, "terminal cell (%d,%d) changed", r, c)
					}
					if after.Immune[r][c] {
						require.NotEqual(t, Infected, now, "immune cell (%d,%d) infected", r, c)
					}
					if was == Infected {
						require.Equal(t, before.DaysInfected[r][c]+1, after.DaysInfected[r][c])
					} else {
						require.Equal(t, before.DaysInfected[r][c], after.DaysInfected[r][c])
					}
					if was == Susceptible && now == Infected {
						require.True(t, hadInfectedNeighbour(before.Cells, r, c),
							"cell (%d,%d) infected without an infected neighbour", r, c)
					}
				}
			}
		}
	}
}

func hadInfectedNeighbour(cells [][]State, r, c int) bool {
	n := len(cells)
	for _, d := range neighbours {
		if cells[(r+d[0]+n)%n][(c+d[1]+n)%n] == Infected {
			return true
		}
	}
	return false
}

func TestNewSeedsPatientZero(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GridSize = 6
	cfg.ImmuneProbability = 1
	cfg.Seeds = []Coord{{Row: 1, Col: 1}, {Row: 7, Col: -1}}
	m, err := New(cfg, NewSource(3))
	require.NoError(t, err)

	assert.Equal(t, Infected, m.At(Coord{Row: 1, Col: 1}))
	assert.False(t, m.Immune(Coord{Row: 1, Col: 1}))
	// wrapped onto the torus
	assert.Equal(t, Infected, m.At(Coord{Row: 1, Col: 5}))
	assert.True(t, m.Immune(Coord{Row: 0, Col: 0}))
	assert.Equal(t, Counts{Susceptible: 34, Infected: 2}, m.Counts())
	assert.Zero(t, m.DaysInfected(Coord{Row: 1, Col: 1}))
}

func TestNewDrawsTraitsPerCell(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GridSize = 4
	cfg.ImmuneProbability = 0.5
	cfg.RecoverProbability = 0.5
	m, err := New(cfg, &fixedSource{value: 0.25})
	require.NoError(t, err)

	assert.True(t, m.CanRecover(Coord{Row: 3, Col: 3}))
	assert.True(t, m.Immune(Coord{Row: 3, Col: 3}))

	m, err = New(cfg, &fixedSource{value: 0.75})
	require.NoError(t, err)
	assert.False(t, m.CanRecover(Coord{Row: 3, Col: 3}))
	assert.False(t, m.Immune(Coord{Row: 3, Col: 3}))
}

func TestNewRejectsEmptyGrid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GridSize = 0
	_, err := New(cfg, NewSource(1))
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestSingleCellGridWrapsOntoItself(t *testing.T) {
	cfg := deterministicConfig()
	cfg.GridSize = 1
	cfg.Seeds = []Coord{{Row: 1, Col: 1}}
	m, err := New(cfg, &fixedSource{value: 0.5})
	require.NoError(t, err)
	assert.Equal(t, Infected, m.At(Coord{}))

	m.Step()
	m.Step()
	assert.Equal(t, Dead, m.At(Coord{}))
}

func TestCellsReturnsACopy(t *testing.T) {
	m := restore(t, blankSnapshot(3), deterministicConfig(), &fixedSource{})
	cells := m.Cells()
	cells[0][0] = Dead
	assert.Equal(t, Susceptible, m.At(Coord{}))
	assert.Len(t, m.Flat(), 9)
}
