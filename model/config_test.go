package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresets(t *testing.T) {
	assert.Equal(t, []string{"classic", "default"}, PresetNames())

	classic, err := Preset("classic")
	require.NoError(t, err)
	assert.Equal(t, 7, classic.GridSize)
	assert.EqualValues(t, 20, classic.InfectionDurationThreshold)
	assert.InDelta(t, 0.375, classic.SpreadProbability, 1e-9)

	def := DefaultConfig()
	assert.Equal(t, 100, def.GridSize)
	assert.EqualValues(t, 40, def.InfectionDurationThreshold)
	assert.Equal(t, []Coord{{Row: 1, Col: 1}}, def.Seeds)

	// presets hand out copies
	def.Seeds[0].Row = 5
	assert.Equal(t, 1, DefaultConfig().Seeds[0].Row)

	_, err = Preset("nope")
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestReadSeeds(t *testing.T) {
	seeds, err := ReadSeeds(strings.NewReader("# patient zero\n.....\n.*...\n\n...*.\n"))
	require.NoError(t, err)
	assert.Equal(t, []Coord{{Row: 1, Col: 1}, {Row: 3, Col: 3}}, seeds)

	_, err = ReadSeeds(strings.NewReader("..x\n"))
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestStateNames(t *testing.T) {
	assert.Equal(t, "infected", Infected.String())
	assert.Equal(t, "n/a:7", State(7).String())
	assert.False(t, State(4).Valid())
	assert.True(t, Dead.Terminal())
	assert.False(t, Infected.Terminal())
	assert.Equal(t, "RESET", CmdReset.Name())
}
