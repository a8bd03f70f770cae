package main

import (
	"image/gif"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zucenko/contagion/server"
)

func TestRecordWritesOneImagePerGeneration(t *testing.T) {
	cfg := server.DefaultConfig()
	cfg.Simulation.GridSize = 10
	cfg.Frames = 6
	out := filepath.Join(t.TempDir(), "run.gif")

	require.NoError(t, record(cfg, 7, out, 2, 10))

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	anim, err := gif.DecodeAll(f)
	require.NoError(t, err)
	assert.Len(t, anim.Image, 7)
	assert.Equal(t, 20, anim.Image[0].Bounds().Dx())
}
