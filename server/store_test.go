package server

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zucenko/contagion/model"
)

func TestCheckpointStoreKeepsLatestGeneration(t *testing.T) {
	store, err := OpenCheckpointStore(filepath.Join(t.TempDir(), "checkpoints.db"))
	require.NoError(t, err)
	defer store.Close()
	ctx := context.Background()

	cfg := model.DefaultConfig()
	cfg.GridSize = 8
	m, err := model.New(cfg, model.NewSource(5))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		m.Step()
		require.NoError(t, store.Save(ctx, "a", m.Snapshot()))
	}
	require.NoError(t, store.Save(ctx, "b", m.Snapshot()))
	// saving the same generation twice replaces it
	require.NoError(t, store.Save(ctx, "a", m.Snapshot()))

	latest, err := store.Latest(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, m.Snapshot(), latest)

	ids, err := store.Sessions(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, ids)

	_, err = store.Latest(ctx, "c")
	assert.ErrorIs(t, err, ErrCheckpointNotFound)
}

func TestCheckpointStoreReopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoints.db")
	store, err := OpenCheckpointStore(path)
	require.NoError(t, err)

	cfg := model.DefaultConfig()
	cfg.GridSize = 3
	m, err := model.New(cfg, model.NewSource(1))
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), "x", m.Snapshot()))
	require.NoError(t, store.Close())

	store, err = OpenCheckpointStore(path)
	require.NoError(t, err)
	defer store.Close()
	snap, err := store.Latest(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, 3, snap.Size)
}
