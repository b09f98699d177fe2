package ingest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckpointRoundTrip(t *testing.T) {
	cp, err := OpenCheckpoint(filepath.Join(t.TempDir(), "checkpoint.db"))
	require.NoError(t, err)
	defer func() { _ = cp.Close() }()
	ctx := context.Background()

	done, err := cp.Done(ctx, "/data/R2902746_001.nc")
	require.NoError(t, err)
	assert.False(t, done)

	require.NoError(t, cp.Mark(ctx, "/data/R2902746_001.nc", "2902746", 120))

	done, err = cp.Done(ctx, "/data/R2902746_001.nc")
	require.NoError(t, err)
	assert.True(t, done)

	// Re-marking the same path must not error (forced re-ingestion).
	require.NoError(t, cp.Mark(ctx, "/data/R2902746_001.nc", "2902746", 125))

	require.NoError(t, cp.Clear(ctx, "/data/R2902746_001.nc"))
	done, err = cp.Done(ctx, "/data/R2902746_001.nc")
	require.NoError(t, err)
	assert.False(t, done)
}

func TestCheckpointPersistsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoint.db")
	ctx := context.Background()

	cp, err := OpenCheckpoint(path)
	require.NoError(t, err)
	require.NoError(t, cp.Mark(ctx, "/data/a.nc", "1", 10))
	require.NoError(t, cp.Close())

	cp, err = OpenCheckpoint(path)
	require.NoError(t, err)
	defer func() { _ = cp.Close() }()

	done, err := cp.Done(ctx, "/data/a.nc")
	require.NoError(t, err)
	assert.True(t, done)
}
