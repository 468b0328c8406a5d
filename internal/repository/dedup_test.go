package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDedupStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "seen.db")
	store, err := OpenDedupStore(path, nil)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()

	seen, err := store.Seen(ctx, "msg-1")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, store.Mark(ctx, "msg-1"))

	seen, err = store.Seen(ctx, "msg-1")
	require.NoError(t, err)
	assert.True(t, seen)

	// marking twice is fine
	require.NoError(t, store.Mark(ctx, "msg-1"))

	seen, err = store.Seen(ctx, "msg-2")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestDedupStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seen.db")
	ctx := context.Background()

	store, err := OpenDedupStore(path, nil)
	require.NoError(t, err)
	require.NoError(t, store.Mark(ctx, "msg-1"))
	require.NoError(t, store.Close())

	store, err = OpenDedupStore(path, nil)
	require.NoError(t, err)
	defer store.Close()

	seen, err := store.Seen(ctx, "msg-1")
	require.NoError(t, err)
	assert.True(t, seen)
}
