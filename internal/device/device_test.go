package device

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTouchLastSeen(t *testing.T) {
	ctx := context.Background()
	store := NewInMemory()
	seen := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

	// Unregistered devices get a row lazily.
	require.NoError(t, store.TouchLastSeen(ctx, "gate-1", seen))
	d, err := store.Get(ctx, "gate-1")
	require.NoError(t, err)
	require.NotNil(t, d)
	require.NotNil(t, d.LastSeenAt)
	assert.True(t, d.LastSeenAt.Equal(seen))

	// Out-of-order messages never move last seen backwards.
	require.NoError(t, store.TouchLastSeen(ctx, "gate-1", seen.Add(-time.Hour)))
	d, err = store.Get(ctx, "gate-1")
	require.NoError(t, err)
	assert.True(t, d.LastSeenAt.Equal(seen))

	require.NoError(t, store.TouchLastSeen(ctx, "gate-1", seen.Add(time.Hour)))
	d, err = store.Get(ctx, "gate-1")
	require.NoError(t, err)
	assert.True(t, d.LastSeenAt.Equal(seen.Add(time.Hour)))
}

func TestUpsertIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewInMemory()

	require.NoError(t, store.Upsert(ctx, "gate-1"))
	first, err := store.Get(ctx, "gate-1")
	require.NoError(t, err)

	require.NoError(t, store.Upsert(ctx, "gate-1"))
	second, err := store.Get(ctx, "gate-1")
	require.NoError(t, err)
	assert.True(t, second.CreatedAt.Equal(first.CreatedAt))

	assert.Error(t, store.Upsert(ctx, ""), "blank device id is rejected")
}
