package ratelimiter_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/distribuia/distribuia/pkg/ratelimiter"
)

func TestMemoryStore_RecordIfAllowed(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	window := 10 * time.Second

	t.Run("allows up to limit", func(t *testing.T) {
		t.Parallel()

		store := ratelimiter.NewMemoryStore(ratelimiter.WithCleanupInterval(0))
		now := time.Now()

		for i := 1; i <= 3; i++ {
			allowed, count, err := store.RecordIfAllowed(ctx, "k", now, window, 3)
			require.NoError(t, err)
			assert.True(t, allowed, "request %d", i)
			assert.Equal(t, int64(i), count)
		}

		allowed, count, err := store.RecordIfAllowed(ctx, "k", now, window, 3)
		require.NoError(t, err)
		assert.False(t, allowed)
		assert.Equal(t, int64(3), count)
	})

	t.Run("window slides", func(t *testing.T) {
		t.Parallel()

		store := ratelimiter.NewMemoryStore(ratelimiter.WithCleanupInterval(0))
		now := time.Now()

		for range 3 {
			_, _, err := store.RecordIfAllowed(ctx, "k", now, window, 3)
			require.NoError(t, err)
		}

		// Just past the window: all three earlier hits have expired.
		later := now.Add(window + time.Millisecond)
		allowed, count, err := store.RecordIfAllowed(ctx, "k", later, window, 3)
		require.NoError(t, err)
		assert.True(t, allowed)
		assert.Equal(t, int64(1), count)
	})

	t.Run("partial expiry", func(t *testing.T) {
		t.Parallel()

		store := ratelimiter.NewMemoryStore(ratelimiter.WithCleanupInterval(0))
		now := time.Now()

		_, _, err := store.RecordIfAllowed(ctx, "k", now, window, 2)
		require.NoError(t, err)
		_, _, err = store.RecordIfAllowed(ctx, "k", now.Add(5*time.Second), window, 2)
		require.NoError(t, err)

		// 11s in: only the 5s hit remains inside the window.
		allowed, count, err := store.RecordIfAllowed(ctx, "k", now.Add(11*time.Second), window, 2)
		require.NoError(t, err)
		assert.True(t, allowed)
		assert.Equal(t, int64(2), count)
	})

	t.Run("keys are independent", func(t *testing.T) {
		t.Parallel()

		store := ratelimiter.NewMemoryStore(ratelimiter.WithCleanupInterval(0))
		now := time.Now()

		allowed, _, err := store.RecordIfAllowed(ctx, "a", now, window, 1)
		require.NoError(t, err)
		assert.True(t, allowed)

		allowed, _, err = store.RecordIfAllowed(ctx, "b", now, window, 1)
		require.NoError(t, err)
		assert.True(t, allowed)

		allowed, _, err = store.RecordIfAllowed(ctx, "a", now, window, 1)
		require.NoError(t, err)
		assert.False(t, allowed)
	})

	t.Run("reset clears the window", func(t *testing.T) {
		t.Parallel()

		store := ratelimiter.NewMemoryStore(ratelimiter.WithCleanupInterval(0))
		now := time.Now()

		_, _, err := store.RecordIfAllowed(ctx, "k", now, window, 1)
		require.NoError(t, err)
		require.NoError(t, store.Reset(ctx, "k"))

		allowed, _, err := store.RecordIfAllowed(ctx, "k", now, window, 1)
		require.NoError(t, err)
		assert.True(t, allowed)
	})
}
