package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Increment(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("fresh key starts a window", func(t *testing.T) {
		t.Parallel()

		store := NewMemoryStore()
		defer store.Close()

		before := time.Now()
		count, resetAt, err := store.Increment(ctx, "k", time.Minute)
		require.NoError(t, err)

		assert.Equal(t, int64(1), count)
		assert.WithinDuration(t, before.Add(time.Minute), resetAt, time.Second)
	})

	t.Run("counts within the window", func(t *testing.T) {
		t.Parallel()

		store := NewMemoryStore()
		defer store.Close()

		var last int64
		for range 5 {
			count, _, err := store.Increment(ctx, "k", time.Minute)
			require.NoError(t, err)
			last = count
		}
		assert.Equal(t, int64(5), last)
	})

	t.Run("expired entry is replaced with a fresh window", func(t *testing.T) {
		t.Parallel()

		store := NewMemoryStore()
		defer store.Close()

		_, firstReset, err := store.Increment(ctx, "k", 50*time.Millisecond)
		require.NoError(t, err)

		time.Sleep(60 * time.Millisecond)

		count, secondReset, err := store.Increment(ctx, "k", 50*time.Millisecond)
		require.NoError(t, err)

		assert.Equal(t, int64(1), count)
		assert.True(t, secondReset.After(firstReset), "reset time must move, not carry over stale")
	})

	t.Run("keys are independent", func(t *testing.T) {
		t.Parallel()

		store := NewMemoryStore()
		defer store.Close()

		_, _, err := store.Increment(ctx, "a", time.Minute)
		require.NoError(t, err)

		count, _, err := store.Increment(ctx, "b", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})
}

func TestMemoryStore_Decrement(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("refunds one count", func(t *testing.T) {
		t.Parallel()

		store := NewMemoryStore()
		defer store.Close()

		for range 3 {
			_, _, err := store.Increment(ctx, "k", time.Minute)
			require.NoError(t, err)
		}

		require.NoError(t, store.Decrement(ctx, "k"))

		count, _, err := store.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})

	t.Run("never drops below zero", func(t *testing.T) {
		t.Parallel()

		store := NewMemoryStore()
		defer store.Close()

		_, _, err := store.Increment(ctx, "k", time.Minute)
		require.NoError(t, err)

		require.NoError(t, store.Decrement(ctx, "k"))
		require.NoError(t, store.Decrement(ctx, "k"))

		count, _, err := store.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)
	})

	t.Run("absent key is a no-op", func(t *testing.T) {
		t.Parallel()

		store := NewMemoryStore()
		defer store.Close()

		assert.NoError(t, store.Decrement(ctx, "missing"))
	})
}

func TestMemoryStore_Get(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("absent key reports zero", func(t *testing.T) {
		t.Parallel()

		store := NewMemoryStore()
		defer store.Close()

		count, resetAt, err := store.Get(ctx, "missing")
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)
		assert.True(t, resetAt.IsZero())
	})

	t.Run("expired entry reports zero", func(t *testing.T) {
		t.Parallel()

		store := NewMemoryStore()
		defer store.Close()

		_, _, err := store.Increment(ctx, "k", 30*time.Millisecond)
		require.NoError(t, err)

		time.Sleep(40 * time.Millisecond)

		count, _, err := store.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)
	})
}

func TestMemoryStore_Sweep(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	store := NewMemoryStore()
	defer store.Close()

	_, _, err := store.Increment(ctx, "expired", 20*time.Millisecond)
	require.NoError(t, err)
	_, _, err = store.Increment(ctx, "live", time.Minute)
	require.NoError(t, err)

	time.Sleep(30 * time.Millisecond)

	removed, err := store.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	count, _, err := store.Get(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestMemoryStore_Close(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(WithSweepInterval(10 * time.Millisecond))

	require.NoError(t, store.Close())
	require.NoError(t, store.Close(), "close must be idempotent")
}
