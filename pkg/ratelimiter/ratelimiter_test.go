package ratelimiter_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SyncSphere7/fou-website/pkg/ratelimiter"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("requires store", func(t *testing.T) {
		t.Parallel()

		_, err := ratelimiter.New(nil, ratelimiter.Config{Limit: 5, Window: time.Minute})
		require.ErrorIs(t, err, ratelimiter.ErrInvalidConfig)
	})

	t.Run("rejects non-positive limit", func(t *testing.T) {
		t.Parallel()

		_, err := ratelimiter.New(ratelimiter.NewMemoryStore(), ratelimiter.Config{Limit: 0, Window: time.Minute})
		require.ErrorIs(t, err, ratelimiter.ErrInvalidConfig)
	})

	t.Run("rejects non-positive window", func(t *testing.T) {
		t.Parallel()

		_, err := ratelimiter.New(ratelimiter.NewMemoryStore(), ratelimiter.Config{Limit: 5, Window: 0})
		require.ErrorIs(t, err, ratelimiter.ErrInvalidConfig)
	})
}

func TestLimiterAllow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("allows up to limit then rejects", func(t *testing.T) {
		t.Parallel()

		limiter, err := ratelimiter.New(ratelimiter.NewMemoryStore(),
			ratelimiter.Config{Limit: 5, Window: time.Minute})
		require.NoError(t, err)

		for i := range 5 {
			result, err := limiter.Allow(ctx, "1.2.3.4")
			require.NoError(t, err)
			assert.True(t, result.Allowed(), "request %d should be allowed", i+1)
			assert.Equal(t, 4-i, result.Remaining)
		}

		result, err := limiter.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.False(t, result.Allowed())
		assert.Negative(t, result.Remaining)
		assert.Positive(t, result.RetryAfter())
	})

	t.Run("keys are independent", func(t *testing.T) {
		t.Parallel()

		limiter, err := ratelimiter.New(ratelimiter.NewMemoryStore(),
			ratelimiter.Config{Limit: 1, Window: time.Minute})
		require.NoError(t, err)

		first, err := limiter.Allow(ctx, "1.1.1.1")
		require.NoError(t, err)
		assert.True(t, first.Allowed())

		blocked, err := limiter.Allow(ctx, "1.1.1.1")
		require.NoError(t, err)
		assert.False(t, blocked.Allowed())

		other, err := limiter.Allow(ctx, "2.2.2.2")
		require.NoError(t, err)
		assert.True(t, other.Allowed())
	})

	t.Run("window elapse resets the budget", func(t *testing.T) {
		t.Parallel()

		limiter, err := ratelimiter.New(ratelimiter.NewMemoryStore(),
			ratelimiter.Config{Limit: 1, Window: 30 * time.Millisecond})
		require.NoError(t, err)

		result, err := limiter.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		require.True(t, result.Allowed())

		result, err = limiter.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		require.False(t, result.Allowed())

		time.Sleep(50 * time.Millisecond)

		result, err = limiter.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, result.Allowed())
	})

	t.Run("retry after tracks window reset", func(t *testing.T) {
		t.Parallel()

		limiter, err := ratelimiter.New(ratelimiter.NewMemoryStore(),
			ratelimiter.Config{Limit: 1, Window: time.Minute})
		require.NoError(t, err)

		_, err = limiter.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)

		result, err := limiter.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		require.False(t, result.Allowed())
		assert.LessOrEqual(t, result.RetryAfter(), time.Minute)
		assert.Greater(t, result.RetryAfter(), 50*time.Second)
	})
}

func TestLimiterForgive(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("refund frees one slot", func(t *testing.T) {
		t.Parallel()

		limiter, err := ratelimiter.New(ratelimiter.NewMemoryStore(),
			ratelimiter.Config{Limit: 2, Window: time.Minute})
		require.NoError(t, err)

		for range 2 {
			result, err := limiter.Allow(ctx, "1.2.3.4")
			require.NoError(t, err)
			require.True(t, result.Allowed())
		}

		require.NoError(t, limiter.Forgive(ctx, "1.2.3.4"))

		result, err := limiter.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, result.Allowed())

		result, err = limiter.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.False(t, result.Allowed())
	})

	t.Run("refund on unknown key is harmless", func(t *testing.T) {
		t.Parallel()

		limiter, err := ratelimiter.New(ratelimiter.NewMemoryStore(),
			ratelimiter.Config{Limit: 1, Window: time.Minute})
		require.NoError(t, err)

		require.NoError(t, limiter.Forgive(ctx, "never-seen"))

		// The counter never goes below zero, so a stray refund does not
		// grant a double budget.
		result, err := limiter.Allow(ctx, "never-seen")
		require.NoError(t, err)
		assert.Equal(t, 0, result.Remaining)
	})
}

func TestLimiterReset(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	limiter, err := ratelimiter.New(ratelimiter.NewMemoryStore(),
		ratelimiter.Config{Limit: 1, Window: time.Minute})
	require.NoError(t, err)

	_, err = limiter.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)

	blocked, err := limiter.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	require.False(t, blocked.Allowed())

	require.NoError(t, limiter.Reset(ctx, "1.2.3.4"))

	result, err := limiter.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, result.Allowed())
}

func TestMemoryStoreConcurrency(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := ratelimiter.NewMemoryStore()

	const workers = 50
	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			_, _, err := store.Increment(ctx, "shared", time.Minute)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	count, _, err := store.Increment(ctx, "shared", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, workers+1, count)
}

func TestMemoryStoreLen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := ratelimiter.NewMemoryStore()

	for _, key := range []string{"a", "b", "c"} {
		_, _, err := store.Increment(ctx, key, time.Minute)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, store.Len())

	require.NoError(t, store.Reset(ctx, "b"))
	assert.Equal(t, 2, store.Len())
}
