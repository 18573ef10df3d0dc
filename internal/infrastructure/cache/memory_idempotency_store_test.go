package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestMemoryStore(t *testing.T) (*MemoryIdempotencyStore, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2025, time.June, 1, 8, 0, 0, 0, time.UTC)}
	store := NewMemoryIdempotencyStore(WithClock(clock.Now), WithSweepInterval(time.Hour))
	t.Cleanup(func() { _ = store.Close() })
	return store, clock
}

func TestMemoryIdempotencyStore_MarkProcessed(t *testing.T) {
	ctx := context.Background()

	t.Run("claims a new event once", func(t *testing.T) {
		store, _ := newTestMemoryStore(t)

		first, err := store.MarkProcessed(ctx, "evt-1", time.Hour)
		require.NoError(t, err)
		assert.True(t, first)

		second, err := store.MarkProcessed(ctx, "evt-1", time.Hour)
		require.NoError(t, err)
		assert.False(t, second)
	})

	t.Run("allows the event again after the ttl", func(t *testing.T) {
		store, clock := newTestMemoryStore(t)

		_, err := store.MarkProcessed(ctx, "evt-2", time.Minute)
		require.NoError(t, err)

		clock.Advance(time.Minute)

		again, err := store.MarkProcessed(ctx, "evt-2", time.Minute)
		require.NoError(t, err)
		assert.True(t, again)
	})
}

func TestMemoryIdempotencyStore_IsProcessed(t *testing.T) {
	ctx := context.Background()
	store, clock := newTestMemoryStore(t)

	processed, err := store.IsProcessed(ctx, "evt-3")
	require.NoError(t, err)
	assert.False(t, processed)

	_, _ = store.MarkProcessed(ctx, "evt-3", 10*time.Minute)
	processed, _ = store.IsProcessed(ctx, "evt-3")
	assert.True(t, processed)

	clock.Advance(11 * time.Minute)
	processed, _ = store.IsProcessed(ctx, "evt-3")
	assert.False(t, processed)
}

func TestMemoryIdempotencyStore_Sweep(t *testing.T) {
	ctx := context.Background()
	store, clock := newTestMemoryStore(t)

	_, _ = store.MarkProcessed(ctx, "short", time.Minute)
	_, _ = store.MarkProcessed(ctx, "long", time.Hour)
	require.Equal(t, 2, store.Len())

	clock.Advance(2 * time.Minute)
	store.sweep()

	assert.Equal(t, 1, store.Len())
	processed, _ := store.IsProcessed(ctx, "long")
	assert.True(t, processed)
}

func TestMemoryIdempotencyStore_ConcurrentClaims(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestMemoryStore(t)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := store.MarkProcessed(ctx, "contended", time.Hour)
			if err == nil && ok {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, winners)
}

func TestMemoryIdempotencyStore_DistinctEvents(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestMemoryStore(t)

	for i := 0; i < 10; i++ {
		ok, err := store.MarkProcessed(ctx, fmt.Sprintf("evt-%d", i), time.Hour)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	assert.Equal(t, 10, store.Len())
}

func TestMemoryIdempotencyStore_CloseTwice(t *testing.T) {
	store := NewMemoryIdempotencyStore()
	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}
