package cache

import (
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

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
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

func TestGetSet(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	c := New[string](Config{Enabled: true, TTL: time.Minute, Now: clock.Now})

	_, ok := c.Get("k")
	assert.False(t, ok)

	c.Set("k", "v", "primary")
	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", got)

	entry, ok := c.Entry("k")
	require.True(t, ok)
	assert.Equal(t, "primary", entry.Source)
	assert.Equal(t, clock.Now().Add(time.Minute), entry.ExpiresAt)
}

func TestExpiredEntriesAreAbsent(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	c := New[string](Config{Enabled: true, TTL: time.Minute, Now: clock.Now})
	c.Set("k", "v", "")

	clock.Advance(59 * time.Second)
	assert.True(t, c.Has("k"))

	// expiresAt == now is already expired
	clock.Advance(time.Second)
	_, ok := c.Get("k")
	assert.False(t, ok)
	assert.False(t, c.Has("k"))
	assert.Equal(t, 1, c.Len())
}

func TestDisabledCacheStoresNothing(t *testing.T) {
	t.Parallel()

	c := New[string](Config{Enabled: false, TTL: time.Minute})
	c.Set("k", "v", "")

	_, ok := c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
	assert.False(t, c.Enabled())
}

func TestDeleteAndClear(t *testing.T) {
	t.Parallel()

	c := New[int](Config{Enabled: true, TTL: time.Minute})
	c.Set("a", 1, "")
	c.Set("b", 2, "")

	c.Delete("a")
	assert.False(t, c.Has("a"))
	assert.True(t, c.Has("b"))

	c.Clear()
	assert.Equal(t, 0, c.Len())
}

func TestMaxSizeEvictsClosestToExpiry(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	c := New[string](Config{Enabled: true, TTL: time.Minute, MaxSize: 2, Now: clock.Now})

	c.Set("first", "1", "")
	clock.Advance(time.Second)
	c.Set("second", "2", "")
	clock.Advance(time.Second)
	c.Set("third", "3", "")

	assert.Equal(t, 2, c.Len())
	assert.False(t, c.Has("first"))
	assert.True(t, c.Has("second"))
	assert.True(t, c.Has("third"))

	// overwriting an existing key never evicts
	c.Set("third", "3b", "")
	assert.Equal(t, 2, c.Len())
	assert.True(t, c.Has("second"))
}

func TestCountBySource(t *testing.T) {
	t.Parallel()

	c := New[string](Config{Enabled: true, TTL: time.Minute})
	c.Set("a", "1", "primary")
	c.Set("b", "2", "primary")
	c.Set("c", "3", "fallback")

	counts := c.CountBySource()
	assert.Equal(t, 2, counts["primary"])
	assert.Equal(t, 1, counts["fallback"])
}

func TestConcurrentAccess(t *testing.T) {
	t.Parallel()

	c := New[string](Config{Enabled: true, TTL: time.Minute})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			key := fmt.Sprintf("key-%d", id%5)
			c.Set(key, "v", "")
			c.Get(key)
			if id%10 == 0 {
				c.Clear()
			}
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), 5)
}
