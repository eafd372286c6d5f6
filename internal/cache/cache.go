// Package cache provides the per-provider TTL cache.
package cache

import (
	"sync"
	"time"
)

// Entry is a cached value with its expiry and an optional source tag.
type Entry[V any] struct {
	Value     V
	ExpiresAt time.Time
	Source    string
}

// Config configures a TTL cache.
type Config struct {
	Enabled bool
	TTL     time.Duration
	// MaxSize bounds the number of entries. Zero means unbounded.
	MaxSize int
	// Now defaults to time.Now.
	Now func() time.Time
}

// TTL is a thread-safe map of entries that are only visible while
// ExpiresAt is after the current time. Expired entries are treated as
// absent; they are never served stale.
type TTL[V any] struct {
	mu      sync.RWMutex
	config  Config
	entries map[string]Entry[V]
}

// New creates an empty cache.
func New[V any](config Config) *TTL[V] {
	if config.Now == nil {
		config.Now = time.Now
	}
	return &TTL[V]{
		config:  config,
		entries: make(map[string]Entry[V]),
	}
}

// Enabled reports whether the cache stores anything at all.
func (c *TTL[V]) Enabled() bool {
	return c.config.Enabled
}

// TTL returns the configured time-to-live.
func (c *TTL[V]) TTL() time.Duration {
	return c.config.TTL
}

// Get returns the live entry for key.
func (c *TTL[V]) Get(key string) (V, bool) {
	var zero V
	if !c.config.Enabled {
		return zero, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || !entry.ExpiresAt.After(c.config.Now()) {
		return zero, false
	}
	return entry.Value, true
}

// Entry returns the live entry for key including its metadata.
func (c *TTL[V]) Entry(key string) (Entry[V], bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || !entry.ExpiresAt.After(c.config.Now()) {
		return Entry[V]{}, false
	}
	return entry, true
}

// Set stores value under key for the configured TTL. When MaxSize is
// reached the entry closest to expiry is evicted first.
func (c *TTL[V]) Set(key string, value V, source string) {
	if !c.config.Enabled {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && c.config.MaxSize > 0 && len(c.entries) >= c.config.MaxSize {
		c.evictOldestLocked()
	}

	c.entries[key] = Entry[V]{
		Value:     value,
		ExpiresAt: c.config.Now().Add(c.config.TTL),
		Source:    source,
	}
}

func (c *TTL[V]) evictOldestLocked() {
	var (
		oldestKey string
		oldest    time.Time
		first     = true
	)
	for k, e := range c.entries {
		if first || e.ExpiresAt.Before(oldest) {
			oldestKey = k
			oldest = e.ExpiresAt
			first = false
		}
	}
	if !first {
		delete(c.entries, oldestKey)
	}
}

// Delete removes key.
func (c *TTL[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear removes every entry.
func (c *TTL[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]Entry[V])
}

// Len returns the number of stored entries, expired ones included, since
// they still occupy the map until overwritten or cleared.
func (c *TTL[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Has reports whether key has a live entry.
func (c *TTL[V]) Has(key string) bool {
	_, ok := c.Entry(key)
	return ok
}

// CountBySource returns the number of stored entries per source tag.
func (c *TTL[V]) CountBySource() map[string]int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	counts := make(map[string]int)
	for _, e := range c.entries {
		counts[e.Source]++
	}
	return counts
}
