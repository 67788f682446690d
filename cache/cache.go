// Package cache provides a generic in-memory TTL cache.
//
// The cache is read-through friendly: a stale entry is treated exactly like
// an absent one and is not evicted by Get; it is replaced in place by the
// next successful Set. A zero TTL disables caching entirely, meaning every
// Get is a miss. That is a stated policy, not an accident: operators set
// the TTL to zero to force every request through to storage.
//
// All operations are safe for unbounded concurrent readers and writers,
// and hit/miss counters are updated atomically.
package cache

import (
	"sync"
	"time"

	"go.uber.org/atomic"
)

// Stats is a point-in-time snapshot of cache counters. Hits and Misses
// increase monotonically; Size is the current entry count, stale entries
// included.
type Stats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Size   int   `json:"size"`
}

type entry[V any] struct {
	value     V
	createdAt time.Time
}

// Cache is an expiring key-value store generic over its value type.
type Cache[V any] struct {
	ttl     time.Duration
	timeNow func() time.Time

	mu      sync.RWMutex
	entries map[string]entry[V]

	hits   atomic.Int64
	misses atomic.Int64
}

// New creates a cache whose entries are fresh for ttl. A zero ttl disables
// the cache: every Get misses and Set is a no-op.
func New[V any](ttl time.Duration) *Cache[V] {
	return &Cache[V]{
		ttl:     ttl,
		timeNow: time.Now,
		entries: make(map[string]entry[V]),
	}
}

// Get returns the cached value for key if an entry exists and its age is
// still below the TTL. A stale entry counts as a miss and is left in place
// until the next Set replaces it.
func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V
	if c.ttl <= 0 {
		c.misses.Inc()
		return zero, false
	}

	c.mu.RLock()
	ent, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || c.timeNow().Sub(ent.createdAt) >= c.ttl {
		c.misses.Inc()
		return zero, false
	}

	c.hits.Inc()
	return ent.value, true
}

// Set unconditionally replaces any existing entry for key, fresh or stale,
// with a new entry timestamped now.
func (c *Cache[V]) Set(key string, value V) {
	if c.ttl <= 0 {
		return
	}

	c.mu.Lock()
	c.entries[key] = entry[V]{value: value, createdAt: c.timeNow()}
	c.mu.Unlock()
}

// Invalidate removes the entry for key outright.
func (c *Cache[V]) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Clear removes every entry. Counters are left untouched.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]entry[V])
	c.mu.Unlock()
}

// Stats returns a snapshot of the cache counters.
func (c *Cache[V]) Stats() Stats {
	c.mu.RLock()
	size := len(c.entries)
	c.mu.RUnlock()

	return Stats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Size:   size,
	}
}
