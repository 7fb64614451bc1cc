// Package cache provides the in-memory artifact store with TTL expiry.
// Reads treat a stale entry as a miss; physical removal of stale entries is
// the Sweeper's job, keeping the read path to a timestamp comparison.
package cache

import (
	"sync"
	"sync/atomic"
	"time"
)

// Entry holds one cached artifact and its insertion time. The cache owns the
// entry for the lease of its TTL.
type Entry struct {
	Artifact   any
	InsertedAt time.Time
}

// Cache is an id-keyed artifact store with expiry-on-read semantics.
// There is no capacity bound; the only eviction pressure is TTL.
type Cache struct {
	mu      sync.RWMutex
	entries map[int]Entry
	ttl     time.Duration

	// now is swappable for deterministic TTL tests.
	now func() time.Time

	// Statistics (atomic for lock-free reads)
	hits   atomic.Int64
	misses atomic.Int64
}

// New creates a cache whose entries are fresh for ttl after insertion.
func New(ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[int]Entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the artifact for id if an entry exists and is still fresh.
// A stale entry is a miss; it stays in the map until the next sweep.
func (c *Cache) Get(id int) (any, bool) {
	c.mu.RLock()
	entry, ok := c.entries[id]
	now := c.now()
	c.mu.RUnlock()

	if !ok || now.Sub(entry.InsertedAt) >= c.ttl {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return entry.Artifact, true
}

// Contains reports whether a fresh entry exists for id without touching the
// hit/miss counters. Used by the prefetcher to skip already-cached neighbors.
func (c *Cache) Contains(id int) bool {
	c.mu.RLock()
	entry, ok := c.entries[id]
	now := c.now()
	c.mu.RUnlock()
	return ok && now.Sub(entry.InsertedAt) < c.ttl
}

// Put stores an artifact for id, unconditionally overwriting any prior entry
// with a freshly timestamped one.
func (c *Cache) Put(id int, artifact any) {
	c.mu.Lock()
	c.entries[id] = Entry{Artifact: artifact, InsertedAt: c.now()}
	c.mu.Unlock()
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[int]Entry)
	c.mu.Unlock()
}

// Len returns the number of physically stored entries, stale ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Counters returns the cumulative hit and miss counts.
func (c *Cache) Counters() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// TTL returns the configured entry lifetime.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Sweep removes every entry whose age meets or exceeds the TTL and returns
// the number of entries removed.
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()

	removed := 0
	for id, entry := range c.entries {
		if now.Sub(entry.InsertedAt) >= c.ttl {
			delete(c.entries, id)
			removed++
		}
	}
	return removed
}

// SetNowFunc overrides the clock. Test hook.
func (c *Cache) SetNowFunc(now func() time.Time) {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
}
