// Package cache provides the content-addressed result cache used to
// deduplicate extraction work across requests with identical raw input.
//
// The cache is bounded: when full, the least-recently-accessed entry is
// evicted first. Entries expire after a TTL, checked lazily on lookup and
// additionally swept in the background once Start is called. All operations
// are safe for concurrent use.
package cache

import (
	"sync/atomic"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// Cache is a bounded TTL/LRU cache keyed by content fingerprint.
type Cache[V any] struct {
	inner    *ttlcache.Cache[string, V]
	capacity uint64
	ttl      time.Duration

	hits   atomic.Uint64
	misses atomic.Uint64
}

// Stats is a point-in-time snapshot of cache counters for observability.
type Stats struct {
	Hits     uint64        `json:"hits"`
	Misses   uint64        `json:"misses"`
	Size     int           `json:"size"`
	Capacity uint64        `json:"capacity"`
	TTL      time.Duration `json:"ttl_seconds"`
}

// New creates a cache holding at most capacity entries, each expiring ttl
// after insertion. Lookups refresh an entry's recency and expiry.
func New[V any](capacity uint64, ttl time.Duration) *Cache[V] {
	inner := ttlcache.New[string, V](
		ttlcache.WithTTL[string, V](ttl),
		ttlcache.WithCapacity[string, V](capacity),
	)
	return &Cache[V]{
		inner:    inner,
		capacity: capacity,
		ttl:      ttl,
	}
}

// Start launches the background expiry sweep, bounding memory held by dead
// entries between lookups. Stop terminates it.
func (c *Cache[V]) Start() {
	go c.inner.Start()
}

// Stop terminates the background expiry sweep.
func (c *Cache[V]) Stop() {
	c.inner.Stop()
}

// Get returns the cached value for key. An expired entry is removed and
// treated as a miss, never returned stale.
func (c *Cache[V]) Get(key string) (V, bool) {
	item := c.inner.Get(key)
	if item == nil {
		c.misses.Add(1)
		var zero V
		return zero, false
	}
	c.hits.Add(1)
	return item.Value(), true
}

// Set inserts or replaces the value for key, evicting the least-recently-
// accessed entry when the cache is full.
func (c *Cache[V]) Set(key string, value V) {
	c.inner.Set(key, value, ttlcache.DefaultTTL)
}

// Clear empties the cache and returns the number of entries removed.
func (c *Cache[V]) Clear() int {
	count := c.inner.Len()
	c.inner.DeleteAll()
	return count
}

// Len returns the current number of entries.
func (c *Cache[V]) Len() int {
	return c.inner.Len()
}

// Stats returns a snapshot of the cache counters.
func (c *Cache[V]) Stats() Stats {
	return Stats{
		Hits:     c.hits.Load(),
		Misses:   c.misses.Load(),
		Size:     c.inner.Len(),
		Capacity: c.capacity,
		TTL:      c.ttl,
	}
}
