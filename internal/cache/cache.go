// Package cache provides a small in-process TTL cache used to shortcut
// repeated reads of a group's compatibility report. The cache is advisory
// only: losing it (process restart) causes a miss and lazy regeneration,
// never a correctness violation.
//
// The cache is an explicitly constructed object passed by reference to the
// components that need it — constructed once at process start, no package
// globals.
package cache

import (
	"sync"
	"time"
)

// DefaultTTL is the expiry window applied when Set is called with a
// non-positive TTL.
const DefaultTTL = 30 * time.Minute

// item is one cached value with its insertion time and expiry window.
type item struct {
	data      any
	timestamp time.Time
	ttl       time.Duration
}

// Cache is a string-keyed TTL cache safe for concurrent use.
type Cache struct {
	mu    sync.Mutex
	items map[string]item
	now   func() time.Time // test seam
}

// New returns an empty Cache.
func New() *Cache {
	return &Cache{
		items: make(map[string]item),
		now:   time.Now,
	}
}

// Get returns the cached value for key, or (nil, false) when absent or
// expired. Expired entries are removed on access.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	it, ok := c.items[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(it.timestamp) > it.ttl {
		delete(c.items, key)
		return nil, false
	}
	return it.data, true
}

// Set stores data under key with the given expiry window. A non-positive
// ttl falls back to DefaultTTL.
func (c *Cache) Set(key string, data any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c.mu.Lock()
	c.items[key] = item{data: data, timestamp: c.now(), ttl: ttl}
	c.mu.Unlock()
}

// IsValid reports whether key holds a non-expired entry without touching it.
func (c *Cache) IsValid(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	it, ok := c.items[key]
	if !ok {
		return false
	}
	return c.now().Sub(it.timestamp) <= it.ttl
}

// Remove deletes key from the cache, if present.
func (c *Cache) Remove(key string) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

// CleanExpired removes every expired entry. Useful as a periodic sweep when
// many short-lived keys accumulate.
func (c *Cache) CleanExpired() {
	now := c.now()
	c.mu.Lock()
	for k, it := range c.items {
		if now.Sub(it.timestamp) > it.ttl {
			delete(c.items, k)
		}
	}
	c.mu.Unlock()
}

// Key builds a namespaced cache key from a prefix and an id.
func Key(prefix, id string) string {
	return prefix + ":" + id
}
