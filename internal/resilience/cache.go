package resilience

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"
)

type cacheEntry[V any] struct {
	value      V
	insertedAt time.Time
}

// Cache is a process-lifetime TTL cache. Expired entries are evicted
// lazily when looked up; there is no background sweep.
type Cache[V any] struct {
	name     string
	ttl      time.Duration
	now      func() time.Time
	observer Observer

	mu      sync.Mutex
	entries map[string]cacheEntry[V]
}

// NewCache creates a named cache whose entries live for ttl.
func NewCache[V any](name string, ttl time.Duration, opts ...Option) *Cache[V] {
	o := buildOptions(opts)
	return &Cache[V]{
		name:     name,
		ttl:      ttl,
		now:      o.now,
		observer: o.observer,
		entries:  make(map[string]cacheEntry[V]),
	}
}

// Name returns the cache name used in metrics and status output.
func (c *Cache[V]) Name() string {
	return c.name
}

// Get returns the value stored under key if it is younger than the TTL.
// An expired entry is removed before reporting a miss.
func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V
	if c == nil {
		return zero, false
	}

	c.mu.Lock()
	entry, ok := c.entries[key]
	if ok && c.now().Sub(entry.insertedAt) >= c.ttl {
		delete(c.entries, key)
		ok = false
	}
	c.mu.Unlock()

	c.observer.CacheLookup(c.name, ok)
	if !ok {
		return zero, false
	}
	return entry.value, true
}

// Set stores value under key, stamped with the current time.
func (c *Cache[V]) Set(key string, value V) {
	if c == nil || c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.entries[key] = cacheEntry[V]{value: value, insertedAt: c.now()}
	c.mu.Unlock()
}

// Len returns the number of stored entries, including expired ones that
// have not been looked up yet.
func (c *Cache[V]) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Key derives a cache key from an operation name and its inputs. The
// operation name is part of both the hash and the visible prefix, so keys
// of different operations never collide.
func Key(op string, parts ...string) string {
	h := sha256.New()
	h.Write([]byte(op))
	for _, p := range parts {
		fmt.Fprintf(h, "\x00%d\x00", len(p))
		h.Write([]byte(p))
	}
	return fmt.Sprintf("%s:%x", op, h.Sum(nil)[:16])
}
