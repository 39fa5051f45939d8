// Package cache provides a short-lived result cache tied to a document
// generation.
package cache

import (
	"sync"
	"time"
)

// TTLCache is a thread-safe cache whose entries expire together. Every
// entry belongs to a generation, usually the fingerprint of the document
// the results were computed from. Storing a value under a new generation
// drops everything stored under the old one.
type TTLCache[K comparable, V any] struct {
	mu         sync.RWMutex
	data       map[K]V
	generation string
	timestamp  time.Time
	ttl        time.Duration
}

// New creates a new TTLCache with the given TTL duration.
// The cache starts empty and expired.
func New[K comparable, V any](ttl time.Duration) *TTLCache[K, V] {
	return &TTLCache[K, V]{
		data: make(map[K]V),
		ttl:  ttl,
	}
}

// Get returns the value stored under key for generation gen. It misses when
// the cache has expired or holds another generation.
func (c *TTLCache[K, V]) Get(gen string, key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.generation != gen || c.expiredLocked() {
		var zero V
		return zero, false
	}
	value, ok := c.data[key]
	return value, ok
}

// Set stores a value for generation gen. An expired cache, or one holding a
// different generation, is emptied first and its timer restarted. Within a
// live generation Set does not extend the expiry.
func (c *TTLCache[K, V]) Set(gen string, key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.data == nil || c.generation != gen || c.expiredLocked() {
		c.data = make(map[K]V)
		c.generation = gen
		c.timestamp = time.Now()
	}
	c.data[key] = value
}

// Generation returns the generation currently held.
func (c *TTLCache[K, V]) Generation() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation
}

// IsExpired reports whether the cache has expired. An empty cache that was
// never filled is expired.
func (c *TTLCache[K, V]) IsExpired() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.expiredLocked()
}

// expiredLocked must be called with at least a read lock held.
func (c *TTLCache[K, V]) expiredLocked() bool {
	return c.timestamp.IsZero() || time.Since(c.timestamp) >= c.ttl
}

// Invalidate clears all cached data.
func (c *TTLCache[K, V]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data = make(map[K]V)
	c.generation = ""
	c.timestamp = time.Time{}
}

// Len returns the number of items held, expired or not.
func (c *TTLCache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}
