// Package cache provides LRU caching for rendered chapters and passages.
package cache

import (
	"container/list"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/FocuswithJustin/osisreader/core/osis"
)

// Cache is a generic LRU cache interface.
type Cache[K comparable, V any] interface {
	// Get retrieves a value from the cache.
	Get(key K) (V, bool)

	// Put stores a value in the cache.
	Put(key K, value V)

	// Remove removes a value from the cache.
	Remove(key K)

	// Clear removes all entries from the cache.
	Clear()

	// Len returns the number of entries in the cache.
	Len() int

	// Stats returns cache statistics.
	Stats() Stats
}

// Stats contains cache statistics.
type Stats struct {
	Hits       int64
	Misses     int64
	Evictions  int64
	Size       int
	MaxSize    int
	TotalBytes int64
}

// HitRate returns the fraction of lookups served from the cache.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Config contains cache configuration options.
type Config struct {
	// MaxSize is the maximum number of entries (0 = unlimited).
	MaxSize int

	// TTL is the time-to-live for entries (0 = no expiration).
	TTL time.Duration

	// OnEvict is called with the key and value of every entry leaving the
	// cache, whether by eviction, expiry, or removal.
	OnEvict func(key, value any)
}

// DefaultConfig returns a default cache configuration.
func DefaultConfig() Config {
	return Config{MaxSize: 256}
}

type entry[K comparable, V any] struct {
	key       K
	value     V
	expiresAt time.Time
}

// lruCache is a thread-safe LRU cache implementation.
type lruCache[K comparable, V any] struct {
	mu        sync.Mutex
	config    Config
	entries   map[K]*list.Element
	evictList *list.List
	stats     Stats
}

// NewLRUCache creates a new LRU cache with the given configuration.
func NewLRUCache[K comparable, V any](config Config) Cache[K, V] {
	if config.MaxSize < 0 {
		config.MaxSize = 0
	}
	return &lruCache[K, V]{
		config:    config,
		entries:   make(map[K]*list.Element),
		evictList: list.New(),
	}
}

func (c *lruCache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ent, ok := c.entries[key]
	if !ok {
		c.stats.Misses++
		var zero V
		return zero, false
	}
	e := ent.Value.(*entry[K, V])
	if c.config.TTL > 0 && time.Now().After(e.expiresAt) {
		c.removeElement(ent)
		c.stats.Misses++
		var zero V
		return zero, false
	}

	c.evictList.MoveToFront(ent)
	c.stats.Hits++
	return e.value, true
}

func (c *lruCache[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expires time.Time
	if c.config.TTL > 0 {
		expires = time.Now().Add(c.config.TTL)
	}
	if ent, ok := c.entries[key]; ok {
		c.evictList.MoveToFront(ent)
		e := ent.Value.(*entry[K, V])
		e.value = value
		e.expiresAt = expires
		return
	}

	c.entries[key] = c.evictList.PushFront(&entry[K, V]{key: key, value: value, expiresAt: expires})
	if c.config.MaxSize > 0 && c.evictList.Len() > c.config.MaxSize {
		c.removeOldest()
	}
}

func (c *lruCache[K, V]) Remove(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.entries[key]; ok {
		c.removeElement(ent)
	}
}

func (c *lruCache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for c.evictList.Len() > 0 {
		c.removeElement(c.evictList.Back())
	}
}

func (c *lruCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.evictList.Len()
}

func (c *lruCache[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.stats
	s.Size = c.evictList.Len()
	s.MaxSize = c.config.MaxSize
	return s
}

func (c *lruCache[K, V]) removeOldest() {
	if ent := c.evictList.Back(); ent != nil {
		c.removeElement(ent)
		c.stats.Evictions++
	}
}

// removeElement must be called with c.mu held.
func (c *lruCache[K, V]) removeElement(ent *list.Element) {
	c.evictList.Remove(ent)
	e := ent.Value.(*entry[K, V])
	delete(c.entries, e.key)
	if c.config.OnEvict != nil {
		c.config.OnEvict(e.key, e.value)
	}
}

// BoundedCache is an LRU cache limited by both entry count and the summed
// size of its values.
type BoundedCache[K comparable, V any] struct {
	mu       sync.Mutex
	cache    Cache[K, V]
	sizes    map[K]int64
	total    int64
	maxBytes int64
	sizeFunc func(V) int64
}

// NewBoundedCache creates a cache holding at most maxBytes as measured by
// sizeFunc. A maxBytes of zero disables the byte limit.
func NewBoundedCache[K comparable, V any](config Config, maxBytes int64, sizeFunc func(V) int64) *BoundedCache[K, V] {
	b := &BoundedCache[K, V]{
		sizes:    make(map[K]int64),
		maxBytes: maxBytes,
		sizeFunc: sizeFunc,
	}
	onEvict := config.OnEvict
	config.OnEvict = func(key, value any) {
		if k, ok := key.(K); ok {
			b.total -= b.sizes[k]
			delete(b.sizes, k)
		}
		if onEvict != nil {
			onEvict(key, value)
		}
	}
	b.cache = NewLRUCache[K, V](config)
	return b
}

func (b *BoundedCache[K, V]) Get(key K) (V, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cache.Get(key)
}

// Put stores value unless it alone exceeds the byte limit, evicting least
// recently used entries until it fits.
func (b *BoundedCache[K, V]) Put(key K, value V) {
	b.mu.Lock()
	defer b.mu.Unlock()

	size := b.sizeFunc(value)
	if b.maxBytes > 0 && size > b.maxBytes {
		return
	}
	b.cache.Remove(key)
	if b.maxBytes > 0 {
		for b.total+size > b.maxBytes && b.cache.Len() > 0 {
			b.evictOldest()
		}
	}
	b.cache.Put(key, value)
	b.sizes[key] = size
	b.total += size
}

// evictOldest drops the least recently used entry of the underlying cache.
func (b *BoundedCache[K, V]) evictOldest() {
	lru, ok := b.cache.(*lruCache[K, V])
	if !ok {
		return
	}
	lru.mu.Lock()
	ent := lru.evictList.Back()
	if ent != nil {
		lru.removeElement(ent)
		lru.stats.Evictions++
	}
	lru.mu.Unlock()
}

func (b *BoundedCache[K, V]) Remove(key K) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cache.Remove(key)
}

func (b *BoundedCache[K, V]) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cache.Clear()
}

func (b *BoundedCache[K, V]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cache.Len()
}

// Stats returns cache statistics including byte size information.
func (b *BoundedCache[K, V]) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.cache.Stats()
	s.TotalBytes = b.total
	return s
}

// Key identifies one memoized result: an operation on a reference within a
// document identified by its fingerprint.
type Key struct {
	Fingerprint string
	Op          string
	Ref         string
}

// VerseCache memoizes verse listings of loaded documents. Concurrent misses
// on the same key share a single computation.
type VerseCache struct {
	cache *BoundedCache[Key, []osis.VerseRecord]
	group singleflight.Group
}

// NewVerseCache creates a verse cache limited to config.MaxSize listings and
// maxBytes of verse text.
func NewVerseCache(config Config, maxBytes int64) *VerseCache {
	return &VerseCache{cache: NewBoundedCache[Key, []osis.VerseRecord](config, maxBytes, estimateVerseBytes)}
}

// NewDefaultVerseCache creates a verse cache with DefaultConfig and a 64 MiB
// text limit.
func NewDefaultVerseCache() *VerseCache {
	return NewVerseCache(DefaultConfig(), 64<<20)
}

// GetOrCompute returns the listing stored under key, calling compute on a
// miss. Empty listings are returned but not stored.
func (c *VerseCache) GetOrCompute(key Key, compute func() []osis.VerseRecord) []osis.VerseRecord {
	if v, ok := c.cache.Get(key); ok {
		return v
	}
	v, _, _ := c.group.Do(key.Fingerprint+"\x00"+key.Op+"\x00"+key.Ref, func() (any, error) {
		verses := compute()
		if len(verses) > 0 {
			c.cache.Put(key, verses)
		}
		return verses, nil
	})
	return v.([]osis.VerseRecord)
}

func (c *VerseCache) Clear()       { c.cache.Clear() }
func (c *VerseCache) Len() int     { return c.cache.Len() }
func (c *VerseCache) Stats() Stats { return c.cache.Stats() }

func estimateVerseBytes(verses []osis.VerseRecord) int64 {
	var n int64
	for _, v := range verses {
		n += int64(len(v.Reference) + len(v.Text) + 16)
	}
	return n
}
