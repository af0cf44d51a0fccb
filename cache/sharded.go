// Package cache provides a sharded LRU cache shared by the font and glyph
// bitmap layers of pixtext.
package cache

import (
	"hash/fnv"
	"sync"
	"sync/atomic"
)

const (
	// DefaultShardCount is the number of independently locked shards.
	// It is a power of two so a key's shard is hash & shardMask.
	DefaultShardCount = 16

	// DefaultCapacity is the per-shard entry limit used for capacity <= 0.
	DefaultCapacity = 64

	shardMask = DefaultShardCount - 1
)

// Hasher maps a key to the hash that picks its shard.
type Hasher[K any] func(K) uint64

// StringHasher hashes s with FNV-1a.
func StringHasher(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Len           int     // entries currently stored
	Capacity      int     // per-shard limit
	TotalCapacity int     // Capacity * DefaultShardCount
	Hits          uint64  // successful Gets
	Misses        uint64  // failed Gets
	HitRate       float64 // Hits / (Hits + Misses), 0 before any Get
	Evictions     uint64  // entries dropped to make room
}

// ShardedCache is an LRU cache split into DefaultShardCount shards, each
// with its own lock and its own eviction order. It is safe for concurrent
// use. Values are returned as stored, so shared values must be immutable.
type ShardedCache[K comparable, V any] struct {
	shards   [DefaultShardCount]*shard[K, V]
	hasher   Hasher[K]
	capacity int

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// shard is a single shard of the cache with its own mutex.
type shard[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]*entry[K, V]
	order   ring[K, V]
}

func newShard[K comparable, V any]() *shard[K, V] {
	s := &shard[K, V]{entries: make(map[K]*entry[K, V])}
	s.order.init()
	return s
}

func (s *shard[K, V]) drop(e *entry[K, V]) {
	s.order.remove(e)
	delete(s.entries, e.key)
}

// NewSharded returns a cache holding up to capacity entries per shard,
// DefaultCapacity when capacity <= 0.
func NewSharded[K comparable, V any](capacity int, hasher Hasher[K]) *ShardedCache[K, V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	c := &ShardedCache[K, V]{
		hasher:   hasher,
		capacity: capacity,
	}
	for i := range c.shards {
		c.shards[i] = newShard[K, V]()
	}
	return c
}

func (c *ShardedCache[K, V]) shardFor(key K) *shard[K, V] {
	return c.shards[c.hasher(key)&shardMask]
}

// Get returns the value for key and marks it most recently used.
func (c *ShardedCache[K, V]) Get(key K) (V, bool) {
	s := c.shardFor(key)

	s.mu.Lock()
	e, ok := s.entries[key]
	if !ok {
		s.mu.Unlock()
		c.misses.Add(1)
		var zero V
		return zero, false
	}
	s.order.touch(e)
	value := e.value
	s.mu.Unlock()

	c.hits.Add(1)
	return value, true
}

// Set stores value under key. A full shard first evicts its least
// recently used entries.
func (c *ShardedCache[K, V]) Set(key K, value V) {
	s := c.shardFor(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[key]; ok {
		e.value = value
		s.order.touch(e)
		return
	}

	for s.order.n >= c.capacity {
		s.drop(s.order.oldest())
		c.evictions.Add(1)
	}

	e := &entry[K, V]{key: key, value: value}
	s.order.insertFront(e)
	s.entries[key] = e
}

// Delete removes key and reports whether it was present.
func (c *ShardedCache[K, V]) Delete(key K) bool {
	s := c.shardFor(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return false
	}
	s.drop(e)
	return true
}

// DeleteFunc removes every entry whose key satisfies match and returns the
// number of removed entries.
func (c *ShardedCache[K, V]) DeleteFunc(match func(K) bool) int {
	removed := 0
	for _, s := range c.shards {
		s.mu.Lock()
		for key, e := range s.entries {
			if match(key) {
				s.drop(e)
				removed++
			}
		}
		s.mu.Unlock()
	}
	return removed
}

// Clear empties every shard. Counters are kept.
func (c *ShardedCache[K, V]) Clear() {
	for _, s := range c.shards {
		s.mu.Lock()
		s.entries = make(map[K]*entry[K, V])
		s.order.init()
		s.mu.Unlock()
	}
}

// Len returns the number of stored entries.
func (c *ShardedCache[K, V]) Len() int {
	total := 0
	for _, s := range c.shards {
		s.mu.Lock()
		total += len(s.entries)
		s.mu.Unlock()
	}
	return total
}

// Stats returns a snapshot of the counters.
func (c *ShardedCache[K, V]) Stats() Stats {
	hits := c.hits.Load()
	misses := c.misses.Load()

	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return Stats{
		Len:           c.Len(),
		Capacity:      c.capacity,
		TotalCapacity: c.capacity * DefaultShardCount,
		Hits:          hits,
		Misses:        misses,
		HitRate:       hitRate,
		Evictions:     c.evictions.Load(),
	}
}
