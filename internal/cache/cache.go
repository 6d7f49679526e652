// Package cache memoizes work keyed by the content it was derived from.
//
// The pipeline uses it so an input whose bytes were already parsed under the
// same grammar settings is not parsed again:
//
//	c := cache.New[Parsed]()
//	key := cache.Key([]byte(settings), src)
//	if v, ok := c.Get(key); ok {
//	    // reuse v
//	}
package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"sync"
)

// Key hashes parts into a cache key. Each part is length-prefixed, so
// ("ab", "c") and ("a", "bc") produce different keys.
func Key(parts ...[]byte) string {
	h := sha256.New()
	var n [8]byte
	for _, p := range parts {
		binary.BigEndian.PutUint64(n[:], uint64(len(p)))
		h.Write(n[:])
		h.Write(p)
	}
	sum := h.Sum(nil)
	return hex.EncodeToString(sum[:16]) // first 128 bits
}

// Stats counts lookups.
type Stats struct {
	Hits   int
	Misses int
}

// Memory is a concurrency-safe in-memory cache. The zero value is not
// usable; call New.
type Memory[V any] struct {
	mu    sync.RWMutex
	items map[string]V
	stats Stats
}

// New creates an empty cache.
func New[V any]() *Memory[V] {
	return &Memory[V]{items: make(map[string]V)}
}

// Get returns the value stored under key.
func (m *Memory[V]) Get(key string) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.items[key]
	if ok {
		m.stats.Hits++
	} else {
		m.stats.Misses++
	}
	return v, ok
}

// Set stores v under key, replacing any previous value.
func (m *Memory[V]) Set(key string, v V) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items[key] = v
}

// Delete removes key.
func (m *Memory[V]) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.items, key)
}

// Clear removes every entry. Stats are kept.
func (m *Memory[V]) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	clear(m.items)
}

// Len returns the number of entries.
func (m *Memory[V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.items)
}

// Stats returns the lookup counters.
func (m *Memory[V]) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.stats
}
