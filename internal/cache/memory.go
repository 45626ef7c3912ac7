package cache

import (
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// MemoryCache implements in-process result caching with lazy TTL expiry.
type MemoryCache struct {
	store  map[string]*entry
	mu     sync.RWMutex
	ttl    time.Duration
	hits   uint64
	misses uint64
}

// NewMemoryCache creates a new in-memory cache with the given TTL.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &MemoryCache{
		store: make(map[string]*entry),
		ttl:   ttl,
	}
}

// Get returns the payload stored under key if it is still fresh.
// Expired entries are treated as absent but left in place (lazy expiry).
func (mc *MemoryCache) Get(key string) ([]byte, bool) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	e, ok := mc.store[key]
	if !ok || e.expired(mc.ttl, time.Now()) {
		mc.misses++
		return nil, false
	}
	mc.hits++
	return e.Payload, true
}

// Set stores a payload under key with a fresh timestamp.
func (mc *MemoryCache) Set(key string, payload []byte) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.store[key] = &entry{CreatedAt: time.Now(), Payload: payload}
	log.Debug().Str("key", key).Int("bytes", len(payload)).Msg("Cached payload")
	return nil
}

// Clear removes entries whose key starts with prefix.
func (mc *MemoryCache) Clear(prefix string) int {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	count := 0
	for key := range mc.store {
		if prefix == "" || strings.HasPrefix(key, prefix) {
			delete(mc.store, key)
			count++
		}
	}
	log.Debug().Str("prefix", prefix).Int("removed", count).Msg("Cache cleared")
	return count
}

// Sweep physically removes expired entries.
func (mc *MemoryCache) Sweep() int {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	now := time.Now()
	count := 0
	for key, e := range mc.store {
		if e.expired(mc.ttl, now) {
			delete(mc.store, key)
			count++
		}
	}
	return count
}

// Stats reports entry count, payload bytes, and hit/miss counters.
func (mc *MemoryCache) Stats() Stats {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	var bytes int64
	for _, e := range mc.store {
		bytes += int64(len(e.Payload))
	}
	return Stats{
		Entries: len(mc.store),
		Bytes:   bytes,
		Hits:    mc.hits,
		Misses:  mc.misses,
	}
}

// Close is a no-op for the memory cache.
func (mc *MemoryCache) Close() {}
