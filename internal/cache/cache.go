// internal/cache/cache.go
package cache

import "time"

// Cache defines the interface for scrape-result caching implementations.
//
// Entries expire lazily: an entry older than the cache TTL is treated as
// absent at read time and only physically removed by Sweep or Clear.
// Storage failures are never surfaced to callers - a broken cache behaves
// like an empty one, since caching is purely a performance optimization.
//
// Implementations:
//   - MemoryCache: in-process map, lost on restart
//   - FileCache: one JSON file per key, survives restarts
type Cache interface {
	// Get returns the payload stored under key if it is still fresh.
	Get(key string) ([]byte, bool)

	// Set stores a payload under key with a fresh timestamp. Last write wins.
	Set(key string, payload []byte) error

	// Clear removes entries whose key starts with prefix; an empty prefix
	// removes everything. Returns the number of entries removed.
	Clear(prefix string) int

	// Sweep physically removes expired entries and returns how many it dropped.
	Sweep() int

	// Stats reports entry count, payload bytes, and hit/miss counters.
	Stats() Stats

	// Close releases any underlying resources.
	Close()
}

// Stats holds cache introspection counters for operational visibility.
type Stats struct {
	Entries int    `json:"entries"`
	Bytes   int64  `json:"bytes"`
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
}

type entry struct {
	CreatedAt time.Time `json:"created_at"`
	Payload   []byte    `json:"payload"`
}

func (e *entry) expired(ttl time.Duration, now time.Time) bool {
	return now.Sub(e.CreatedAt) > ttl
}
