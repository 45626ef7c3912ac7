package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

// FileCache implements result caching with one JSON file per key, so cached
// scrapes survive process restarts. All I/O errors degrade to cache misses.
type FileCache struct {
	dir    string
	ttl    time.Duration
	mu     sync.Mutex // serializes writers to the same key
	hits   atomic.Uint64
	misses atomic.Uint64
}

type fileEnvelope struct {
	Key       string    `json:"key"`
	CreatedAt time.Time `json:"created_at"`
	Payload   []byte    `json:"payload"`
}

// NewFileCache creates a file-backed cache rooted at dir.
func NewFileCache(dir string, ttl time.Duration) (*FileCache, error) {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir, ttl: ttl}, nil
}

// Get returns the payload stored under key if it is still fresh.
func (fc *FileCache) Get(key string) ([]byte, bool) {
	raw, err := os.ReadFile(fc.path(key))
	if err != nil {
		fc.misses.Add(1)
		return nil, false
	}

	var env fileEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Warn().Str("key", key).Err(err).Msg("Corrupt cache file, treating as miss")
		fc.misses.Add(1)
		return nil, false
	}
	if time.Since(env.CreatedAt) > fc.ttl {
		fc.misses.Add(1)
		return nil, false
	}
	fc.hits.Add(1)
	return env.Payload, true
}

// Set stores a payload under key with a fresh timestamp. Write failures are
// logged and swallowed.
func (fc *FileCache) Set(key string, payload []byte) error {
	env := fileEnvelope{Key: key, CreatedAt: time.Now(), Payload: payload}
	raw, err := json.Marshal(env)
	if err != nil {
		log.Warn().Str("key", key).Err(err).Msg("Cache encode failed")
		return nil
	}

	fc.mu.Lock()
	defer fc.mu.Unlock()
	if err := os.WriteFile(fc.path(key), raw, 0644); err != nil {
		log.Warn().Str("key", key).Err(err).Msg("Cache write failed")
	}
	return nil
}

// Clear removes entries whose key starts with prefix.
func (fc *FileCache) Clear(prefix string) int {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	count := 0
	for _, env := range fc.scan() {
		if prefix == "" || strings.HasPrefix(env.Key, prefix) {
			if os.Remove(fc.path(env.Key)) == nil {
				count++
			}
		}
	}
	return count
}

// Sweep physically removes expired entries.
func (fc *FileCache) Sweep() int {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	now := time.Now()
	count := 0
	for _, env := range fc.scan() {
		if now.Sub(env.CreatedAt) > fc.ttl {
			if os.Remove(fc.path(env.Key)) == nil {
				count++
			}
		}
	}
	return count
}

// Stats reports entry count, payload bytes, and hit/miss counters.
func (fc *FileCache) Stats() Stats {
	var bytes int64
	entries := 0
	for _, env := range fc.scan() {
		entries++
		bytes += int64(len(env.Payload))
	}
	return Stats{
		Entries: entries,
		Bytes:   bytes,
		Hits:    fc.hits.Load(),
		Misses:  fc.misses.Load(),
	}
}

// Close is a no-op for the file cache.
func (fc *FileCache) Close() {}

func (fc *FileCache) path(key string) string {
	// Keys are "source:action:hex"; ':' is not portable in filenames.
	return filepath.Join(fc.dir, strings.ReplaceAll(key, ":", "-")+".json")
}

func (fc *FileCache) scan() []fileEnvelope {
	matches, err := filepath.Glob(filepath.Join(fc.dir, "*.json"))
	if err != nil {
		return nil
	}
	var envs []fileEnvelope
	for _, m := range matches {
		raw, err := os.ReadFile(m)
		if err != nil {
			continue
		}
		var env fileEnvelope
		if json.Unmarshal(raw, &env) == nil && env.Key != "" {
			envs = append(envs, env)
		}
	}
	return envs
}
