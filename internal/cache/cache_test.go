package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryCacheRoundTrip(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	defer c.Close()

	key := Key("danggeun", "search", map[string]any{"query": "laptop"})
	require.NoError(t, c.Set(key, []byte(`[{"title":"laptop"}]`)))

	got, ok := c.Get(key)
	require.True(t, ok)
	require.Equal(t, []byte(`[{"title":"laptop"}]`), got)
}

func TestMemoryCacheLazyExpiry(t *testing.T) {
	c := NewMemoryCache(10 * time.Millisecond)
	defer c.Close()

	require.NoError(t, c.Set("k", []byte("v")))
	time.Sleep(20 * time.Millisecond)

	_, ok := c.Get("k")
	require.False(t, ok, "expired entry must read as absent")
	// Lazy expiry: the entry is still physically present until swept.
	require.Equal(t, 1, c.Stats().Entries)
	require.Equal(t, 1, c.Sweep())
	require.Equal(t, 0, c.Stats().Entries)
}

func TestMemoryCacheClearPrefix(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	defer c.Close()

	require.NoError(t, c.Set("danggeun:search:aaa", []byte("1")))
	require.NoError(t, c.Set("danggeun:search:bbb", []byte("2")))
	require.NoError(t, c.Set("coupang:search:ccc", []byte("3")))

	require.Equal(t, 2, c.Clear("danggeun:"))
	require.Equal(t, 1, c.Stats().Entries)
}

func TestMemoryCacheLastWriteWins(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	defer c.Close()

	require.NoError(t, c.Set("k", []byte("old")))
	require.NoError(t, c.Set("k", []byte("new")))

	got, ok := c.Get("k")
	require.True(t, ok)
	require.Equal(t, []byte("new"), got)
}

func TestFileCacheRoundTrip(t *testing.T) {
	c, err := NewFileCache(t.TempDir(), time.Minute)
	require.NoError(t, err)
	defer c.Close()

	key := Key("bunjang", "search", map[string]any{"query": "iphone", "limit": 5})
	require.NoError(t, c.Set(key, []byte(`payload`)))

	got, ok := c.Get(key)
	require.True(t, ok)
	require.Equal(t, []byte(`payload`), got)

	stats := c.Stats()
	require.Equal(t, 1, stats.Entries)
	require.Equal(t, uint64(1), stats.Hits)
}

func TestFileCacheExpiryAndSweep(t *testing.T) {
	c, err := NewFileCache(t.TempDir(), 10*time.Millisecond)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Set("k", []byte("v")))
	time.Sleep(20 * time.Millisecond)

	_, ok := c.Get("k")
	require.False(t, ok)
	require.Equal(t, 1, c.Sweep())
	require.Equal(t, 0, c.Stats().Entries)
}

func TestFileCacheClearPrefix(t *testing.T) {
	c, err := NewFileCache(t.TempDir(), time.Minute)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Set("danggeun:search:aaa", []byte("1")))
	require.NoError(t, c.Set("coupang:search:bbb", []byte("2")))

	require.Equal(t, 1, c.Clear("danggeun:"))
	require.Equal(t, 1, c.Stats().Entries)
}
