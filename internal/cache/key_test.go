package cache

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeyDeterministic(t *testing.T) {
	type params struct {
		Query string `json:"query"`
		Limit int    `json:"limit"`
	}

	k1 := Key("danggeun", "search", params{Query: "laptop", Limit: 20})
	k2 := Key("danggeun", "search", params{Query: "laptop", Limit: 20})
	require.Equal(t, k1, k2)
}

func TestKeyFieldOrderIndependent(t *testing.T) {
	// Structurally equal params must hash identically regardless of the
	// order in which fields were declared or provided.
	m1 := map[string]any{"query": "laptop", "limit": 20}
	m2 := map[string]any{"limit": 20, "query": "laptop"}

	type a struct {
		Query string `json:"query"`
		Limit int    `json:"limit"`
	}
	type b struct {
		Limit int    `json:"limit"`
		Query string `json:"query"`
	}

	require.Equal(t, Key("s", "search", m1), Key("s", "search", m2))
	require.Equal(t,
		Key("s", "search", a{Query: "laptop", Limit: 20}),
		Key("s", "search", b{Limit: 20, Query: "laptop"}))
}

func TestKeyDistinguishesTriples(t *testing.T) {
	base := Key("danggeun", "search", map[string]any{"query": "laptop"})

	require.NotEqual(t, base, Key("bunjang", "search", map[string]any{"query": "laptop"}))
	require.NotEqual(t, base, Key("danggeun", "detail", map[string]any{"query": "laptop"}))
	require.NotEqual(t, base, Key("danggeun", "search", map[string]any{"query": "phone"}))
}

func TestKeyHasReadablePrefix(t *testing.T) {
	k := Key("coupang", "search", nil)
	require.Regexp(t, `^coupang:search:[0-9a-f]{64}$`, k)
}
