package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/marketlens/scout/pkg/models"
)

// MemoryStore is the in-process archive used when no database is configured.
type MemoryStore struct {
	mu       sync.RWMutex
	listings map[string]models.Listing // keyed by source + product URL
	order    []string
}

// NewMemoryStore creates an empty in-memory listing archive.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{listings: make(map[string]models.Listing)}
}

func storeKey(l models.Listing) string {
	return string(l.Source) + "\x00" + l.ProductURL
}

// UpsertMany records listings not already present. Existing records win.
func (m *MemoryStore) UpsertMany(_ context.Context, listings []models.Listing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range listings {
		if l.ProductURL == "" {
			continue
		}
		k := storeKey(l)
		if _, ok := m.listings[k]; ok {
			continue
		}
		m.listings[k] = l
		m.order = append(m.order, k)
	}
	return nil
}

// Find returns stored listings matching q, insertion-ordered unless
// SortByPrice is set.
func (m *MemoryStore) Find(_ context.Context, q Query) ([]models.Listing, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.Listing
	for _, k := range m.order {
		l := m.listings[k]
		if !matches(l, q) {
			continue
		}
		out = append(out, l)
	}
	if q.SortByPrice {
		sort.Slice(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

// FindByURL returns the stored listing with the given product URL, or nil.
func (m *MemoryStore) FindByURL(_ context.Context, productURL string) (*models.Listing, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, l := range m.listings {
		if l.ProductURL == productURL {
			found := l
			return &found, nil
		}
	}
	return nil, nil
}

// Close is a no-op for the in-memory archive.
func (m *MemoryStore) Close() error { return nil }

// Len returns the number of stored listings.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.listings)
}

func matches(l models.Listing, q Query) bool {
	if q.Source != "" && l.Source != q.Source {
		return false
	}
	if q.ExcludeURL != "" && l.ProductURL == q.ExcludeURL {
		return false
	}
	if q.MinPrice > 0 && l.Price < q.MinPrice {
		return false
	}
	if q.MaxPrice > 0 && l.Price > q.MaxPrice {
		return false
	}
	if len(q.TitleTokens) > 0 {
		title := strings.ToLower(l.Title)
		for _, tok := range q.TitleTokens {
			if !strings.Contains(title, strings.ToLower(tok)) {
				return false
			}
		}
	}
	return true
}
