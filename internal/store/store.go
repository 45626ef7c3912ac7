// Package store persists captured listings so market analysis can draw on
// prior scrapes instead of hitting marketplaces live every time.
package store

import (
	"context"

	"github.com/marketlens/scout/pkg/models"
)

// Query selects stored listings for analysis. TitleTokens are matched
// case-insensitively as substrings; a listing matches when every token
// appears in its title.
type Query struct {
	Source      models.Source
	TitleTokens []string
	MinPrice    int64
	MaxPrice    int64
	ExcludeURL  string
	Limit       int
	SortByPrice bool
}

// Store is the passive listing archive. UpsertMany is best-effort and
// append-only: a (source, product URL) pair already present is left
// untouched, so stored captures are never mutated.
type Store interface {
	Find(ctx context.Context, q Query) ([]models.Listing, error)
	FindByURL(ctx context.Context, productURL string) (*models.Listing, error)
	UpsertMany(ctx context.Context, listings []models.Listing) error
	Close() error
}
