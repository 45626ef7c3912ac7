package adapter

import (
	"github.com/marketlens/scout/internal/browser"
	"github.com/marketlens/scout/internal/ratelimit"
	"github.com/marketlens/scout/pkg/models"
)

// NewAll builds one adapter per supported marketplace, all sharing the same
// browser pool, rate limiter and driver tuning.
func NewAll(pool *browser.Pool, limiter ratelimit.RateLimiter, opts Options) []*Scraper {
	profiles := []Profile{
		DanggeunProfile(),
		BunjangProfile(),
		JunggonaraProfile(),
		CoupangProfile(),
	}
	scrapers := make([]*Scraper, 0, len(profiles))
	for _, p := range profiles {
		scrapers = append(scrapers, NewScraper(p, pool, limiter, opts))
	}
	return scrapers
}

// BySource returns the adapter serving the given marketplace, or nil.
func BySource(adapters []*Scraper, src models.Source) *Scraper {
	for _, a := range adapters {
		if a.Source() == src {
			return a
		}
	}
	return nil
}
