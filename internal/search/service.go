// Package search fans a query out across every marketplace adapter and
// merges the partial results into one combined answer.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/marketlens/scout/internal/adapter"
	"github.com/marketlens/scout/internal/cache"
	"github.com/marketlens/scout/internal/store"
	"github.com/marketlens/scout/pkg/models"
)

// Options configures one orchestrated search.
type Options struct {
	Sources []models.Source
	Limit   int
	Filters models.SearchFilters

	// OnSourceDone fires as each adapter finishes, for progress display.
	// Called from adapter goroutines; implementations must be safe for
	// concurrent use.
	OnSourceDone func(source models.Source, count int, err error)
}

// Service orchestrates concurrent multi-source searches. Each adapter runs
// in its own goroutine; one source failing, hanging past its timeouts, or
// panicking never takes the others down.
type Service struct {
	adapters []adapter.Adapter
	cache    cache.Cache
	archive  store.Store
	region   string
}

// NewService builds a search orchestrator. resultCache and archive may be
// nil to disable caching and archiving respectively.
func NewService(adapters []adapter.Adapter, resultCache cache.Cache, archive store.Store, region string) *Service {
	return &Service{adapters: adapters, cache: resultCache, archive: archive, region: region}
}

type sourceOutcome struct {
	source   models.Source
	listings []models.Listing
	err      error
}

// Search runs the query against the requested sources concurrently and
// merges whatever arrives. The combined result is returned even when every
// source fails; per-source failures land in the Errors map.
func (s *Service) Search(ctx context.Context, query string, opts Options) (*models.SearchResult, error) {
	if query == "" {
		return nil, fmt.Errorf("query must not be empty")
	}
	if opts.Limit <= 0 {
		opts.Limit = 10
	}

	selected := s.selectAdapters(opts.Sources)
	if len(selected) == 0 {
		return nil, fmt.Errorf("no adapters match the requested sources")
	}

	outcomes := make(chan sourceOutcome, len(selected))
	var wg sync.WaitGroup
	for _, a := range selected {
		wg.Add(1)
		go func(a adapter.Adapter) {
			defer wg.Done()
			out := s.searchSource(ctx, a, query, opts.Limit)
			// Fired here, not after the merge, so progress tracks the
			// slowest source instead of jumping to done at the end.
			if opts.OnSourceDone != nil {
				opts.OnSourceDone(out.source, len(out.listings), out.err)
			}
			outcomes <- out
		}(a)
	}
	wg.Wait()
	close(outcomes)

	bySource := make(map[models.Source][]models.Listing)
	result := &models.SearchResult{Query: query, Listings: []models.Listing{}}
	for out := range outcomes {
		if out.err != nil {
			if result.Errors == nil {
				result.Errors = make(map[models.Source]string)
			}
			result.Errors[out.source] = out.err.Error()
		} else {
			bySource[out.source] = out.listings
		}
	}

	// Deterministic inter-source order for output; within one source the
	// extraction order is preserved.
	seen := make(map[string]bool)
	for _, src := range models.AllSources {
		for _, l := range bySource[src] {
			if !opts.Filters.Matches(l) {
				continue
			}
			if l.ProductURL != "" && seen[l.ProductURL] {
				continue
			}
			seen[l.ProductURL] = true
			result.Listings = append(result.Listings, l)
		}
	}

	if s.archive != nil && len(result.Listings) > 0 {
		if err := s.archive.UpsertMany(ctx, result.Listings); err != nil {
			log.Warn().Err(err).Msg("Failed to archive search results")
		}
	}

	log.Info().
		Str("query", query).
		Int("sources", len(selected)).
		Int("listings", len(result.Listings)).
		Int("failed_sources", len(result.Errors)).
		Msg("Search complete")
	return result, nil
}

// searchSource runs one adapter with cache wrapping and panic isolation.
func (s *Service) searchSource(ctx context.Context, a adapter.Adapter, query string, limit int) (out sourceOutcome) {
	out.source = a.Source()
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("source", string(out.source)).
				Any("panic", r).
				Msg("Adapter panicked")
			out.listings = nil
			out.err = fmt.Errorf("adapter panic: %v", r)
		}
	}()

	key := cache.Key(string(out.source), "search", map[string]any{
		"query":  query,
		"limit":  limit,
		"region": s.region,
	})
	if s.cache != nil {
		if payload, ok := s.cache.Get(key); ok {
			var cached []models.Listing
			if err := json.Unmarshal(payload, &cached); err == nil {
				log.Debug().Str("source", string(out.source)).Str("query", query).Msg("Search served from cache")
				out.listings = cached
				return out
			}
		}
	}

	listings, err := a.Search(ctx, query, limit)
	if err != nil {
		out.err = err
		return out
	}
	out.listings = listings

	if s.cache != nil {
		if payload, err := json.Marshal(listings); err == nil {
			_ = s.cache.Set(key, payload)
		}
	}
	return out
}

func (s *Service) selectAdapters(sources []models.Source) []adapter.Adapter {
	if len(sources) == 0 {
		return s.adapters
	}
	want := make(map[models.Source]bool, len(sources))
	for _, src := range sources {
		want[src] = true
	}
	var out []adapter.Adapter
	for _, a := range s.adapters {
		if want[a.Source()] {
			out = append(out, a)
		}
	}
	return out
}
