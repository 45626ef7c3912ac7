package market

import (
	"context"
	"encoding/json"
	"math"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/marketlens/scout/internal/cache"
	"github.com/marketlens/scout/internal/store"
	"github.com/marketlens/scout/pkg/models"
)

// minComparables is the evidence threshold: gathering stops at the first
// step that yields at least this many comparable listings.
const minComparables = 2

// comparableLimit caps how many comparables are reported, ranked by price
// proximity to the subject.
const comparableLimit = 3

// liveSearchLimit bounds the live reference-source scrape in step two.
const liveSearchLimit = 10

// Searcher is the live reference-marketplace lookup, satisfied by the
// reference-source adapter.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]models.Listing, error)
}

// Analyzer derives market analyses from archived and live reference-source
// listings. Results are cached under the subject's title; market conditions
// move slowly relative to request volume.
type Analyzer struct {
	store      store.Store
	reference  Searcher
	cache      cache.Cache
	noiseFloor int64
}

// NewAnalyzer builds a market analyzer. reference may be nil, in which case
// the live-scrape step is skipped; resultCache may be nil to disable caching.
func NewAnalyzer(st store.Store, reference Searcher, resultCache cache.Cache, noiseFloor int64) *Analyzer {
	if noiseFloor <= 0 {
		noiseFloor = 1000
	}
	return &Analyzer{store: st, reference: reference, cache: resultCache, noiseFloor: noiseFloor}
}

// Analyze produces a market analysis for the subject listing. Comparable
// evidence is gathered in priority order: archived token match, live
// reference scrape, archived category match; with zero evidence the result
// is a category-factor estimate flagged as such.
func (a *Analyzer) Analyze(ctx context.Context, subject models.Listing) (*models.MarketAnalysis, error) {
	key := cache.Key("market", "analysis", map[string]string{"title": subject.Title})
	if a.cache != nil {
		if payload, ok := a.cache.Get(key); ok {
			var cached models.MarketAnalysis
			if err := json.Unmarshal(payload, &cached); err == nil {
				log.Debug().Str("title", subject.Title).Msg("Market analysis served from cache")
				return &cached, nil
			}
		}
	}

	comparables, err := a.gatherComparables(ctx, subject)
	if err != nil {
		return nil, err
	}

	var analysis *models.MarketAnalysis
	if len(comparables) == 0 {
		analysis = a.estimate(subject)
	} else {
		analysis = reconcile(subject, comparables)
	}

	if a.cache != nil {
		if payload, err := json.Marshal(analysis); err == nil {
			_ = a.cache.Set(key, payload)
		}
	}
	return analysis, nil
}

func (a *Analyzer) gatherComparables(ctx context.Context, subject models.Listing) ([]models.Listing, error) {
	tokens := SignificantTokens(subject.Title)
	if len(tokens) == 0 {
		return nil, nil
	}

	baseQuery := store.Query{
		Source:      models.ReferenceSource,
		TitleTokens: tokens,
		MinPrice:    a.noiseFloor + 1,
		ExcludeURL:  subject.ProductURL,
	}
	comparables, err := a.store.Find(ctx, baseQuery)
	if err != nil {
		return nil, err
	}
	if len(comparables) >= minComparables {
		return comparables, nil
	}

	if a.reference != nil {
		scraped, err := a.reference.Search(ctx, strings.Join(tokens, " "), liveSearchLimit)
		if err != nil {
			log.Warn().Err(err).Msg("Live reference scrape failed, continuing with archive only")
		} else if len(scraped) > 0 {
			if err := a.store.UpsertMany(ctx, scraped); err != nil {
				log.Warn().Err(err).Msg("Failed to archive scraped reference listings")
			}
			comparables = mergeComparables(comparables, scraped, subject, a.noiseFloor)
		}
	}
	if len(comparables) >= minComparables {
		return comparables, nil
	}

	if term := CategoryTerm(subject.Title); term != "" {
		broadened, err := a.store.Find(ctx, store.Query{
			Source:      models.ReferenceSource,
			TitleTokens: []string{term},
			MinPrice:    a.noiseFloor + 1,
			ExcludeURL:  subject.ProductURL,
		})
		if err != nil {
			return nil, err
		}
		comparables = mergeComparables(comparables, broadened, subject, a.noiseFloor)
	}
	return comparables, nil
}

// mergeComparables folds extra listings into base, deduplicating by product
// URL and dropping the subject itself plus noise-floor prices.
func mergeComparables(base, extra []models.Listing, subject models.Listing, noiseFloor int64) []models.Listing {
	seen := make(map[string]bool, len(base))
	for _, l := range base {
		seen[l.ProductURL] = true
	}
	for _, l := range extra {
		if l.Price <= noiseFloor || l.ProductURL == subject.ProductURL || seen[l.ProductURL] {
			continue
		}
		seen[l.ProductURL] = true
		base = append(base, l)
	}
	return base
}

// reconcile computes the evidence-backed analysis: median market price and
// the closest comparables by price distance.
func reconcile(subject models.Listing, comparables []models.Listing) *models.MarketAnalysis {
	prices := make([]int64, len(comparables))
	for i, l := range comparables {
		prices[i] = l.Price
	}
	marketPrice := median(prices)

	disparity := subject.Price - marketPrice
	if disparity < 0 {
		disparity = -disparity
	}
	var pct float64
	if marketPrice > 0 {
		pct = float64(disparity) / float64(marketPrice) * 100
	}

	ranked := make([]models.Listing, len(comparables))
	copy(ranked, comparables)
	sort.SliceStable(ranked, func(i, j int) bool {
		return priceDistance(ranked[i], subject) < priceDistance(ranked[j], subject)
	})
	if len(ranked) > comparableLimit {
		ranked = ranked[:comparableLimit]
	}

	return &models.MarketAnalysis{
		MarketPrice:         marketPrice,
		Disparity:           disparity,
		DisparityPercentage: pct,
		IsLowerThanMarket:   subject.Price < marketPrice,
		Comparables:         ranked,
	}
}

// estimate is the zero-evidence fallback: derive the market price from the
// subject's own price and its category factor. A reference-source subject is
// retail, so second-hand value is assumed lower; any other subject is
// second-hand, so retail is assumed higher.
func (a *Analyzer) estimate(subject models.Listing) *models.MarketAnalysis {
	factor := FactorFor(subject.Title)
	var marketPrice int64
	if subject.Source == models.ReferenceSource {
		marketPrice = int64(math.Round(float64(subject.Price) * factor))
	} else if factor > 0 {
		marketPrice = int64(math.Round(float64(subject.Price) / factor))
	}

	disparity := subject.Price - marketPrice
	if disparity < 0 {
		disparity = -disparity
	}
	var pct float64
	if marketPrice > 0 {
		pct = float64(disparity) / float64(marketPrice) * 100
	}

	log.Debug().
		Str("title", subject.Title).
		Float64("factor", factor).
		Int64("estimate", marketPrice).
		Msg("Market price estimated from category factor")

	return &models.MarketAnalysis{
		MarketPrice:         marketPrice,
		Disparity:           disparity,
		DisparityPercentage: pct,
		IsLowerThanMarket:   subject.Price < marketPrice,
		Comparables:         []models.Listing{},
		Estimated:           true,
	}
}

// median returns the middle price; an even count takes the rounded mean of
// the two middle values.
func median(prices []int64) int64 {
	if len(prices) == 0 {
		return 0
	}
	sorted := make([]int64, len(prices))
	copy(sorted, prices)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return int64(math.Round(float64(sorted[mid-1]+sorted[mid]) / 2))
}

func priceDistance(l, subject models.Listing) int64 {
	d := l.Price - subject.Price
	if d < 0 {
		return -d
	}
	return d
}
