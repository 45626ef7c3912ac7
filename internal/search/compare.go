package search

import (
	"context"
	"math"

	"github.com/marketlens/scout/pkg/models"
)

// Compare runs a full-source search and summarizes average prices per
// marketplace, naming the cheapest second-hand source as the best deal and
// measuring savings against the reference marketplace's average.
func (s *Service) Compare(ctx context.Context, query string, opts Options) (*models.Comparison, error) {
	opts.Sources = nil // comparison always covers every source
	result, err := s.Search(ctx, query, opts)
	if err != nil {
		return nil, err
	}

	cmp := &models.Comparison{
		Query:   query,
		Sources: make(map[models.Source]models.SourceComparison),
	}

	for _, src := range models.AllSources {
		var (
			listings []models.Listing
			sum      int64
			priced   int64
		)
		for _, l := range result.Listings {
			if l.Source != src {
				continue
			}
			listings = append(listings, l)
			if l.Price > 0 {
				sum += l.Price
				priced++
			}
		}
		if len(listings) == 0 {
			continue
		}
		var avg int64
		if priced > 0 {
			avg = int64(math.Round(float64(sum) / float64(priced)))
		}
		cmp.Sources[src] = models.SourceComparison{AveragePrice: avg, Listings: listings}
	}

	for _, src := range models.AllSources {
		sc, ok := cmp.Sources[src]
		if !ok || src == models.ReferenceSource || sc.AveragePrice <= 0 {
			continue
		}
		if cmp.BestDealSource == "" || sc.AveragePrice < cmp.BestDealPrice {
			cmp.BestDealSource = src
			cmp.BestDealPrice = sc.AveragePrice
		}
	}

	if ref, ok := cmp.Sources[models.ReferenceSource]; ok {
		cmp.ReferencePrice = ref.AveragePrice
		if cmp.BestDealPrice > 0 && cmp.ReferencePrice > cmp.BestDealPrice {
			cmp.SavingsVsRetail = cmp.ReferencePrice - cmp.BestDealPrice
			cmp.SavingsPercent = float64(cmp.SavingsVsRetail) / float64(cmp.ReferencePrice) * 100
		}
	}
	return cmp, nil
}
