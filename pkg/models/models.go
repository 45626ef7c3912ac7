// pkg/models/models.go
package models

import "time"

// Source identifies a supported marketplace.
type Source string

const (
	SourceDanggeun   Source = "danggeun"
	SourceBunjang    Source = "bunjang"
	SourceJunggonara Source = "junggonara"
	SourceCoupang    Source = "coupang"
)

// ReferenceSource is the retail marketplace used as the market-price baseline.
const ReferenceSource = SourceCoupang

// AllSources lists every supported marketplace in display order.
var AllSources = []Source{SourceDanggeun, SourceBunjang, SourceJunggonara, SourceCoupang}

// Valid reports whether s names a supported marketplace.
func (s Source) Valid() bool {
	for _, known := range AllSources {
		if s == known {
			return true
		}
	}
	return false
}

// Listing is a normalized product record captured by an adapter.
// ProductURL is the natural key within a source; listings are never mutated
// after capture - a re-scrape produces a new value.
type Listing struct {
	Source     Source    `json:"source"`
	Title      string    `json:"title"`
	Price      int64     `json:"price"` // 0 when the price text was unparseable
	PriceText  string    `json:"price_text"`
	ImageURL   string    `json:"image_url,omitempty"`
	ProductURL string    `json:"product_url"`
	Location   string    `json:"location,omitempty"`
	Condition  string    `json:"condition,omitempty"`
	SellerName string    `json:"seller_name,omitempty"`
	CapturedAt time.Time `json:"captured_at"`
}

// SearchFilters narrows a combined search result after extraction.
// Zero values mean "no bound".
type SearchFilters struct {
	PriceMin int64 `json:"price_min,omitempty"`
	PriceMax int64 `json:"price_max,omitempty"`
}

// Matches reports whether l passes the price-range filter.
// Listings without a parsed price are kept; filtering is best-effort.
func (f SearchFilters) Matches(l Listing) bool {
	if l.Price == 0 {
		return true
	}
	if f.PriceMin > 0 && l.Price < f.PriceMin {
		return false
	}
	if f.PriceMax > 0 && l.Price > f.PriceMax {
		return false
	}
	return true
}

// SearchResult is the combined, partially-failed-tolerant outcome of a
// multi-source search. Errors holds one message per source that failed
// outright; an empty listing slice with no error entry means the source
// genuinely returned nothing.
type SearchResult struct {
	Query    string            `json:"query"`
	Listings []Listing         `json:"listings"`
	Errors   map[Source]string `json:"errors,omitempty"`
}

// MarketAnalysis compares one listing against the reference marketplace.
// Estimated is set when no comparable listings were found and the market
// price was derived from the category factor table instead of evidence.
type MarketAnalysis struct {
	MarketPrice         int64     `json:"market_price"`
	Disparity           int64     `json:"disparity"`
	DisparityPercentage float64   `json:"disparity_percentage"`
	IsLowerThanMarket   bool      `json:"is_lower_than_market"`
	Comparables         []Listing `json:"comparable_listings"`
	Estimated           bool      `json:"estimated"`
}

// ProductDetail is a single product page capture. Description holds the
// seller's free-form text converted to markdown.
type ProductDetail struct {
	Listing
	Description string   `json:"description,omitempty"`
	Images      []string `json:"images,omitempty"`
}

// SourceComparison summarizes one source's share of a comparison query.
type SourceComparison struct {
	AveragePrice int64     `json:"average_price"`
	Listings     []Listing `json:"listings"`
}

// Comparison is the per-source price summary for one query, with the
// cheapest average highlighted as the best deal.
type Comparison struct {
	Query           string                      `json:"query"`
	Sources         map[Source]SourceComparison `json:"sources"`
	BestDealSource  Source                      `json:"best_deal_source,omitempty"`
	BestDealPrice   int64                       `json:"best_deal_price,omitempty"`
	ReferencePrice  int64                       `json:"reference_price,omitempty"`
	SavingsVsRetail int64                       `json:"savings_vs_retail,omitempty"`
	SavingsPercent  float64                     `json:"savings_percent,omitempty"`
}
