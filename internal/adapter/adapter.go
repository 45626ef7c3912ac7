// Package adapter implements per-marketplace extraction units. Every
// marketplace shares one state-machine driver (Init, Navigate, WaitForContent,
// Scroll/Settle, Extract, Close); what differs between sources is captured in
// a Profile value, not in control flow.
package adapter

import (
	"context"
	"time"

	"github.com/marketlens/scout/internal/retry"
	"github.com/marketlens/scout/internal/urlutil"
	"github.com/marketlens/scout/pkg/models"
)

// Adapter searches one marketplace for product listings.
//
// Search is best-effort: it returns at most limit listings, an empty slice
// is a valid success, and implementations backed by the shared driver never
// return an error for extraction failures - they degrade to empty after
// retries are exhausted.
type Adapter interface {
	Source() models.Source
	Search(ctx context.Context, query string, limit int) ([]models.Listing, error)
}

// Profile is the capability set of one marketplace: URLs, selector fallback
// chains per field, and parsing quirks. Selector lists are tried in priority
// order; marketplaces restyle markup frequently, so every field carries
// alternatives.
type Profile struct {
	Source  models.Source
	BaseURL string

	// SearchURL builds the source-specific search URL. Region is folded in
	// only by sources that scope results geographically.
	SearchURL func(query, region string) string

	// Mobile requests the mobile layout (viewport and user agent).
	Mobile bool

	WaitSelectors     []string
	ItemSelectors     []string
	TitleSelectors    []string
	PriceSelectors    []string
	ImageSelectors    []string
	LinkSelectors     []string
	LocationSelectors []string

	// DecimalPrices marks sources that render prices as decimal strings;
	// the fractional part is truncated before digit extraction.
	DecimalPrices bool

	// StateGlobals lists window globals probed by the inline-script
	// fallback when CSS extraction yields nothing.
	StateGlobals []string

	// ProductPathTemplate turns a bare product id from captured state into
	// a relative product URL, e.g. "/products/%v".
	ProductPathTemplate string

	// Detail describes the product detail page; nil when the source has no
	// detail support.
	Detail *DetailProfile
}

// DetailProfile holds the selector chains for a product detail page.
type DetailProfile struct {
	WaitSelectors        []string
	TitleSelectors       []string
	PriceSelectors       []string
	DescriptionSelectors []string
	SellerSelectors      []string
	ImageSelectors       []string
}

// Options carries the shared driver tuning, normally derived from config.
type Options struct {
	Retry           retry.Config
	NavTimeout      time.Duration
	SelectorTimeout time.Duration
	ScrollSteps     int
	ScrollDelay     time.Duration
	SettleDelay     time.Duration
	Locale          string
	Region          string
	ExtraHeaders    map[string]string
}

// DefaultOptions returns driver tuning matching the documented defaults.
func DefaultOptions() Options {
	return Options{
		Retry:           retry.DefaultConfig(),
		NavTimeout:      20 * time.Second,
		SelectorTimeout: 5 * time.Second,
		ScrollSteps:     3,
		ScrollDelay:     400 * time.Millisecond,
		SettleDelay:     time.Second,
		Locale:          "ko-KR,ko;q=0.9,en-US;q=0.8",
	}
}

// ByURL finds the adapter whose marketplace hosts the given product URL.
func ByURL(adapters []*Scraper, rawURL string) *Scraper {
	host := urlutil.Host(rawURL)
	if host == "" {
		return nil
	}
	for _, a := range adapters {
		if urlutil.Host(a.profile.BaseURL) == host {
			return a
		}
	}
	return nil
}
