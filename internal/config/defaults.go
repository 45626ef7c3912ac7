package config

import "time"

// Default constants for application configuration
const (
	DefaultLogLevel = "info"
	DefaultJSONLog  = false

	// Browser pool
	DefaultMaxBrowsers      = 3
	DefaultMaxBrowserCap    = 10
	DefaultBrowserHeadless  = true
	DefaultPoolPollInterval = 500 * time.Millisecond

	// Adapter timing
	DefaultNavTimeout      = 20 * time.Second
	DefaultSelectorTimeout = 5 * time.Second
	DefaultScrollSteps     = 3
	DefaultScrollDelay     = 400 * time.Millisecond
	DefaultSettleDelay     = 1 * time.Second

	// Retry policy
	DefaultMaxRetries     = 3
	DefaultRetryBaseDelay = 500 * time.Millisecond

	// Caching
	DefaultSearchCacheTTL   = 30 * time.Minute
	DefaultAnalysisCacheTTL = 24 * time.Hour

	// Marketplace specifics
	DefaultRegion = "마장동-56"
	DefaultLocale = "ko-KR,ko;q=0.9,en-US;q=0.8"

	// Per-source rate limiting
	DefaultSourceRateRPS   = 1.0
	DefaultSourceRateBurst = 2

	// Listings priced below this are treated as noise in market analysis
	DefaultPriceNoiseFloor = 1000
)
