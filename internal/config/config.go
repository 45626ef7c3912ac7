package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Config holds application configuration values
type Config struct {
	// Logging
	LogLevel string
	JSONLog  bool

	// Browser pool
	MaxBrowsers      int
	BrowserHeadless  bool
	ChromePath       string
	PoolPollInterval time.Duration
	Proxies          []string

	// Adapter timing
	NavTimeout      time.Duration
	SelectorTimeout time.Duration
	ScrollSteps     int
	ScrollDelay     time.Duration
	SettleDelay     time.Duration

	// Retry policy
	MaxRetries     int
	RetryBaseDelay time.Duration

	// Caching
	SearchCacheTTL   time.Duration
	AnalysisCacheTTL time.Duration
	CacheDir         string

	// Marketplace specifics
	Region       string
	Locale       string
	ExtraHeaders []string

	// Per-source rate limiting
	SourceRateRPS   float64
	SourceRateBurst int

	// Market analysis
	PriceNoiseFloor int64

	// Passive listing store; empty means in-memory
	DatabaseURL string
}

// Load builds a Config by combining defaults, an optional .env file,
// environment variables, and CLI flags. Caller should pass the root
// *cobra.Command so flags can be read.
func Load(cmd *cobra.Command) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using system environment")
	}

	cfg := &Config{
		LogLevel:         DefaultLogLevel,
		JSONLog:          DefaultJSONLog,
		MaxBrowsers:      DefaultMaxBrowsers,
		BrowserHeadless:  DefaultBrowserHeadless,
		PoolPollInterval: DefaultPoolPollInterval,
		NavTimeout:       DefaultNavTimeout,
		SelectorTimeout:  DefaultSelectorTimeout,
		ScrollSteps:      DefaultScrollSteps,
		ScrollDelay:      DefaultScrollDelay,
		SettleDelay:      DefaultSettleDelay,
		MaxRetries:       DefaultMaxRetries,
		RetryBaseDelay:   DefaultRetryBaseDelay,
		SearchCacheTTL:   DefaultSearchCacheTTL,
		AnalysisCacheTTL: DefaultAnalysisCacheTTL,
		Region:           DefaultRegion,
		Locale:           DefaultLocale,
		SourceRateRPS:    DefaultSourceRateRPS,
		SourceRateBurst:  DefaultSourceRateBurst,
		PriceNoiseFloor:  DefaultPriceNoiseFloor,
	}

	// Override from environment variables
	if v := os.Getenv("SCOUT_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("SCOUT_MAX_BROWSERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxBrowsers = n
		}
	}
	if v := os.Getenv("SCOUT_CHROME_PATH"); v != "" {
		cfg.ChromePath = v
	}
	if v := os.Getenv("SCOUT_HEADLESS"); v != "" {
		cfg.BrowserHeadless = v != "false" && v != "0"
	}
	if v := os.Getenv("SCOUT_PROXIES"); v != "" {
		cfg.Proxies = splitList(v)
	}
	if v := os.Getenv("SCOUT_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxRetries = n
		}
	}
	if v := os.Getenv("SCOUT_RETRY_BASE_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.RetryBaseDelay = d
		}
	}
	if v := os.Getenv("SCOUT_NAV_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.NavTimeout = d
		}
	}
	if v := os.Getenv("SCOUT_SEARCH_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.SearchCacheTTL = d
		}
	}
	if v := os.Getenv("SCOUT_ANALYSIS_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.AnalysisCacheTTL = d
		}
	}
	if v := os.Getenv("SCOUT_CACHE_DIR"); v != "" {
		cfg.CacheDir = v
	}
	if v := os.Getenv("SCOUT_REGION"); v != "" {
		cfg.Region = v
	}
	if v := os.Getenv("SCOUT_LOCALE"); v != "" {
		cfg.Locale = v
	}
	if v := os.Getenv("SCOUT_EXTRA_HEADERS"); v != "" {
		cfg.ExtraHeaders = splitList(v)
	}
	if v := os.Getenv("SCOUT_DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}

	// Read CLI flags if provided
	if cmd != nil {
		if f := cmd.Flags().Lookup("chrome-path"); f != nil {
			if s := f.Value.String(); s != "" {
				cfg.ChromePath = s
			}
		}
		if f := cmd.Flags().Lookup("region"); f != nil {
			if s := f.Value.String(); s != "" {
				cfg.Region = s
			}
		}
		if f := cmd.Flags().Lookup("json"); f != nil {
			if f.Value.String() == "true" {
				cfg.JSONLog = true
			}
		}
		if f := cmd.Flags().Lookup("verbose"); f != nil {
			if f.Value.String() == "true" {
				cfg.LogLevel = "debug"
			}
		}
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
