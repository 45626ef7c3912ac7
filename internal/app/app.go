// Package app wires the application's dependencies and manages their lifecycle.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/marketlens/scout/internal/adapter"
	"github.com/marketlens/scout/internal/browser"
	"github.com/marketlens/scout/internal/cache"
	"github.com/marketlens/scout/internal/config"
	"github.com/marketlens/scout/internal/export"
	"github.com/marketlens/scout/internal/headers"
	"github.com/marketlens/scout/internal/market"
	"github.com/marketlens/scout/internal/proxy"
	"github.com/marketlens/scout/internal/ratelimit"
	"github.com/marketlens/scout/internal/retry"
	"github.com/marketlens/scout/internal/search"
	"github.com/marketlens/scout/internal/store"
	"github.com/marketlens/scout/pkg/models"
)

// Application holds all long-lived dependencies. It is created once per CLI
// invocation and shared across commands; Close releases every resource.
type Application struct {
	Config        *config.Config
	Logger        *zerolog.Logger
	SearchCache   cache.Cache
	AnalysisCache cache.Cache
	BrowserPool   *browser.Pool
	RateLimiter   ratelimit.RateLimiter
	Archive       store.Store
	Adapters      []*adapter.Scraper
	Search        *search.Service
	Market        *market.Analyzer
	Images        *export.ImageExporter

	startTime time.Time
}

// New builds the full dependency graph from config. No browser is started
// here; sessions launch on the first acquire.
func New(ctx context.Context, cfg *config.Config) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	logger := newLogger(cfg)

	searchCache, analysisCache, err := newCaches(cfg)
	if err != nil {
		return nil, err
	}

	pool := browser.NewPool(browser.Options{
		MaxInstances: cfg.MaxBrowsers,
		Headless:     cfg.BrowserHeadless,
		ChromePath:   cfg.ChromePath,
		PollInterval: cfg.PoolPollInterval,
		Proxies:      proxy.NewPool(cfg.Proxies),
	})

	limiter := ratelimit.NewSourceLimiter(cfg.SourceRateRPS, cfg.SourceRateBurst)

	archive, err := newArchive(ctx, cfg)
	if err != nil {
		pool.Close()
		searchCache.Close()
		analysisCache.Close()
		return nil, err
	}

	adapters := adapter.NewAll(pool, limiter, adapter.Options{
		Retry: retry.Config{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   cfg.RetryBaseDelay,
			Multiplier:  2.0,
		},
		NavTimeout:      cfg.NavTimeout,
		SelectorTimeout: cfg.SelectorTimeout,
		ScrollSteps:     cfg.ScrollSteps,
		ScrollDelay:     cfg.ScrollDelay,
		SettleDelay:     cfg.SettleDelay,
		Locale:          cfg.Locale,
		Region:          cfg.Region,
		ExtraHeaders:    headers.Parse(cfg.ExtraHeaders),
	})

	searchables := make([]adapter.Adapter, len(adapters))
	for i, a := range adapters {
		searchables[i] = a
	}
	searchSvc := search.NewService(searchables, searchCache, archive, cfg.Region)

	var reference market.Searcher
	if ref := adapter.BySource(adapters, models.ReferenceSource); ref != nil {
		reference = ref
	}
	analyzer := market.NewAnalyzer(archive, reference, analysisCache, cfg.PriceNoiseFloor)

	app := &Application{
		Config:        cfg,
		Logger:        &logger,
		SearchCache:   searchCache,
		AnalysisCache: analysisCache,
		BrowserPool:   pool,
		RateLimiter:   limiter,
		Archive:       archive,
		Adapters:      adapters,
		Search:        searchSvc,
		Market:        analyzer,
		Images:        export.NewImageExporter(5, 30*time.Second, ""),
		startTime:     time.Now(),
	}

	logger.Debug().
		Int("max_browsers", cfg.MaxBrowsers).
		Str("region", cfg.Region).
		Bool("persistent_archive", cfg.DatabaseURL != "").
		Msg("Application initialized")
	return app, nil
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level := zerolog.ErrorLevel
	switch cfg.LogLevel {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "warn":
		level = zerolog.WarnLevel
	}
	zerolog.SetGlobalLevel(level)

	var w io.Writer
	if cfg.JSONLog {
		w = os.Stderr
	} else {
		w = zerolog.NewConsoleWriter()
	}
	logger := log.Output(w).With().Timestamp().Logger()
	log.Logger = logger
	return logger
}

// newCaches builds the two result caches. With a cache dir configured they
// persist across runs; otherwise they are in-process only.
func newCaches(cfg *config.Config) (searchCache, analysisCache cache.Cache, err error) {
	if cfg.CacheDir == "" {
		return cache.NewMemoryCache(cfg.SearchCacheTTL), cache.NewMemoryCache(cfg.AnalysisCacheTTL), nil
	}
	sc, err := cache.NewFileCache(cfg.CacheDir, cfg.SearchCacheTTL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open search cache: %w", err)
	}
	ac, err := cache.NewFileCache(filepath.Join(cfg.CacheDir, "analysis"), cfg.AnalysisCacheTTL)
	if err != nil {
		sc.Close()
		return nil, nil, fmt.Errorf("failed to open analysis cache: %w", err)
	}
	return sc, ac, nil
}

func newArchive(ctx context.Context, cfg *config.Config) (store.Store, error) {
	if cfg.DatabaseURL == "" {
		return store.NewMemoryStore(), nil
	}
	st, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open listing archive: %w", err)
	}
	return st, nil
}

// Close shuts down browsers, caches, and the listing archive. Errors are
// logged, not returned; shutdown always runs to completion.
func (a *Application) Close(ctx context.Context) error {
	a.Logger.Debug().Msg("Shutting down")

	if a.BrowserPool != nil {
		a.BrowserPool.Close()
	}
	if a.SearchCache != nil {
		a.SearchCache.Close()
	}
	if a.AnalysisCache != nil {
		a.AnalysisCache.Close()
	}
	if a.Archive != nil {
		if err := a.Archive.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Error closing listing archive")
		}
	}

	a.Logger.Debug().Dur("uptime", time.Since(a.startTime)).Msg("Shutdown complete")
	return nil
}

// Uptime returns how long the application has been running.
func (a *Application) Uptime() time.Duration {
	return time.Since(a.startTime)
}
