// internal/ratelimit/limiter.go
package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"

	"github.com/marketlens/scout/pkg/models"
)

// RateLimiter defines the interface for per-source rate limiting.
//
// Marketplaces ban aggressive clients quickly; adapters wait on the limiter
// before every navigation so concurrent searches against the same source
// stay under its budget.
type RateLimiter interface {
	// Wait blocks until a request against the given source can proceed.
	// If the context is cancelled before the rate limit allows, an error is returned.
	Wait(ctx context.Context, source models.Source) error

	// Allow checks if a request against the given source can proceed
	// immediately without blocking.
	Allow(source models.Source) bool
}

// SourceLimiter provides per-marketplace rate limiting using the token
// bucket algorithm.
type SourceLimiter struct {
	limiters  map[models.Source]*rate.Limiter
	mu        sync.RWMutex
	perSource rate.Limit
	burst     int
}

// NewSourceLimiter creates a new rate limiter with the specified per-source rate
func NewSourceLimiter(requestsPerSecond float64, burst int) *SourceLimiter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1.0
	}
	if burst <= 0 {
		burst = 2
	}
	return &SourceLimiter{
		limiters:  make(map[models.Source]*rate.Limiter),
		perSource: rate.Limit(requestsPerSecond),
		burst:     burst,
	}
}

// Wait blocks until a request against source can proceed.
func (l *SourceLimiter) Wait(ctx context.Context, source models.Source) error {
	return l.limiter(source).Wait(ctx)
}

// Allow reports whether a request against source can proceed immediately.
func (l *SourceLimiter) Allow(source models.Source) bool {
	return l.limiter(source).Allow()
}

func (l *SourceLimiter) limiter(source models.Source) *rate.Limiter {
	l.mu.RLock()
	lim, ok := l.limiters[source]
	l.mu.RUnlock()
	if ok {
		return lim
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if lim, ok = l.limiters[source]; ok {
		return lim
	}
	lim = rate.NewLimiter(l.perSource, l.burst)
	l.limiters[source] = lim
	return lim
}
