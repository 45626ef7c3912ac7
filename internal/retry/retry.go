// internal/retry/retry.go
package retry

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"
)

// Config defines retry behavior with exponential backoff
type Config struct {
	MaxAttempts int           // Maximum number of attempts
	BaseDelay   time.Duration // Delay before the second attempt
	Multiplier  float64       // Backoff multiplier
}

// DefaultConfig returns the retry configuration used by adapters:
// 3 attempts with delays of 500ms and 1s between them.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		Multiplier:  2.0,
	}
}

// Do executes fn with retry logic. The delay before attempt k (0-indexed)
// is BaseDelay * Multiplier^(k-1). The context cancels the backoff wait.
func Do(ctx context.Context, cfg Config, name string, fn func() error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.Multiplier <= 0 {
		cfg.Multiplier = 2.0
	}

	var lastErr error

	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		err := fn()
		if err == nil {
			if attempt > 0 {
				log.Debug().
					Str("op", name).
					Int("attempts", attempt+1).
					Msg("Retry succeeded")
			}
			return nil
		}
		lastErr = err

		if attempt < cfg.MaxAttempts-1 {
			backoff := delayFor(attempt, cfg)
			log.Debug().
				Str("op", name).
				Int("attempt", attempt+1).
				Int("max_attempts", cfg.MaxAttempts).
				Dur("backoff", backoff).
				Err(err).
				Msg("Retrying after backoff")

			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	log.Warn().
		Str("op", name).
		Int("attempts", cfg.MaxAttempts).
		Err(lastErr).
		Msg("Max retry attempts exceeded")

	return fmt.Errorf("%s failed after %d attempts: %w", name, cfg.MaxAttempts, lastErr)
}

func delayFor(attempt int, cfg Config) time.Duration {
	return time.Duration(float64(cfg.BaseDelay) * math.Pow(cfg.Multiplier, float64(attempt)))
}
