package config

import "fmt"

func validate(c *Config) error {
	if c.MaxBrowsers <= 0 || c.MaxBrowsers > DefaultMaxBrowserCap {
		return fmt.Errorf("max browsers must be between 1 and %d", DefaultMaxBrowserCap)
	}
	if c.MaxRetries <= 0 {
		return fmt.Errorf("max retries must be > 0")
	}
	if c.RetryBaseDelay <= 0 {
		return fmt.Errorf("retry base delay must be > 0")
	}
	if c.NavTimeout <= 0 || c.SelectorTimeout <= 0 {
		return fmt.Errorf("timeouts must be > 0")
	}
	if c.SearchCacheTTL <= 0 || c.AnalysisCacheTTL <= 0 {
		return fmt.Errorf("cache TTLs must be > 0")
	}
	return nil
}
