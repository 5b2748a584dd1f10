package health

import (
	"context"
	"fmt"

	"github.com/jonwraymond/llmops/cache"
)

// StatsSource is the part of a cache store a checker reads. Any
// cache.Store satisfies it regardless of value type.
type StatsSource interface {
	Stats() cache.Stats
}

// CacheCheckerConfig sets the entry-count thresholds.
type CacheCheckerConfig struct {
	// WarnEntries marks the cache degraded at or above this entry count.
	// Default: 10000.
	WarnEntries int

	// CriticalEntries marks the cache unhealthy at or above this entry
	// count. Default: 100000.
	CriticalEntries int
}

// CacheChecker reports cache size and hit counts. The cache is unbounded
// except for TTL expiry, so a growing entry count means cleanup has stopped
// keeping up.
type CacheChecker struct {
	name   string
	source StatsSource
	config CacheCheckerConfig
}

// NewCacheChecker creates a checker over the given store.
func NewCacheChecker(name string, source StatsSource, config ...CacheCheckerConfig) *CacheChecker {
	cfg := CacheCheckerConfig{
		WarnEntries:     10000,
		CriticalEntries: 100000,
	}
	if len(config) > 0 {
		if config[0].WarnEntries > 0 {
			cfg.WarnEntries = config[0].WarnEntries
		}
		if config[0].CriticalEntries > 0 {
			cfg.CriticalEntries = config[0].CriticalEntries
		}
	}
	return &CacheChecker{name: name, source: source, config: cfg}
}

// Name returns the checker name.
func (c *CacheChecker) Name() string {
	return c.name
}

// Check reads the store stats and applies the thresholds.
func (c *CacheChecker) Check(ctx context.Context) Result {
	stats := c.source.Stats()

	details := map[string]any{
		"entries":    stats.Entries,
		"total_hits": stats.TotalHits,
	}

	switch {
	case stats.Entries >= c.config.CriticalEntries:
		msg := fmt.Sprintf("cache holds %d entries, above critical threshold %d", stats.Entries, c.config.CriticalEntries)
		return Unhealthy(msg, nil).WithDetails(details)

	case stats.Entries >= c.config.WarnEntries:
		msg := fmt.Sprintf("cache holds %d entries, above warning threshold %d", stats.Entries, c.config.WarnEntries)
		return Degraded(msg).WithDetails(details)

	default:
		return Healthy("cache within bounds").WithDetails(details)
	}
}
