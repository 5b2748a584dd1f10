package config

import (
	"context"

	"github.com/jonwraymond/llmops/cache"
	"github.com/jonwraymond/llmops/health"
	"github.com/jonwraymond/llmops/normalize"
	"github.com/jonwraymond/llmops/observe"
	"github.com/jonwraymond/llmops/pipeline"
	"github.com/jonwraymond/llmops/provider"
	"github.com/jonwraymond/llmops/resilience"
)

// Runtime is everything Build assembles: the request pipeline, the
// observability stack behind it, and health checks over its moving parts.
type Runtime struct {
	Pipeline *pipeline.Pipeline
	Observer observe.Observer
	Health   *health.Aggregator
}

// Shutdown flushes and stops the observability providers.
func (r *Runtime) Shutdown(ctx context.Context) error {
	return r.Observer.Shutdown(ctx)
}

// Build wires the configured provider, resilience layers, cache, and
// observability into a ready Runtime.
func (c Config) Build(ctx context.Context) (*Runtime, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	obs, err := observe.NewObserver(ctx, c.observeConfig())
	if err != nil {
		return nil, err
	}

	mw, err := observe.MiddlewareFromObserver(obs)
	if err != nil {
		return nil, err
	}

	backend := provider.New(provider.Config{
		Name:        c.ProviderName,
		BaseURL:     c.BaseURL,
		Model:       c.Model,
		APIKey:      c.APIKey,
		MaxTokens:   c.MaxTokens,
		Temperature: c.Temperature,
	})

	breaker := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		FailureThreshold: c.BreakerFailureThreshold,
		Timeout:          c.BreakerTimeout,
		SuccessThreshold: c.BreakerSuccessThreshold,
		OnStateChange: func(from, to resilience.State) {
			mw.BreakerTransition(context.Background(), backend.Name(), from.String(), to.String())
		},
	})

	opts := []resilience.ExecutorOption{
		resilience.WithCircuitBreaker(breaker),
		resilience.WithRetry(resilience.NewRetry(resilience.RetryConfig{
			MaxAttempts:  c.RetryMaxAttempts,
			InitialDelay: c.RetryInitialDelay,
			MaxDelay:     c.RetryMaxDelay,
		})),
		resilience.WithTimeout(c.RequestTimeout),
	}
	if c.RateLimitEnabled {
		opts = append(opts, resilience.WithRateLimiter(resilience.NewRateLimiter(resilience.RateLimiterConfig{
			Rate:  c.RateLimitPerSecond,
			Burst: c.RateLimitBurst,
		})))
	}

	policy := cache.NoCachePolicy()
	if c.CacheEnabled {
		policy = cache.Policy{DefaultTTL: c.CacheTTL}
	}
	store := cache.New[*normalize.NormalizedResponse](policy)

	pipe, err := pipeline.New(pipeline.Config{
		Provider:        backend,
		Model:           c.Model,
		Executor:        resilience.NewExecutor(opts...),
		Cache:           store,
		Middleware:      mw,
		StreamMaxChunks: c.StreamMaxChunks,
		StreamTimeout:   c.StreamTimeout,
	})
	if err != nil {
		return nil, err
	}

	agg := health.NewAggregator()
	agg.Register("provider", health.NewProviderChecker(backend.Name(), breaker))
	agg.Register("cache", health.NewCacheChecker("cache", store))

	return &Runtime{Pipeline: pipe, Observer: obs, Health: agg}, nil
}

// observeConfig maps the flat env settings onto the observe stack's config.
func (c Config) observeConfig() observe.Config {
	return observe.Config{
		ServiceName: c.ServiceName,
		Version:     c.ServiceVersion,
		Tracing: observe.TracingConfig{
			Enabled:   c.TracingEnabled,
			Exporter:  c.TracingExporter,
			SamplePct: c.TracingSamplePct,
		},
		Metrics: observe.MetricsConfig{
			Enabled:  c.MetricsEnabled,
			Exporter: c.MetricsExporter,
		},
		Logging: observe.LoggingConfig{
			Enabled: c.LoggingEnabled,
			Level:   c.LogLevel,
		},
	}
}
