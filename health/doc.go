// Package health provides health checking for the LLM pipeline.
//
// A Checker is any component that can report its health status. The Status
// type represents the health state: Healthy, Degraded, or Unhealthy.
//
// # Pipeline checkers
//
// ProviderChecker derives status from a circuit breaker: a closed breaker is
// healthy, half-open is degraded, open is unhealthy.
//
//	check := health.NewProviderChecker("openai", breaker)
//	result := check.Check(ctx)
//
// CacheChecker reports cache entry and hit counts, degrading when the entry
// count suggests cleanup has stopped running.
//
// # Aggregating health checks
//
// Use Aggregator to combine multiple health checks into a single composite
// check:
//
//	agg := health.NewAggregator()
//	agg.Register("provider", providerChecker)
//	agg.Register("cache", cacheChecker)
//
//	results := agg.CheckAll(ctx)
//	overall := agg.OverallStatus(results)
//
// # HTTP endpoints
//
// The package provides HTTP handlers for common health check patterns:
//
//	// Liveness probe (for Kubernetes)
//	http.Handle("/healthz", health.LivenessHandler())
//
//	// Readiness probe with component checks
//	http.Handle("/readyz", health.ReadinessHandler(aggregator))
//
//	// Detailed health status
//	http.Handle("/health", health.DetailedHandler(aggregator))
package health
