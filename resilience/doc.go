// Package resilience guards provider calls against transient failure.
//
// It provides the patterns the response pipeline composes around the chat
// provider:
//
//   - Retry: re-invokes an operation on retryable failure with exponential
//     backoff. Which failures are retryable is decided by package classify;
//     auth, client, and validation errors surface immediately.
//
//   - Circuit Breaker: a three-state (closed/open/half-open) machine that
//     fails fast while the provider is down and probes it after a cooldown.
//
//   - Timeout: bounds the overall duration of a call, including all retries.
//
//   - Rate Limiter: token-bucket pacing to stay under provider quotas.
//
// Executor composes them in a fixed order:
//
//	rate limiter -> circuit breaker -> retry -> timeout -> operation
//
// so that one Execute call counts as exactly one success or failure toward
// the breaker's thresholds, no matter how many retry attempts ran inside.
//
//	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{})
//	retry := resilience.NewRetryForCategory(classify.CategoryServer)
//	exec := resilience.NewExecutor(
//	    resilience.WithCircuitBreaker(cb),
//	    resilience.WithRetry(retry),
//	    resilience.WithTimeout(30*time.Second),
//	)
//	err := exec.Execute(ctx, func(ctx context.Context) error {
//	    return callProvider(ctx)
//	})
package resilience
