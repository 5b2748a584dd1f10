package resilience

import "errors"

// Sentinel errors for resilience operations.
var (
	// ErrCircuitOpen is returned when the circuit breaker rejects a call
	// without invoking the operation. It is a synthetic service-unavailable
	// condition, never classified as a provider error and never retried.
	ErrCircuitOpen = errors.New("resilience: circuit breaker is open")

	// ErrRateLimitExceeded is returned when the local rate limiter refuses
	// a call before it reaches the provider.
	ErrRateLimitExceeded = errors.New("resilience: rate limit exceeded")

	// ErrTimeout is returned when an operation exceeds its overall deadline.
	ErrTimeout = errors.New("resilience: operation timed out")
)
