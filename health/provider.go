package health

import (
	"context"
	"fmt"

	"github.com/jonwraymond/llmops/resilience"
)

// ProviderChecker reports provider health from its circuit breaker: closed
// is healthy, half-open is degraded (probing recovery), open is unhealthy.
type ProviderChecker struct {
	name    string
	breaker *resilience.CircuitBreaker
}

// NewProviderChecker creates a checker for the named provider.
func NewProviderChecker(name string, breaker *resilience.CircuitBreaker) *ProviderChecker {
	return &ProviderChecker{name: name, breaker: breaker}
}

// Name returns the provider name.
func (c *ProviderChecker) Name() string {
	return c.name
}

// Check derives the result from the breaker's metrics snapshot.
func (c *ProviderChecker) Check(ctx context.Context) Result {
	m := c.breaker.Metrics()

	details := map[string]any{
		"state":         m.State.String(),
		"failure_count": m.FailureCount,
		"success_count": m.SuccessCount,
	}
	if !m.LastFailureTime.IsZero() {
		details["last_failure"] = m.LastFailureTime
	}

	switch m.State {
	case resilience.StateOpen:
		details["next_attempt"] = m.NextAttemptTime
		msg := fmt.Sprintf("circuit open after %d failures", m.FailureCount)
		return Unhealthy(msg, resilience.ErrCircuitOpen).WithDetails(details)

	case resilience.StateHalfOpen:
		return Degraded("circuit half-open, probing recovery").WithDetails(details)

	default:
		return Healthy("provider reachable").WithDetails(details)
	}
}
