package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestExecutor_Empty(t *testing.T) {
	e := NewExecutor()

	called := false
	err := e.Execute(context.Background(), func(ctx context.Context) error {
		called = true
		return nil
	})

	if err != nil {
		t.Errorf("Execute() error = %v", err)
	}
	if !called {
		t.Error("operation was not called")
	}
}

func TestExecutor_BreakerCountsOneFailurePerExecute(t *testing.T) {
	// Three inner retry attempts must register as a single breaker failure.
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 2})
	retry := NewRetry(RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond})
	e := NewExecutor(WithCircuitBreaker(cb), WithRetry(retry))

	attempts := 0
	_ = e.Execute(context.Background(), func(ctx context.Context) error {
		attempts++
		return errors.New("502 bad gateway")
	})

	if attempts != 3 {
		t.Errorf("provider attempts = %d, want 3", attempts)
	}
	if m := cb.Metrics(); m.FailureCount != 1 {
		t.Errorf("breaker FailureCount = %d, want 1", m.FailureCount)
	}
	if cb.State() != StateClosed {
		t.Errorf("breaker state = %v, want closed", cb.State())
	}
}

func TestExecutor_OpenBreakerSkipsRetryAndOperation(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 1, Timeout: time.Hour})
	retry := NewRetry(RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond})
	e := NewExecutor(WithCircuitBreaker(cb), WithRetry(retry))

	_ = e.Execute(context.Background(), func(ctx context.Context) error {
		return errors.New("500 internal server error")
	})

	invoked := 0
	err := e.Execute(context.Background(), func(ctx context.Context) error {
		invoked++
		return nil
	})

	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("Execute() error = %v, want ErrCircuitOpen", err)
	}
	if invoked != 0 {
		t.Errorf("operation invoked %d times while open, want 0", invoked)
	}
}

func TestExecutor_TimeoutBoundsRetries(t *testing.T) {
	retry := NewRetry(RetryConfig{MaxAttempts: 10, InitialDelay: 50 * time.Millisecond})
	e := NewExecutor(WithRetry(retry), WithTimeout(30*time.Millisecond))

	err := e.Execute(context.Background(), func(ctx context.Context) error {
		return errors.New("connection reset")
	})

	if err == nil {
		t.Fatal("Execute() error = nil, want timeout or context error")
	}
}

func TestExecutor_RateLimiterRejects(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 0.001, Burst: 1})
	e := NewExecutor(WithRateLimiter(rl))

	ok := func(ctx context.Context) error { return nil }

	if err := e.Execute(context.Background(), ok); err != nil {
		t.Fatalf("first Execute() error = %v", err)
	}

	err := e.Execute(context.Background(), ok)
	if !errors.Is(err, ErrRateLimitExceeded) {
		t.Errorf("second Execute() error = %v, want ErrRateLimitExceeded", err)
	}
}

func TestExecutor_CircuitBreakerAccessor(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{})
	e := NewExecutor(WithCircuitBreaker(cb))

	if e.CircuitBreaker() != cb {
		t.Error("CircuitBreaker() should return the configured breaker")
	}
	if NewExecutor().CircuitBreaker() != nil {
		t.Error("CircuitBreaker() should be nil when not configured")
	}
}
