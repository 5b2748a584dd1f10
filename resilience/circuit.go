package resilience

import (
	"context"
	"sync"
	"time"
)

// State represents the circuit breaker state.
type State int

const (
	// StateClosed means calls flow through normally.
	StateClosed State = iota
	// StateOpen means calls are rejected without invoking the operation.
	StateOpen
	// StateHalfOpen means the breaker is probing whether the provider
	// recovered.
	StateHalfOpen
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreakerConfig configures the circuit breaker.
type CircuitBreakerConfig struct {
	// FailureThreshold is the number of consecutive closed-state failures
	// that open the circuit.
	// Default: 5
	FailureThreshold int

	// Timeout is how long the circuit stays open before a probe is allowed.
	// Default: 60 seconds
	Timeout time.Duration

	// SuccessThreshold is the number of consecutive half-open successes
	// required to close the circuit again.
	// Default: 2
	SuccessThreshold int

	// OnStateChange is called after every state transition.
	OnStateChange func(from, to State)

	// IsFailure determines if an error counts as a failure.
	// Default: all non-nil errors are failures.
	IsFailure func(err error) bool
}

// CircuitBreaker isolates callers from a failing provider. One breaker is
// created per protected resource and lives for the process; all state is
// guarded by a single mutex.
type CircuitBreaker struct {
	config CircuitBreakerConfig

	mu           sync.Mutex
	state        State
	failureCount int
	successCount int
	lastFailure  time.Time
	nextAttempt  time.Time
}

// NewCircuitBreaker creates a circuit breaker in the closed state.
func NewCircuitBreaker(config CircuitBreakerConfig) *CircuitBreaker {
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = 5
	}
	if config.Timeout <= 0 {
		config.Timeout = 60 * time.Second
	}
	if config.SuccessThreshold <= 0 {
		config.SuccessThreshold = 2
	}
	if config.IsFailure == nil {
		config.IsFailure = func(err error) bool { return err != nil }
	}

	return &CircuitBreaker{
		config: config,
		state:  StateClosed,
	}
}

// Execute runs the operation through the circuit breaker. While the circuit
// is open and the cooldown has not elapsed it returns ErrCircuitOpen without
// invoking op.
func (cb *CircuitBreaker) Execute(ctx context.Context, op func(context.Context) error) error {
	if err := cb.beforeRequest(); err != nil {
		return err
	}

	err := op(ctx)
	cb.afterRequest(err)
	return err
}

// State returns the current circuit state.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.currentStateLocked()
}

// Reset forces the breaker back to closed and clears all counters.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	oldState := cb.state
	cb.state = StateClosed
	cb.failureCount = 0
	cb.successCount = 0

	if oldState != StateClosed && cb.config.OnStateChange != nil {
		cb.config.OnStateChange(oldState, StateClosed)
	}
}

func (cb *CircuitBreaker) beforeRequest() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.currentStateLocked() == StateOpen {
		return ErrCircuitOpen
	}
	return nil
}

func (cb *CircuitBreaker) afterRequest(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	isFailure := cb.config.IsFailure(err)
	oldState := cb.state

	switch cb.state {
	case StateClosed:
		if isFailure {
			cb.failureCount++
			cb.lastFailure = time.Now()
			if cb.failureCount >= cb.config.FailureThreshold {
				cb.state = StateOpen
				cb.nextAttempt = time.Now().Add(cb.config.Timeout)
			}
		} else {
			cb.failureCount = 0
		}

	case StateHalfOpen:
		if isFailure {
			// Failed probe: back to open with a fresh cooldown.
			cb.lastFailure = time.Now()
			cb.nextAttempt = time.Now().Add(cb.config.Timeout)
			cb.successCount = 0
			cb.state = StateOpen
		} else {
			cb.successCount++
			if cb.successCount >= cb.config.SuccessThreshold {
				cb.state = StateClosed
				cb.failureCount = 0
				cb.successCount = 0
			}
		}
	}

	if oldState != cb.state && cb.config.OnStateChange != nil {
		cb.config.OnStateChange(oldState, cb.state)
	}
}

// currentStateLocked transitions open -> half-open once the cooldown has
// elapsed, then reports the state. Callers must hold cb.mu.
func (cb *CircuitBreaker) currentStateLocked() State {
	if cb.state == StateOpen && !time.Now().Before(cb.nextAttempt) {
		cb.state = StateHalfOpen
		cb.successCount = 0
		if cb.config.OnStateChange != nil {
			cb.config.OnStateChange(StateOpen, StateHalfOpen)
		}
	}
	return cb.state
}

// Metrics returns a snapshot of the breaker's counters.
func (cb *CircuitBreaker) Metrics() CircuitBreakerMetrics {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return CircuitBreakerMetrics{
		State:           cb.currentStateLocked(),
		FailureCount:    cb.failureCount,
		SuccessCount:    cb.successCount,
		LastFailureTime: cb.lastFailure,
		NextAttemptTime: cb.nextAttempt,
	}
}

// CircuitBreakerMetrics contains circuit breaker statistics.
type CircuitBreakerMetrics struct {
	State           State
	FailureCount    int
	SuccessCount    int
	LastFailureTime time.Time
	NextAttemptTime time.Time
}
