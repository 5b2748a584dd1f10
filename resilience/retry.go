package resilience

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"

	"github.com/jonwraymond/llmops/classify"
)

// RetryConfig configures the retry behavior.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (including initial).
	// Default: 3
	MaxAttempts int

	// InitialDelay is the delay before the first retry.
	// Default: 2s (the classifier's unknown-category base delay)
	InitialDelay time.Duration

	// MaxDelay caps the delay between retries.
	// Default: 60s
	MaxDelay time.Duration

	// Multiplier is the exponential backoff multiplier.
	// Default: 2.0
	Multiplier float64

	// Jitter adds up to 25% randomness to delays. Off by default so the
	// backoff schedule stays deterministic; enable it when many callers
	// share one provider.
	Jitter bool

	// RetryIf determines if an error should trigger a retry.
	// Default: the classify taxonomy decides, and ErrCircuitOpen is never
	// retried.
	RetryIf func(err error) bool

	// OnRetry is called before each retry attempt, after the failed attempt
	// has been classified. attempt is 1-indexed.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// Retry re-invokes failing operations with exponential backoff.
type Retry struct {
	config RetryConfig
}

// NewRetry creates a retry handler, applying defaults to zero fields.
func NewRetry(config RetryConfig) *Retry {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 3
	}
	if config.InitialDelay <= 0 {
		config.InitialDelay = classify.PolicyFor(classify.CategoryUnknown).BaseDelay
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = 60 * time.Second
	}
	if config.Multiplier <= 0 {
		config.Multiplier = 2.0
	}
	if config.RetryIf == nil {
		config.RetryIf = defaultRetryIf
	}

	return &Retry{config: config}
}

// NewRetryForCategory builds a retry handler from the classifier's policy
// table for the given category. Non-retryable categories yield a handler
// that makes exactly one attempt.
func NewRetryForCategory(category classify.Category) *Retry {
	policy := classify.PolicyFor(category)
	if !policy.Retryable {
		return NewRetry(RetryConfig{
			MaxAttempts: 1,
			RetryIf:     func(error) bool { return false },
		})
	}
	return NewRetry(RetryConfig{
		MaxAttempts:  policy.MaxAttempts,
		InitialDelay: policy.BaseDelay,
	})
}

func defaultRetryIf(err error) bool {
	if err == nil {
		return false
	}
	// The breaker's rejection is synthetic; retrying it would hammer an
	// intentionally closed door.
	if errors.Is(err, ErrCircuitOpen) {
		return false
	}
	return classify.Retryable(err)
}

// Execute runs the operation, retrying on retryable failure. It returns nil
// on the first success, or the last observed error once attempts are
// exhausted or a non-retryable error is seen. The backoff sleep suspends
// cooperatively and aborts when ctx is cancelled.
func (r *Retry) Execute(ctx context.Context, op func(context.Context) error) error {
	var lastErr error

	for attempt := 1; attempt <= r.config.MaxAttempts; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}

		lastErr = err

		if !r.config.RetryIf(err) {
			return err
		}

		if attempt >= r.config.MaxAttempts {
			break
		}

		delay := r.calculateDelay(attempt)

		if r.config.OnRetry != nil {
			r.config.OnRetry(attempt, err, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return lastErr
}

// calculateDelay returns InitialDelay * Multiplier^(attempt-1), capped at
// MaxDelay. attempt is 1-indexed.
func (r *Retry) calculateDelay(attempt int) time.Duration {
	multiplier := math.Pow(r.config.Multiplier, float64(attempt-1))
	delay := time.Duration(float64(r.config.InitialDelay) * multiplier)

	if delay > r.config.MaxDelay || delay < 0 {
		delay = r.config.MaxDelay
	}

	if r.config.Jitter && delay > 0 {
		// #nosec G404 -- jitter is non-cryptographic timing variance.
		delay += time.Duration(rand.Int64N(int64(delay / 4)))
	}

	return delay
}

// Config returns the retry configuration.
func (r *Retry) Config() RetryConfig {
	return r.config
}
