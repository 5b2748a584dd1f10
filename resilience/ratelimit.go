package resilience

import (
	"context"
	"sync"
	"time"
)

// RateLimiterConfig configures the token-bucket rate limiter.
type RateLimiterConfig struct {
	// Rate is the number of provider calls allowed per second.
	// Default: 10
	Rate float64

	// Burst is the maximum burst size.
	// Default: 5
	Burst int

	// WaitOnLimit waits for a token instead of failing with
	// ErrRateLimitExceeded.
	// Default: false
	WaitOnLimit bool

	// MaxWait is the maximum time to wait for a token.
	// Default: 1 second
	MaxWait time.Duration
}

// RateLimiter paces outbound provider calls under the remote quota.
type RateLimiter struct {
	config RateLimiterConfig

	mu         sync.Mutex
	tokens     float64
	lastRefill time.Time
}

// NewRateLimiter creates a rate limiter with a full bucket.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	if config.Rate <= 0 {
		config.Rate = 10
	}
	if config.Burst <= 0 {
		config.Burst = 5
	}
	if config.MaxWait <= 0 {
		config.MaxWait = time.Second
	}

	return &RateLimiter{
		config:     config,
		tokens:     float64(config.Burst),
		lastRefill: time.Now(),
	}
}

// Allow reports whether one call may proceed, consuming a token if so.
func (rl *RateLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.refillLocked()
	if rl.tokens >= 1 {
		rl.tokens--
		return true
	}
	return false
}

// Wait blocks until a token is available, MaxWait elapses, or ctx is
// cancelled.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if rl.Allow() {
		return nil
	}

	rl.mu.Lock()
	needed := 1 - rl.tokens
	waitTime := time.Duration(needed / rl.config.Rate * float64(time.Second))
	rl.mu.Unlock()

	if waitTime > rl.config.MaxWait {
		waitTime = rl.config.MaxWait
	}

	timer := time.NewTimer(waitTime)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		if rl.Allow() {
			return nil
		}
		return ErrRateLimitExceeded
	}
}

// Execute runs the operation if the rate limit permits.
func (rl *RateLimiter) Execute(ctx context.Context, op func(context.Context) error) error {
	if rl.config.WaitOnLimit {
		if err := rl.Wait(ctx); err != nil {
			return err
		}
	} else if !rl.Allow() {
		return ErrRateLimitExceeded
	}

	return op(ctx)
}

func (rl *RateLimiter) refillLocked() {
	now := time.Now()
	elapsed := now.Sub(rl.lastRefill)
	rl.lastRefill = now

	rl.tokens += elapsed.Seconds() * rl.config.Rate
	if rl.tokens > float64(rl.config.Burst) {
		rl.tokens = float64(rl.config.Burst)
	}
}
