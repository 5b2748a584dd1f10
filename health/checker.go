package health

import (
	"context"
	"time"
)

// Status grades a dependency: healthy serves traffic, degraded serves with
// issues, unhealthy should be taken out of rotation.
type Status int

const (
	StatusHealthy Status = iota
	StatusDegraded
	StatusUnhealthy
)

func (s Status) String() string {
	switch s {
	case StatusHealthy:
		return "healthy"
	case StatusDegraded:
		return "degraded"
	case StatusUnhealthy:
		return "unhealthy"
	}
	return "unknown"
}

// Result is one check's outcome.
type Result struct {
	Status Status

	// Message explains the status in one line.
	Message string

	// Details carries checker-specific metadata (breaker counts, cache
	// sizes).
	Details map[string]any

	// Duration is how long the check took; the aggregator fills it in.
	Duration time.Duration

	// Timestamp is when the check ran.
	Timestamp time.Time

	// Error is set when the check failed.
	Error error
}

// Healthy builds a healthy result with the current timestamp.
func Healthy(message string) Result {
	return Result{Status: StatusHealthy, Message: message, Timestamp: time.Now()}
}

// Degraded builds a degraded result with the current timestamp.
func Degraded(message string) Result {
	return Result{Status: StatusDegraded, Message: message, Timestamp: time.Now()}
}

// Unhealthy builds an unhealthy result carrying the cause.
func Unhealthy(message string, err error) Result {
	return Result{Status: StatusUnhealthy, Message: message, Error: err, Timestamp: time.Now()}
}

// WithDetails returns a copy of the result with details attached.
func (r Result) WithDetails(details map[string]any) Result {
	r.Details = details
	return r
}

// WithDuration returns a copy of the result with the duration set.
func (r Result) WithDuration(d time.Duration) Result {
	r.Duration = d
	return r
}

// Checker is one named dependency check.
type Checker interface {
	Name() string
	Check(ctx context.Context) Result
}

// CheckerFunc adapts a plain function into a Checker.
type CheckerFunc struct {
	name string
	fn   func(context.Context) Result
}

// NewCheckerFunc wraps fn as a Checker answering to name.
func NewCheckerFunc(name string, fn func(context.Context) Result) *CheckerFunc {
	return &CheckerFunc{name: name, fn: fn}
}

func (f *CheckerFunc) Name() string {
	return f.name
}

func (f *CheckerFunc) Check(ctx context.Context) Result {
	return f.fn(ctx)
}
