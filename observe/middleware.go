package observe

import (
	"context"
	"time"
)

// ExecuteFunc is the signature for provider call functions.
// This is the standard function signature that Middleware wraps.
type ExecuteFunc func(ctx context.Context, meta CallMeta) (string, error)

// Middleware wraps LLM calls with observability (tracing, metrics, logging).
//
// Contract:
//   - Concurrency: Wrap() returns a thread-safe ExecuteFunc.
//   - Context: Propagates context through tracing spans.
//   - Errors: Errors from wrapped function are recorded and propagated unchanged.
//   - Ownership: Response text is passed through without modification.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a new Middleware with the given observability components.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// Wrap wraps an ExecuteFunc with tracing, metrics, and logging.
func (m *Middleware) Wrap(fn ExecuteFunc) ExecuteFunc {
	return func(ctx context.Context, meta CallMeta) (string, error) {
		ctx, span := m.tracer.StartSpan(ctx, meta)

		start := time.Now()
		text, err := fn(ctx, meta)
		duration := time.Since(start)

		// EndSpan records error status when err != nil
		m.tracer.EndSpan(span, err)
		m.metrics.RecordRequest(ctx, meta, duration, err)

		callLogger := m.logger.WithCall(meta)
		fields := []Field{
			{Key: "duration_ms", Value: float64(duration.Milliseconds())},
		}

		if err != nil {
			fields = append(fields, Field{Key: "error", Value: err.Error()})
			callLogger.Error(ctx, "provider call failed", fields...)
		} else {
			fields = append(fields, Field{Key: "response_chars", Value: len(text)})
			callLogger.Info(ctx, "provider call completed", fields...)
		}

		return text, err
	}
}

// CacheHit records and logs a response served from cache.
func (m *Middleware) CacheHit(ctx context.Context, meta CallMeta, key string) {
	m.metrics.RecordCacheHit(ctx, meta)
	m.logger.WithCall(meta).Debug(ctx, "cache hit", Field{Key: "cache_key", Value: key})
}

// CacheMiss records a cache lookup that will go to the provider.
func (m *Middleware) CacheMiss(ctx context.Context, meta CallMeta, key string) {
	m.metrics.RecordCacheMiss(ctx, meta)
	m.logger.WithCall(meta).Debug(ctx, "cache miss", Field{Key: "cache_key", Value: key})
}

// BreakerTransition records and logs a circuit breaker state change.
func (m *Middleware) BreakerTransition(ctx context.Context, provider, from, to string) {
	m.metrics.RecordBreakerTransition(ctx, provider, from, to)
	m.logger.Warn(ctx, "circuit breaker state changed",
		Field{Key: "llm.provider", Value: provider},
		Field{Key: "from", Value: from},
		Field{Key: "to", Value: to},
	)
}

// Logger exposes the underlying logger for callers that need direct access.
func (m *Middleware) Logger() Logger {
	return m.logger
}

// MiddlewareFromObserver creates a Middleware from an Observer.
// This is a convenience function for common use cases.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}

	tracer := newTracer(obs.Tracer())

	metrics, err := newMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}

	return NewMiddleware(tracer, metrics, obs.Logger()), nil
}

// NoopMiddleware returns a middleware whose components all discard their
// input. Useful as a default when no observer is configured.
func NoopMiddleware() *Middleware {
	return NewMiddleware(newNoopTracer(), &noopMetrics{}, &noopLogger{})
}
