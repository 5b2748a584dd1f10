package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records pipeline metrics for LLM calls.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must honor cancellation/deadlines and return quickly.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordRequest records one provider call with duration and error status.
	RecordRequest(ctx context.Context, meta CallMeta, duration time.Duration, err error)

	// RecordCacheHit records a response served from cache.
	RecordCacheHit(ctx context.Context, meta CallMeta)

	// RecordCacheMiss records a cache lookup that went to the provider.
	RecordCacheMiss(ctx context.Context, meta CallMeta)

	// RecordBreakerTransition records a circuit breaker state change.
	RecordBreakerTransition(ctx context.Context, provider, from, to string)
}

// metricsImpl is the concrete implementation of Metrics.
type metricsImpl struct {
	meter          metric.Meter
	requestCount   metric.Int64Counter
	errorCount     metric.Int64Counter
	durationHist   metric.Float64Histogram
	cacheHits      metric.Int64Counter
	cacheMisses    metric.Int64Counter
	breakerChanges metric.Int64Counter
}

// newMetrics creates a new Metrics instance with the given meter.
func newMetrics(meter metric.Meter) (*metricsImpl, error) {
	requestCount, err := meter.Int64Counter(
		"llm.request.total",
		metric.WithDescription("Total number of provider requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"llm.request.errors",
		metric.WithDescription("Total number of failed provider requests"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"llm.request.duration_ms",
		metric.WithDescription("Provider request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	cacheHits, err := meter.Int64Counter(
		"llm.cache.hits",
		metric.WithDescription("Responses served from cache"),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		return nil, err
	}

	cacheMisses, err := meter.Int64Counter(
		"llm.cache.misses",
		metric.WithDescription("Cache lookups that went to the provider"),
		metric.WithUnit("{miss}"),
	)
	if err != nil {
		return nil, err
	}

	breakerChanges, err := meter.Int64Counter(
		"llm.breaker.transitions",
		metric.WithDescription("Circuit breaker state transitions"),
		metric.WithUnit("{transition}"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		meter:          meter,
		requestCount:   requestCount,
		errorCount:     errorCount,
		durationHist:   durationHist,
		cacheHits:      cacheHits,
		cacheMisses:    cacheMisses,
		breakerChanges: breakerChanges,
	}, nil
}

func callAttributes(meta CallMeta) metric.MeasurementOption {
	attrs := []attribute.KeyValue{
		attribute.String("llm.provider", meta.Provider),
		attribute.String("llm.operation", meta.operation()),
	}
	if meta.Model != "" {
		attrs = append(attrs, attribute.String("llm.model", meta.Model))
	}
	return metric.WithAttributes(attrs...)
}

// RecordRequest records metrics for one provider call.
func (m *metricsImpl) RecordRequest(ctx context.Context, meta CallMeta, duration time.Duration, err error) {
	opt := callAttributes(meta)

	m.requestCount.Add(ctx, 1, opt)
	if err != nil {
		m.errorCount.Add(ctx, 1, opt)
	}
	m.durationHist.Record(ctx, float64(duration.Milliseconds()), opt)
}

func (m *metricsImpl) RecordCacheHit(ctx context.Context, meta CallMeta) {
	m.cacheHits.Add(ctx, 1, callAttributes(meta))
}

func (m *metricsImpl) RecordCacheMiss(ctx context.Context, meta CallMeta) {
	m.cacheMisses.Add(ctx, 1, callAttributes(meta))
}

func (m *metricsImpl) RecordBreakerTransition(ctx context.Context, provider, from, to string) {
	m.breakerChanges.Add(ctx, 1, metric.WithAttributes(
		attribute.String("llm.provider", provider),
		attribute.String("from", from),
		attribute.String("to", to),
	))
}

// noopMetrics is a metrics implementation that does nothing.
type noopMetrics struct{}

func (m *noopMetrics) RecordRequest(ctx context.Context, meta CallMeta, duration time.Duration, err error) {
}
func (m *noopMetrics) RecordCacheHit(ctx context.Context, meta CallMeta)                  {}
func (m *noopMetrics) RecordCacheMiss(ctx context.Context, meta CallMeta)                 {}
func (m *noopMetrics) RecordBreakerTransition(ctx context.Context, provider, from, to string) {}
