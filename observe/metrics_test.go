package observe

import (
	"context"
	"errors"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (*metricsImpl, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := newMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}
	return rm
}

func counterValue(t *testing.T, rm metricdata.ResourceMetrics, name string) (int64, bool) {
	t.Helper()
	found := findMetric(rm, name)
	if found == nil {
		return 0, false
	}
	sum, ok := found.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("%s: expected Sum[int64], got %T", name, found.Data)
	}
	if len(sum.DataPoints) == 0 {
		return 0, false
	}
	return sum.DataPoints[0].Value, true
}

// TestMetrics_RequestCounterIncrements verifies llm.request.total is incremented.
func TestMetrics_RequestCounterIncrements(t *testing.T) {
	m, reader := newTestMetrics(t)

	meta := CallMeta{Provider: "openai", Model: "gpt-test"}
	m.RecordRequest(context.Background(), meta, 100*time.Millisecond, nil)

	rm := collect(t, reader)
	if v, ok := counterValue(t, rm, "llm.request.total"); !ok || v != 1 {
		t.Errorf("llm.request.total = %d (found=%v), want 1", v, ok)
	}
}

// TestMetrics_ErrorCounter verifies llm.request.errors tracks failures only.
func TestMetrics_ErrorCounter(t *testing.T) {
	m, reader := newTestMetrics(t)

	meta := CallMeta{Provider: "openai"}
	m.RecordRequest(context.Background(), meta, 50*time.Millisecond, nil)
	m.RecordRequest(context.Background(), meta, 50*time.Millisecond, errors.New("boom"))
	m.RecordRequest(context.Background(), meta, 50*time.Millisecond, errors.New("boom"))

	rm := collect(t, reader)
	if v, ok := counterValue(t, rm, "llm.request.total"); !ok || v != 3 {
		t.Errorf("llm.request.total = %d, want 3", v)
	}
	if v, ok := counterValue(t, rm, "llm.request.errors"); !ok || v != 2 {
		t.Errorf("llm.request.errors = %d, want 2", v)
	}
}

// TestMetrics_DurationHistogram verifies llm.request.duration_ms records.
func TestMetrics_DurationHistogram(t *testing.T) {
	m, reader := newTestMetrics(t)

	m.RecordRequest(context.Background(), CallMeta{Provider: "p"}, 250*time.Millisecond, nil)

	rm := collect(t, reader)
	found := findMetric(rm, "llm.request.duration_ms")
	if found == nil {
		t.Fatal("llm.request.duration_ms metric not found")
	}
	hist, ok := found.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("expected Histogram[float64], got %T", found.Data)
	}
	if len(hist.DataPoints) == 0 || hist.DataPoints[0].Count != 1 {
		t.Error("expected one duration sample")
	}
	if hist.DataPoints[0].Sum != 250 {
		t.Errorf("duration sum = %f, want 250", hist.DataPoints[0].Sum)
	}
}

// TestMetrics_CacheCounters verifies hit/miss counters are independent.
func TestMetrics_CacheCounters(t *testing.T) {
	m, reader := newTestMetrics(t)

	meta := CallMeta{Provider: "p", Model: "m"}
	m.RecordCacheHit(context.Background(), meta)
	m.RecordCacheHit(context.Background(), meta)
	m.RecordCacheMiss(context.Background(), meta)

	rm := collect(t, reader)
	if v, ok := counterValue(t, rm, "llm.cache.hits"); !ok || v != 2 {
		t.Errorf("llm.cache.hits = %d, want 2", v)
	}
	if v, ok := counterValue(t, rm, "llm.cache.misses"); !ok || v != 1 {
		t.Errorf("llm.cache.misses = %d, want 1", v)
	}
}

// TestMetrics_BreakerTransitions verifies the transition counter records.
func TestMetrics_BreakerTransitions(t *testing.T) {
	m, reader := newTestMetrics(t)

	m.RecordBreakerTransition(context.Background(), "p", "closed", "open")

	rm := collect(t, reader)
	if v, ok := counterValue(t, rm, "llm.breaker.transitions"); !ok || v != 1 {
		t.Errorf("llm.breaker.transitions = %d, want 1", v)
	}
}

// findMetric locates a metric by name in collected resource metrics.
func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}
