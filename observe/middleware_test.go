package observe

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

func newTestMiddleware(t *testing.T) (*Middleware, *sdkmetric.ManualReader, *bytes.Buffer) {
	t.Helper()
	metrics, reader := newTestMetrics(t)
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("debug", &buf)
	return NewMiddleware(newNoopTracer(), metrics, logger), reader, &buf
}

// TestMiddleware_WrapSuccess verifies metrics and logs on a clean call.
func TestMiddleware_WrapSuccess(t *testing.T) {
	mw, reader, buf := newTestMiddleware(t)

	fn := mw.Wrap(func(ctx context.Context, meta CallMeta) (string, error) {
		return "response text", nil
	})

	got, err := fn(context.Background(), CallMeta{Provider: "openai", Model: "m"})
	if err != nil {
		t.Fatalf("wrapped fn error = %v", err)
	}
	if got != "response text" {
		t.Errorf("wrapped fn = %q", got)
	}

	rm := collect(t, reader)
	if v, ok := counterValue(t, rm, "llm.request.total"); !ok || v != 1 {
		t.Errorf("llm.request.total = %d, want 1", v)
	}
	if v, _ := counterValue(t, rm, "llm.request.errors"); v != 0 {
		t.Errorf("llm.request.errors = %d, want 0", v)
	}
	if !strings.Contains(buf.String(), "provider call completed") {
		t.Errorf("missing completion log, got: %s", buf.String())
	}
}

// TestMiddleware_WrapError verifies the error is propagated unchanged and recorded.
func TestMiddleware_WrapError(t *testing.T) {
	mw, reader, buf := newTestMiddleware(t)

	callErr := errors.New("server error")
	fn := mw.Wrap(func(ctx context.Context, meta CallMeta) (string, error) {
		return "", callErr
	})

	_, err := fn(context.Background(), CallMeta{Provider: "openai"})
	if !errors.Is(err, callErr) {
		t.Fatalf("error = %v, want original error", err)
	}

	rm := collect(t, reader)
	if v, ok := counterValue(t, rm, "llm.request.errors"); !ok || v != 1 {
		t.Errorf("llm.request.errors = %d, want 1", v)
	}
	if !strings.Contains(buf.String(), "provider call failed") {
		t.Errorf("missing failure log, got: %s", buf.String())
	}
}

// TestMiddleware_CacheHitMiss verifies cache helpers record and log.
func TestMiddleware_CacheHitMiss(t *testing.T) {
	mw, reader, buf := newTestMiddleware(t)

	meta := CallMeta{Provider: "openai"}
	mw.CacheHit(context.Background(), meta, "prompt:m:abc")
	mw.CacheMiss(context.Background(), meta, "prompt:m:def")

	rm := collect(t, reader)
	if v, ok := counterValue(t, rm, "llm.cache.hits"); !ok || v != 1 {
		t.Errorf("llm.cache.hits = %d, want 1", v)
	}
	if v, ok := counterValue(t, rm, "llm.cache.misses"); !ok || v != 1 {
		t.Errorf("llm.cache.misses = %d, want 1", v)
	}
	if !strings.Contains(buf.String(), "cache hit") || !strings.Contains(buf.String(), "cache miss") {
		t.Errorf("missing cache logs, got: %s", buf.String())
	}
}

// TestMiddleware_BreakerTransition verifies transition recording.
func TestMiddleware_BreakerTransition(t *testing.T) {
	mw, reader, buf := newTestMiddleware(t)

	mw.BreakerTransition(context.Background(), "openai", "closed", "open")

	rm := collect(t, reader)
	if v, ok := counterValue(t, rm, "llm.breaker.transitions"); !ok || v != 1 {
		t.Errorf("llm.breaker.transitions = %d, want 1", v)
	}
	if !strings.Contains(buf.String(), "circuit breaker state changed") {
		t.Errorf("missing transition log, got: %s", buf.String())
	}
}

// TestMiddlewareFromObserver verifies construction from a disabled observer.
func TestMiddlewareFromObserver(t *testing.T) {
	obs, err := NewObserver(context.Background(), Config{ServiceName: "test"})
	if err != nil {
		t.Fatalf("NewObserver() error = %v", err)
	}
	defer obs.Shutdown(context.Background())

	mw, err := MiddlewareFromObserver(obs)
	if err != nil {
		t.Fatalf("MiddlewareFromObserver() error = %v", err)
	}
	if mw == nil {
		t.Fatal("middleware is nil")
	}

	if _, err := MiddlewareFromObserver(nil); !errors.Is(err, ErrNilObserver) {
		t.Errorf("nil observer error = %v, want ErrNilObserver", err)
	}
}

// TestNoopMiddleware verifies the noop middleware passes calls through.
func TestNoopMiddleware(t *testing.T) {
	mw := NoopMiddleware()

	fn := mw.Wrap(func(ctx context.Context, meta CallMeta) (string, error) {
		return "ok", nil
	})
	got, err := fn(context.Background(), CallMeta{Provider: "p"})
	if err != nil || got != "ok" {
		t.Errorf("noop wrap = (%q, %v)", got, err)
	}
}
