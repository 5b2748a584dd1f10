package observe

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTestTracer(t *testing.T) (Tracer, *tracetest.SpanRecorder) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	return newTracer(tp.Tracer("test")), recorder
}

// TestTracer_SpanName verifies the llm.<operation> span naming.
func TestTracer_SpanName(t *testing.T) {
	tracer, recorder := newTestTracer(t)

	_, span := tracer.StartSpan(context.Background(), CallMeta{Provider: "openai"})
	tracer.EndSpan(span, nil)

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("recorded %d spans, want 1", len(spans))
	}
	if got := spans[0].Name(); got != "llm.chat" {
		t.Errorf("span name = %q, want llm.chat", got)
	}

	_, span = tracer.StartSpan(context.Background(), CallMeta{Provider: "openai", Operation: "chat_stream"})
	tracer.EndSpan(span, nil)

	spans = recorder.Ended()
	if got := spans[1].Name(); got != "llm.chat_stream" {
		t.Errorf("span name = %q, want llm.chat_stream", got)
	}
}

// TestTracer_SuccessStatus verifies OK status on clean completion.
func TestTracer_SuccessStatus(t *testing.T) {
	tracer, recorder := newTestTracer(t)

	_, span := tracer.StartSpan(context.Background(), CallMeta{Provider: "p"})
	tracer.EndSpan(span, nil)

	got := recorder.Ended()[0]
	if got.Status().Code != codes.Ok {
		t.Errorf("status = %v, want Ok", got.Status().Code)
	}
}

// TestTracer_ErrorStatus verifies error status and recorded error event.
func TestTracer_ErrorStatus(t *testing.T) {
	tracer, recorder := newTestTracer(t)

	_, span := tracer.StartSpan(context.Background(), CallMeta{Provider: "p"})
	tracer.EndSpan(span, errors.New("rate limited"))

	got := recorder.Ended()[0]
	if got.Status().Code != codes.Error {
		t.Errorf("status = %v, want Error", got.Status().Code)
	}
	if got.Status().Description != "rate limited" {
		t.Errorf("status description = %q", got.Status().Description)
	}
	if len(got.Events()) == 0 {
		t.Error("expected a recorded error event")
	}
}

// TestTracer_CallAttributes verifies provider/model attributes on the span.
func TestTracer_CallAttributes(t *testing.T) {
	tracer, recorder := newTestTracer(t)

	_, span := tracer.StartSpan(context.Background(), CallMeta{Provider: "openai", Model: "gpt-test"})
	tracer.EndSpan(span, nil)

	attrs := recorder.Ended()[0].Attributes()
	found := map[string]string{}
	for _, kv := range attrs {
		found[string(kv.Key)] = kv.Value.Emit()
	}
	if found["llm.provider"] != "openai" {
		t.Errorf("llm.provider = %q", found["llm.provider"])
	}
	if found["llm.model"] != "gpt-test" {
		t.Errorf("llm.model = %q", found["llm.model"])
	}
}

// TestNoopTracer verifies the noop tracer produces valid, inert spans.
func TestNoopTracer(t *testing.T) {
	tracer := newNoopTracer()

	ctx, span := tracer.StartSpan(context.Background(), CallMeta{Provider: "p"})
	if ctx == nil || span == nil {
		t.Fatal("noop tracer returned nil context or span")
	}
	tracer.EndSpan(span, errors.New("ignored"))
}
