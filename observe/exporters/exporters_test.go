package exporters

import (
	"context"
	"strings"
	"testing"
)

func TestNewTracingExporterByName(t *testing.T) {
	for _, name := range []string{"stdout", "none", ""} {
		exp, err := NewTracingExporter(context.Background(), name)
		if err != nil {
			t.Errorf("NewTracingExporter(%q) error = %v", name, err)
			continue
		}
		if exp == nil {
			t.Errorf("NewTracingExporter(%q) = nil", name)
		}
	}
}

func TestNewTracingExporterUnknown(t *testing.T) {
	_, err := NewTracingExporter(context.Background(), "graphite")
	if err == nil {
		t.Fatal("unknown exporter name accepted")
	}
	if !strings.Contains(err.Error(), "unknown exporter") {
		t.Errorf("error = %v", err)
	}
}

func TestNewTracingExporterOTLPNeedsEndpoint(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	t.Setenv("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT", "")

	if _, err := NewTracingExporter(context.Background(), "otlp"); err == nil {
		t.Fatal("otlp without an endpoint accepted")
	}

	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://localhost:4317")
	exp, err := NewTracingExporter(context.Background(), "otlp")
	if err != nil {
		t.Fatalf("NewTracingExporter(otlp) error = %v", err)
	}
	if exp == nil {
		t.Fatal("NewTracingExporter(otlp) = nil")
	}
}

func TestNewTracingExporterJaegerNeedsEndpoint(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_JAEGER_ENDPOINT", "")

	_, err := NewTracingExporter(context.Background(), "jaeger")
	if err == nil {
		t.Fatal("jaeger without an endpoint accepted")
	}
	if !strings.Contains(err.Error(), "endpoint") {
		t.Errorf("error = %v", err)
	}
}

func TestNewMetricsReaderByName(t *testing.T) {
	for _, name := range []string{"stdout", "prometheus", "none", ""} {
		reader, err := NewMetricsReader(context.Background(), name)
		if err != nil {
			t.Errorf("NewMetricsReader(%q) error = %v", name, err)
			continue
		}
		if reader == nil {
			t.Errorf("NewMetricsReader(%q) = nil", name)
		}
	}
}

func TestNewMetricsReaderUnknown(t *testing.T) {
	_, err := NewMetricsReader(context.Background(), "statsd")
	if err == nil {
		t.Fatal("unknown metrics exporter name accepted")
	}
	if !strings.Contains(err.Error(), "unknown metrics exporter") {
		t.Errorf("error = %v", err)
	}
}
