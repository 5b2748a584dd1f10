package pipeline

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonwraymond/llmops/classify"
	"github.com/jonwraymond/llmops/normalize"
	prov "github.com/jonwraymond/llmops/provider"
	"github.com/jonwraymond/llmops/resilience"
)

type fakeProvider struct {
	mu       sync.Mutex
	calls    int
	response string
	err      error
	delay    time.Duration
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Send(ctx context.Context, messages []prov.Message) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.response, f.err
}

func (f *fakeProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeStreamProvider struct {
	fakeProvider
	body        string
	contentType string
}

func (f *fakeStreamProvider) SendStream(ctx context.Context, messages []prov.Message) (*prov.StreamResponse, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	return &prov.StreamResponse{
		Body:        io.NopCloser(strings.NewReader(f.body)),
		ContentType: f.contentType,
	}, nil
}

func userMessage(content string) []prov.Message {
	return []prov.Message{{Role: prov.RoleUser, Content: content}}
}

func TestPipeline_AskNormalizesAndCaches(t *testing.T) {
	backend := &fakeProvider{response: `{"summary": "all good"}`}
	p, err := New(Config{Provider: backend, Model: "m"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	resp, err := p.Ask(context.Background(), userMessage("status?"))
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if len(resp.Sections) != 1 || resp.Sections[0].Type != normalize.SectionSummary {
		t.Fatalf("sections = %+v", resp.Sections)
	}

	again, err := p.Ask(context.Background(), userMessage("status?"))
	if err != nil {
		t.Fatalf("second Ask() error = %v", err)
	}
	if again != resp {
		t.Error("second Ask() did not return the cached response")
	}
	if got := backend.callCount(); got != 1 {
		t.Errorf("provider calls = %d, want 1", got)
	}
}

func TestPipeline_AskDistinctPromptsMissCache(t *testing.T) {
	backend := &fakeProvider{response: "plain answer"}
	p, err := New(Config{Provider: backend, Model: "m"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := p.Ask(context.Background(), userMessage("first")); err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if _, err := p.Ask(context.Background(), userMessage("second")); err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if got := backend.callCount(); got != 2 {
		t.Errorf("provider calls = %d, want 2", got)
	}
}

func TestPipeline_AskClassifiesProviderError(t *testing.T) {
	backend := &fakeProvider{err: &prov.StatusError{Code: http.StatusUnauthorized, Body: "bad key"}}
	p, err := New(Config{
		Provider: backend,
		Model:    "m",
		Executor: resilience.NewExecutor(),
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, askErr := p.Ask(context.Background(), userMessage("hi"))
	if askErr == nil {
		t.Fatal("Ask() error = nil, want auth failure")
	}

	var details *classify.ErrorDetails
	if !errors.As(askErr, &details) {
		t.Fatalf("error %T does not carry ErrorDetails", askErr)
	}
	if details.Category != classify.CategoryAuth {
		t.Errorf("Category = %q, want auth", details.Category)
	}
	if details.StatusCode != http.StatusUnauthorized {
		t.Errorf("StatusCode = %d, want 401", details.StatusCode)
	}
}

func TestPipeline_FailuresAreNotCached(t *testing.T) {
	backend := &fakeProvider{err: errors.New("internal server error")}
	p, err := New(Config{
		Provider: backend,
		Model:    "m",
		Executor: resilience.NewExecutor(),
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := p.Ask(context.Background(), userMessage("hi")); err == nil {
		t.Fatal("Ask() error = nil, want failure")
	}

	backend.err = nil
	backend.response = "recovered"
	resp, err := p.Ask(context.Background(), userMessage("hi"))
	if err != nil {
		t.Fatalf("Ask() after recovery error = %v", err)
	}
	if resp.Sections[0].ContentMarkdown != "recovered" {
		t.Errorf("response = %+v", resp.Sections[0])
	}
	if got := backend.callCount(); got != 2 {
		t.Errorf("provider calls = %d, want 2", got)
	}
}

func TestPipeline_CircuitOpenSurfacesServiceUnavailable(t *testing.T) {
	backend := &fakeProvider{err: errors.New("internal server error")}
	breaker := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{})
	p, err := New(Config{
		Provider: backend,
		Model:    "m",
		Executor: resilience.NewExecutor(resilience.WithCircuitBreaker(breaker)),
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	// Distinct prompts so every failure reaches the provider.
	prompts := []string{"a", "b", "c", "d", "e"}
	for _, q := range prompts {
		if _, err := p.Ask(context.Background(), userMessage(q)); err == nil {
			t.Fatal("Ask() error = nil while provider failing")
		}
	}
	if breaker.State() != resilience.StateOpen {
		t.Fatalf("breaker state = %v, want open", breaker.State())
	}

	_, askErr := p.Ask(context.Background(), userMessage("f"))
	var details *classify.ErrorDetails
	if !errors.As(askErr, &details) {
		t.Fatalf("error %T does not carry ErrorDetails", askErr)
	}
	if details.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("StatusCode = %d, want 503", details.StatusCode)
	}
	if details.Retryable {
		t.Error("open-circuit rejection must not be retryable")
	}
	if !errors.Is(askErr, resilience.ErrCircuitOpen) {
		t.Error("error should unwrap to ErrCircuitOpen")
	}
	if got := backend.callCount(); got != len(prompts) {
		t.Errorf("provider calls = %d, want %d (open circuit skips the provider)", got, len(prompts))
	}
}

func TestPipeline_ConcurrentAsksDeduplicated(t *testing.T) {
	backend := &fakeProvider{response: "shared", delay: 50 * time.Millisecond}
	p, err := New(Config{Provider: backend, Model: "m"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := p.Ask(context.Background(), userMessage("same prompt")); err != nil {
				t.Errorf("Ask() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if got := backend.callCount(); got != 1 {
		t.Errorf("provider calls = %d, want 1 for deduplicated requests", got)
	}
}

func TestPipeline_AskStream(t *testing.T) {
	backend := &fakeStreamProvider{
		body:        "data: streaming \ndata: works\ndata: [DONE]\n",
		contentType: "text/event-stream",
	}
	p, err := New(Config{Provider: backend, Model: "m"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	var chunks []string
	var sawDone bool
	resp, err := p.AskStream(context.Background(), userMessage("hi"), func(chunk string, done bool) {
		if done {
			sawDone = true
			return
		}
		chunks = append(chunks, chunk)
	})
	if err != nil {
		t.Fatalf("AskStream() error = %v", err)
	}

	if len(chunks) != 2 {
		t.Errorf("chunks = %v, want 2 entries", chunks)
	}
	if !sawDone {
		t.Error("terminal chunk callback missing")
	}
	if len(resp.Sections) == 0 {
		t.Fatal("no sections in normalized stream response")
	}
}

func TestPipeline_AskStreamUnsupported(t *testing.T) {
	p, err := New(Config{Provider: &fakeProvider{response: "x"}, Model: "m"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, streamErr := p.AskStream(context.Background(), userMessage("hi"), nil)
	if !errors.Is(streamErr, ErrStreamingUnsupported) {
		t.Errorf("error = %v, want ErrStreamingUnsupported", streamErr)
	}
}

func TestPipeline_RequiresProvider(t *testing.T) {
	if _, err := New(Config{}); !errors.Is(err, ErrNoProvider) {
		t.Errorf("New() error = %v, want ErrNoProvider", err)
	}
}
