package pipeline

import (
	"context"
	"errors"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/llmops/cache"
	"github.com/jonwraymond/llmops/classify"
	"github.com/jonwraymond/llmops/normalize"
	"github.com/jonwraymond/llmops/observe"
	"github.com/jonwraymond/llmops/provider"
	"github.com/jonwraymond/llmops/resilience"
	"github.com/jonwraymond/llmops/stream"
)

// Config assembles a Pipeline. Provider is required; every other field has
// a working default.
type Config struct {
	// Provider is the chat backend.
	Provider provider.Provider

	// Model is sent to the keyer so responses from different models never
	// share cache entries.
	Model string

	// Executor wraps provider calls. Default: circuit breaker, retry, and
	// a 30 second overall deadline.
	Executor *resilience.Executor

	// Cache stores normalized responses. Default: a store with the chat
	// policy (10 minute TTL).
	Cache *cache.Store[*normalize.NormalizedResponse]

	// Keyer derives cache keys from the message list. Default: SHA-256
	// keyer.
	Keyer cache.Keyer

	// Middleware instruments calls. Default: noop.
	Middleware *observe.Middleware

	// StreamMaxChunks and StreamTimeout configure AskStream consumption.
	// Zero means the stream package defaults.
	StreamMaxChunks int
	StreamTimeout   time.Duration
}

// Pipeline is the composed request path. It is safe for concurrent use.
type Pipeline struct {
	cfg      Config
	provider provider.Provider
	exec     *resilience.Executor
	store    *cache.Store[*normalize.NormalizedResponse]
	keyer    cache.Keyer
	mw       *observe.Middleware
	group    singleflight.Group
}

// New builds a Pipeline from the config.
func New(cfg Config) (*Pipeline, error) {
	if cfg.Provider == nil {
		return nil, ErrNoProvider
	}

	mw := cfg.Middleware
	if mw == nil {
		mw = observe.NoopMiddleware()
	}

	exec := cfg.Executor
	if exec == nil {
		breaker := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			OnStateChange: func(from, to resilience.State) {
				mw.BreakerTransition(context.Background(), cfg.Provider.Name(), from.String(), to.String())
			},
		})
		exec = resilience.NewExecutor(
			resilience.WithCircuitBreaker(breaker),
			resilience.WithRetry(resilience.NewRetry(resilience.RetryConfig{})),
			resilience.WithTimeout(30*time.Second),
		)
	}

	store := cfg.Cache
	if store == nil {
		store = cache.New[*normalize.NormalizedResponse](cache.ChatPolicy())
	}

	keyer := cfg.Keyer
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}

	return &Pipeline{
		cfg:      cfg,
		provider: cfg.Provider,
		exec:     exec,
		store:    store,
		keyer:    keyer,
		mw:       mw,
	}, nil
}

// Executor exposes the composed executor, e.g. for health checks over its
// circuit breaker.
func (p *Pipeline) Executor() *resilience.Executor {
	return p.exec
}

// Cache exposes the response store, e.g. for health checks and cleanup.
func (p *Pipeline) Cache() *cache.Store[*normalize.NormalizedResponse] {
	return p.store
}

// Ask sends the conversation and returns the normalized response. Identical
// in-flight requests are deduplicated; completed non-error responses are
// served from cache until their TTL lapses.
func (p *Pipeline) Ask(ctx context.Context, messages []provider.Message) (*normalize.NormalizedResponse, error) {
	meta := observe.CallMeta{
		Provider:  p.provider.Name(),
		Model:     p.cfg.Model,
		Operation: "chat",
	}

	key, keyErr := p.keyer.Key(p.cfg.Model, messages)
	if keyErr == nil {
		if resp, ok := p.store.Get(key); ok {
			p.mw.CacheHit(ctx, meta, key)
			return resp, nil
		}
		p.mw.CacheMiss(ctx, meta, key)
	}

	fetch := func() (*normalize.NormalizedResponse, error) {
		raw, err := p.send(ctx, meta, messages)
		if err != nil {
			return nil, describeFailure(err)
		}

		resp := normalize.Normalize(raw)
		if keyErr == nil && !resp.InError() {
			if err := p.store.Set(key, resp); err != nil {
				p.mw.Logger().Debug(ctx, "cache set skipped",
					observe.Field{Key: "cache_key", Value: key},
					observe.Field{Key: "error", Value: err.Error()},
				)
			}
		}
		return resp, nil
	}

	// No usable key means no dedupe either.
	if keyErr != nil {
		return fetch()
	}

	v, err, _ := p.group.Do(key, func() (any, error) {
		return fetch()
	})
	if err != nil {
		return nil, err
	}
	return v.(*normalize.NormalizedResponse), nil
}

// AskStream sends the conversation over the provider's streaming transport,
// forwarding chunks to onChunk in arrival order, and normalizes the fully
// accumulated text. Streamed responses are not cached.
func (p *Pipeline) AskStream(ctx context.Context, messages []provider.Message, onChunk func(chunk string, done bool)) (*normalize.NormalizedResponse, error) {
	sp, ok := p.provider.(provider.StreamProvider)
	if !ok {
		return nil, ErrStreamingUnsupported
	}

	meta := observe.CallMeta{
		Provider:  p.provider.Name(),
		Model:     p.cfg.Model,
		Operation: "chat_stream",
	}

	raw, err := p.mw.Wrap(func(ctx context.Context, meta observe.CallMeta) (string, error) {
		var text string
		execErr := p.exec.Execute(ctx, func(ctx context.Context) error {
			sr, err := sp.SendStream(ctx, messages)
			if err != nil {
				return err
			}
			full, err := stream.Consume(ctx, sr.Body, sr.ContentType, stream.Options{
				OnChunk:   onChunk,
				MaxChunks: p.cfg.StreamMaxChunks,
				Timeout:   p.cfg.StreamTimeout,
			})
			text = full
			return err
		})
		return text, execErr
	})(ctx, meta)
	if err != nil {
		return nil, describeFailure(err)
	}

	return normalize.Normalize(raw), nil
}

// send runs one instrumented, resilience-wrapped provider call.
func (p *Pipeline) send(ctx context.Context, meta observe.CallMeta, messages []provider.Message) (string, error) {
	return p.mw.Wrap(func(ctx context.Context, meta observe.CallMeta) (string, error) {
		var text string
		execErr := p.exec.Execute(ctx, func(ctx context.Context) error {
			var sendErr error
			text, sendErr = p.provider.Send(ctx, messages)
			return sendErr
		})
		return text, execErr
	})(ctx, meta)
}

// describeFailure converts a pipeline failure into classified details. A
// rejected call on an open circuit surfaces as a non-retryable
// service-unavailable error; everything else is classified as usual.
func describeFailure(err error) error {
	var details *classify.ErrorDetails
	if errors.As(err, &details) {
		return err
	}

	if errors.Is(err, resilience.ErrCircuitOpen) {
		d := classify.ForCategory(classify.CategoryServer, err)
		d.StatusCode = http.StatusServiceUnavailable
		d.Retryable = false
		d.SuggestedAction = "The provider is temporarily isolated after repeated failures. Wait for the circuit to close."
		return &d
	}

	d := classify.Classify(err)
	return &d
}
