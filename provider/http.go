package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultClientTimeout = 120 * time.Second
	chatCompletionsPath  = "/v1/chat/completions"
)

// Config holds the settings for an HTTPProvider.
type Config struct {
	// Name identifies the backend in logs and metrics. Defaults to the
	// request host if empty.
	Name string

	// BaseURL is the endpoint root, without the chat-completions path.
	BaseURL string

	// Model is sent in every request body.
	Model string

	// APIKey, when set, is sent as a bearer token.
	APIKey string

	// HTTPClient overrides the default client. The default carries a
	// generous timeout; per-request deadlines come from the context.
	HTTPClient *http.Client

	// MaxTokens caps the response length when positive.
	MaxTokens int

	// Temperature is sent when non-nil so zero stays expressible.
	Temperature *float64
}

// HTTPProvider talks to a chat-completions style JSON endpoint. It
// implements Provider and StreamProvider.
type HTTPProvider struct {
	cfg    Config
	client *http.Client
}

// New builds an HTTPProvider from the config.
func New(cfg Config) *HTTPProvider {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultClientTimeout}
	}
	return &HTTPProvider{cfg: cfg, client: client}
}

// Name identifies the backend.
func (p *HTTPProvider) Name() string {
	if p.cfg.Name != "" {
		return p.cfg.Name
	}
	return p.cfg.BaseURL
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Stream      bool      `json:"stream"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature *float64  `json:"temperature,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Send posts the conversation and returns the assistant message content.
func (p *HTTPProvider) Send(ctx context.Context, messages []Message) (string, error) {
	resp, err := p.post(ctx, messages, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("chat response carried no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

// SendStream posts the conversation with streaming enabled and hands the
// open body to the caller.
func (p *HTTPProvider) SendStream(ctx context.Context, messages []Message) (*StreamResponse, error) {
	resp, err := p.post(ctx, messages, true)
	if err != nil {
		return nil, err
	}
	return &StreamResponse{
		Body:        resp.Body,
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}

// post sends the request and verifies the status. On a non-2xx response the
// body is drained into a StatusError and closed; on success the open
// response is returned.
func (p *HTTPProvider) post(ctx context.Context, messages []Message, stream bool) (*http.Response, error) {
	payload, err := json.Marshal(chatRequest{
		Model:       p.cfg.Model,
		Messages:    messages,
		Stream:      stream,
		MaxTokens:   p.cfg.MaxTokens,
		Temperature: p.cfg.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL+chatCompletionsPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if stream {
		req.Header.Set("Accept", "text/event-stream")
	}
	if p.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call chat endpoint: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		resp.Body.Close()
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return resp, nil
}
