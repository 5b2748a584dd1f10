package provider

import (
	"context"
	"io"
)

// Chat message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a chat conversation, in order.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Provider sends a conversation and returns the full response text.
type Provider interface {
	// Name identifies the backend for logging and metrics.
	Name() string

	// Send posts the messages and blocks for the complete response.
	Send(ctx context.Context, messages []Message) (string, error)
}

// StreamResponse is an open incremental response. The caller owns Body and
// must close it; ContentType drives framing detection.
type StreamResponse struct {
	Body        io.ReadCloser
	ContentType string
}

// StreamProvider is implemented by backends that can stream responses.
type StreamProvider interface {
	Provider

	// SendStream posts the messages and returns the response stream
	// without reading it.
	SendStream(ctx context.Context, messages []Message) (*StreamResponse, error)
}
