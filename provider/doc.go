// Package provider abstracts the chat backend. The pipeline talks to the
// Provider and StreamProvider interfaces; HTTPProvider implements both
// against a chat-completions style JSON endpoint.
package provider
