package pipeline

import "errors"

var (
	// ErrNoProvider indicates Config.Provider was nil.
	ErrNoProvider = errors.New("pipeline: provider is required")

	// ErrStreamingUnsupported indicates AskStream was called on a
	// provider that does not implement StreamProvider.
	ErrStreamingUnsupported = errors.New("pipeline: provider does not support streaming")
)
