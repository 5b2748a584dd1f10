package config

import "errors"

var (
	// ErrMissingBaseURL indicates no provider base URL was configured.
	ErrMissingBaseURL = errors.New("config: LLMOPS_BASE_URL is required")

	// ErrInvalidSamplePct indicates the tracing sample rate is outside [0, 1].
	ErrInvalidSamplePct = errors.New("config: LLMOPS_TRACING_SAMPLE_PCT must be between 0 and 1")
)
