package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all environment-driven settings. Missing variables fall back
// to the struct defaults; only the provider base URL is required.
type Config struct {
	// Provider.
	ProviderName string   `envconfig:"LLMOPS_PROVIDER_NAME"`
	BaseURL      string   `envconfig:"LLMOPS_BASE_URL"`
	Model        string   `envconfig:"LLMOPS_MODEL"`
	APIKey       string   `envconfig:"LLMOPS_API_KEY"`
	MaxTokens    int      `envconfig:"LLMOPS_MAX_TOKENS"`
	Temperature  *float64 `envconfig:"LLMOPS_TEMPERATURE"`

	// Retry and circuit breaker.
	RetryMaxAttempts        int           `envconfig:"LLMOPS_RETRY_MAX_ATTEMPTS" default:"3"`
	RetryInitialDelay       time.Duration `envconfig:"LLMOPS_RETRY_INITIAL_DELAY"`
	RetryMaxDelay           time.Duration `envconfig:"LLMOPS_RETRY_MAX_DELAY" default:"60s"`
	BreakerFailureThreshold int           `envconfig:"LLMOPS_BREAKER_FAILURE_THRESHOLD" default:"5"`
	BreakerTimeout          time.Duration `envconfig:"LLMOPS_BREAKER_TIMEOUT" default:"60s"`
	BreakerSuccessThreshold int           `envconfig:"LLMOPS_BREAKER_SUCCESS_THRESHOLD" default:"2"`
	RequestTimeout          time.Duration `envconfig:"LLMOPS_REQUEST_TIMEOUT" default:"30s"`

	// Client-side rate limiting, off unless enabled.
	RateLimitEnabled   bool    `envconfig:"LLMOPS_RATE_LIMIT_ENABLED" default:"false"`
	RateLimitPerSecond float64 `envconfig:"LLMOPS_RATE_LIMIT_PER_SECOND" default:"10"`
	RateLimitBurst     int     `envconfig:"LLMOPS_RATE_LIMIT_BURST" default:"5"`

	// Response cache.
	CacheEnabled bool          `envconfig:"LLMOPS_CACHE_ENABLED" default:"true"`
	CacheTTL     time.Duration `envconfig:"LLMOPS_CACHE_TTL" default:"10m"`

	// Streaming consumption.
	StreamMaxChunks int           `envconfig:"LLMOPS_STREAM_MAX_CHUNKS" default:"1000"`
	StreamTimeout   time.Duration `envconfig:"LLMOPS_STREAM_TIMEOUT" default:"30s"`

	// Observability.
	ServiceName      string  `envconfig:"LLMOPS_SERVICE_NAME" default:"llmops"`
	ServiceVersion   string  `envconfig:"LLMOPS_SERVICE_VERSION"`
	TracingEnabled   bool    `envconfig:"LLMOPS_TRACING_ENABLED" default:"false"`
	TracingExporter  string  `envconfig:"LLMOPS_TRACING_EXPORTER" default:"none"`
	TracingSamplePct float64 `envconfig:"LLMOPS_TRACING_SAMPLE_PCT" default:"1.0"`
	MetricsEnabled   bool    `envconfig:"LLMOPS_METRICS_ENABLED" default:"false"`
	MetricsExporter  string  `envconfig:"LLMOPS_METRICS_EXPORTER" default:"none"`
	LoggingEnabled   bool    `envconfig:"LLMOPS_LOGGING_ENABLED" default:"true"`
	LogLevel         string  `envconfig:"LLMOPS_LOG_LEVEL" default:"info"`
}

// Load reads an optional .env file, then parses the environment into a
// validated Config.
func Load() (Config, error) {
	_ = godotenv.Load()
	return fromEnv()
}

// fromEnv parses the current process environment without touching .env
// files.
func fromEnv() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parsing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the parts envconfig cannot.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return ErrMissingBaseURL
	}
	if c.TracingSamplePct < 0 || c.TracingSamplePct > 1 {
		return ErrInvalidSamplePct
	}
	return nil
}
