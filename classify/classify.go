package classify

import (
	"context"
	"errors"
	"strings"
)

// Category identifies the failure mode of a classified error.
type Category string

const (
	CategoryClient     Category = "client"
	CategoryServer     Category = "server"
	CategoryNetwork    Category = "network"
	CategoryTimeout    Category = "timeout"
	CategoryValidation Category = "validation"
	CategoryRateLimit  Category = "rate_limit"
	CategoryAuth       Category = "auth"
	CategoryUnknown    Category = "unknown"
)

// Severity grades how serious a classified error is.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// ErrorDetails is the normalized description of a provider/transport error.
type ErrorDetails struct {
	Code            string   `json:"code"`
	Message         string   `json:"message"`
	Category        Category `json:"category"`
	StatusCode      int      `json:"statusCode,omitempty"`
	Retryable       bool     `json:"retryable"`
	Severity        Severity `json:"severity"`
	SuggestedAction string   `json:"suggestedAction"`
	Err             error    `json:"-"` // original error, opaque
}

// Error implements the error interface so details can be surfaced directly.
func (d *ErrorDetails) Error() string {
	if d.Message != "" {
		return d.Code + ": " + d.Message
	}
	return d.Code
}

// Unwrap exposes the original error for errors.Is/As chains.
func (d *ErrorDetails) Unwrap() error {
	return d.Err
}

// StatusCoder is implemented by errors that carry an HTTP status code.
// When present it takes precedence over message inspection for the code.
type StatusCoder interface {
	StatusCode() int
}

// categoryRule ties a category to the message substrings that select it.
// Rules are evaluated in order; the first match wins, so a message carrying
// both "429" and "network" classifies as rate_limit.
type categoryRule struct {
	category Category
	needles  []string
}

var categoryRules = []categoryRule{
	{CategoryRateLimit, []string{"rate limit", "rate-limit", "ratelimit", "429", "too many requests", "quota exceeded"}},
	{CategoryAuth, []string{"unauthorized", "401", "api key", "authentication", "invalid credentials"}},
	{CategoryClient, []string{"403", "forbidden", "permission denied", "access denied"}},
	{CategoryValidation, []string{"400", "bad request", "validation", "invalid request", "unprocessable"}},
	{CategoryTimeout, []string{"timeout", "timed out", "deadline exceeded", "deadline has been exceeded"}},
	{CategoryNetwork, []string{"network", "connection refused", "connection reset", "no such host", "dial tcp", "broken pipe", "eof"}},
	{CategoryServer, []string{"500", "502", "503", "504", "internal server", "bad gateway", "service unavailable", "gateway timeout", "server error", "overloaded"}},
}

// statusByCategory supplies a representative status code when the error
// itself does not carry one.
var statusByCategory = map[Category]int{
	CategoryRateLimit:  429,
	CategoryAuth:       401,
	CategoryClient:     403,
	CategoryValidation: 400,
	CategoryServer:     500,
	CategoryTimeout:    408,
}

var codeByCategory = map[Category]string{
	CategoryRateLimit:  "RATE_LIMIT_ERROR",
	CategoryAuth:       "AUTH_ERROR",
	CategoryClient:     "CLIENT_ERROR",
	CategoryValidation: "VALIDATION_ERROR",
	CategoryTimeout:    "TIMEOUT_ERROR",
	CategoryNetwork:    "NETWORK_ERROR",
	CategoryServer:     "SERVER_ERROR",
	CategoryUnknown:    "UNKNOWN_ERROR",
}

var actionByCategory = map[Category]string{
	CategoryRateLimit:  "The provider is rate limiting requests. Wait a moment before trying again.",
	CategoryAuth:       "Authentication with the provider failed. Check the configured API key.",
	CategoryClient:     "The provider rejected the request. Verify account permissions.",
	CategoryValidation: "The request was malformed. Review the prompt and parameters.",
	CategoryTimeout:    "The provider took too long to respond. Try again shortly.",
	CategoryNetwork:    "Could not reach the provider. Check network connectivity and retry.",
	CategoryServer:     "The provider had an internal problem. Retrying usually resolves this.",
	CategoryUnknown:    "An unexpected error occurred. Retry, and report it if it persists.",
}

// Classify maps an arbitrary error to ErrorDetails. It never fails: a nil or
// unrecognized error yields the conservative unknown classification, which is
// retryable by default.
func Classify(err error) ErrorDetails {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	lower := strings.ToLower(msg)

	category := CategoryUnknown
	if errors.Is(err, context.DeadlineExceeded) {
		category = CategoryTimeout
	} else {
		for _, rule := range categoryRules {
			if containsAny(lower, rule.needles) {
				category = rule.category
				break
			}
		}
	}

	return ForCategory(category, err)
}

// ForCategory builds ErrorDetails for an already-known category, bypassing
// message inspection. Transport code uses it when the failure mode is
// determined by where the error happened rather than what it says.
func ForCategory(category Category, err error) ErrorDetails {
	msg := ""
	if err != nil {
		msg = err.Error()
	}

	policy := PolicyFor(category)

	details := ErrorDetails{
		Code:            codeByCategory[category],
		Message:         msg,
		Category:        category,
		Retryable:       policy.Retryable,
		Severity:        policy.Severity,
		SuggestedAction: actionByCategory[category],
		Err:             err,
	}

	var sc StatusCoder
	if errors.As(err, &sc) {
		details.StatusCode = sc.StatusCode()
	} else {
		details.StatusCode = statusByCategory[category]
	}

	return details
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
