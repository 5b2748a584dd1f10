package classify

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestClassify_Categories(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		category Category
		code     string
	}{
		{"rate limit by phrase", errors.New("provider rate limit exceeded"), CategoryRateLimit, "RATE_LIMIT_ERROR"},
		{"rate limit by status", errors.New("HTTP 429 Too Many Requests"), CategoryRateLimit, "RATE_LIMIT_ERROR"},
		{"auth", errors.New("401 unauthorized: invalid token"), CategoryAuth, "AUTH_ERROR"},
		{"auth by api key", errors.New("incorrect api key provided"), CategoryAuth, "AUTH_ERROR"},
		{"client forbidden", errors.New("403 forbidden"), CategoryClient, "CLIENT_ERROR"},
		{"validation", errors.New("400 bad request: missing field"), CategoryValidation, "VALIDATION_ERROR"},
		{"timeout", errors.New("request timed out after 30s"), CategoryTimeout, "TIMEOUT_ERROR"},
		{"network", errors.New("dial tcp 10.0.0.1:443: connection refused"), CategoryNetwork, "NETWORK_ERROR"},
		{"server", errors.New("502 bad gateway"), CategoryServer, "SERVER_ERROR"},
		{"unknown", errors.New("something odd happened"), CategoryUnknown, "UNKNOWN_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Classify(tt.err)
			if d.Category != tt.category {
				t.Errorf("Category = %q, want %q", d.Category, tt.category)
			}
			if d.Code != tt.code {
				t.Errorf("Code = %q, want %q", d.Code, tt.code)
			}
			if d.Message != tt.err.Error() {
				t.Errorf("Message = %q, want %q", d.Message, tt.err.Error())
			}
			if d.SuggestedAction == "" {
				t.Error("SuggestedAction is empty")
			}
		})
	}
}

func TestClassify_PriorityOrder(t *testing.T) {
	// A message matching both rate_limit and network must classify as
	// rate_limit because its rule is checked first.
	d := Classify(errors.New("network error: got 429 from upstream"))
	if d.Category != CategoryRateLimit {
		t.Errorf("Category = %q, want %q", d.Category, CategoryRateLimit)
	}
}

func TestClassify_NilError(t *testing.T) {
	d := Classify(nil)
	if d.Category != CategoryUnknown {
		t.Errorf("Category = %q, want %q", d.Category, CategoryUnknown)
	}
	if !d.Retryable {
		t.Error("nil error should classify as retryable unknown")
	}
}

func TestClassify_ContextDeadline(t *testing.T) {
	d := Classify(fmt.Errorf("calling provider: %w", context.DeadlineExceeded))
	if d.Category != CategoryTimeout {
		t.Errorf("Category = %q, want %q", d.Category, CategoryTimeout)
	}
}

type statusErr struct {
	status int
}

func (e *statusErr) Error() string   { return "provider returned an error" }
func (e *statusErr) StatusCode() int { return e.status }

func TestClassify_StatusCoder(t *testing.T) {
	d := Classify(&statusErr{status: 418})
	if d.StatusCode != 418 {
		t.Errorf("StatusCode = %d, want 418", d.StatusCode)
	}
}

func TestClassify_DefaultStatusCodes(t *testing.T) {
	d := Classify(errors.New("unauthorized"))
	if d.StatusCode != 401 {
		t.Errorf("StatusCode = %d, want 401", d.StatusCode)
	}
}

func TestErrorDetails_ErrorAndUnwrap(t *testing.T) {
	orig := errors.New("timed out")
	d := Classify(orig)
	if !errors.Is(&d, orig) {
		t.Error("errors.Is should reach the original error")
	}
	if d.Error() == "" {
		t.Error("Error() is empty")
	}
}

func TestPolicyFor_Table(t *testing.T) {
	tests := []struct {
		category    Category
		retryable   bool
		baseDelay   time.Duration
		maxAttempts int
		severity    Severity
	}{
		{CategoryRateLimit, true, 5 * time.Second, 5, SeverityHigh},
		{CategoryAuth, false, 0, 0, SeverityCritical},
		{CategoryClient, false, 0, 0, SeverityHigh},
		{CategoryValidation, false, 0, 0, SeverityHigh},
		{CategoryServer, true, 4 * time.Second, 3, SeverityHigh},
		{CategoryTimeout, true, 2 * time.Second, 3, SeverityMedium},
		{CategoryNetwork, true, 3 * time.Second, 3, SeverityHigh},
		{CategoryUnknown, true, 2 * time.Second, 2, SeverityMedium},
	}

	for _, tt := range tests {
		p := PolicyFor(tt.category)
		if p.Retryable != tt.retryable {
			t.Errorf("%s: Retryable = %v, want %v", tt.category, p.Retryable, tt.retryable)
		}
		if p.BaseDelay != tt.baseDelay {
			t.Errorf("%s: BaseDelay = %v, want %v", tt.category, p.BaseDelay, tt.baseDelay)
		}
		if p.MaxAttempts != tt.maxAttempts {
			t.Errorf("%s: MaxAttempts = %d, want %d", tt.category, p.MaxAttempts, tt.maxAttempts)
		}
		if p.Severity != tt.severity {
			t.Errorf("%s: Severity = %q, want %q", tt.category, p.Severity, tt.severity)
		}
	}
}

func TestPolicyFor_UnrecognizedCategory(t *testing.T) {
	p := PolicyFor(Category("bogus"))
	if p != PolicyFor(CategoryUnknown) {
		t.Error("unrecognized category should fall back to unknown policy")
	}
}

func TestRetryable(t *testing.T) {
	if Retryable(nil) {
		t.Error("Retryable(nil) = true, want false")
	}
	if Retryable(errors.New("401 unauthorized")) {
		t.Error("auth errors must not be retryable")
	}
	if !Retryable(errors.New("503 service unavailable")) {
		t.Error("server errors must be retryable")
	}
}
