package classify

import "time"

// RetryPolicy is the per-category retry budget consumed by the retry layer.
type RetryPolicy struct {
	// Retryable reports whether operations failing in this category may be
	// re-attempted at all.
	Retryable bool

	// BaseDelay is the delay before the first retry. Zero for categories
	// that are never retried.
	BaseDelay time.Duration

	// MaxAttempts is the total attempt budget (including the initial call).
	// Zero means a single attempt with no retries.
	MaxAttempts int

	// Severity is the default severity assigned to errors in this category.
	Severity Severity
}

// policyTable is the category-to-policy mapping. Changing a row changes the
// externally observable retry behavior, so rows are covered by tests.
var policyTable = map[Category]RetryPolicy{
	CategoryRateLimit:  {Retryable: true, BaseDelay: 5000 * time.Millisecond, MaxAttempts: 5, Severity: SeverityHigh},
	CategoryAuth:       {Retryable: false, BaseDelay: 0, MaxAttempts: 0, Severity: SeverityCritical},
	CategoryClient:     {Retryable: false, BaseDelay: 0, MaxAttempts: 0, Severity: SeverityHigh},
	CategoryValidation: {Retryable: false, BaseDelay: 0, MaxAttempts: 0, Severity: SeverityHigh},
	CategoryServer:     {Retryable: true, BaseDelay: 4000 * time.Millisecond, MaxAttempts: 3, Severity: SeverityHigh},
	CategoryTimeout:    {Retryable: true, BaseDelay: 2000 * time.Millisecond, MaxAttempts: 3, Severity: SeverityMedium},
	CategoryNetwork:    {Retryable: true, BaseDelay: 3000 * time.Millisecond, MaxAttempts: 3, Severity: SeverityHigh},
	CategoryUnknown:    {Retryable: true, BaseDelay: 2000 * time.Millisecond, MaxAttempts: 2, Severity: SeverityMedium},
}

// PolicyFor returns the retry policy for a category. Unrecognized categories
// fall back to the unknown policy.
func PolicyFor(c Category) RetryPolicy {
	if p, ok := policyTable[c]; ok {
		return p
	}
	return policyTable[CategoryUnknown]
}

// Retryable is a convenience that classifies err and reports whether its
// category permits retrying.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	return Classify(err).Retryable
}
