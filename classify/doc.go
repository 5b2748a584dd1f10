// Package classify maps provider and transport errors to a typed taxonomy.
//
// Classify is a pure, total function: it never returns an error and never
// panics. Every input yields a best-effort ErrorDetails with a category,
// severity, retryability flag, and a user-facing suggested action. The
// category-to-policy table in PolicyFor drives the retry layer's delay and
// attempt budgets.
package classify
