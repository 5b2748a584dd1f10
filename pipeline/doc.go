// Package pipeline composes the full request path: cache lookup, in-flight
// deduplication, resilience-wrapped provider call, response normalization,
// and cache write-back. It is the package applications import.
package pipeline
