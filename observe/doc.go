// Package observe provides observability primitives for LLM calls.
//
// It is a pure instrumentation library: no execution, no transport, no I/O
// beyond exporter setup. Consumers wire the observer into the pipeline or
// use the middleware directly.
package observe
