// Package config loads pipeline settings from the environment and builds
// the fully wired request path from them.
//
// Settings come from LLMOPS_* environment variables, with an optional .env
// file loaded first. Load returns the parsed Config; Build turns it into a
// running Pipeline, its Observer, and a health Aggregator covering the
// provider circuit and the response cache.
package config
