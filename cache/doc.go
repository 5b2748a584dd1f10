// Package cache provides a TTL-keyed store for normalized provider
// responses.
//
// Store is generic over the cached value, expires entries lazily on access,
// and counts hits for telemetry. Capacity is unbounded; only time-based
// expiry evicts entries, either on access or through an explicit Cleanup.
// Keyer derives deterministic keys from role-tagged message lists so
// repeated prompts hit the same entry.
package cache
