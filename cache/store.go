package cache

import (
	"sync"
	"time"
)

// entry is one cached value with its expiry bookkeeping.
type entry[T any] struct {
	data      T
	timestamp time.Time
	ttl       time.Duration
	hits      int64
}

func (e *entry[T]) expired(now time.Time) bool {
	return now.Sub(e.timestamp) > e.ttl
}

// Store is an in-memory TTL cache, safe for concurrent use. A single mutex
// serializes all mutations, including hit-counter increments.
type Store[T any] struct {
	mu      sync.Mutex
	entries map[string]*entry[T]
	policy  Policy
}

// New creates an empty store governed by the given policy.
func New[T any](policy Policy) *Store[T] {
	return &Store[T]{
		entries: make(map[string]*entry[T]),
		policy:  policy,
	}
}

// Set stores a value under the policy's default TTL.
func (s *Store[T]) Set(key string, data T) error {
	return s.SetWithTTL(key, data, 0)
}

// SetWithTTL stores a value with an explicit TTL. A non-positive ttl falls
// back to the policy default; the policy's MaxTTL clamps oversized values.
func (s *Store[T]) SetWithTTL(key string, data T, ttl time.Duration) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	effective := s.policy.EffectiveTTL(ttl)
	if effective <= 0 {
		return nil
	}

	s.mu.Lock()
	s.entries[key] = &entry[T]{
		data:      data,
		timestamp: time.Now(),
		ttl:       effective,
	}
	s.mu.Unlock()

	return nil
}

// Get retrieves a value and increments its hit counter. An entry past its
// TTL is treated as absent and purged.
func (s *Store[T]) Get(key string) (T, bool) {
	var zero T

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return zero, false
	}
	if e.expired(time.Now()) {
		delete(s.entries, key)
		return zero, false
	}

	e.hits++
	return e.data, true
}

// Has reports whether a live entry exists, purging it if expired. It does
// not count as a hit.
func (s *Store[T]) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return false
	}
	if e.expired(time.Now()) {
		delete(s.entries, key)
		return false
	}
	return true
}

// Delete removes an entry. Idempotent - no error on miss.
func (s *Store[T]) Delete(key string) {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

// Cleanup removes every expired entry and returns how many were removed.
func (s *Store[T]) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	removed := 0
	for key, e := range s.entries {
		if e.expired(now) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

// Size returns the number of stored entries, expired or not.
func (s *Store[T]) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Hits returns the hit counter for a key, or 0 if absent.
func (s *Store[T]) Hits(key string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[key]; ok {
		return e.hits
	}
	return 0
}

// Stats is a snapshot of store-wide counters for health reporting.
type Stats struct {
	Entries   int
	TotalHits int64
}

// Stats returns aggregate telemetry across all live entries.
func (s *Store[T]) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Stats{Entries: len(s.entries)}
	for _, e := range s.entries {
		st.TotalHits += e.hits
	}
	return st
}
