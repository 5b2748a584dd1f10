package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// Keyer derives deterministic cache keys from prompt inputs.
//
// Contract:
// - Determinism: equal inputs must produce equal keys, regardless of map
//   iteration order.
// - Concurrency: implementations must be safe for concurrent use.
type Keyer interface {
	// Key builds a cache key from a model identifier and the prompt input
	// (typically a role-tagged message list).
	Key(model string, input any) (string, error)
}

// DefaultKeyer hashes the canonical JSON form of the input with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() *DefaultKeyer {
	return &DefaultKeyer{}
}

// Key returns "prompt:<model>:<hash>" where hash is the first 16 hex
// characters of SHA-256 over the canonical JSON encoding of input.
func (k *DefaultKeyer) Key(model string, input any) (string, error) {
	var b strings.Builder
	if err := writeCanonical(&b, input); err != nil {
		return "", fmt.Errorf("cache: canonicalizing input: %w", err)
	}

	sum := sha256.Sum256([]byte(b.String()))
	return fmt.Sprintf("prompt:%s:%s", model, hex.EncodeToString(sum[:8])), nil
}

// writeCanonical appends a deterministic JSON encoding of v: map keys are
// emitted in sorted order, recursively. Structs and typed slices already
// marshal deterministically and go through encoding/json as-is.
func writeCanonical(b *strings.Builder, v any) error {
	switch val := v.(type) {
	case nil:
		b.WriteString("null")
		return nil

	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		slices.Sort(keys)

		b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			encoded, err := json.Marshal(k)
			if err != nil {
				return err
			}
			b.Write(encoded)
			b.WriteByte(':')
			if err := writeCanonical(b, val[k]); err != nil {
				return err
			}
		}
		b.WriteByte('}')
		return nil

	case []any:
		b.WriteByte('[')
		for i, item := range val {
			if i > 0 {
				b.WriteByte(',')
			}
			if err := writeCanonical(b, item); err != nil {
				return err
			}
		}
		b.WriteByte(']')
		return nil

	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return err
		}
		b.Write(encoded)
		return nil
	}
}

var _ Keyer = (*DefaultKeyer)(nil)
