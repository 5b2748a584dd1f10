package cache

import (
	"strings"
	"testing"
)

type keyerMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func TestDefaultKeyer_Deterministic(t *testing.T) {
	k := NewDefaultKeyer()

	msgs := []keyerMsg{{Role: "user", Content: "summarize this"}}

	k1, err := k.Key("gpt-4", msgs)
	if err != nil {
		t.Fatalf("Key() error = %v", err)
	}
	k2, err := k.Key("gpt-4", msgs)
	if err != nil {
		t.Fatalf("Key() error = %v", err)
	}
	if k1 != k2 {
		t.Errorf("keys differ for identical input: %q vs %q", k1, k2)
	}
	if !strings.HasPrefix(k1, "prompt:gpt-4:") {
		t.Errorf("key = %q, want prompt:gpt-4: prefix", k1)
	}
}

func TestDefaultKeyer_MapOrderIndependent(t *testing.T) {
	k := NewDefaultKeyer()

	a := map[string]any{"model": "m", "temperature": 0.2, "prompt": "hi"}
	b := map[string]any{"prompt": "hi", "model": "m", "temperature": 0.2}

	ka, err := k.Key("m", a)
	if err != nil {
		t.Fatalf("Key() error = %v", err)
	}
	kb, err := k.Key("m", b)
	if err != nil {
		t.Fatalf("Key() error = %v", err)
	}
	if ka != kb {
		t.Errorf("keys differ across map orderings: %q vs %q", ka, kb)
	}
}

func TestDefaultKeyer_DifferentInputsDiffer(t *testing.T) {
	k := NewDefaultKeyer()

	k1, _ := k.Key("m", []keyerMsg{{Role: "user", Content: "a"}})
	k2, _ := k.Key("m", []keyerMsg{{Role: "user", Content: "b"}})
	if k1 == k2 {
		t.Error("distinct prompts produced the same key")
	}

	k3, _ := k.Key("other", []keyerMsg{{Role: "user", Content: "a"}})
	if k1 == k3 {
		t.Error("distinct models produced the same key")
	}
}

func TestDefaultKeyer_NilInput(t *testing.T) {
	k := NewDefaultKeyer()

	key, err := k.Key("m", nil)
	if err != nil {
		t.Fatalf("Key(nil) error = %v", err)
	}
	if key == "" {
		t.Error("Key(nil) returned empty key")
	}
}

func TestDefaultKeyer_NestedStructures(t *testing.T) {
	k := NewDefaultKeyer()

	input := map[string]any{
		"messages": []any{
			map[string]any{"role": "system", "content": "be brief"},
			map[string]any{"role": "user", "content": "hello"},
		},
	}

	k1, err := k.Key("m", input)
	if err != nil {
		t.Fatalf("Key() error = %v", err)
	}
	k2, _ := k.Key("m", input)
	if k1 != k2 {
		t.Error("nested input keys are not deterministic")
	}
}
