package hashutil

import "testing"

func TestStableKeyOrderInvariant(t *testing.T) {
	a := map[string]any{"b": 2, "a": 1, "nested": map[string]any{"y": 1, "x": 2}}
	b := map[string]any{"a": 1, "nested": map[string]any{"x": 2, "y": 1}, "b": 2}

	h1, err := Stable(a)
	if err != nil {
		t.Fatalf("Stable(a): %v", err)
	}
	h2, err := Stable(b)
	if err != nil {
		t.Fatalf("Stable(b): %v", err)
	}
	if h1 != h2 {
		t.Errorf("expected identical hash regardless of map construction order, got %q vs %q", h1, h2)
	}
}

func TestStableDiffersOnValueChange(t *testing.T) {
	h1, _ := Stable(map[string]any{"a": 1})
	h2, _ := Stable(map[string]any{"a": 2})
	if h1 == h2 {
		t.Error("expected different hashes for different values")
	}
}

func TestStableStringDeterministicAndDistinct(t *testing.T) {
	if StableString("hello") != StableString("hello") {
		t.Error("expected deterministic hash for the same string")
	}
	if StableString("hello") == StableString("world") {
		t.Error("expected different hashes for different strings")
	}
}
