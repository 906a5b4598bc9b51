package pathlang

import "testing"

func TestArrowPathMapAndArrayNavigation(t *testing.T) {
	value := map[string]any{
		"items": []any{
			map[string]any{"id": "a"},
			map[string]any{"id": "b"},
		},
	}

	got := ArrowPath(value, "->'items'->1->'id'")
	if got != "b" {
		t.Fatalf("got %#v, want %q", got, "b")
	}
}

func TestArrowPathDoubleArrowCoercionEquivalence(t *testing.T) {
	value := map[string]any{"x": map[string]any{"y": float64(42)}}

	got := ArrowPath(value, "->>'x'->>'y'")
	if got != float64(42) {
		t.Fatalf("got %#v, want 42", got)
	}
}

func TestArrowPathMissingKeyYieldsNil(t *testing.T) {
	value := map[string]any{"a": 1}
	if got := ArrowPath(value, "->'missing'"); got != nil {
		t.Fatalf("got %#v, want nil", got)
	}
}

func TestArrowPathBracketedIntegerIndexesArray(t *testing.T) {
	value := []any{"zero", "one", "two"}
	if got := ArrowPath(value, "->[2]"); got != "two" {
		t.Fatalf("got %#v, want %q", got, "two")
	}
}

func TestArrowPathBarewordKey(t *testing.T) {
	value := map[string]any{"name": "Acme"}
	if got := ArrowPath(value, "->name"); got != "Acme" {
		t.Fatalf("got %#v, want %q", got, "Acme")
	}
}
