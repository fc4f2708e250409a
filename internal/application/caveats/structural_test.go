package caveats

import "testing"

func TestStructurallyIncluded_ArrayIndexWise(t *testing.T) {
	req := []any{"alice", float64(42)}
	value := []any{"alice", float64(42), "extra"}
	if !structurallyIncluded(req, value) {
		t.Fatal("expected req to be included: array is a prefix by index")
	}
}

func TestStructurallyIncluded_ArrayOutOfRange(t *testing.T) {
	req := []any{"a", "b", "c"}
	value := []any{"a", "b"}
	if structurallyIncluded(req, value) {
		t.Fatal("expected false: req longer than value")
	}
}

func TestStructurallyIncluded_ObjectKeyWise(t *testing.T) {
	req := map[string]any{"to": "0xA"}
	value := map[string]any{"to": "0xA", "value": float64(1)}
	if !structurallyIncluded(req, value) {
		t.Fatal("expected true: extra keys in value are ignored")
	}
}

func TestStructurallyIncluded_MissingKey(t *testing.T) {
	req := map[string]any{"to": "0xA", "gas": float64(21000)}
	value := map[string]any{"to": "0xA"}
	if structurallyIncluded(req, value) {
		t.Fatal("expected false: req has a key value lacks")
	}
}

func TestStructurallyIncluded_NumericCrossType(t *testing.T) {
	if !structurallyIncluded(42, float64(42)) {
		t.Fatal("int and float64 representing the same number must compare equal")
	}
}

func TestStructurallyIncluded_TypeMismatch(t *testing.T) {
	if structurallyIncluded([]any{"a"}, map[string]any{"a": "a"}) {
		t.Fatal("array req against object value must not be included")
	}
}

func TestIntersectValue_ArrayMembership(t *testing.T) {
	result := []any{"0xA", "0xB", "0xC"}
	value := []any{"0xA", "0xB"}
	got := intersectValue(result, value)
	list, ok := got.([]any)
	if !ok || len(list) != 2 {
		t.Fatalf("expected [0xA 0xB], got %#v", got)
	}
}

func TestIntersectValue_ObjectKeyPruning(t *testing.T) {
	result := map[string]any{"name": "alice", "ssn": "secret"}
	value := map[string]any{"name": "alice"}
	got := intersectValue(result, value)
	obj, ok := got.(map[string]any)
	if !ok {
		t.Fatalf("expected object, got %#v", got)
	}
	if _, present := obj["ssn"]; present {
		t.Fatal("ssn should have been pruned")
	}
	if obj["name"] != "alice" {
		t.Fatal("name should survive the intersection")
	}
}

func TestIntersectValue_PrimitivePassesThrough(t *testing.T) {
	got := intersectValue("unchanged", "anything")
	if got != "unchanged" {
		t.Fatalf("expected primitive passthrough, got %#v", got)
	}
}

func TestIntersectValue_WhollyOutsideBecomesEmpty(t *testing.T) {
	got := intersectValue([]any{"x", "y"}, []any{"z"})
	list, ok := got.([]any)
	if !ok || len(list) != 0 {
		t.Fatalf("expected empty slice, got %#v", got)
	}
}
