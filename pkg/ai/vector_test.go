package ai

import (
	"math"
	"testing"
)

func TestCosine_IdenticalVectors(t *testing.T) {
	a := []float32{1, 2, 3}
	got := Cosine(a, a)
	if math.Abs(got-1) > 1e-9 {
		t.Fatalf("expected 1, got %v", got)
	}
}

func TestCosine_OrthogonalVectors(t *testing.T) {
	got := Cosine([]float32{1, 0}, []float32{0, 1})
	if math.Abs(got) > 1e-9 {
		t.Fatalf("expected 0, got %v", got)
	}
}

func TestCosine_OppositeVectors(t *testing.T) {
	got := Cosine([]float32{1, 1}, []float32{-1, -1})
	if math.Abs(got+1) > 1e-9 {
		t.Fatalf("expected -1, got %v", got)
	}
}

func TestCosine_MismatchedLengths(t *testing.T) {
	got := Cosine([]float32{1, 2}, []float32{1, 2, 3})
	if got != 0 {
		t.Fatalf("expected 0 for mismatched lengths, got %v", got)
	}
}

func TestCosine_ZeroVector(t *testing.T) {
	got := Cosine([]float32{0, 0, 0}, []float32{1, 2, 3})
	if got != 0 {
		t.Fatalf("expected 0 for zero vector, got %v", got)
	}
}

func TestCosine_EmptyVectors(t *testing.T) {
	got := Cosine(nil, nil)
	if got != 0 {
		t.Fatalf("expected 0 for empty vectors, got %v", got)
	}
}

func TestCosine_ScaleInvariant(t *testing.T) {
	a := []float32{1, 2, 3}
	b := []float32{2, 4, 6}
	got := Cosine(a, b)
	if math.Abs(got-1) > 1e-6 {
		t.Fatalf("expected 1 for scaled vector, got %v", got)
	}
}
