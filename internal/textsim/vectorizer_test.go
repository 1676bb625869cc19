package textsim

import (
	"math"
	"testing"
)

func TestTermFrequency(t *testing.T) {
	tf := TermFrequency([]string{"a", "b", "a", "c", "a"})
	if tf["a"] != 3 || tf["b"] != 1 || tf["c"] != 1 {
		t.Fatalf("unexpected counts: %v", tf)
	}
}

func TestInverseDocumentFrequency_Smoothed(t *testing.T) {
	corpus := [][]string{
		{"shared", "only-a"},
		{"shared", "only-b"},
	}
	idf := InverseDocumentFrequency(corpus)

	// Shared term: log(3/3)+1 = 1. Unique term: log(3/2)+1.
	if math.Abs(idf["shared"]-1.0) > 1e-9 {
		t.Fatalf("expected shared idf 1.0, got %f", idf["shared"])
	}
	wantUnique := math.Log(1.5) + 1
	if math.Abs(idf["only-a"]-wantUnique) > 1e-9 {
		t.Fatalf("expected unique idf %f, got %f", wantUnique, idf["only-a"])
	}

	// Smoothing keeps every weight positive, even for a term in every
	// document of a single-document corpus.
	single := InverseDocumentFrequency([][]string{{"x"}})
	if single["x"] <= 0 {
		t.Fatalf("expected positive idf, got %f", single["x"])
	}
}

func TestVectorize(t *testing.T) {
	idf := map[string]float64{"a": 2.0, "b": 1.0}
	vec := Vectorize([]string{"a", "a", "b", "c"}, idf)

	// tf normalized by document length, weighted by idf.
	if math.Abs(vec["a"]-(2.0/4.0)*2.0) > 1e-9 {
		t.Fatalf("unexpected weight for a: %f", vec["a"])
	}
	if math.Abs(vec["b"]-(1.0/4.0)*1.0) > 1e-9 {
		t.Fatalf("unexpected weight for b: %f", vec["b"])
	}
	// Terms without an idf entry keep their frequency weight.
	if math.Abs(vec["c"]-(1.0/4.0)) > 1e-9 {
		t.Fatalf("unexpected weight for c: %f", vec["c"])
	}
}

func TestVectorize_Empty(t *testing.T) {
	vec := Vectorize(nil, map[string]float64{})
	if len(vec) != 0 {
		t.Fatalf("expected empty vector, got %v", vec)
	}
}

func TestUnitTF_Normalized(t *testing.T) {
	vec := unitTF([]string{"a", "a", "b"})
	var sq float64
	for _, w := range vec {
		sq += w * w
	}
	if math.Abs(sq-1.0) > 1e-9 {
		t.Fatalf("expected unit vector, squared norm %f", sq)
	}
}
