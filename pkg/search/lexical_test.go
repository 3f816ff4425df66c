package search

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	got := tokenize("The Court finds O'Brien liable pursuant to the Order")
	want := []string{"finds", "o'brien", "liable"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestTokenize_LegalStopwords(t *testing.T) {
	got := tokenize("plaintiff filed a motion wherefore the parties shall appear")
	want := []string{"appear"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected legal boilerplate to be dropped, got %v", got)
	}
}

func TestTokenize_NoLetters(t *testing.T) {
	if got := tokenize("2024-06-01 §12.3 (b)"); len(got) != 0 {
		t.Fatalf("expected no tokens, got %v", got)
	}
}

func TestLexicalIndex_TermFrequencyOrdersDocs(t *testing.T) {
	corpus := []string{
		"merger merger merger details",
		"merger summary notes attached",
	}
	ix := newLexicalIndex(corpus)
	query := ix.vector("merger")

	heavy := dot(query, ix.vector(corpus[0]))
	light := dot(query, ix.vector(corpus[1]))
	if heavy <= light {
		t.Fatalf("expected repeated term to score higher, got %v vs %v", heavy, light)
	}
	if light <= 0 {
		t.Fatalf("expected a positive score for a matching document, got %v", light)
	}
}

func TestLexicalIndex_UnknownQueryToken(t *testing.T) {
	ix := newLexicalIndex([]string{"lease agreement annex"})

	if score := dot(ix.vector("arbitration"), ix.vector("lease agreement annex")); score != 0 {
		t.Fatalf("expected zero score for out-of-vocabulary query, got %v", score)
	}
}

func TestLexicalIndex_EmptyCorpus(t *testing.T) {
	ix := newLexicalIndex(nil)

	vec := ix.vector("anything")
	if len(vec) != 0 {
		t.Fatalf("expected empty vector from empty corpus, got %v", vec)
	}
	if score := dot(vec, vec); score != 0 {
		t.Fatalf("expected zero score, got %v", score)
	}
}

func TestLexicalIndex_VectorsAreNormalized(t *testing.T) {
	ix := newLexicalIndex([]string{
		"lease agreement annex schedule",
		"lease termination notice",
	})

	vec := ix.vector("lease agreement annex schedule")
	norm := dot(vec, vec)
	if norm < 0.999 || norm > 1.001 {
		t.Fatalf("expected unit-length vector, got squared norm %v", norm)
	}
}
