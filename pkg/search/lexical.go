package search

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// tokenPattern matches letter runs with optional internal apostrophes, so
// "o'brien" stays one token.
var tokenPattern = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)

// tokenize lowercases text and splits it into tokens, dropping stopwords.
func tokenize(text string) []string {
	lower := strings.ToLower(text)
	raw := tokenPattern.FindAllString(lower, -1)
	if len(raw) == 0 {
		return nil
	}

	out := raw[:0]
	for _, t := range raw {
		if _, isStop := stopwords[t]; isStop {
			continue
		}
		out = append(out, t)
	}
	return out
}

// lexicalIndex is a TF-IDF vectorizer over one candidate corpus. The
// vocabulary and IDF values are rebuilt per query, so scores reflect term
// rarity within the user's own candidate set. Vectors are L2-normalized,
// which reduces cosine similarity to a dot product.
type lexicalIndex struct {
	vocabulary map[string]int
	idf        []float64
	dimension  int
}

func newLexicalIndex(corpus []string) *lexicalIndex {
	df := make(map[string]int)
	for _, text := range corpus {
		seen := make(map[string]struct{})
		for _, tok := range tokenize(text) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	ix := &lexicalIndex{
		vocabulary: make(map[string]int, len(terms)),
		idf:        make([]float64, len(terms)),
		dimension:  len(terms),
	}
	n := float64(len(corpus))
	for i, term := range terms {
		ix.vocabulary[term] = i
		// Smoothed IDF
		ix.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1.0
	}
	return ix
}

// vector computes the L2-normalized TF-IDF vector for text. Tokens outside
// the corpus vocabulary contribute nothing.
func (ix *lexicalIndex) vector(text string) []float64 {
	vec := make([]float64, ix.dimension)
	tf := make(map[int]int)
	total := 0
	for _, tok := range tokenize(text) {
		if idx, ok := ix.vocabulary[tok]; ok {
			tf[idx]++
			total++
		}
	}
	if total == 0 {
		return vec
	}

	for idx, count := range tf {
		vec[idx] = float64(count) / float64(total) * ix.idf[idx]
	}

	norm := 0.0
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec
}

func dot(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
