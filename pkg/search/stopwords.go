package search

// stopwords is the token exclusion set for lexical scoring: common English
// function words plus boilerplate that appears in nearly every legal filing
// and would otherwise dominate term frequencies.
var stopwords = buildStopwords()

func buildStopwords() map[string]struct{} {
	english := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for",
		"to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was",
		"were", "be", "been", "being", "it", "this", "that", "these", "those",
		"from", "up", "down", "over", "under", "again", "further", "than",
		"so", "such", "into", "about", "between", "through", "during",
		"before", "after", "above", "below", "out", "off", "own", "same",
		"too", "very", "can", "will", "just", "don", "should", "now",
	}
	legal := []string{
		"court", "plaintiff", "defendant", "motion", "case", "order",
		"file", "filed", "pursuant", "party", "parties", "shall", "judge",
		"herein", "thereof", "hereby", "wherefore", "whatsoever",
		"wheresoever", "therefrom", "hereinafter", "hereto", "therein",
		"aforesaid",
	}

	m := make(map[string]struct{}, len(english)+len(legal))
	for _, w := range english {
		m[w] = struct{}{}
	}
	for _, w := range legal {
		m[w] = struct{}{}
	}
	return m
}
