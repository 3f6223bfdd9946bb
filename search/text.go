package search

import (
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// MinPartialTokenRunes is the shortest token the partial channel considers.
const MinPartialTokenRunes = 3

// partialTokens returns the case-folded tokens eligible for substring
// matching, in input order.
func partialTokens(tokens []string) []string {
	// A Caser keeps state, so each call gets its own.
	fold := cases.Fold()
	out := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if utf8.RuneCountInString(token) < MinPartialTokenRunes {
			continue
		}
		out = append(out, fold.String(token))
	}
	return out
}

// clampSimilarity limits a provider similarity to [0, 1].
func clampSimilarity(s float64) float64 {
	switch {
	case s != s: // NaN
		return 0
	case s < 0:
		return 0
	case s > 1:
		return 1
	}
	return s
}
