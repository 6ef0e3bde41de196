package application

import (
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
)

// minSuggestionSimilarity is the lowest normalized similarity at which a
// known key is offered as a "did you mean" suggestion.
const minSuggestionSimilarity = 0.6

// suggest returns the candidate closest to target under case-folded
// Levenshtein similarity, or "" when nothing is close enough.
func suggest(target string, candidates []string) string {
	// A Caser is stateful, so each call gets its own.
	fold := cases.Fold()
	folded := fold.String(target)
	best, bestScore := "", 0.0
	for _, c := range candidates {
		if c == target {
			continue
		}
		score := similarity(folded, fold.String(c))
		if score > bestScore {
			best, bestScore = c, score
		}
	}
	if bestScore < minSuggestionSimilarity {
		return ""
	}
	return best
}

// similarity is 1 - distance/maxLen, computed over runes.
func similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	maxLen := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(levenshtein.ComputeDistance(a, b))/float64(maxLen)
}
