package similarity

import (
	"sort"
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// Ratio is the normalized edit-distance similarity of two strings in [0,1].
func Ratio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 && len(rb) == 0 {
		return 1
	}
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	return levenshtein.RatioForStrings(ra, rb, levenshtein.DefaultOptions)
}

// PartialRatio slides the shorter string across the longer one and returns
// the best window Ratio, so a phrase embedded in a longer sentence still
// scores high.
func PartialRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}
	if len(ra) == 0 {
		if len(rb) == 0 {
			return 1
		}
		return 0
	}
	best := 0.0
	for i := 0; i+len(ra) <= len(rb); i++ {
		r := levenshtein.RatioForStrings(ra, rb[i:i+len(ra)], levenshtein.DefaultOptions)
		if r > best {
			best = r
		}
	}
	return best
}

// TokenSortRatio compares the strings with their whitespace tokens sorted,
// making the measure invariant to word order.
func TokenSortRatio(a, b string) float64 {
	return Ratio(sortTokens(a), sortTokens(b))
}

func sortTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// LexicalBlend is the fallback similarity: a weighted mix of exact
// alignment (0.4), best substring alignment (0.4), and token-order-invariant
// alignment (0.2), capped at 1.
func LexicalBlend(a, b string) float64 {
	blended := 0.4*Ratio(a, b) + 0.4*PartialRatio(a, b) + 0.2*TokenSortRatio(a, b)
	if blended > 1 {
		return 1
	}
	return blended
}
