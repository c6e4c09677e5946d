package match

import (
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// EditDistance returns the Levenshtein distance between a and b with unit
// costs for insertion, deletion and substitution. Inputs are compared as-is;
// case folding is the caller's responsibility.
func EditDistance(a, b string) int {
	return levenshtein.ComputeDistance(a, b)
}

// Similarity maps edit distance into [0,1]: 1 - distance/max(len(a), len(b)).
// Identical strings (including two empty strings) score 1.0; if exactly one
// side is empty the score is 0.0.
func Similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	la := utf8.RuneCountInString(a)
	lb := utf8.RuneCountInString(b)
	if la == 0 || lb == 0 {
		return 0.0
	}
	longest := la
	if lb > longest {
		longest = lb
	}
	return 1.0 - float64(EditDistance(a, b))/float64(longest)
}
