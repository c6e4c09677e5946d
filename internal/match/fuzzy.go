package match

import (
	"math"
	"strings"
)

// fuzzyTermScore scores how well a single criteria term is represented in
// text. Verbatim containment is a perfect score. Otherwise both sides are
// tokenized (words of 3+ runes) and each term word is scored by its best
// counterpart in the text: equality 1.0, substring containment either way
// 0.8, otherwise edit-distance similarity above the near-identity floor.
//
// The plain average is then capped by breadth: matchPercentage is the share
// of term words that scored at least 0.8, and only a sufficiently broad match
// keeps the full average. Sparse overlap is multiplied down so one lucky
// token cannot hide many unrelated words.
func (e *Engine) fuzzyTermScore(term, text string) float64 {
	if strings.Contains(text, term) {
		return 1.0
	}

	p := e.cfg.Policy
	termWords := wordsLongerThan(term, 2)
	textWords := wordsLongerThan(text, 2)
	if len(termWords) == 0 || len(textWords) == 0 {
		return 0.0
	}

	var total float64
	matched := 0
	for _, tw := range termWords {
		best := 0.0
		for _, xw := range textWords {
			switch {
			case tw == xw:
				best = 1.0
			case strings.Contains(xw, tw) || strings.Contains(tw, xw):
				if best < 0.8 {
					best = 0.8
				}
			default:
				if s := Similarity(tw, xw); s > p.NearIdentity && s > best {
					best = s
				}
			}
			if best == 1.0 {
				break
			}
		}
		total += best
		if best >= 0.8 {
			matched++
		}
	}

	average := total / float64(len(termWords))
	matchPercentage := float64(matched) / float64(len(termWords))

	switch {
	case matchPercentage >= p.FullAverageRatio:
		return average
	case matchPercentage >= p.ReducedAverageRatio && average > p.StrongAverage:
		return math.Min(average, p.ReducedCap)
	case matchPercentage >= p.SparseAverageRatio && average > p.SparseStrongAverage:
		return math.Min(average, p.ReducedCap)
	default:
		return average * matchPercentage
	}
}
