package match

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// passesQualityGate rejects candidates that should never be acted upon
// regardless of relevance: too-short texts, engagement-bait phrases from the
// spam deny-list, symbol/emoji spam, and — when the criteria carry a query or
// content — texts with no contextual overlap with the criteria's meaningful
// words. Text and criteria must already be normalized.
func (e *Engine) passesQualityGate(text string, criteria Criteria) bool {
	p := e.cfg.Policy

	if utf8.RuneCountInString(text) < p.MinCandidateLength {
		return false
	}
	if e.spam != nil && len(e.spam.MatchThreadSafe([]byte(text))) > 0 {
		return false
	}
	if symbolRatio(text) > p.MaxSymbolRatio {
		return false
	}

	// Later fuzzy scoring is lenient enough to accept loosely related but
	// off-topic text; require a minimum overlap with the criteria up front.
	meaningful := wordsLongerThan(criteria.SearchQuery+" "+criteria.Content, 3)
	if len(meaningful) == 0 {
		return true
	}
	textWords := wordsLongerThan(text, 2)
	present := 0
	for _, w := range meaningful {
		if strings.Contains(text, w) {
			present++
			continue
		}
		for _, xw := range textWords {
			if Similarity(w, xw) > p.NearIdentity {
				present++
				break
			}
		}
	}
	return float64(present)/float64(len(meaningful)) >= p.ContextOverlapRatio
}

// symbolRatio is the share of runes outside letters, digits, whitespace and
// basic punctuation.
func symbolRatio(s string) float64 {
	if s == "" {
		return 0
	}
	total := 0
	symbols := 0
	for _, r := range s {
		total++
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			continue
		}
		if strings.ContainsRune(`.,!?'"-:;()@#/&%`, r) {
			continue
		}
		symbols++
	}
	return float64(symbols) / float64(total)
}
