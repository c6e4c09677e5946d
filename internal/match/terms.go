package match

import (
	"math"
	"strings"
	"unicode/utf8"
)

// evalTerms evaluates a search-query or content criterion against text. Both
// sides must already be normalized.
//
// Exact path: a high enough share of terms appearing verbatim, with at least
// one significant hit, is direct containment. Fuzzy path: the average
// fuzzyTermScore across all terms, eligible only when enough terms scored as
// significant fuzzy hits; sparse hits yield no score at all. Content
// criteria additionally earn the topic-group bonus when a configured word
// group is represented on both sides.
func (e *Engine) evalTerms(text, criterion string, fuzzyHitRatio float64, content bool) (float64, bool) {
	p := e.cfg.Policy
	terms := wordsLongerThan(criterion, 2)
	if len(terms) == 0 {
		return 0, false
	}

	verbatim := 0
	significant := false
	for _, term := range terms {
		if !strings.Contains(text, term) {
			continue
		}
		verbatim++
		if utf8.RuneCountInString(term) > p.SignificantTermLength {
			significant = true
		}
	}
	if float64(verbatim)/float64(len(terms)) >= p.ExactTermRatio && significant {
		return 1.0, true
	}

	if !e.cfg.EnableFuzzy {
		return 0, false
	}

	var total float64
	hits := 0
	for _, term := range terms {
		score := e.fuzzyTermScore(term, text)
		total += score
		if score > p.SignificantFuzzyScore {
			hits++
		}
	}
	if float64(hits)/float64(len(terms)) < fuzzyHitRatio {
		return 0, false
	}

	score := total / float64(len(terms))
	if content && e.topicOverlap(criterion, text) {
		bonused := score + p.TopicBonus
		if bonused > p.TopicBonusCap {
			bonused = math.Max(score, p.TopicBonusCap)
		}
		score = bonused
	}
	return score, false
}

// topicOverlap reports whether any configured topic group has a word present
// in the criterion and a word (possibly a different one) present in the text.
func (e *Engine) topicOverlap(criterion, text string) bool {
	for _, group := range e.cfg.Lexicon.TopicGroups {
		inCriterion := false
		inText := false
		for _, w := range group {
			w = strings.ToLower(w)
			if !inCriterion && strings.Contains(criterion, w) {
				inCriterion = true
			}
			if !inText && strings.Contains(text, w) {
				inText = true
			}
			if inCriterion && inText {
				return true
			}
		}
	}
	return false
}
