package match

import (
	"strings"
	"unicode/utf8"

	"github.com/cloudflare/ahocorasick"
)

// Engine evaluates candidates against criteria under a fixed Config. The
// spam deny-list is compiled once at construction; Evaluate itself allocates
// no shared state and is safe for concurrent use.
type Engine struct {
	cfg  Config
	spam *ahocorasick.Matcher
}

// New compiles cfg into a reusable Engine.
func New(cfg Config) *Engine {
	e := &Engine{cfg: cfg}
	if len(cfg.Lexicon.SpamPhrases) > 0 {
		phrases := make([]string, 0, len(cfg.Lexicon.SpamPhrases))
		for _, p := range cfg.Lexicon.SpamPhrases {
			p = strings.ToLower(strings.TrimSpace(p))
			if p != "" {
				phrases = append(phrases, p)
			}
		}
		if len(phrases) > 0 {
			e.spam = ahocorasick.NewStringMatcher(phrases)
		}
	}
	return e
}

// Evaluate is the package-level convenience for one-off calls; it compiles a
// throwaway Engine from cfg. Callers evaluating many candidates should build
// an Engine once with New.
func Evaluate(candidate string, criteria Criteria, cfg Config) Outcome {
	return New(cfg).Evaluate(candidate, criteria)
}

// Evaluate decides whether candidate matches criteria. Exact results
// short-circuit and always win; otherwise the best fuzzy score at or above
// FuzzyThreshold wins, with every criterion that cleared the threshold
// reported as contributing. Fuzzy scores are capped at FuzzyScoreCeiling so
// 1.0 stays reserved for exact matches. Candidates that fail the quality
// gate, and criteria with no usable signal, yield a zero-score non-match.
func (e *Engine) Evaluate(candidate string, criteria Criteria) Outcome {
	text := normalize(candidate)
	crit := Criteria{
		Username:    normalize(criteria.Username),
		SearchQuery: normalize(criteria.SearchQuery),
		Content:     normalize(criteria.Content),
	}

	if !e.passesQualityGate(text, crit) {
		return noMatch()
	}
	if crit.IsEmpty() {
		return noMatch()
	}

	type fuzzyResult struct {
		label string
		score float64
	}
	var fuzzies []fuzzyResult

	if crit.Username != "" {
		// The raw handle keeps its casing so camel-case sub-words survive.
		score, exact := e.evalUsername(text, strings.TrimSpace(criteria.Username), crit.SearchQuery)
		if exact {
			return exactMatch(LabelUsername)
		}
		fuzzies = append(fuzzies, fuzzyResult{LabelUsername, score})
	}
	if crit.SearchQuery != "" {
		score, exact := e.evalTerms(text, crit.SearchQuery, e.cfg.Policy.QueryFuzzyHitRatio, false)
		if exact {
			return exactMatch(LabelSearchQuery)
		}
		fuzzies = append(fuzzies, fuzzyResult{LabelSearchQuery, score})
	}
	if crit.Content != "" {
		score, exact := e.evalTerms(text, crit.Content, e.cfg.Policy.ContentFuzzyHitRatio, true)
		if exact {
			return exactMatch(LabelContent)
		}
		fuzzies = append(fuzzies, fuzzyResult{LabelContent, score})
	}

	if !e.cfg.EnableFuzzy {
		return noMatch()
	}

	best := 0.0
	var contributing []string
	for _, f := range fuzzies {
		if f.score < e.cfg.FuzzyThreshold {
			continue
		}
		contributing = append(contributing, f.label+" (fuzzy)")
		if f.score > best {
			best = f.score
		}
	}
	if len(contributing) == 0 {
		return noMatch()
	}

	if ceiling := e.cfg.Policy.FuzzyScoreCeiling; ceiling > 0 && best > ceiling {
		best = ceiling
	}

	return Outcome{
		IsMatch:         true,
		Score:           best,
		MatchedCriteria: contributing,
		IsFuzzy:         true,
	}
}

// CheckQuality runs the pre-filter alone: length, spam deny-list, symbol
// ratio and — when criteria carry a query or content — contextual overlap.
// Evaluate applies the same gate internally; this entry point lets callers
// drop junk early without computing scores.
func (e *Engine) CheckQuality(candidate string, criteria Criteria) bool {
	return e.passesQualityGate(normalize(candidate), Criteria{
		Username:    normalize(criteria.Username),
		SearchQuery: normalize(criteria.SearchQuery),
		Content:     normalize(criteria.Content),
	})
}

// normalize lowercases and collapses surrounding whitespace. All matching
// happens on normalized text.
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// wordsLongerThan splits s on whitespace and keeps words of more than n runes.
func wordsLongerThan(s string, n int) []string {
	fields := strings.Fields(s)
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		if utf8.RuneCountInString(f) > n {
			words = append(words, f)
		}
	}
	return words
}
