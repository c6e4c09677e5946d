package match

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// evalUsername evaluates the username criterion. rawHandle keeps the caller's
// casing (sub-word splitting relies on it); text and query are normalized.
//
// Exact paths, in order:
//  1. The handle appears structurally: as @handle anywhere, or as a
//     standalone word (space-surrounded or anchoring the text edges). A bare
//     substring is not enough; it would match unrelated words carrying the
//     handle as a prefix.
//  2. Co-occurrence with the query: when a query is also given and a strong
//     share of the handle's sub-words plus a majority of the query's words
//     independently appear, the combination is treated as identity.
//
// The fuzzy fallback is deliberately narrow: long handles only, never
// common-word fragments, and only when a configured handle alias condition
// holds in the text.
func (e *Engine) evalUsername(text, rawHandle, query string) (float64, bool) {
	p := e.cfg.Policy
	handle := strings.ToLower(rawHandle)
	if handle == "" {
		return 0, false
	}

	if strings.Contains(text, "@"+handle) {
		return 1.0, true
	}
	padded := " " + text + " "
	if strings.Contains(padded, " "+handle+" ") {
		return 1.0, true
	}

	if query != "" {
		subwords := handleSubwords(rawHandle)
		queryWords := wordsLongerThan(query, 2)
		if len(subwords) > 0 && len(queryWords) > 0 {
			subHits := 0
			for _, w := range subwords {
				if strings.Contains(text, w) {
					subHits++
				}
			}
			queryHits := 0
			for _, w := range queryWords {
				if strings.Contains(text, w) {
					queryHits++
				}
			}
			subRatio := float64(subHits) / float64(len(subwords))
			queryRatio := float64(queryHits) / float64(len(queryWords))
			if subRatio >= p.HandleSubwordRatio && queryRatio >= p.HandleQueryWordRatio {
				return 1.0, true
			}
		}
	}

	if utf8.RuneCountInString(handle) <= p.MinFuzzyHandleLength {
		return 0, false
	}
	for _, common := range e.cfg.Lexicon.CommonHandles {
		if handle == strings.ToLower(common) {
			return 0, false
		}
	}
	for _, alias := range e.cfg.Lexicon.HandleAliases {
		if !strings.Contains(handle, strings.ToLower(alias.Handle)) {
			continue
		}
		all := len(alias.TextWords) > 0
		for _, w := range alias.TextWords {
			if !strings.Contains(text, strings.ToLower(w)) {
				all = false
				break
			}
		}
		if all {
			return p.HandleAliasScore, false
		}
	}

	return 0, false
}

// handleSubwords splits a handle into its name-like components: camel-case
// boundaries, digit runs and separators all break words. Components shorter
// than 3 runes are dropped. "ImranKhanPTI" yields ["imran", "khan", "pti"].
func handleSubwords(handle string) []string {
	var words []string
	var current []rune
	flush := func() {
		if len(current) >= 3 {
			words = append(words, strings.ToLower(string(current)))
		}
		current = current[:0]
	}

	runes := []rune(handle)
	for i, r := range runes {
		switch {
		case !unicode.IsLetter(r):
			flush()
		case unicode.IsUpper(r):
			// New word on a lower->upper boundary, but keep acronym runs
			// ("PTI") together.
			if i > 0 && unicode.IsLower(runes[i-1]) {
				flush()
			}
			current = append(current, r)
		default:
			current = append(current, r)
		}
	}
	flush()
	return words
}
