// Package match decides whether a captured post is relevant to a set of
// targeting criteria. The engine is pure: given the same candidate text,
// criteria and configuration it always produces the same outcome, performs no
// I/O and holds no mutable state, so a single Engine may be shared by any
// number of goroutines.
package match

// Criteria is the targeting specification for one matching attempt. All
// fields are optional; an empty Criteria never matches. Callers are expected
// to validate that at least one field is populated.
type Criteria struct {
	// Username is a bare account handle without the leading @.
	Username string
	// SearchQuery holds free-text search terms, space-separated.
	SearchQuery string
	// Content is a specific phrase or set of terms to find.
	Content string
}

// IsEmpty reports whether no targeting field is populated.
func (c Criteria) IsEmpty() bool {
	return c.Username == "" && c.SearchQuery == "" && c.Content == ""
}

// Criterion labels reported in Outcome.MatchedCriteria.
const (
	LabelUsername    = "username"
	LabelSearchQuery = "search query"
	LabelContent     = "content"
)

// Outcome is the result of evaluating one candidate against one criteria set.
//
// Invariants: Score == 1.0 exactly when IsMatch is true and IsFuzzy is false;
// a non-match always carries Score 0.
type Outcome struct {
	IsMatch bool
	// Score is the confidence in [0,1]. 1.0 is reserved for exact,
	// structural matches.
	Score float64
	// MatchedCriteria lists the criteria that contributed, each suffixed
	// with the path taken, e.g. "username (exact)" or "content (fuzzy)".
	MatchedCriteria []string
	// IsFuzzy is true when the match required approximate reasoning rather
	// than direct substring containment.
	IsFuzzy bool
}

func noMatch() Outcome {
	return Outcome{}
}

func exactMatch(label string) Outcome {
	return Outcome{
		IsMatch:         true,
		Score:           1.0,
		MatchedCriteria: []string{label + " (exact)"},
	}
}
