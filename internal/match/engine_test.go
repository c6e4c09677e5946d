package match

import (
	"math"
	"reflect"
	"testing"
)

func TestEvaluateTerms(t *testing.T) {
	t.Parallel()

	engine := New(DefaultConfig())

	tests := []struct {
		name     string
		text     string
		criteria Criteria
		expect   Outcome
	}{
		{
			name:     "all query terms verbatim is exact",
			text:     "pakistan economy reforms discussion tonight",
			criteria: Criteria{SearchQuery: "pakistan economy reforms"},
			expect:   exactMatch(LabelSearchQuery),
		},
		{
			name:     "seventy percent verbatim with a significant term is exact",
			text:     "pakistan economy reforms budget review",
			criteria: Criteria{SearchQuery: "pakistan economy reforms xylophone"},
			expect:   exactMatch(LabelSearchQuery),
		},
		{
			name:     "all short terms verbatim stays a capped fuzzy match",
			text:     "cats now free dogs run wild",
			criteria: Criteria{SearchQuery: "free cats"},
			expect: Outcome{
				IsMatch:         true,
				Score:           0.99,
				MatchedCriteria: []string{"search query (fuzzy)"},
				IsFuzzy:         true,
			},
		},
		{
			name:     "unrelated content never matches",
			text:     "i had pizza for lunch",
			criteria: Criteria{SearchQuery: "pakistan politics"},
			expect:   noMatch(),
		},
		{
			name:     "fuzzy score below threshold is rejected",
			text:     "pakistans economy needs reform now",
			criteria: Criteria{SearchQuery: "pakistan economic reform"},
			expect:   noMatch(),
		},
		{
			name:     "topic overlap lifts related content to a capped fuzzy match",
			text:     "fiscal reforms and development progress continue",
			criteria: Criteria{Content: "economic reforms progress"},
			expect: Outcome{
				IsMatch:         true,
				Score:           0.85,
				MatchedCriteria: []string{"content (fuzzy)"},
				IsFuzzy:         true,
			},
		},
		{
			name:     "empty criteria never matches",
			text:     "a perfectly ordinary sentence about nothing",
			criteria: Criteria{},
			expect:   noMatch(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := engine.Evaluate(tt.text, tt.criteria)
			if !outcomesEqual(got, tt.expect) {
				t.Fatalf("Evaluate(%q, %+v) = %+v, want %+v", tt.text, tt.criteria, got, tt.expect)
			}
		})
	}
}

func TestEvaluateSpamAlwaysRejected(t *testing.T) {
	t.Parallel()

	spam := "Click here for free money!!! \U0001F4B0\U0001F4B0\U0001F4B0"
	criteria := Criteria{SearchQuery: "free money"}

	for _, enableFuzzy := range []bool{true, false} {
		cfg := DefaultConfig()
		cfg.EnableFuzzy = enableFuzzy

		got := New(cfg).Evaluate(spam, criteria)
		if got.IsMatch || got.Score != 0 {
			t.Fatalf("spam matched with EnableFuzzy=%v: %+v", enableFuzzy, got)
		}
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	t.Parallel()

	engine := New(DefaultConfig())
	criteria := Criteria{Username: "KhanSupporter", Content: "economic reforms progress"}
	text := "imran khan says fiscal reforms and development progress continue"

	first := engine.Evaluate(text, criteria)
	second := engine.Evaluate(text, criteria)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("identical calls diverged: %+v vs %+v", first, second)
	}
}

func TestEvaluateThresholdMonotonic(t *testing.T) {
	t.Parallel()

	text := "fiscal reforms and development progress continue"
	criteria := Criteria{Content: "economic reforms progress"}

	accepted := make([]bool, 0, 3)
	for _, threshold := range []float64{0.5, 0.85, 0.9} {
		cfg := DefaultConfig()
		cfg.FuzzyThreshold = threshold
		accepted = append(accepted, New(cfg).Evaluate(text, criteria).IsMatch)
	}

	// Raising the threshold can only lose matches, never gain them.
	for i := 1; i < len(accepted); i++ {
		if accepted[i] && !accepted[i-1] {
			t.Fatalf("raising the threshold gained a match: %v", accepted)
		}
	}
	if !accepted[0] {
		t.Fatalf("expected the lowest threshold to accept")
	}
	if accepted[2] {
		t.Fatalf("expected the highest threshold to reject")
	}
}

func TestEvaluateScoreInvariant(t *testing.T) {
	t.Parallel()

	engine := New(DefaultConfig())

	cases := []struct {
		text     string
		criteria Criteria
	}{
		{"@ImranKhanPTI is speaking at the rally", Criteria{Username: "ImranKhanPTI"}},
		{"fiscal reforms and development progress continue", Criteria{Content: "economic reforms progress"}},
		{"i had pizza for lunch", Criteria{SearchQuery: "pakistan politics"}},
		{"", Criteria{SearchQuery: "pakistan politics"}},
		// Every term verbatim but none long enough for the exact path: the
		// fuzzy average is perfect and must still stay below 1.0.
		{"cats now free dogs run wild", Criteria{SearchQuery: "free cats"}},
		{"cats now free dogs run wild", Criteria{Content: "free cats"}},
	}

	for _, tc := range cases {
		got := engine.Evaluate(tc.text, tc.criteria)

		if (got.Score == 1.0) != (got.IsMatch && !got.IsFuzzy) {
			t.Fatalf("score 1.0 must coincide with an exact match: %+v", got)
		}
		if !got.IsMatch && got.Score != 0 {
			t.Fatalf("non-match must carry score 0: %+v", got)
		}
		if got.IsMatch && len(got.MatchedCriteria) == 0 {
			t.Fatalf("match must name contributing criteria: %+v", got)
		}
	}
}

func TestEvaluateDisabledFuzzy(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.EnableFuzzy = false
	engine := New(cfg)

	// Exact paths still work.
	exact := engine.Evaluate("pakistan economy reforms discussion", Criteria{SearchQuery: "pakistan economy reforms"})
	if !exact.IsMatch || exact.IsFuzzy {
		t.Fatalf("expected exact match with fuzzy disabled, got %+v", exact)
	}

	// Fuzzy-only candidates no longer match.
	fuzzy := engine.Evaluate("fiscal reforms and development progress continue", Criteria{Content: "economic reforms progress"})
	if fuzzy.IsMatch {
		t.Fatalf("expected no match with fuzzy disabled, got %+v", fuzzy)
	}
}

func outcomesEqual(a, b Outcome) bool {
	if a.IsMatch != b.IsMatch || a.IsFuzzy != b.IsFuzzy {
		return false
	}
	if math.Abs(a.Score-b.Score) > 1e-9 {
		return false
	}
	return reflect.DeepEqual(a.MatchedCriteria, b.MatchedCriteria)
}
