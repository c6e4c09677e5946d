package match

import (
	"reflect"
	"testing"
)

func TestEvaluateUsername(t *testing.T) {
	t.Parallel()

	engine := New(DefaultConfig())

	tests := []struct {
		name     string
		text     string
		criteria Criteria
		expect   Outcome
	}{
		{
			name:     "at-form is exact",
			text:     "@ImranKhanPTI is speaking at the rally",
			criteria: Criteria{Username: "ImranKhanPTI"},
			expect:   exactMatch(LabelUsername),
		},
		{
			name:     "space-surrounded handle is exact",
			text:     "watch ImranKhanPTI address the assembly",
			criteria: Criteria{Username: "ImranKhanPTI"},
			expect:   exactMatch(LabelUsername),
		},
		{
			name:     "handle anchoring the start is exact",
			text:     "ImranKhanPTI spoke about reforms",
			criteria: Criteria{Username: "ImranKhanPTI"},
			expect:   exactMatch(LabelUsername),
		},
		{
			name:     "bare substring is not a username match",
			text:     "khanacademy posts videos about math stuff",
			criteria: Criteria{Username: "khan"},
			expect:   noMatch(),
		},
		{
			name:     "handle and query co-occurrence is exact",
			text:     "imran khan outlines pakistan reforms agenda",
			criteria: Criteria{Username: "ImranKhan", SearchQuery: "pakistan reforms"},
			expect:   exactMatch(LabelUsername),
		},
		{
			name:     "alias condition allows a fuzzy handle",
			text:     "imran khan addressed the nation yesterday evening",
			criteria: Criteria{Username: "KhanSupporter"},
			expect: Outcome{
				IsMatch:         true,
				Score:           0.8,
				MatchedCriteria: []string{"username (fuzzy)"},
				IsFuzzy:         true,
			},
		},
		{
			name:     "common-word handle never matches fuzzily",
			text:     "officially announced measures today across provinces",
			criteria: Criteria{Username: "Official"},
			expect:   noMatch(),
		},
		{
			name:     "short handle has no fuzzy fallback",
			text:     "imran khan addressed the nation yesterday evening",
			criteria: Criteria{Username: "pti"},
			expect:   noMatch(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := engine.Evaluate(tt.text, tt.criteria)
			if !reflect.DeepEqual(got, tt.expect) {
				t.Fatalf("Evaluate(%q, %+v) = %+v, want %+v", tt.text, tt.criteria, got, tt.expect)
			}
		})
	}
}

func TestHandleSubwords(t *testing.T) {
	t.Parallel()

	tests := []struct {
		handle string
		expect []string
	}{
		{"ImranKhanPTI", []string{"imran", "khan", "pti"}},
		{"news_watch", []string{"news", "watch"}},
		{"ab", nil},
		{"PakistanDaily1", []string{"pakistan", "daily"}},
	}

	for _, tt := range tests {
		if got := handleSubwords(tt.handle); !reflect.DeepEqual(got, tt.expect) {
			t.Fatalf("handleSubwords(%q) = %v, want %v", tt.handle, got, tt.expect)
		}
	}
}
