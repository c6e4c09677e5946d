package match

// Config tunes the matching policy for one Engine. The zero value is not
// usable; start from DefaultConfig and override fields as needed.
type Config struct {
	// FuzzyThreshold is the minimum fuzzy score required to accept a
	// non-exact match.
	FuzzyThreshold float64
	// EnableFuzzy enables approximate matching. When false only the exact
	// paths can produce a match.
	EnableFuzzy bool

	Policy  Policy
	Lexicon Lexicon
}

// Policy holds the empirically tuned scoring constants. Changing any of the
// defaults changes accepted-match rates materially and is a policy decision,
// not a bug fix.
type Policy struct {
	// MinCandidateLength is the minimum candidate length in runes; shorter
	// texts are rejected by the quality gate.
	MinCandidateLength int
	// MaxSymbolRatio rejects candidates whose share of characters outside
	// letters, digits and basic punctuation exceeds this ratio.
	MaxSymbolRatio float64
	// ContextOverlapRatio is the minimum share of the criteria's meaningful
	// words (longer than 3 runes) that must appear in the candidate for it
	// to pass the quality gate at all.
	ContextOverlapRatio float64
	// NearIdentity is the per-word similarity floor below which two tokens
	// are treated as unrelated.
	NearIdentity float64

	// FullAverageRatio, ReducedAverageRatio and SparseAverageRatio are the
	// tiered match-percentage bars of the fuzzy term score: at or above
	// FullAverageRatio the plain average stands; the two lower tiers cap
	// the result at ReducedCap and only when the average clears
	// StrongAverage (0.4 tier) or SparseStrongAverage (0.3 tier).
	FullAverageRatio    float64
	ReducedAverageRatio float64
	SparseAverageRatio  float64
	ReducedCap          float64
	StrongAverage       float64
	SparseStrongAverage float64

	// ExactTermRatio is the share of criteria terms that must appear
	// verbatim for the exact path, provided at least one hit is a
	// significant term (longer than SignificantTermLength runes).
	ExactTermRatio        float64
	SignificantTermLength int
	// QueryFuzzyHitRatio and ContentFuzzyHitRatio are the minimum shares of
	// terms that must score above SignificantFuzzyScore before a fuzzy
	// average is eligible to count.
	QueryFuzzyHitRatio    float64
	ContentFuzzyHitRatio  float64
	SignificantFuzzyScore float64
	// TopicBonus is added to a content score when a topic group overlaps
	// both sides; the bonused score never exceeds TopicBonusCap.
	TopicBonus    float64
	TopicBonusCap float64

	// HandleSubwordRatio and HandleQueryWordRatio gate the username+query
	// co-occurrence exact path.
	HandleSubwordRatio   float64
	HandleQueryWordRatio float64
	// MinFuzzyHandleLength is the minimum handle length (exclusive) for the
	// alias-based fuzzy fallback.
	MinFuzzyHandleLength int
	// HandleAliasScore is the fuzzy score granted when a handle alias
	// condition holds.
	HandleAliasScore float64

	// FuzzyScoreCeiling caps every fuzzy-path score strictly below 1.0,
	// which is reserved for exact matches. All-short-term criteria can
	// average a perfect fuzzy score while failing the exact path's
	// significant-term requirement; the ceiling keeps such matches fuzzy.
	FuzzyScoreCeiling float64
}

// HandleAlias allows a fuzzy username match for name-like handles: when the
// handle contains Handle and the candidate contains every word in TextWords,
// the handle is considered a fuzzy reference to the account.
type HandleAlias struct {
	Handle    string
	TextWords []string
}

// Lexicon is the injectable policy data: deny-lists and topic vocabularies
// the engine consults. All entries are matched case-insensitively.
type Lexicon struct {
	// SpamPhrases are engagement-bait substrings that disqualify a
	// candidate outright.
	SpamPhrases []string
	// TopicGroups are sets of related words; a group present on both the
	// criteria and candidate side earns the content topic bonus.
	TopicGroups [][]string
	// CommonHandles are handle fragments too generic for the fuzzy
	// username fallback.
	CommonHandles []string
	// HandleAliases enumerate the allowed fuzzy username conditions.
	HandleAliases []HandleAlias
}

// DefaultConfig returns the engine defaults: fuzzy matching enabled at a 0.75
// threshold with the default policy constants and lexicons.
func DefaultConfig() Config {
	return Config{
		FuzzyThreshold: 0.75,
		EnableFuzzy:    true,
		Policy:         DefaultPolicy(),
		Lexicon:        DefaultLexicon(),
	}
}

// DefaultPolicy returns the tuned scoring constants.
func DefaultPolicy() Policy {
	return Policy{
		MinCandidateLength:  10,
		MaxSymbolRatio:      0.30,
		ContextOverlapRatio: 0.30,
		NearIdentity:        0.85,

		FullAverageRatio:    0.50,
		ReducedAverageRatio: 0.40,
		SparseAverageRatio:  0.30,
		ReducedCap:          0.75,
		StrongAverage:       0.80,
		SparseStrongAverage: 0.85,

		ExactTermRatio:        0.70,
		SignificantTermLength: 4,
		QueryFuzzyHitRatio:    0.40,
		ContentFuzzyHitRatio:  0.30,
		SignificantFuzzyScore: 0.70,
		TopicBonus:            0.20,
		TopicBonusCap:         0.85,

		HandleSubwordRatio:   0.70,
		HandleQueryWordRatio: 0.50,
		MinFuzzyHandleLength: 5,
		HandleAliasScore:     0.80,

		FuzzyScoreCeiling: 0.99,
	}
}

// DefaultLexicon returns the deny-lists and vocabularies the engine is tuned
// with by default.
func DefaultLexicon() Lexicon {
	return Lexicon{
		SpamPhrases: []string{
			"follow me",
			"follow back",
			"click here",
			"dm me",
			"free money",
			"giveaway",
			"win big",
			"limited offer",
			"buy now",
			"check my bio",
		},
		TopicGroups: [][]string{
			{"economy", "economic", "financial", "fiscal", "budget", "inflation", "tax"},
			{"politics", "political", "government", "governance", "policy", "election"},
			{"reform", "reforms", "development", "progress", "change"},
		},
		CommonHandles: []string{
			"official",
			"united",
			"global",
			"daily",
			"world",
		},
		HandleAliases: []HandleAlias{
			{Handle: "khan", TextWords: []string{"imran", "khan"}},
		},
	}
}
