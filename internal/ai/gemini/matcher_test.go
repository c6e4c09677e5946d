package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/feedkit/feed-responder/internal/feed"
	"github.com/feedkit/feed-responder/internal/match"
)

type stubGenerator struct {
	response   string
	err        error
	lastPrompt string
}

func (s *stubGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	s.lastPrompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func TestMatcherEvaluate(t *testing.T) {
	stub := &stubGenerator{response: `{"relevant": true, "score": 0.9, "reason": "discusses the targeted reforms"}`}
	matcher := NewMatcher(stub, 0.5, 0, zap.NewNop())

	criteria := match.Criteria{SearchQuery: "pakistan reforms"}
	post := &feed.Post{ID: "p1", Handle: "ImranKhanPTI", Text: "reforms are coming"}

	assessment, err := matcher.Evaluate(context.Background(), criteria, post)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !assessment.Relevant {
		t.Fatalf("expected relevant to be true")
	}
	if assessment.Score != 0.9 {
		t.Fatalf("expected score 0.9, got %v", assessment.Score)
	}
	if assessment.Reason == "" {
		t.Fatalf("expected reason to be populated")
	}
	if assessment.Raw == "" {
		t.Fatalf("expected raw response to be kept")
	}

	if !strings.Contains(stub.lastPrompt, "pakistan reforms") {
		t.Fatalf("expected criteria in prompt, got: %s", stub.lastPrompt)
	}
	if !strings.Contains(stub.lastPrompt, "reforms are coming") {
		t.Fatalf("expected post text in prompt, got: %s", stub.lastPrompt)
	}
}

func TestMatcherScoreThreshold(t *testing.T) {
	stub := &stubGenerator{response: `{"relevant": true, "score": 0.3, "reason": "weak overlap"}`}
	matcher := NewMatcher(stub, 0.5, 0, zap.NewNop())

	assessment, err := matcher.Evaluate(context.Background(), match.Criteria{Content: "reforms"}, &feed.Post{ID: "p1", Text: "x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if assessment.Relevant {
		t.Fatalf("expected threshold to flip relevant to false: %+v", assessment)
	}
}

func TestMatcherRequiresInputs(t *testing.T) {
	matcher := NewMatcher(&stubGenerator{}, 0, 0, nil)

	if _, err := matcher.Evaluate(context.Background(), match.Criteria{}, &feed.Post{ID: "p1"}); err == nil {
		t.Fatalf("expected error for empty criteria")
	}
	if _, err := matcher.Evaluate(context.Background(), match.Criteria{Content: "x"}, nil); err == nil {
		t.Fatalf("expected error for nil post")
	}
}

type cachingStubGenerator struct {
	stubGenerator
	cacheName   string
	ensureErr   error
	ensureCalls int
	cachedCalls int
	lastCache   string
}

func (s *cachingStubGenerator) EnsureCriteriaCache(_ context.Context, _, _, _ string) (string, error) {
	s.ensureCalls++
	if s.ensureErr != nil {
		return "", s.ensureErr
	}
	return s.cacheName, nil
}

func (s *cachingStubGenerator) GenerateContentWithCache(_ context.Context, prompt, cacheName string) (string, error) {
	s.cachedCalls++
	s.lastCache = cacheName
	s.lastPrompt = prompt
	return s.response, nil
}

func TestMatcherUsesCriteriaCache(t *testing.T) {
	stub := &cachingStubGenerator{
		stubGenerator: stubGenerator{response: `{"relevant": true, "score": 0.9, "reason": "ok"}`},
		cacheName:     "caches/abc123",
	}
	matcher := NewMatcher(stub, 0, 0, zap.NewNop())

	criteria := match.Criteria{SearchQuery: "pakistan reforms"}
	for _, post := range []*feed.Post{
		{ID: "p1", Text: "reforms are coming"},
		{ID: "p2", Text: "more reform talk"},
	} {
		if _, err := matcher.Evaluate(context.Background(), criteria, post); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if stub.cachedCalls != 2 {
		t.Fatalf("expected both calls to use the cache, got %d", stub.cachedCalls)
	}
	if stub.lastCache != "caches/abc123" {
		t.Fatalf("unexpected cache name: %q", stub.lastCache)
	}
	if strings.Contains(stub.lastPrompt, "pakistan reforms") {
		t.Fatalf("cached calls must not repeat the criteria inline: %s", stub.lastPrompt)
	}
	if !strings.Contains(stub.lastPrompt, "more reform talk") {
		t.Fatalf("expected post text in prompt, got: %s", stub.lastPrompt)
	}
}

func TestMatcherCacheFailureFallsBackInline(t *testing.T) {
	stub := &cachingStubGenerator{
		stubGenerator: stubGenerator{response: `{"relevant": true, "score": 0.9, "reason": "ok"}`},
		ensureErr:     errors.New("cache quota exceeded"),
	}
	matcher := NewMatcher(stub, 0, 0, zap.NewNop())

	criteria := match.Criteria{SearchQuery: "pakistan reforms"}
	if _, err := matcher.Evaluate(context.Background(), criteria, &feed.Post{ID: "p1", Text: "reforms are coming"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stub.cachedCalls != 0 {
		t.Fatalf("expected no cached calls after a cache failure, got %d", stub.cachedCalls)
	}
	if !strings.Contains(stub.lastPrompt, "pakistan reforms") {
		t.Fatalf("expected inline criteria after cache failure, got: %s", stub.lastPrompt)
	}
}

func TestParseResponseFencedJSON(t *testing.T) {
	raw := "```json\n{\"relevant\": \"yes\", \"score\": \"0.8\", \"reason\": \"ok\"}\n```"

	assessment, err := parseResponse(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !assessment.Relevant || assessment.Score != 0.8 {
		t.Fatalf("unexpected assessment: %+v", assessment)
	}
}
