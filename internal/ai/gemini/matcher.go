package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/feedkit/feed-responder/internal/ai"
	"github.com/feedkit/feed-responder/internal/feed"
	"github.com/feedkit/feed-responder/internal/logger"
	"github.com/feedkit/feed-responder/internal/match"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// criteriaCacher is implemented by generators that can pin the criteria
// payload in a server-side cache, so it is uploaded once per run instead of
// once per post.
type criteriaCacher interface {
	contentGenerator
	EnsureCriteriaCache(ctx context.Context, key, displayName, payload string) (string, error)
	GenerateContentWithCache(ctx context.Context, prompt, cacheName string) (string, error)
}

// Matcher asks Gemini whether a post is relevant to the targeting criteria.
type Matcher struct {
	generator contentGenerator
	minScore  float64
	logger    *zap.Logger
	maxLogLen int
}

//go:embed prompt.md
var promptTemplate string

const defaultMaxLogLength = 200

func NewMatcher(generator contentGenerator, minScore float64, maxLogLength int, log *zap.Logger) *Matcher {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Matcher{
		generator: generator,
		minScore:  minScore,
		logger:    log,
		maxLogLen: maxLogLength,
	}
}

func (m *Matcher) Evaluate(ctx context.Context, criteria match.Criteria, post *feed.Post) (*ai.RelevanceAssessment, error) {
	if criteria.IsEmpty() {
		return nil, fmt.Errorf("criteria are required")
	}
	if post == nil {
		return nil, fmt.Errorf("post is required")
	}

	criteriaPayload := map[string]any{
		"username":     criteria.Username,
		"search_query": criteria.SearchQuery,
		"content":      criteria.Content,
	}

	criteriaJSON, err := json.MarshalIndent(criteriaPayload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal criteria payload: %w", err)
	}

	postJSON, err := json.MarshalIndent(post, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal post payload: %w", err)
	}

	raw, err := m.generate(ctx, post.ID, string(criteriaJSON), string(postJSON))
	if err != nil {
		return nil, err
	}

	m.logger.Debug("gemini generate content response",
		zap.String("post_id", post.ID),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.TruncateForLog(raw, m.maxLogLen)),
	)

	assessment, err := parseResponse(raw)
	if err != nil {
		return nil, err
	}

	if m.minScore > 0 && !math.IsNaN(assessment.Score) && assessment.Score < m.minScore {
		m.logger.Debug("set relevant to false by score threshold",
			zap.String("post_id", post.ID),
			zap.Float64("score", assessment.Score),
			zap.Float64("threshold", m.minScore),
		)
		assessment.Relevant = false
	}

	assessment.Raw = raw
	return assessment, nil
}

// cachedCriteriaNote replaces the inline criteria block when the payload is
// already available to the model through cached content.
const cachedCriteriaNote = "(see the cached targeting criteria)"

// generate sends the relevance prompt. Generators supporting cached content
// get the criteria pinned server-side once and referenced per call; on any
// cache failure the criteria are sent inline instead.
func (m *Matcher) generate(ctx context.Context, postID, criteriaJSON, postJSON string) (string, error) {
	if cacher, ok := m.generator.(criteriaCacher); ok {
		cacheName, err := cacher.EnsureCriteriaCache(ctx, "criteria", "feed-responder-criteria", "Targeting criteria:\n"+criteriaJSON)
		if err != nil {
			m.logger.Debug("criteria cache unavailable, sending criteria inline",
				zap.String("post_id", postID),
				zap.Error(err),
			)
		} else {
			prompt := buildPrompt(cachedCriteriaNote, postJSON)
			m.logRequest(postID, prompt)
			return cacher.GenerateContentWithCache(ctx, prompt, cacheName)
		}
	}

	prompt := buildPrompt(criteriaJSON, postJSON)
	m.logRequest(postID, prompt)
	return m.generator.GenerateContent(ctx, prompt)
}

func (m *Matcher) logRequest(postID, prompt string) {
	m.logger.Debug("gemini generate content request",
		zap.String("post_id", postID),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, m.maxLogLen)),
	)
}

func buildPrompt(criteriaJSON, postJSON string) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Criteria:\n{{CRITERIA_JSON}}\n\nPost:\n{{POST_JSON}}\n\nJSON Response:"
	}
	prompt := strings.ReplaceAll(template, "{{CRITERIA_JSON}}", criteriaJSON)
	prompt = strings.ReplaceAll(prompt, "{{POST_JSON}}", postJSON)
	return prompt
}

func parseResponse(raw string) (*ai.RelevanceAssessment, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = extractJSON(cleaned)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	relevant := coerceBool(data["relevant"])
	score := coerceFloat(data["score"])
	reason := coerceString(data["reason"])

	if math.IsNaN(score) {
		score = 0
	}

	return &ai.RelevanceAssessment{
		Relevant: relevant,
		Score:    score,
		Reason:   reason,
	}, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func coerceBool(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		lower := strings.ToLower(strings.TrimSpace(val))
		return lower == "true" || lower == "yes"
	case float64:
		return val != 0
	default:
		return false
	}
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}
