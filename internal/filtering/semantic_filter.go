package filtering

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/feedkit/feed-responder/internal/ai"
	"github.com/feedkit/feed-responder/internal/feed"
	"github.com/feedkit/feed-responder/internal/match"
)

// SemanticConfig configures the AI confirmation step.
type SemanticConfig struct {
	Enabled      bool
	Provider     string
	MinimumScore float64
}

// SemanticDeps aggregates dependencies of the semantic filter.
type SemanticDeps struct {
	Matcher  ai.Matcher
	Criteria match.Criteria
	Logger   *zap.Logger
}

type semanticFilter struct {
	disabled bool
	reason   string
	cfg      *SemanticConfig
	deps     *SemanticDeps
}

// NewSemantic creates the AI confirmation filter: posts the heuristic engine
// accepted are re-checked by an AI provider, and posts it deems irrelevant
// are dropped. Evaluation errors keep the post; the engine verdict stands.
func NewSemantic(cfg *SemanticConfig, deps *SemanticDeps) Filter {
	f := &semanticFilter{cfg: cfg, deps: deps}
	if cfg == nil || !cfg.Enabled {
		f.disabled = true
		f.reason = "disabled by configuration"
	}
	return f
}

func (f *semanticFilter) Name() string { return "semantic_assist" }

func (f *semanticFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *semanticFilter) IsEnabled() bool { return !f.disabled }

func (f *semanticFilter) Validate() error {
	if !f.IsEnabled() {
		return nil
	}
	if f.deps == nil || f.deps.Matcher == nil {
		return fmt.Errorf("ai matcher is required when the semantic filter is enabled")
	}
	return nil
}

func (f *semanticFilter) Apply(ctx context.Context, posts *feed.Posts) (*feed.Posts, Step, error) {
	initial := posts.Len()
	logger := f.deps.Logger

	kept := make([]*feed.Post, 0, len(posts.Items))
	for _, post := range posts.Items {
		assessment, err := f.deps.Matcher.Evaluate(ctx, f.deps.Criteria, post)
		if err != nil {
			if logger != nil {
				logger.Warn("AI evaluation failed",
					zap.String("post_id", post.ID),
					zap.Error(err),
				)
			}
			kept = append(kept, post)
			continue
		}

		if !assessment.Relevant {
			if logger != nil {
				logger.Info("post rejected by AI provider",
					zap.String("post_id", post.ID),
					zap.Float64("ai_score", assessment.Score),
					zap.String("reason", assessment.Reason),
				)
			}
			continue
		}

		if logger != nil {
			logger.Info("post confirmed by AI",
				zap.String("post_id", post.ID),
				zap.Float64("ai_score", assessment.Score),
			)
		}
		kept = append(kept, post)
	}
	posts.Items = kept

	left := posts.Len()
	return posts, Step{Initial: initial, Dropped: initial - left, Left: left}, nil
}

func (f *semanticFilter) Status() Status {
	details := map[string]string{}
	if f.cfg != nil {
		details["minimum_score"] = strconv.FormatFloat(f.cfg.MinimumScore, 'f', 2, 64)
		if f.cfg.Provider != "" {
			details["provider"] = f.cfg.Provider
		}
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
