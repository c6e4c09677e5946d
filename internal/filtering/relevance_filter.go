package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/feedkit/feed-responder/internal/feed"
	"github.com/feedkit/feed-responder/internal/logger"
	"github.com/feedkit/feed-responder/internal/match"
)

type relevanceFilter struct {
	engine   *match.Engine
	criteria match.Criteria
	logger   *zap.Logger
	outcomes map[string]match.Outcome
}

// NewRelevance creates the filter running the matching engine: posts the
// engine rejects are dropped, survivors get their outcome attached.
func NewRelevance(engine *match.Engine, criteria match.Criteria, logger *zap.Logger) Filter {
	return &relevanceFilter{engine: engine, criteria: criteria, logger: logger}
}

func (f *relevanceFilter) Name() string { return "relevance" }

func (f *relevanceFilter) Disable(string) {}

func (f *relevanceFilter) IsEnabled() bool { return true }

func (f *relevanceFilter) Validate() error {
	if f.engine == nil {
		return fmt.Errorf("matching engine is required")
	}
	if f.criteria.IsEmpty() {
		return fmt.Errorf("at least one targeting criterion is required")
	}
	return nil
}

func (f *relevanceFilter) Apply(_ context.Context, posts *feed.Posts) (*feed.Posts, Step, error) {
	initial := posts.Len()

	f.outcomes = make(map[string]match.Outcome)
	kept := make([]*feed.Post, 0, len(posts.Items))
	for _, post := range posts.Items {
		outcome := f.engine.Evaluate(post.Text, f.criteria)
		f.outcomes[post.ID] = outcome

		if f.logger != nil {
			f.logger.Debug("post evaluated",
				append([]zap.Field{zap.String("post_id", post.ID)}, logger.OutcomeFields(outcome)...)...,
			)
		}

		if !outcome.IsMatch {
			continue
		}

		attached := outcome
		post.Match = &attached
		kept = append(kept, post)
	}
	posts.Items = kept

	left := posts.Len()
	return posts, Step{Initial: initial, Dropped: initial - left, Left: left}, nil
}

// Outcomes returns the verdict for every post the filter saw, matched or not.
func (f *relevanceFilter) Outcomes() map[string]match.Outcome {
	if f.outcomes == nil {
		return map[string]match.Outcome{}
	}
	return f.outcomes
}

func (f *relevanceFilter) Status() Status {
	details := map[string]string{}
	if f.criteria.Username != "" {
		details["username"] = f.criteria.Username
	}
	if f.criteria.SearchQuery != "" {
		details["search_query"] = f.criteria.SearchQuery
	}
	if f.criteria.Content != "" {
		details["content"] = f.criteria.Content
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}
