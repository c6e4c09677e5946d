package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/feedkit/feed-responder/internal/feed"
	"github.com/feedkit/feed-responder/internal/match"
)

type qualityFilter struct {
	engine   *match.Engine
	criteria match.Criteria
	logger   *zap.Logger
}

// NewQuality creates a filter that drops posts failing the engine's quality
// gate: too short, engagement bait, symbol spam, or no contextual overlap
// with the criteria.
func NewQuality(engine *match.Engine, criteria match.Criteria, logger *zap.Logger) Filter {
	return &qualityFilter{engine: engine, criteria: criteria, logger: logger}
}

func (f *qualityFilter) Name() string { return "quality" }

func (f *qualityFilter) Disable(string) {}

func (f *qualityFilter) IsEnabled() bool { return true }

func (f *qualityFilter) Validate() error {
	if f.engine == nil {
		return fmt.Errorf("matching engine is required")
	}
	return nil
}

func (f *qualityFilter) Apply(_ context.Context, posts *feed.Posts) (*feed.Posts, Step, error) {
	initial := posts.Len()

	dropped := make([]string, 0)
	kept := make([]*feed.Post, 0, len(posts.Items))
	for _, post := range posts.Items {
		if f.engine.CheckQuality(post.Text, f.criteria) {
			kept = append(kept, post)
			continue
		}
		dropped = append(dropped, post.ID)
	}
	posts.Items = kept

	if f.logger != nil && len(dropped) > 0 {
		f.logger.Info("excluding low quality posts",
			zap.Strings("excluded_posts", dropped),
			zap.Int("posts_left", posts.Len()),
		)
	}

	return posts, Step{Initial: initial, Dropped: len(dropped), Left: posts.Len()}, nil
}

func (f *qualityFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: true}
}
