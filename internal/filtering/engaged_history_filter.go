package filtering

import (
	"context"
	"os"
	"strconv"

	"go.uber.org/zap"

	"github.com/feedkit/feed-responder/internal/feed"
)

const forceFlagSetMsg = "force flag is set"

// EngagedHistoryConfig configures the engaged-history filter.
type EngagedHistoryConfig struct {
	// Path is the engaged-history file. An empty path disables the check.
	Path string
	// Ignore keeps already-engaged posts in the list.
	Ignore bool
}

type engagedHistoryFilter struct {
	cfg    *EngagedHistoryConfig
	logger *zap.Logger
}

// NewEngagedHistory creates a filter that removes posts already engaged in a
// previous run.
func NewEngagedHistory(cfg *EngagedHistoryConfig, logger *zap.Logger) Filter {
	if cfg == nil {
		cfg = &EngagedHistoryConfig{}
	}
	return &engagedHistoryFilter{cfg: cfg, logger: logger}
}

func (f *engagedHistoryFilter) Name() string { return "engaged_history" }

func (f *engagedHistoryFilter) Disable(string) {}

func (f *engagedHistoryFilter) IsEnabled() bool { return true }

func (f *engagedHistoryFilter) Validate() error { return nil }

func (f *engagedHistoryFilter) Apply(_ context.Context, posts *feed.Posts) (*feed.Posts, Step, error) {
	initial := posts.Len()
	if f.cfg.Ignore {
		if f.logger != nil {
			f.logger.Info("ignoring already engaged posts", zap.String("reason", forceFlagSetMsg))
		}
		return posts, Step{Initial: initial, Dropped: 0, Left: posts.Len()}, nil
	}
	if f.cfg.Path == "" {
		return posts, Step{Initial: initial, Dropped: 0, Left: posts.Len()}, nil
	}

	engaged, err := feed.GetEngagedPostsFromFile(f.cfg.Path)
	if err != nil {
		// First run: no history yet.
		if os.IsNotExist(err) {
			return posts, Step{Initial: initial, Dropped: 0, Left: posts.Len()}, nil
		}
		return posts, Step{}, err
	}

	excluded := posts.Exclude(feed.PostIDField, engaged.PostIDs())
	if f.logger != nil && len(excluded) > 0 {
		f.logger.Info("excluding posts based on engaged history",
			zap.String("path", f.cfg.Path),
			zap.Strings("excluded_posts", excluded),
			zap.Int("posts_left", posts.Len()),
		)
	}

	return posts, Step{Initial: initial, Dropped: len(excluded), Left: posts.Len()}, nil
}

func (f *engagedHistoryFilter) Status() Status {
	details := map[string]string{
		"exclude_engaged": strconv.FormatBool(!f.cfg.Ignore),
	}
	if f.cfg.Path != "" {
		details["path"] = f.cfg.Path
	}
	reason := ""
	if f.cfg.Ignore {
		reason = "skip requested via flag"
	}
	return Status{Name: f.Name(), Enabled: true, Reason: reason, Details: details}
}
