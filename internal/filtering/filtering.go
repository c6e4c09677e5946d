// Package filtering narrows a captured post list down to the posts worth
// engaging. Filters run sequentially; the relevance filter wrapping the
// matching engine is the load-bearing step, the others drop junk and history
// around it.
package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/feedkit/feed-responder/internal/feed"
	"github.com/feedkit/feed-responder/internal/match"
)

// Filter represents a single filtering step applied to posts.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Validate() error
	Apply(ctx context.Context, posts *feed.Posts) (*feed.Posts, Step, error)
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

// statusProvider is implemented by filters that can supply detailed status information.
type statusProvider interface {
	Status() Status
}

// outcomeCollector is implemented by filters that record match outcomes.
type outcomeCollector interface {
	Outcomes() map[string]match.Outcome
}

// Filtering executes a fixed sequence of filters.
type Filtering struct {
	steps  []Filter
	logger *zap.Logger
}

func New(steps []Filter, logger *zap.Logger) *Filtering {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Filtering{steps: steps, logger: logger}
}

// DisableByName marks a filter with the provided name as disabled while keeping it in the list.
func (f *Filtering) DisableByName(name, reason string) {
	for _, step := range f.steps {
		if step.Name() == name {
			step.Disable(reason)
		}
	}
}

// RunFilters executes the enabled filters sequentially, returning the
// surviving posts and the match outcomes recorded along the way.
func (f *Filtering) RunFilters(ctx context.Context, posts *feed.Posts) (*feed.Posts, map[string]match.Outcome, error) {
	for _, step := range f.steps {
		if !step.IsEnabled() {
			continue
		}
		if err := step.Validate(); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", step.Name(), err)
		}
	}

	outcomes := make(map[string]match.Outcome)
	for _, step := range f.steps {
		if !step.IsEnabled() {
			f.logger.Info("filter disabled", zap.String("name", step.Name()))
			continue
		}

		next, info, err := step.Apply(ctx, posts)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		f.logger.Info("filter step",
			zap.String("name", step.Name()),
			zap.Int("initial", info.Initial),
			zap.Int("dropped", info.Dropped),
			zap.Int("left", info.Left),
		)

		posts = next

		if collector, ok := step.(outcomeCollector); ok {
			for id, outcome := range collector.Outcomes() {
				outcomes[id] = outcome
			}
		}
	}

	return posts, outcomes, nil
}

// Describe returns status entries for the configured filters.
func (f *Filtering) Describe() []Status {
	statuses := make([]Status, 0, len(f.steps))
	for _, step := range f.steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}
