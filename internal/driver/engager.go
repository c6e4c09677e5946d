package driver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/feedkit/feed-responder/internal/feed"
	"github.com/feedkit/feed-responder/internal/utils"
)

// Supported engagement actions.
const (
	ActionLike    = "like"
	ActionComment = "comment"
	ActionRepost  = "repost"
)

// ActionSelectors maps an action to the selectors used to find its control.
// Values come from caller configuration; the defaults are generic
// data-attribute selectors.
type ActionSelectors map[string][]Selector

// DefaultSelectors returns the generic selector set used when the
// configuration provides none.
func DefaultSelectors() ActionSelectors {
	return ActionSelectors{
		ActionLike:    {{CSS: `[data-testid="like"]`}, {CSS: `[aria-label="Like"]`}},
		ActionComment: {{CSS: `[data-testid="reply"]`}, {CSS: `[aria-label="Reply"]`}},
		ActionRepost:  {{CSS: `[data-testid="retweet"]`}, {CSS: `[aria-label="Repost"]`}},
	}
}

// Engager performs engagement actions on matched posts through a PageDriver,
// pausing between actions.
type Engager struct {
	driver    PageDriver
	selectors ActionSelectors
	pause     time.Duration
	logger    *zap.Logger
}

func NewEngager(d PageDriver, selectors ActionSelectors, pause time.Duration, logger *zap.Logger) *Engager {
	if selectors == nil {
		selectors = DefaultSelectors()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engager{driver: d, selectors: selectors, pause: pause, logger: logger}
}

// Engage applies the requested actions to every post in order. A comment
// action types message into the reply control before clicking. Engage stops
// at the first error; posts already processed stay processed.
func (e *Engager) Engage(ctx context.Context, posts *feed.Posts, actions []string, message string) error {
	for _, action := range actions {
		if _, ok := e.selectors[action]; !ok {
			return fmt.Errorf("unsupported action: %s", action)
		}
	}

	for _, post := range posts.Items {
		for _, action := range actions {
			if err := e.engageOne(ctx, post, action, message); err != nil {
				return fmt.Errorf("%s %s: %w", action, post.ID, err)
			}

			e.logger.Info("engaged post",
				zap.String("post_id", post.ID),
				zap.String("handle", post.Handle),
				zap.String("action", action),
			)

			if err := utils.WaitFor(ctx, e.pause); err != nil {
				return err
			}
		}
	}

	e.logger.Info("engagement finished",
		zap.Int("count", posts.Len()),
		zap.String("actions", strings.Join(actions, ",")),
	)
	return nil
}

func (e *Engager) engageOne(ctx context.Context, post *feed.Post, action, message string) error {
	if err := e.driver.Navigate(ctx, post.URL); err != nil {
		return fmt.Errorf("navigate: %w", err)
	}

	el, err := e.driver.FindElement(ctx, e.selectors[action])
	if err != nil {
		return fmt.Errorf("find control: %w", err)
	}

	if action == ActionComment {
		if strings.TrimSpace(message) == "" {
			return fmt.Errorf("comment action requires a message")
		}
		if err := e.driver.TypeText(ctx, el, message); err != nil {
			return fmt.Errorf("type comment: %w", err)
		}
	}

	return e.driver.Click(ctx, el)
}
