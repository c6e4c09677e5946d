package driver

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/feedkit/feed-responder/internal/feed"
)

func TestEngageLikeAndComment(t *testing.T) {
	t.Parallel()

	recorder := NewRecorder()
	engager := NewEngager(recorder, nil, 0, zap.NewNop())

	posts := &feed.Posts{Items: []*feed.Post{
		{ID: "1", Handle: "alice", URL: "https://example.com/1"},
		{ID: "2", Handle: "bob", URL: "https://example.com/2"},
	}}

	err := engager.Engage(context.Background(), posts, []string{ActionLike, ActionComment}, "great point")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	calls := recorder.Calls()

	navigations := 0
	types := 0
	clicks := 0
	for _, call := range calls {
		switch call.Method {
		case "navigate":
			navigations++
		case "type":
			types++
			if call.Text != "great point" {
				t.Fatalf("unexpected comment text: %q", call.Text)
			}
		case "click":
			clicks++
		}
	}

	// Two posts, two actions each: a navigation and a click per action, a
	// type per comment.
	if navigations != 4 {
		t.Fatalf("expected 4 navigations, got %d", navigations)
	}
	if clicks != 4 {
		t.Fatalf("expected 4 clicks, got %d", clicks)
	}
	if types != 2 {
		t.Fatalf("expected 2 typed comments, got %d", types)
	}
}

func TestEngageRejectsUnknownAction(t *testing.T) {
	t.Parallel()

	engager := NewEngager(NewRecorder(), nil, 0, nil)
	posts := &feed.Posts{Items: []*feed.Post{{ID: "1"}}}

	if err := engager.Engage(context.Background(), posts, []string{"subscribe"}, ""); err == nil {
		t.Fatalf("expected error for unknown action")
	}
}

func TestEngageCommentRequiresMessage(t *testing.T) {
	t.Parallel()

	engager := NewEngager(NewRecorder(), nil, 0, nil)
	posts := &feed.Posts{Items: []*feed.Post{{ID: "1", URL: "https://example.com/1"}}}

	if err := engager.Engage(context.Background(), posts, []string{ActionComment}, "   "); err == nil {
		t.Fatalf("expected error for empty comment message")
	}
}
