// Package ai defines the optional AI-assisted relevance check that confirms
// posts the heuristic engine accepted before any engagement happens.
package ai

import (
	"context"

	"github.com/feedkit/feed-responder/internal/feed"
	"github.com/feedkit/feed-responder/internal/match"
)

// RelevanceAssessment is an AI provider's verdict on one post.
type RelevanceAssessment struct {
	Relevant bool
	Score    float64
	Reason   string
	Raw      string
}

// Matcher evaluates whether a post is relevant to the targeting criteria.
type Matcher interface {
	Evaluate(ctx context.Context, criteria match.Criteria, post *feed.Post) (*RelevanceAssessment, error)
}
