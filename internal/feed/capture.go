package feed

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/mitchellh/mapstructure"
)

// Capture is the envelope a page-driver session writes after scraping a
// timeline: loosely-typed items plus session metadata.
type Capture struct {
	Source     string           `json:"source,omitempty"`
	CapturedAt time.Time        `json:"captured_at,omitempty"`
	Items      []map[string]any `json:"items"`
}

// LoadCapture reads a capture file and decodes its items into posts. Items
// are decoded leniently: unknown keys are ignored and missing ones are left
// zero, since the capture format follows whatever the page exposed.
func LoadCapture(path string) (*Posts, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading capture file: %w", err)
	}

	var capture Capture
	if err := json.Unmarshal(data, &capture); err != nil {
		return nil, fmt.Errorf("parsing capture file %q: %w", path, err)
	}

	var posts []*Post
	cfg := &mapstructure.DecoderConfig{
		Metadata:   nil,
		Result:     &posts,
		TagName:    "json",
		DecodeHook: mapstructure.StringToTimeHookFunc(time.RFC3339),
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(capture.Items); err != nil {
		return nil, fmt.Errorf("decoding capture items: %w", err)
	}

	kept := make([]*Post, 0, len(posts))
	for _, post := range posts {
		if post == nil || post.Text == "" {
			continue
		}
		if post.CapturedAt.IsZero() {
			post.CapturedAt = capture.CapturedAt
		}
		kept = append(kept, post)
	}

	return &Posts{Items: kept}, nil
}

// EngagedPosts is the history of posts already acted upon, persisted between
// runs so the responder never engages the same post twice.
type EngagedPosts struct {
	Items []*EngagedPost
}

type EngagedPost struct {
	ID        string
	URL       string
	Handle    string
	Action    string
	EngagedAt time.Time
}

// ToEngaged records every post in the collection as engaged with the given
// action.
func (p *Posts) ToEngaged(action string) *EngagedPosts {
	engaged := &EngagedPosts{}
	for _, post := range p.Items {
		engaged.Items = append(engaged.Items, &EngagedPost{
			ID:        post.ID,
			URL:       post.URL,
			Handle:    post.Handle,
			Action:    action,
			EngagedAt: time.Now().UTC(),
		})
	}
	return engaged
}

// GetEngagedPostsFromFile loads the engaged history. An empty file yields an
// empty history rather than an error.
func GetEngagedPostsFromFile(path string) (*EngagedPosts, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}
	if stat.Size() == 0 {
		return &EngagedPosts{}, nil
	}

	var engaged EngagedPosts
	if err := json.NewDecoder(file).Decode(&engaged); err != nil {
		return nil, err
	}
	return &engaged, nil
}

func (e *EngagedPosts) Append(s *EngagedPosts) {
	e.Items = append(e.Items, s.Items...)
}

func (e *EngagedPosts) PostIDs() []string {
	ids := make([]string, 0)
	for _, post := range e.Items {
		ids = append(ids, post.ID)
	}
	return ids
}

func (e *EngagedPosts) ToFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}
