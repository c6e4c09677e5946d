// Package feed holds the captured posts the responder works on and the
// engaged-history bookkeeping between runs. Posts arrive as capture files
// written by a page-driver session; this package never talks to a page
// itself.
package feed

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/feedkit/feed-responder/internal/match"
)

const (
	PostIDField     = "ID"
	PostHandleField = "Handle"
)

type Posts struct {
	Items []*Post
}

type Post struct {
	ID         string    `json:"id,omitempty"`
	Author     string    `json:"author,omitempty"`
	Handle     string    `json:"handle,omitempty"`
	Text       string    `json:"text,omitempty"`
	URL        string    `json:"url,omitempty"`
	CapturedAt time.Time `json:"captured_at,omitempty"`

	// Match is attached by the relevance filter for posts that survived it.
	Match *match.Outcome `json:"match,omitempty"`
}

func (p *Posts) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Items)
}

func (p *Posts) IDs() []string {
	ids := make([]string, 0, len(p.Items))
	for _, post := range p.Items {
		ids = append(ids, post.ID)
	}
	return ids
}

func (p *Posts) FindByID(id string) *Post {
	for _, post := range p.Items {
		if post.ID == id {
			return post
		}
	}
	return nil
}

// Exclude removes posts whose field value is in values and returns the IDs of
// the removed posts. Supported fields are PostIDField and PostHandleField.
func (p *Posts) Exclude(field string, values []string) []string {
	if len(values) == 0 {
		return nil
	}

	drop := make(map[string]struct{}, len(values))
	for _, v := range values {
		drop[v] = struct{}{}
	}

	removed := make([]string, 0)
	kept := make([]*Post, 0, len(p.Items))
	for _, post := range p.Items {
		key := post.ID
		if field == PostHandleField {
			key = post.Handle
		}
		if _, ok := drop[key]; ok {
			removed = append(removed, post.ID)
			continue
		}
		kept = append(kept, post)
	}
	p.Items = kept

	return removed
}

// ReportByAuthor groups posts by author for the interactive report, including
// the attached match verdicts.
func (p *Posts) ReportByAuthor() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, post := range p.Items {
		key := fmt.Sprintf("%s (@%s)", post.Author, post.Handle)
		entry := map[string]string{
			"id":   post.ID,
			"text": post.Text,
			"url":  post.URL,
		}
		if post.Match != nil {
			entry["match"] = fmt.Sprintf("%v", post.Match.IsMatch)
			entry["score"] = fmt.Sprintf("%.2f", post.Match.Score)
			entry["fuzzy"] = fmt.Sprintf("%v", post.Match.IsFuzzy)
		}
		report[key] = append(report[key], entry)
	}
	return report
}

func (p *Posts) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "posts_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return "", err
	}
	return file.Name(), nil
}
