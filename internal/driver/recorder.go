package driver

import (
	"context"
	"fmt"
	"sync"
)

// Call is one recorded driver invocation.
type Call struct {
	Method string
	URL    string
	CSS    string
	Text   string
}

// Recorder is a PageDriver that performs nothing and records every call. It
// backs dry runs and tests.
type Recorder struct {
	mu    sync.Mutex
	calls []Call
	next  int
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

// Calls returns a copy of everything recorded so far.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

func (r *Recorder) Navigate(_ context.Context, url string) error {
	r.record(Call{Method: "navigate", URL: url})
	return nil
}

func (r *Recorder) FindElement(_ context.Context, selectors []Selector) (ElementRef, error) {
	css := ""
	if len(selectors) > 0 {
		css = selectors[0].CSS
	}
	r.mu.Lock()
	r.next++
	ref := ElementRef{ID: fmt.Sprintf("el-%d", r.next)}
	r.calls = append(r.calls, Call{Method: "find", CSS: css})
	r.mu.Unlock()
	return ref, nil
}

func (r *Recorder) Click(_ context.Context, el ElementRef) error {
	r.record(Call{Method: "click", Text: el.ID})
	return nil
}

func (r *Recorder) TypeText(_ context.Context, el ElementRef, text string) error {
	r.record(Call{Method: "type", Text: text})
	return nil
}

func (r *Recorder) Screenshot(context.Context) ([]byte, error) {
	r.record(Call{Method: "screenshot"})
	return nil, nil
}

func (r *Recorder) record(c Call) {
	r.mu.Lock()
	r.calls = append(r.calls, c)
	r.mu.Unlock()
}
