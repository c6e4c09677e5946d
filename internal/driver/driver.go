// Package driver defines the contract with the page driver — the external
// component that actually steers a browser — and the engagement logic that
// consumes match verdicts through it. No real driver lives here; the
// responder ships a Recorder that turns a run into an inspectable plan.
package driver

import "context"

// Selector addresses an element on the page. Selector values are caller
// configuration; this package attaches no meaning to them.
type Selector struct {
	CSS string
}

// ElementRef is an opaque handle to a located element, valid only for the
// driver that produced it.
type ElementRef struct {
	ID string
}

// PageDriver is the surface the page driver exposes. Implementations live
// outside this repository.
type PageDriver interface {
	Navigate(ctx context.Context, url string) error
	// FindElement tries each selector in order and returns the first hit.
	FindElement(ctx context.Context, selectors []Selector) (ElementRef, error)
	Click(ctx context.Context, el ElementRef) error
	TypeText(ctx context.Context, el ElementRef, text string) error
	Screenshot(ctx context.Context) ([]byte, error)
}
