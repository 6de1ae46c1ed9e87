// File: internal/browser/page.go

// Package browser provides the controlled-browser abstraction the rest of
// the application is written against. Components talk to a Page and address
// nodes through named Descriptors; the chromedp-backed implementation lives
// in chrome.go so everything above it can be tested with in-memory fakes.
package browser

import (
	"context"
	"errors"
)

// ErrNotFound is returned by the Find methods when no strategy of the
// descriptor matches anything in the document.
var ErrNotFound = errors.New("browser: element not found")

// Element is a stable handle to a DOM node, addressed by its absolute XPath
// at the time it was found. Handles go stale when the page re-renders the
// node; callers re-query rather than caching across navigation or scrolls.
type Element struct {
	path string
}

// NewElement builds an element handle from an absolute XPath. Exposed for
// test fakes; production code receives elements from Page queries.
func NewElement(path string) Element {
	return Element{path: path}
}

// Path returns the absolute XPath of the element.
func (e Element) Path() string { return e.path }

// IsZero reports whether the handle refers to nothing.
func (e Element) IsZero() bool { return e.path == "" }

// Descriptor names a kind of node and carries the ordered XPath strategies
// used to locate it. Strategies are tried in order and the first one that
// matches wins, so the most specific selector goes first and the loosest
// fallback last. Platform markup churns; keeping every selector here means
// a layout change is a one-file fix.
type Descriptor struct {
	Name       string
	Strategies []string
}

// Page is the surface the engagement and compose flows drive. All methods
// honor context cancellation and deadlines.
type Page interface {
	// Navigate loads the URL and waits for the document to become ready.
	Navigate(ctx context.Context, url string) error
	// CurrentURL returns the location of the active document.
	CurrentURL(ctx context.Context) (string, error)

	// FindFirst returns the first element matched by any of the
	// descriptor's strategies, or ErrNotFound.
	FindFirst(ctx context.Context, d Descriptor) (Element, error)
	// FindAll returns every element matched by the first strategy that
	// matches anything. An empty slice means no strategy matched.
	FindAll(ctx context.Context, d Descriptor) ([]Element, error)
	// FindWithin scopes the search to descendants of root.
	FindWithin(ctx context.Context, root Element, d Descriptor) (Element, error)
	// FindAllWithin scopes FindAll to descendants of root.
	FindAllWithin(ctx context.Context, root Element, d Descriptor) ([]Element, error)

	// Click clicks the element, falling back to a synthetic DOM click when
	// the input-driven click is intercepted by an overlay.
	Click(ctx context.Context, el Element) error
	// Focus gives the element keyboard focus.
	Focus(ctx context.Context, el Element) error
	// SendKeys types text into the element through the input pipeline.
	SendKeys(ctx context.Context, el Element, text string) error
	// KeyPress sends a single key (including control keys such as End or
	// Backspace) to whatever currently holds focus.
	KeyPress(ctx context.Context, key string) error
	// SetText replaces the element's content directly and fires an input
	// event. Used as the fallback when paced typing fails.
	SetText(ctx context.Context, el Element, text string) error
	// UploadFiles attaches local files to a file input element.
	UploadFiles(ctx context.Context, el Element, paths []string) error

	// Text returns the visible text of the element.
	Text(ctx context.Context, el Element) (string, error)
	// Attribute returns the named attribute and whether it is present.
	Attribute(ctx context.Context, el Element, name string) (string, bool, error)
	// SetAttribute writes an attribute on the element.
	SetAttribute(ctx context.Context, el Element, name, value string) error
	// IsVisible reports whether the element takes up space in the layout.
	IsVisible(ctx context.Context, el Element) (bool, error)

	// ScrollIntoView brings the element into the viewport.
	ScrollIntoView(ctx context.Context, el Element) error
	// ScrollBy scrolls the window vertically by the given fraction of the
	// viewport height (negative scrolls up).
	ScrollBy(ctx context.Context, viewportFraction float64) error
	// ScrollToBottom jumps to the bottom of the document.
	ScrollToBottom(ctx context.Context) error
	// PageHeight returns the current scrollable height of the document.
	PageHeight(ctx context.Context) (float64, error)

	// ExecuteScript evaluates a JavaScript expression, unmarshalling the
	// result into out when out is non-nil.
	ExecuteScript(ctx context.Context, expr string, out any) error
}
