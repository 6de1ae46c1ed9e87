// File: internal/browser/browsertest/fake.go

// Package browsertest provides an in-memory Page implementation for testing
// the flows that drive a browser. Nodes are registered by path, queries
// dispatch on Descriptor.Name, and every interaction is recorded so tests
// can assert on what the flow did.
package browsertest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/xkilldash9x/feedpilot/internal/browser"
)

// Node is a fake DOM node. Register nodes with AddNode and wire them to a
// descriptor name with Register / RegisterWithin.
type Node struct {
	Path       string
	Text       string
	Attributes map[string]string
	Visible    bool
}

// Call records one interaction against the fake page.
type Call struct {
	Method string
	Path   string
	Arg    string
}

// FakePage implements browser.Page in memory.
type FakePage struct {
	mu sync.Mutex

	nodes map[string]*Node
	// results maps descriptor name to node paths for document-scope queries.
	results map[string][]string
	// scoped maps "rootPath|descriptor" to node paths for Within queries.
	scoped map[string][]string
	// fallback, when set, answers Within queries that have no scoped entry.
	fallbackToGlobal bool

	url        string
	pageHeight float64
	focused    string

	// Hooks let a test override behavior per call. A nil hook means the
	// default in-memory behavior.
	ClickErr   map[string]error
	NavigateFn func(url string) error
	OnScroll   func()

	Calls []Call
}

// New returns an empty fake page.
func New() *FakePage {
	return &FakePage{
		nodes:            map[string]*Node{},
		results:          map[string][]string{},
		scoped:           map[string][]string{},
		fallbackToGlobal: true,
		ClickErr:         map[string]error{},
		pageHeight:       1000,
	}
}

// AddNode registers a node and returns its element handle.
func (f *FakePage) AddNode(n Node) browser.Element {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n.Attributes == nil {
		n.Attributes = map[string]string{}
	}
	node := n
	f.nodes[n.Path] = &node
	return browser.NewElement(n.Path)
}

// Register wires document-scope lookups of the descriptor name to the given
// node paths, replacing any previous wiring.
func (f *FakePage) Register(descriptorName string, paths ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results[descriptorName] = paths
}

// RegisterWithin wires lookups of the descriptor scoped to root.
func (f *FakePage) RegisterWithin(root browser.Element, descriptorName string, paths ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scoped[root.Path()+"|"+descriptorName] = paths
}

// Node returns the registered node at path, or nil.
func (f *FakePage) Node(path string) *Node {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.nodes[path]
}

// SetPageHeight sets the value returned by PageHeight.
func (f *FakePage) SetPageHeight(h float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pageHeight = h
}

// Focused returns the path of the element that last received focus.
func (f *FakePage) Focused() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.focused
}

// CallsTo returns the recorded calls for one method.
func (f *FakePage) CallsTo(method string) []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Call
	for _, c := range f.Calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// TypedInto concatenates everything sent to the element via SendKeys and
// KeyPress while it held focus.
func (f *FakePage) TypedInto(path string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var b strings.Builder
	for _, c := range f.Calls {
		if c.Method == "SendKeys" && c.Path == path {
			b.WriteString(c.Arg)
		}
	}
	return b.String()
}

func (f *FakePage) record(method, path, arg string) {
	f.Calls = append(f.Calls, Call{Method: method, Path: path, Arg: arg})
}

func (f *FakePage) Navigate(_ context.Context, url string) error {
	f.mu.Lock()
	f.record("Navigate", url, "")
	f.url = url
	fn := f.NavigateFn
	f.mu.Unlock()
	if fn != nil {
		return fn(url)
	}
	return nil
}

func (f *FakePage) CurrentURL(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.url, nil
}

// SetCurrentURL sets the location reported by CurrentURL.
func (f *FakePage) SetCurrentURL(url string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.url = url
}

func (f *FakePage) lookup(rootPath, name string) []string {
	if rootPath != "" {
		if paths, ok := f.scoped[rootPath+"|"+name]; ok {
			return paths
		}
		if !f.fallbackToGlobal {
			return nil
		}
	}
	return f.results[name]
}

func (f *FakePage) FindFirst(_ context.Context, d browser.Descriptor) (browser.Element, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	paths := f.lookup("", d.Name)
	if len(paths) == 0 {
		return browser.Element{}, fmt.Errorf("%s: %w", d.Name, browser.ErrNotFound)
	}
	return browser.NewElement(paths[0]), nil
}

func (f *FakePage) FindAll(_ context.Context, d browser.Descriptor) ([]browser.Element, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return elements(f.lookup("", d.Name)), nil
}

func (f *FakePage) FindWithin(_ context.Context, root browser.Element, d browser.Descriptor) (browser.Element, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	paths := f.lookup(root.Path(), d.Name)
	if len(paths) == 0 {
		return browser.Element{}, fmt.Errorf("%s: %w", d.Name, browser.ErrNotFound)
	}
	return browser.NewElement(paths[0]), nil
}

func (f *FakePage) FindAllWithin(_ context.Context, root browser.Element, d browser.Descriptor) ([]browser.Element, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return elements(f.lookup(root.Path(), d.Name)), nil
}

func (f *FakePage) Click(_ context.Context, el browser.Element) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Click", el.Path(), "")
	if err, ok := f.ClickErr[el.Path()]; ok {
		return err
	}
	return nil
}

func (f *FakePage) Focus(_ context.Context, el browser.Element) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Focus", el.Path(), "")
	f.focused = el.Path()
	return nil
}

func (f *FakePage) SendKeys(_ context.Context, el browser.Element, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("SendKeys", el.Path(), text)
	if n, ok := f.nodes[el.Path()]; ok {
		n.Text += text
	}
	return nil
}

func (f *FakePage) KeyPress(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("KeyPress", f.focused, key)
	if n, ok := f.nodes[f.focused]; ok {
		switch key {
		case "Backspace":
			if len(n.Text) > 0 {
				n.Text = n.Text[:len(n.Text)-1]
			}
		case "End", "Enter", "Escape":
		default:
			n.Text += key
		}
	}
	return nil
}

func (f *FakePage) SetText(_ context.Context, el browser.Element, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("SetText", el.Path(), text)
	if n, ok := f.nodes[el.Path()]; ok {
		n.Text = text
	}
	return nil
}

func (f *FakePage) UploadFiles(_ context.Context, el browser.Element, paths []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UploadFiles", el.Path(), strings.Join(paths, ","))
	return nil
}

func (f *FakePage) Text(_ context.Context, el browser.Element) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n, ok := f.nodes[el.Path()]; ok {
		return n.Text, nil
	}
	return "", nil
}

func (f *FakePage) Attribute(_ context.Context, el browser.Element, name string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n, ok := f.nodes[el.Path()]; ok {
		v, present := n.Attributes[name]
		return v, present, nil
	}
	return "", false, nil
}

func (f *FakePage) SetAttribute(_ context.Context, el browser.Element, name, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("SetAttribute", el.Path(), name+"="+value)
	if n, ok := f.nodes[el.Path()]; ok {
		n.Attributes[name] = value
	}
	return nil
}

func (f *FakePage) IsVisible(_ context.Context, el browser.Element) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n, ok := f.nodes[el.Path()]; ok {
		return n.Visible, nil
	}
	return false, nil
}

func (f *FakePage) ScrollIntoView(_ context.Context, el browser.Element) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ScrollIntoView", el.Path(), "")
	return nil
}

func (f *FakePage) ScrollBy(_ context.Context, fraction float64) error {
	f.mu.Lock()
	f.record("ScrollBy", "", fmt.Sprintf("%.2f", fraction))
	hook := f.OnScroll
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	return nil
}

func (f *FakePage) ScrollToBottom(ctx context.Context) error {
	f.mu.Lock()
	f.record("ScrollToBottom", "", "")
	hook := f.OnScroll
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	return nil
}

func (f *FakePage) PageHeight(context.Context) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pageHeight, nil
}

func (f *FakePage) ExecuteScript(_ context.Context, expr string, out any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ExecuteScript", "", expr)
	return nil
}

func elements(paths []string) []browser.Element {
	els := make([]browser.Element, 0, len(paths))
	for _, p := range paths {
		els = append(els, browser.NewElement(p))
	}
	return els
}

var _ browser.Page = (*FakePage)(nil)
