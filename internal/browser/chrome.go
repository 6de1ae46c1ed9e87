// File: internal/browser/chrome.go
package browser

import (
	"context"
	"fmt"
	"strings"
	"sync"

	cdppage "github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/feedpilot/internal/config"
)

// Session owns a launched browser and the single tab the automation drives.
type Session struct {
	id string

	allocCtx    context.Context
	allocCancel context.CancelFunc
	tabCtx      context.Context
	tabCancel   context.CancelFunc

	page   *ChromePage
	logger *zap.Logger

	mu       sync.Mutex
	isClosed bool
}

// NewSession launches a browser per the config and connects a tab.
func NewSession(ctx context.Context, cfg config.BrowserConfig, logger *zap.Logger) (*Session, error) {
	sessionID := uuid.New().String()
	sessionLogger := logger.With(zap.String("session_id", sessionID))

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(cfg.WindowWidth, cfg.WindowHeight),
	)
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	// Auto-accept JavaScript dialogs. Navigating away from an unsaved
	// draft raises a beforeunload prompt that would otherwise hang the tab.
	chromedp.ListenTarget(tabCtx, func(ev any) {
		if _, ok := ev.(*cdppage.EventJavascriptDialogOpening); ok {
			go func() {
				if err := chromedp.Run(tabCtx, cdppage.HandleJavaScriptDialog(true)); err != nil {
					sessionLogger.Debug("Dialog dismissal failed.", zap.Error(err))
				}
			}()
		}
	})

	// Force target creation so failures surface here instead of on the
	// first navigation.
	if err := chromedp.Run(tabCtx); err != nil {
		tabCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	s := &Session{
		id:          sessionID,
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		tabCtx:      tabCtx,
		tabCancel:   tabCancel,
		logger:      sessionLogger,
	}
	s.page = &ChromePage{ctx: tabCtx, logger: sessionLogger}
	sessionLogger.Info("Browser session started.", zap.Bool("headless", cfg.Headless))
	return s, nil
}

// ID returns the session identifier used in logs.
func (s *Session) ID() string { return s.id }

// Page returns the driven tab.
func (s *Session) Page() *ChromePage { return s.page }

// Close shuts the tab and the browser down. Safe to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isClosed {
		return
	}
	s.isClosed = true
	s.tabCancel()
	s.allocCancel()
	s.logger.Info("Browser session closed.")
}

// ChromePage implements Page over a chromedp tab context.
type ChromePage struct {
	ctx    context.Context
	logger *zap.Logger
}

var _ Page = (*ChromePage)(nil)

// run executes chromedp actions on the tab, honoring the caller's context
// for cancellation and deadline.
func (p *ChromePage) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(p.ctx)
	defer cancel()
	if dl, ok := ctx.Deadline(); ok {
		runCtx, cancel = context.WithDeadline(runCtx, dl)
		defer cancel()
	}
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(runCtx, actions...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

func (p *ChromePage) Navigate(ctx context.Context, url string) error {
	err := p.run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

func (p *ChromePage) CurrentURL(ctx context.Context) (string, error) {
	var url string
	if err := p.run(ctx, chromedp.Location(&url)); err != nil {
		return "", err
	}
	return url, nil
}

// findPathsScript evaluates an XPath expression (optionally scoped to the
// node at rootPath) and returns the absolute XPath of every match. Absolute
// paths are what let us hand out stable Element handles without holding CDP
// node IDs across page mutations.
const findPathsScript = `(function(expr, rootPath) {
	function absPath(el) {
		if (!el || el.nodeType !== 1) return '';
		if (el === document.documentElement) return '/html';
		var ix = 1, sib = el.previousSibling;
		while (sib) {
			if (sib.nodeType === 1 && sib.nodeName === el.nodeName) ix++;
			sib = sib.previousSibling;
		}
		return absPath(el.parentNode) + '/' + el.nodeName.toLowerCase() + '[' + ix + ']';
	}
	var ctxNode = document;
	if (rootPath) {
		var r = document.evaluate(rootPath, document, null,
			XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue;
		if (!r) return [];
		ctxNode = r;
	}
	var res;
	try {
		res = document.evaluate(expr, ctxNode, null,
			XPathResult.ORDERED_NODE_SNAPSHOT_TYPE, null);
	} catch (e) {
		return [];
	}
	var out = [];
	for (var i = 0; i < res.snapshotLength; i++) {
		var path = absPath(res.snapshotItem(i));
		if (path) out.push(path);
	}
	return out;
})(%s, %s)`

func (p *ChromePage) findPaths(ctx context.Context, rootPath, expr string) ([]string, error) {
	script := fmt.Sprintf(findPathsScript, jsString(expr), jsString(rootPath))
	var paths []string
	if err := p.run(ctx, chromedp.Evaluate(script, &paths)); err != nil {
		return nil, fmt.Errorf("evaluate %q: %w", expr, err)
	}
	return paths, nil
}

func (p *ChromePage) findAll(ctx context.Context, rootPath string, d Descriptor) ([]Element, error) {
	for _, expr := range d.Strategies {
		paths, err := p.findPaths(ctx, rootPath, expr)
		if err != nil {
			return nil, err
		}
		if len(paths) == 0 {
			continue
		}
		els := make([]Element, 0, len(paths))
		for _, path := range paths {
			els = append(els, Element{path: path})
		}
		return els, nil
	}
	return nil, nil
}

func (p *ChromePage) FindAll(ctx context.Context, d Descriptor) ([]Element, error) {
	return p.findAll(ctx, "", d)
}

func (p *ChromePage) FindFirst(ctx context.Context, d Descriptor) (Element, error) {
	els, err := p.findAll(ctx, "", d)
	if err != nil {
		return Element{}, err
	}
	if len(els) == 0 {
		return Element{}, fmt.Errorf("%s: %w", d.Name, ErrNotFound)
	}
	return els[0], nil
}

func (p *ChromePage) FindAllWithin(ctx context.Context, root Element, d Descriptor) ([]Element, error) {
	return p.findAll(ctx, root.path, d)
}

func (p *ChromePage) FindWithin(ctx context.Context, root Element, d Descriptor) (Element, error) {
	els, err := p.findAll(ctx, root.path, d)
	if err != nil {
		return Element{}, err
	}
	if len(els) == 0 {
		return Element{}, fmt.Errorf("%s: %w", d.Name, ErrNotFound)
	}
	return els[0], nil
}

func (p *ChromePage) Click(ctx context.Context, el Element) error {
	err := p.run(ctx,
		chromedp.ScrollIntoView(el.path, chromedp.BySearch),
		chromedp.Click(el.path, chromedp.BySearch),
	)
	if err == nil {
		return nil
	}
	// Overlays intercept pointer clicks; a DOM click still fires the
	// handlers.
	script := fmt.Sprintf(`(function(path) {
		var el = document.evaluate(path, document, null,
			XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue;
		if (!el) return false;
		el.click();
		return true;
	})(%s)`, jsString(el.path))
	var clicked bool
	if jsErr := p.run(ctx, chromedp.Evaluate(script, &clicked)); jsErr != nil || !clicked {
		return fmt.Errorf("click %s: %w", el.path, err)
	}
	return nil
}

func (p *ChromePage) Focus(ctx context.Context, el Element) error {
	return p.run(ctx, chromedp.Focus(el.path, chromedp.BySearch))
}

func (p *ChromePage) SendKeys(ctx context.Context, el Element, text string) error {
	return p.run(ctx, chromedp.SendKeys(el.path, text, chromedp.BySearch))
}

// keyMap translates the control-key names callers use into chromedp's
// keyboard runes.
var keyMap = map[string]string{
	"End":       kb.End,
	"Backspace": kb.Backspace,
	"Enter":     kb.Enter,
	"Escape":    kb.Escape,
}

func (p *ChromePage) KeyPress(ctx context.Context, key string) error {
	if mapped, ok := keyMap[key]; ok {
		key = mapped
	}
	return p.run(ctx, chromedp.KeyEvent(key))
}

func (p *ChromePage) SetText(ctx context.Context, el Element, text string) error {
	script := fmt.Sprintf(`(function(path, text) {
		var el = document.evaluate(path, document, null,
			XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue;
		if (!el) return false;
		if (el.isContentEditable) {
			el.textContent = text;
		} else {
			el.value = text;
		}
		el.dispatchEvent(new InputEvent('input', {bubbles: true}));
		return true;
	})(%s, %s)`, jsString(el.path), jsString(text))
	var ok bool
	if err := p.run(ctx, chromedp.Evaluate(script, &ok)); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("set text %s: %w", el.path, ErrNotFound)
	}
	return nil
}

func (p *ChromePage) UploadFiles(ctx context.Context, el Element, paths []string) error {
	return p.run(ctx, chromedp.SetUploadFiles(el.path, paths, chromedp.BySearch))
}

func (p *ChromePage) Text(ctx context.Context, el Element) (string, error) {
	var text string
	if err := p.run(ctx, chromedp.Text(el.path, &text, chromedp.BySearch)); err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (p *ChromePage) Attribute(ctx context.Context, el Element, name string) (string, bool, error) {
	var value string
	var ok bool
	if err := p.run(ctx, chromedp.AttributeValue(el.path, name, &value, &ok, chromedp.BySearch)); err != nil {
		return "", false, err
	}
	return value, ok, nil
}

func (p *ChromePage) SetAttribute(ctx context.Context, el Element, name, value string) error {
	return p.run(ctx, chromedp.SetAttributeValue(el.path, name, value, chromedp.BySearch))
}

func (p *ChromePage) IsVisible(ctx context.Context, el Element) (bool, error) {
	script := fmt.Sprintf(`(function(path) {
		var el = document.evaluate(path, document, null,
			XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue;
		if (!el) return false;
		var rect = el.getBoundingClientRect();
		if (rect.width === 0 || rect.height === 0) return false;
		var style = window.getComputedStyle(el);
		return style.visibility !== 'hidden' && style.display !== 'none';
	})(%s)`, jsString(el.path))
	var visible bool
	if err := p.run(ctx, chromedp.Evaluate(script, &visible)); err != nil {
		return false, err
	}
	return visible, nil
}

func (p *ChromePage) ScrollIntoView(ctx context.Context, el Element) error {
	return p.run(ctx, chromedp.ScrollIntoView(el.path, chromedp.BySearch))
}

func (p *ChromePage) ScrollBy(ctx context.Context, viewportFraction float64) error {
	script := fmt.Sprintf(`window.scrollBy(0, window.innerHeight * %f)`, viewportFraction)
	return p.run(ctx, chromedp.Evaluate(script, nil))
}

func (p *ChromePage) ScrollToBottom(ctx context.Context) error {
	return p.run(ctx, chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil))
}

func (p *ChromePage) PageHeight(ctx context.Context) (float64, error) {
	var height float64
	if err := p.run(ctx, chromedp.Evaluate(`document.body.scrollHeight`, &height)); err != nil {
		return 0, err
	}
	return height, nil
}

func (p *ChromePage) ExecuteScript(ctx context.Context, expr string, out any) error {
	return p.run(ctx, chromedp.Evaluate(expr, out))
}
