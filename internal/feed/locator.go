// File: internal/feed/locator.go

// Package feed locates posts in the scrolling feed and extracts the
// identifying attributes the engagement loop keys on: URNs, data ids,
// author names and text snippets.
package feed

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/xkilldash9x/feedpilot/internal/browser"
)

// DefaultScanLimit caps how many visible posts one pass inspects.
const DefaultScanLimit = 12

// aiTextLimit bounds extracted post text before it reaches prompt building.
const aiTextLimit = 1200

var activityURN = regexp.MustCompile(`urn:li:activity:\d+`)

// Post is one feed post with everything extracted in a single inspection.
type Post struct {
	Root     browser.Element
	URN      string
	DataID   string
	Author   string
	Snippet  string
	TextKey  string
	Key      string
	Promoted bool
}

// Locator reads posts out of the live feed.
type Locator struct {
	page   browser.Page
	logger *zap.Logger
}

// NewLocator builds a locator over the page.
func NewLocator(page browser.Page, logger *zap.Logger) *Locator {
	return &Locator{page: page, logger: logger}
}

// VisiblePosts returns up to limit post containers currently rendered and
// visible. A non-positive limit uses DefaultScanLimit.
func (l *Locator) VisiblePosts(ctx context.Context, limit int) ([]browser.Element, error) {
	if limit <= 0 {
		limit = DefaultScanLimit
	}
	els, err := l.page.FindAll(ctx, browser.FeedPost)
	if err != nil {
		return nil, err
	}
	visible := make([]browser.Element, 0, limit)
	for _, el := range els {
		ok, err := l.page.IsVisible(ctx, el)
		if err != nil || !ok {
			continue
		}
		visible = append(visible, el)
		if len(visible) >= limit {
			break
		}
	}
	return visible, nil
}

// VisiblePostKeys returns the dedupe keys of the currently visible posts.
// The scroll loop compares key sets before and after a scroll to detect a
// stalled viewport.
func (l *Locator) VisiblePostKeys(ctx context.Context, limit int) []string {
	posts, err := l.VisiblePosts(ctx, limit)
	if err != nil {
		l.logger.Debug("Visible post scan failed.", zap.Error(err))
		return nil
	}
	keys := make([]string, 0, len(posts))
	for _, root := range posts {
		urn := l.ExtractURN(ctx, root)
		keys = append(keys, l.DedupeKey(ctx, root, urn))
	}
	return keys
}

// Inspect extracts every identifying attribute of a post in one pass.
func (l *Locator) Inspect(ctx context.Context, root browser.Element) Post {
	urn := l.ExtractURN(ctx, root)
	author := l.AuthorName(ctx, root)
	snippet := l.firstSnippet(ctx, root)
	return Post{
		Root:     root,
		URN:      urn,
		DataID:   l.DataID(ctx, root),
		Author:   author,
		Snippet:  snippet,
		TextKey:  TextKey(author, snippet),
		Key:      l.dedupeKeyFrom(ctx, root, urn, author, snippet),
		Promoted: l.IsPromoted(ctx, root),
	}
}

// ExtractURN finds the activity URN of a post: ancestor data attributes
// first, then the root's own attributes, then descendants, then permalink
// hrefs.
func (l *Locator) ExtractURN(ctx context.Context, root browser.Element) string {
	if anc, err := l.page.FindWithin(ctx, root, browser.PostURNAncestor); err == nil {
		for _, attr := range []string{"data-urn", "data-entity-urn"} {
			if v, ok, _ := l.page.Attribute(ctx, anc, attr); ok && v != "" {
				return v
			}
		}
	}
	for _, attr := range []string{"data-urn", "data-entity-urn", "data-id"} {
		if v, ok, _ := l.page.Attribute(ctx, root, attr); ok && v != "" {
			return v
		}
	}
	if els, err := l.page.FindAllWithin(ctx, root, browser.PostURNDescendant); err == nil {
		for _, el := range els {
			for _, attr := range []string{"data-urn", "data-entity-urn", "data-id"} {
				if v, ok, _ := l.page.Attribute(ctx, el, attr); ok && v != "" {
					return v
				}
			}
		}
	}
	if anchors, err := l.page.FindAllWithin(ctx, root, browser.PostPermalink); err == nil {
		for _, a := range anchors {
			href, _, _ := l.page.Attribute(ctx, a, "href")
			if m := activityURN.FindString(href); m != "" {
				return m
			}
		}
	}
	return ""
}

// DataID returns the post's data-id attribute, checking the root then its
// nearest carrying ancestor.
func (l *Locator) DataID(ctx context.Context, root browser.Element) string {
	if v, ok, _ := l.page.Attribute(ctx, root, "data-id"); ok && v != "" {
		return v
	}
	if anc, err := l.page.FindWithin(ctx, root, browser.PostDataIDAncestor); err == nil {
		if v, ok, _ := l.page.Attribute(ctx, anc, "data-id"); ok && v != "" {
			return v
		}
	}
	return ""
}

// AuthorName extracts and normalizes the post author's display name,
// falling back to aria-label fragments like "Post by Jane Doe".
func (l *Locator) AuthorName(ctx context.Context, root browser.Element) string {
	if els, err := l.page.FindAllWithin(ctx, root, browser.PostAuthorName); err == nil {
		for _, el := range els {
			if ok, _ := l.page.IsVisible(ctx, el); !ok {
				continue
			}
			text, _ := l.page.Text(ctx, el)
			if candidate := NormalizePersonName(text); candidate != "" {
				return candidate
			}
		}
	}
	aria, _, _ := l.page.Attribute(ctx, root, "aria-label")
	aria = strings.TrimSpace(aria)
	if aria == "" {
		return ""
	}
	for _, marker := range []string{"by ", "for "} {
		if _, after, found := strings.Cut(aria, marker); found {
			fragment := splitNameFragment(after)
			if candidate := NormalizePersonName(fragment); candidate != "" {
				return candidate
			}
		}
	}
	return ""
}

var fragmentBreak = regexp.MustCompile(`[|\x{2022}\x{00b7}\-\x{2013}\x{2014}]|\s{2,}`)

func splitNameFragment(s string) string {
	parts := fragmentBreak.Split(strings.TrimSpace(s), 2)
	return strings.TrimSpace(parts[0])
}

// TextForAI harvests readable post text for comment generation, joining the
// visible body nodes and truncating the result.
func (l *Locator) TextForAI(ctx context.Context, root browser.Element) string {
	els, err := l.page.FindAllWithin(ctx, root, browser.PostBodyText)
	if err != nil || len(els) == 0 {
		raw, _ := l.page.Text(ctx, root)
		return truncate(strings.TrimSpace(raw), aiTextLimit)
	}
	var parts []string
	seen := map[string]bool{}
	for _, el := range els {
		if ok, _ := l.page.IsVisible(ctx, el); !ok {
			continue
		}
		text, _ := l.page.Text(ctx, el)
		text = strings.TrimSpace(text)
		if text == "" || seen[text] {
			continue
		}
		parts = append(parts, text)
		seen[text] = true
	}
	if len(parts) == 0 {
		raw, _ := l.page.Text(ctx, root)
		return truncate(strings.TrimSpace(raw), aiTextLimit)
	}
	return truncate(strings.TrimSpace(strings.Join(parts, "\n")), aiTextLimit)
}

// ExpandSeeMore clicks the post's "see more" toggle when present so the
// full text is in the DOM before extraction.
func (l *Locator) ExpandSeeMore(ctx context.Context, root browser.Element) {
	btn, err := l.page.FindWithin(ctx, root, browser.PostSeeMore)
	if err != nil {
		return
	}
	if ok, _ := l.page.IsVisible(ctx, btn); !ok {
		return
	}
	if err := l.page.Click(ctx, btn); err != nil {
		l.logger.Debug("Failed to expand post text.", zap.Error(err))
	}
}

// IsPromoted reports whether the post carries a visible "promoted" label.
func (l *Locator) IsPromoted(ctx context.Context, root browser.Element) bool {
	els, err := l.page.FindAllWithin(ctx, root, browser.PostPromotedLabel)
	if err != nil {
		return false
	}
	for _, el := range els {
		if ok, _ := l.page.IsVisible(ctx, el); !ok {
			continue
		}
		text, _ := l.page.Text(ctx, el)
		if strings.Contains(strings.ToLower(strings.TrimSpace(text)), "promoted") {
			return true
		}
	}
	return false
}

// DedupeKey returns the post's session dedupe key: the URN when present,
// otherwise a hash of DOM id, author and leading text.
func (l *Locator) DedupeKey(ctx context.Context, root browser.Element, urn string) string {
	if urn != "" {
		return urn
	}
	author := l.AuthorName(ctx, root)
	snippet := l.firstSnippet(ctx, root)
	return l.dedupeKeyFrom(ctx, root, urn, author, snippet)
}

func (l *Locator) dedupeKeyFrom(ctx context.Context, root browser.Element, urn, author, snippet string) string {
	if urn != "" {
		return urn
	}
	domID, _, _ := l.page.Attribute(ctx, root, "id")
	if strings.TrimSpace(domID+"|"+author+"|"+truncate(snippet, snippetKeyLen)) == "||" {
		// Nothing identifying at all; the element path at least keeps two
		// blank posts in one viewport apart.
		return sha1Hex(root.Path())
	}
	return IdentityKey(domID, author, snippet)
}

// firstSnippet returns the first non-empty text node of the post body.
func (l *Locator) firstSnippet(ctx context.Context, root browser.Element) string {
	els, err := l.page.FindAllWithin(ctx, root, browser.PostSnippet)
	if err != nil {
		return ""
	}
	for _, el := range els {
		text, _ := l.page.Text(ctx, el)
		if text = strings.TrimSpace(text); text != "" {
			return text
		}
	}
	return ""
}

// ActionBar finds the social action bar of a post.
func (l *Locator) ActionBar(ctx context.Context, root browser.Element) (browser.Element, error) {
	return l.page.FindWithin(ctx, root, browser.PostActionBar)
}

// HasUserComment reports whether a rendered comment on the post appears to
// be authored by the signed-in user.
func (l *Locator) HasUserComment(ctx context.Context, root browser.Element) bool {
	els, err := l.page.FindAllWithin(ctx, root, browser.CommentItems)
	if err != nil {
		return false
	}
	for _, el := range els {
		if ok, _ := l.page.IsVisible(ctx, el); !ok {
			continue
		}
		text, _ := l.page.Text(ctx, el)
		if strings.Contains(strings.ToLower(text), "you") {
			return true
		}
	}
	return false
}

// HasSimilarComment reports whether an existing comment on the post starts
// with the same signature as the candidate text.
func (l *Locator) HasSimilarComment(ctx context.Context, root browser.Element, text string) bool {
	sig := CommentSignature(text)
	if sig == "" {
		return false
	}
	els, err := l.page.FindAllWithin(ctx, root, browser.CommentItems)
	if err != nil {
		return false
	}
	for _, el := range els {
		if ok, _ := l.page.IsVisible(ctx, el); !ok {
			continue
		}
		existing, _ := l.page.Text(ctx, el)
		if strings.Contains(strings.ToLower(strings.TrimSpace(existing)), sig) {
			return true
		}
	}
	return false
}

var signatureStrip = regexp.MustCompile(`[^\w\s.,!?@#:+-]`)
var whitespaceRun = regexp.MustCompile(`\s+`)

// CommentSignature normalizes comment text into the short lowercase prefix
// used for similarity matching. Texts under eight significant characters
// yield no signature; they are too short to match meaningfully.
func CommentSignature(text string) string {
	sig := strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
	sig = signatureStrip.ReplaceAllString(sig, "")
	if len(sig) < 8 {
		return ""
	}
	return strings.ToLower(truncate(sig, 32))
}
