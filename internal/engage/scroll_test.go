// File: internal/engage/scroll_test.go
package engage

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/feedpilot/internal/browser"
	"github.com/xkilldash9x/feedpilot/internal/browser/browsertest"
	"github.com/xkilldash9x/feedpilot/internal/feed"
)

func newScroller(page *browsertest.FakePage) *Scroller {
	logger := zap.NewNop()
	locator := feed.NewLocator(page, logger)
	return NewScroller(page, locator, fastPacing(), rand.New(rand.NewSource(9)), logger)
}

func TestAdvanceScrollsWhenFeedGrows(t *testing.T) {
	page := browsertest.New()
	height := 1000.0
	page.OnScroll = func() {
		height += 400
		page.SetPageHeight(height)
	}

	err := newScroller(page).Advance(context.Background())
	require.NoError(t, err)

	scrolls := page.CallsTo("ScrollBy")
	require.Len(t, scrolls, 1)
	assert.Equal(t, "0.90", scrolls[0].Arg)
	assert.Empty(t, page.CallsTo("ScrollToBottom"), "no bottom slam while the feed grows")
}

func TestAdvanceForcesBottomOnStalledHeight(t *testing.T) {
	page := browsertest.New()

	err := newScroller(page).Advance(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, page.CallsTo("ScrollToBottom"))
}

func TestAdvanceStopsOnCancelledContext(t *testing.T) {
	page := browsertest.New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := newScroller(page).Advance(ctx)
	assert.Error(t, err)
}

func TestLoadMoreDetectsFreshPosts(t *testing.T) {
	page := browsertest.New()
	page.AddNode(browsertest.Node{
		Path:       "/feed/post[1]",
		Visible:    true,
		Attributes: map[string]string{"data-urn": "urn:li:activity:5"},
	})
	page.Register(browser.FeedPost.Name, "/feed/post[1]")

	known := map[string]bool{"urn:li:activity:4": true}
	loaded := newScroller(page).LoadMore(context.Background(), known, 3)

	assert.True(t, loaded)
	assert.Len(t, page.CallsTo("ScrollToBottom"), 1, "stops after the first successful try")
}

func TestLoadMoreGivesUpOnKnownPosts(t *testing.T) {
	page := browsertest.New()
	page.AddNode(browsertest.Node{
		Path:       "/feed/post[1]",
		Visible:    true,
		Attributes: map[string]string{"data-urn": "urn:li:activity:5"},
	})
	page.Register(browser.FeedPost.Name, "/feed/post[1]")

	known := map[string]bool{"urn:li:activity:5": true}
	loaded := newScroller(page).LoadMore(context.Background(), known, 2)

	assert.False(t, loaded)
	assert.Len(t, page.CallsTo("ScrollToBottom"), 2, "every try slams to the bottom")
}

func TestLoadMoreDismissesOverlaysEachTry(t *testing.T) {
	page := browsertest.New()
	page.AddNode(browsertest.Node{Path: "/toast", Visible: true})
	page.Register(browser.ToastDismiss.Name, "/toast")
	page.Register(browser.FeedPost.Name)

	newScroller(page).LoadMore(context.Background(), map[string]bool{}, 1)

	assert.Contains(t, clickedPaths(page), "/toast")
}
