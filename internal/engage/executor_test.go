// File: internal/engage/executor_test.go
package engage

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/feedpilot/internal/browser"
	"github.com/xkilldash9x/feedpilot/internal/browser/browsertest"
	"github.com/xkilldash9x/feedpilot/internal/config"
	"github.com/xkilldash9x/feedpilot/internal/dedup"
	"github.com/xkilldash9x/feedpilot/internal/feed"
	"github.com/xkilldash9x/feedpilot/internal/humanoid"
	"github.com/xkilldash9x/feedpilot/internal/policy"
)

func fastPacing() config.PacingConfig {
	return config.PacingConfig{
		TypingDelayMin: time.Millisecond,
		TypingDelayMax: 2 * time.Millisecond,
		ScrollWaitMin:  time.Millisecond,
		ScrollWaitMax:  2 * time.Millisecond,
	}
}

// harness assembles a full stream over a fake page with a growing feed
// height so scrolls never look stalled unless a test wants them to.
type harness struct {
	t     *testing.T
	page  *browsertest.FakePage
	store *dedup.Store
	posts []string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	page := browsertest.New()
	height := 1000.0
	page.OnScroll = func() {
		height += 500
		page.SetPageHeight(height)
	}
	store := dedup.NewStore(t.TempDir(), zap.NewNop())
	store.Load()
	h := &harness{t: t, page: page, store: store}
	h.page.Register(browser.FeedPost.Name)
	return h
}

func (h *harness) executor(cfg config.EngageConfig) *Executor {
	logger := zap.NewNop()
	rng := rand.New(rand.NewSource(7))
	locator := feed.NewLocator(h.page, logger)
	typist := humanoid.NewTypist(h.page, fastPacing(), rng, logger)
	mentioner := NewMentioner(h.page, typist, logger)
	mentioner.suggestionWait = 10 * time.Millisecond
	mentioner.verifyWait = 10 * time.Millisecond
	mentioner.pollStep = 2 * time.Millisecond
	commenter := NewCommenter(h.page, typist, mentioner, cfg.MentionPosition, logger)
	scroller := NewScroller(h.page, locator, fastPacing(), rng, logger)
	engine := policy.NewEngine(h.page, locator, nil, cfg, config.AIConfig{}, rng, logger)
	return NewExecutor(h.page, locator, engine, commenter, scroller, h.store,
		typist, cfg, fastPacing(), rng, logger)
}

type postSpec struct {
	urn      string
	author   string
	text     string
	promoted bool
	liked    bool
	noBar    bool
}

// addPost registers a complete post: root with URN attribute, action bar
// with like and comment buttons, editor and submit controls.
func (h *harness) addPost(spec postSpec) browser.Element {
	p := fmt.Sprintf("/feed/post[%d]", len(h.posts)+1)
	attrs := map[string]string{}
	if spec.urn != "" {
		attrs["data-urn"] = spec.urn
	}
	root := h.page.AddNode(browsertest.Node{Path: p, Visible: true, Attributes: attrs})

	if !spec.noBar {
		bar := h.page.AddNode(browsertest.Node{Path: p + "/bar", Visible: true})
		h.page.RegisterWithin(root, browser.PostActionBar.Name, p+"/bar")

		pressed := "false"
		if spec.liked {
			pressed = "true"
		}
		h.page.AddNode(browsertest.Node{
			Path:       p + "/bar/like",
			Visible:    true,
			Attributes: map[string]string{"aria-pressed": pressed},
		})
		h.page.RegisterWithin(bar, browser.LikeButton.Name, p+"/bar/like")

		h.page.AddNode(browsertest.Node{Path: p + "/bar/comment", Visible: true})
		h.page.RegisterWithin(bar, browser.CommentButton.Name, p+"/bar/comment")
	}

	h.page.AddNode(browsertest.Node{Path: p + "/editor", Visible: true})
	h.page.RegisterWithin(root, browser.CommentEditor.Name, p+"/editor")
	h.page.AddNode(browsertest.Node{Path: p + "/submit", Visible: true})
	h.page.RegisterWithin(root, browser.CommentSubmit.Name, p+"/submit")

	if spec.author != "" {
		h.page.AddNode(browsertest.Node{Path: p + "/author", Text: spec.author, Visible: true})
		h.page.RegisterWithin(root, browser.PostAuthorName.Name, p+"/author")
	}
	if spec.text != "" {
		h.page.AddNode(browsertest.Node{Path: p + "/body", Text: spec.text, Visible: true})
		h.page.RegisterWithin(root, browser.PostSnippet.Name, p+"/body")
	}
	if spec.promoted {
		h.page.AddNode(browsertest.Node{Path: p + "/promoted", Text: "Promoted", Visible: true})
		h.page.RegisterWithin(root, browser.PostPromotedLabel.Name, p+"/promoted")
	}

	h.posts = append(h.posts, p)
	h.page.Register(browser.FeedPost.Name, h.posts...)
	return root
}

func TestRunLikeModeLikesUnlikedPosts(t *testing.T) {
	h := newHarness(t)
	h.addPost(postSpec{urn: "urn:li:activity:1"})
	h.addPost(postSpec{urn: "urn:li:activity:2", liked: true})
	h.addPost(postSpec{urn: "urn:li:activity:3"})

	sum := h.executor(config.EngageConfig{Mode: ModeLike, MaxActions: 2}).Run(context.Background())

	assert.Equal(t, 2, sum.Likes)
	assert.Equal(t, 0, sum.Comments)
	assert.Equal(t, 1, sum.Skips)
	assert.False(t, sum.Cancelled)
	assert.Contains(t, clickedPaths(h.page), "/feed/post[1]/bar/like")
	assert.Contains(t, clickedPaths(h.page), "/feed/post[3]/bar/like")
	assert.NotContains(t, clickedPaths(h.page), "/feed/post[2]/bar/like")
	assert.Equal(t, "1", h.page.Node("/feed/post[1]").Attributes[markerLiked])
}

func TestRunBothModeBudgetsCommentAndLike(t *testing.T) {
	h := newHarness(t)
	h.addPost(postSpec{urn: "urn:li:activity:1", author: "Jane Doe", text: "An update"})
	h.addPost(postSpec{urn: "urn:li:activity:2", author: "Sam Lee", text: "Another update"})

	cfg := config.EngageConfig{Mode: ModeBoth, MaxActions: 2, CommentText: "Nice work on this!"}
	sum := h.executor(cfg).Run(context.Background())

	// Comment plus courtesy like on the first post exhausts the budget.
	assert.Equal(t, 1, sum.Comments)
	assert.Equal(t, 1, sum.Likes)
	assert.Equal(t, "Nice work on this!", h.page.TypedInto("/feed/post[1]/editor"))
	assert.Contains(t, clickedPaths(h.page), "/feed/post[1]/submit")
	assert.NotContains(t, clickedPaths(h.page), "/feed/post[2]/submit")
	assert.Equal(t, "1", h.page.Node("/feed/post[1]").Attributes[markerCommented])
}

func TestRunCommentModeCourtesyLikeIsFree(t *testing.T) {
	h := newHarness(t)
	h.addPost(postSpec{urn: "urn:li:activity:1", text: "First"})
	h.addPost(postSpec{urn: "urn:li:activity:2", text: "Second"})

	cfg := config.EngageConfig{Mode: ModeComment, MaxActions: 2, CommentText: "Good point."}
	sum := h.executor(cfg).Run(context.Background())

	// Both posts fit the budget because courtesy likes are not counted.
	assert.Equal(t, 2, sum.Comments)
	assert.Equal(t, 2, sum.Likes)
}

func TestRunSkipsPromotedPosts(t *testing.T) {
	h := newHarness(t)
	h.addPost(postSpec{urn: "urn:li:activity:1", promoted: true, text: "Sponsored"})
	h.addPost(postSpec{urn: "urn:li:activity:2", text: "Organic"})

	cfg := config.EngageConfig{Mode: ModeComment, MaxActions: 1, CommentText: "Interesting."}
	sum := h.executor(cfg).Run(context.Background())

	assert.Equal(t, 1, sum.Comments)
	assert.GreaterOrEqual(t, sum.Skips, 1)
	assert.Contains(t, clickedPaths(h.page), "/feed/post[2]/submit")
	assert.NotContains(t, clickedPaths(h.page), "/feed/post[1]/submit")
}

func TestRunIncludePromotedEngagesSponsored(t *testing.T) {
	h := newHarness(t)
	h.addPost(postSpec{urn: "urn:li:activity:1", promoted: true, text: "Sponsored"})

	cfg := config.EngageConfig{
		Mode: ModeComment, MaxActions: 1, CommentText: "Interesting.", IncludePromoted: true,
	}
	sum := h.executor(cfg).Run(context.Background())

	assert.Equal(t, 1, sum.Comments)
	assert.Contains(t, clickedPaths(h.page), "/feed/post[1]/submit")
}

func TestRunHonorsPersistedCommentHistory(t *testing.T) {
	h := newHarness(t)
	h.store.MarkCommented("urn:li:activity:1")
	h.addPost(postSpec{urn: "urn:li:activity:1", text: "Seen before"})
	h.addPost(postSpec{urn: "urn:li:activity:2", text: "Fresh"})

	cfg := config.EngageConfig{Mode: ModeComment, MaxActions: 1, CommentText: "Hello there."}
	sum := h.executor(cfg).Run(context.Background())

	assert.Equal(t, 1, sum.Comments)
	assert.GreaterOrEqual(t, sum.Skips, 1)
	assert.NotContains(t, clickedPaths(h.page), "/feed/post[1]/submit")
	assert.True(t, h.store.Seen("urn:li:activity:2"), "new comment is persisted")
}

func TestRunSkipsDOMCommentedMarker(t *testing.T) {
	h := newHarness(t)
	root := h.addPost(postSpec{urn: "urn:li:activity:1", text: "Marked"})
	h.page.Node(root.Path()).Attributes[markerCommented] = "1"
	h.addPost(postSpec{urn: "urn:li:activity:2", text: "Fresh"})

	cfg := config.EngageConfig{Mode: ModeComment, MaxActions: 1, CommentText: "Hello."}
	sum := h.executor(cfg).Run(context.Background())

	assert.Equal(t, 1, sum.Comments)
	assert.NotContains(t, clickedPaths(h.page), "/feed/post[1]/submit")
}

func TestRunEmptyFeedStops(t *testing.T) {
	h := newHarness(t)

	cfg := config.EngageConfig{Mode: ModeLike, MaxActions: 5}
	sum := h.executor(cfg).Run(context.Background())

	assert.Equal(t, 0, sum.Likes)
	assert.False(t, sum.Cancelled)
	bottoms := h.page.CallsTo("ScrollToBottom")
	assert.GreaterOrEqual(t, len(bottoms), emptyViewportTries,
		"aggressive load slams to the bottom on every try")
}

func TestRunNoProgressEscalatesToAggressiveLoad(t *testing.T) {
	h := newHarness(t)
	// The viewport is never empty, but the only post is filtered out, so
	// every pass is a zero-action pass.
	h.addPost(postSpec{urn: "urn:li:activity:1", promoted: true, text: "Sponsored"})
	h.page.AddNode(browsertest.Node{Path: "/toast", Visible: true})
	h.page.Register(browser.ToastDismiss.Name, "/toast")

	cfg := config.EngageConfig{Mode: ModeLike, MaxActions: 5}
	sum := h.executor(cfg).Run(context.Background())

	assert.Equal(t, 0, sum.Likes)
	assert.False(t, sum.Cancelled)
	assert.GreaterOrEqual(t, len(h.page.CallsTo("ScrollToBottom")), emptyViewportTries,
		"zero-action passes escalate to the aggressive load")
	assert.Contains(t, clickedPaths(h.page), "/toast",
		"overlays are dismissed during recovery")
}

func TestRunRecoversWhenFreshPostsLoadLate(t *testing.T) {
	h := newHarness(t)
	h.addPost(postSpec{urn: "urn:li:activity:1"})

	// The second post only renders after a long run of fruitless scrolls.
	// The stall tolerance counts consecutive empty rounds, so the earlier
	// productive pass must not eat into it.
	height := 1000.0
	scrolls := 0
	h.page.OnScroll = func() {
		height += 500
		h.page.SetPageHeight(height)
		scrolls++
		if scrolls == 25 {
			h.addPost(postSpec{urn: "urn:li:activity:2"})
		}
	}

	cfg := config.EngageConfig{Mode: ModeLike, MaxActions: 2}
	sum := h.executor(cfg).Run(context.Background())

	assert.Equal(t, 2, sum.Likes, "the late post is still engaged")
	assert.False(t, sum.Cancelled)
}

func TestRunDoesNotPersistHashFallbackKeys(t *testing.T) {
	h := newHarness(t)
	h.addPost(postSpec{author: "Jane Doe", text: "No urn on this one"})

	cfg := config.EngageConfig{Mode: ModeComment, MaxActions: 1, CommentText: "Nice."}
	sum := h.executor(cfg).Run(context.Background())

	assert.Equal(t, 1, sum.Comments)
	assert.Equal(t, 0, h.store.Len(), "only real URNs go to disk")
}

func TestRunSkipsPostWithoutActionBar(t *testing.T) {
	h := newHarness(t)
	h.addPost(postSpec{urn: "urn:li:activity:1", noBar: true})
	h.addPost(postSpec{urn: "urn:li:activity:2"})

	cfg := config.EngageConfig{Mode: ModeLike, MaxActions: 1}
	sum := h.executor(cfg).Run(context.Background())

	assert.Equal(t, 1, sum.Likes)
	assert.Equal(t, 0, sum.Errors, "an unengageable post is a skip, not an error")
	assert.GreaterOrEqual(t, sum.Skips, 1)
	assert.Contains(t, clickedPaths(h.page), "/feed/post[2]/bar/like")
}

func TestRunCancelledContext(t *testing.T) {
	h := newHarness(t)
	h.addPost(postSpec{urn: "urn:li:activity:1"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sum := h.executor(config.EngageConfig{Mode: ModeLike, MaxActions: 5}).Run(ctx)

	assert.True(t, sum.Cancelled)
	assert.Equal(t, 0, sum.Likes)
}

func TestRunSurvivesPostErrors(t *testing.T) {
	h := newHarness(t)
	h.addPost(postSpec{urn: "urn:li:activity:1"})
	h.addPost(postSpec{urn: "urn:li:activity:2"})
	h.page.ClickErr["/feed/post[1]/bar/like"] = fmt.Errorf("click intercepted")

	sum := h.executor(config.EngageConfig{Mode: ModeLike, MaxActions: 1}).Run(context.Background())

	require.Equal(t, 1, sum.Likes, "second post is still liked")
	assert.GreaterOrEqual(t, sum.Errors, 1)
	assert.Contains(t, clickedPaths(h.page), "/feed/post[2]/bar/like")
}

func clickedPaths(page *browsertest.FakePage) []string {
	calls := page.CallsTo("Click")
	paths := make([]string, 0, len(calls))
	for _, c := range calls {
		paths = append(paths, c.Path)
	}
	return paths
}
