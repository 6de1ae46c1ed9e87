// File: internal/engage/executor.go

// Package engage drives the feed engagement stream: scanning visible posts,
// deciding which to like or comment on, composing mentions and pacing every
// interaction so the stream reads like a person at the keyboard.
package engage

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/feedpilot/internal/browser"
	"github.com/xkilldash9x/feedpilot/internal/config"
	"github.com/xkilldash9x/feedpilot/internal/dedup"
	"github.com/xkilldash9x/feedpilot/internal/feed"
	"github.com/xkilldash9x/feedpilot/internal/humanoid"
	"github.com/xkilldash9x/feedpilot/internal/policy"
)

// Engagement modes.
const (
	ModeLike    = "like"
	ModeComment = "comment"
	ModeBoth    = "both"
)

const (
	// Posts scanned per pass over the viewport.
	scanLimit = feed.DefaultScanLimit
	// Consecutive scroll rounds without a new post key before a bounded
	// run declares the feed exhausted.
	maxIdleScrolls = 20
	// Passes without a single action before a bounded run stops.
	noProgressLimit = 16
	// Aggressive load attempts per stall recovery.
	emptyViewportTries = 3
)

// Summary reports what a stream run did.
type Summary struct {
	Likes     int
	Comments  int
	Skips     int
	Errors    int
	Scrolls   int
	Cancelled bool
}

// Executor runs the engagement stream over a logged-in feed page.
type Executor struct {
	page      browser.Page
	locator   *feed.Locator
	engine    *policy.Engine
	commenter *Commenter
	scroller  *Scroller
	store     *dedup.Store
	typist    *humanoid.Typist
	limiter   *rate.Limiter
	cfg       config.EngageConfig
	rng       *rand.Rand
	logger    *zap.Logger

	processed     map[string]bool
	processedText map[string]bool
	processedIDs  map[string]bool
	commentedURNs map[string]bool
}

// NewExecutor wires the stream together. The limiter paces actions at the
// configured minimum delay; pauses on top of it add the jitter.
func NewExecutor(page browser.Page, locator *feed.Locator, engine *policy.Engine,
	commenter *Commenter, scroller *Scroller, store *dedup.Store,
	typist *humanoid.Typist, cfg config.EngageConfig, pacing config.PacingConfig,
	rng *rand.Rand, logger *zap.Logger) *Executor {

	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	limit := rate.Inf
	if pacing.ActionDelayMin > 0 {
		limit = rate.Every(pacing.ActionDelayMin)
	}
	return &Executor{
		page:          page,
		locator:       locator,
		engine:        engine,
		commenter:     commenter,
		scroller:      scroller,
		store:         store,
		typist:        typist,
		limiter:       rate.NewLimiter(limit, 1),
		cfg:           cfg,
		rng:           rng,
		logger:        logger,
		processed:     make(map[string]bool),
		processedText: make(map[string]bool),
		processedIDs:  make(map[string]bool),
		commentedURNs: make(map[string]bool),
	}
}

// Run executes the stream until the action budget is spent, the feed is
// exhausted or the context is cancelled.
func (x *Executor) Run(ctx context.Context) Summary {
	sum := Summary{}
	actions := 0
	noProgress := 0
	stalled := 0

	x.logger.Info("Engagement stream starting.",
		zap.String("mode", x.cfg.Mode),
		zap.Int("max_actions", x.cfg.MaxActions),
		zap.Bool("infinite", x.cfg.Infinite))

	for {
		if ctx.Err() != nil {
			sum.Cancelled = true
			break
		}
		if !x.cfg.Infinite && actions >= x.cfg.MaxActions {
			x.logger.Info("Action budget reached.", zap.Int("actions", actions))
			break
		}

		posts, err := x.locator.VisiblePosts(ctx, scanLimit)
		if err != nil {
			sum.Errors++
			x.logger.Warn("Feed scan failed.", zap.Error(err))
		}
		if len(posts) == 0 {
			if !x.handleStall(ctx, &sum, &stalled) {
				break
			}
			continue
		}

		progress := false
		for _, root := range posts {
			if ctx.Err() != nil {
				sum.Cancelled = true
				break
			}
			if !x.cfg.Infinite && actions >= x.cfg.MaxActions {
				break
			}
			taken, err := x.processPost(ctx, root, &sum)
			if err != nil {
				sum.Errors++
				x.logger.Warn("Post handling failed.", zap.Error(err))
				continue
			}
			if taken > 0 {
				actions += taken
				progress = true
			}
		}
		if sum.Cancelled {
			break
		}

		if progress {
			noProgress = 0
			stalled = 0
			if err := x.scroller.Advance(ctx); err != nil {
				if ctx.Err() != nil {
					sum.Cancelled = true
					break
				}
				sum.Errors++
				x.logger.Warn("Feed scroll failed.", zap.Error(err))
			} else {
				sum.Scrolls++
			}
			continue
		}

		noProgress++
		if !x.cfg.Infinite && noProgress >= noProgressLimit {
			x.logger.Info("No actionable posts left.", zap.Int("passes", noProgress))
			break
		}
		// A zero-action pass gets the same recovery as an empty viewport.
		if !x.handleStall(ctx, &sum, &stalled) {
			break
		}
	}

	x.logger.Info("Engagement stream finished.",
		zap.Int("likes", sum.Likes),
		zap.Int("comments", sum.Comments),
		zap.Int("skips", sum.Skips),
		zap.Int("errors", sum.Errors),
		zap.Int("scrolls", sum.Scrolls),
		zap.Bool("cancelled", sum.Cancelled))
	return sum
}

// processPost inspects one post and applies the configured engagement.
// Returns the number of budgeted actions taken.
func (x *Executor) processPost(ctx context.Context, root browser.Element, sum *Summary) (int, error) {
	if err := x.page.ScrollIntoView(ctx, root); err != nil {
		x.logger.Debug("Scroll into view failed.", zap.Error(err))
	}

	post := x.locator.Inspect(ctx, root)
	if x.shouldSkip(ctx, post) {
		x.markProcessed(post)
		sum.Skips++
		return 0, nil
	}
	x.markProcessed(post)

	// Seed the session set from persisted history so the policy gate sees
	// comments made by earlier runs.
	if post.URN != "" && x.store.Seen(post.URN) {
		x.commentedURNs[post.URN] = true
	}

	bar, err := x.locator.ActionBar(ctx, post.Root)
	if err != nil {
		// No action bar means the post cannot be engaged at all.
		x.logger.Debug("Skipping post without action bar.", zap.String("key", post.Key))
		sum.Skips++
		return 0, nil
	}

	if x.cfg.Mode == ModeLike {
		return x.likeOnly(ctx, post, bar, sum)
	}
	return x.commentAndLike(ctx, post, bar, sum)
}

// shouldSkip applies the cheap pre-policy filters: session dedupe keys, the
// DOM marker from an earlier run and the promoted gate.
func (x *Executor) shouldSkip(ctx context.Context, post feed.Post) bool {
	switch {
	case post.Key != "" && x.processed[post.Key]:
		return true
	case post.TextKey != "" && x.processedText[post.TextKey]:
		return true
	case post.DataID != "" && x.processedIDs[post.DataID]:
		return true
	}
	if val, ok, _ := x.page.Attribute(ctx, post.Root, markerCommented); ok && val == "1" {
		x.logger.Debug("Skipping post with commented marker.", zap.String("key", post.Key))
		return true
	}
	if post.Promoted && !x.cfg.IncludePromoted {
		x.logger.Debug("Skipping promoted post.", zap.String("key", post.Key))
		return true
	}
	return false
}

func (x *Executor) markProcessed(post feed.Post) {
	if post.Key != "" {
		x.processed[post.Key] = true
	}
	if post.TextKey != "" {
		x.processedText[post.TextKey] = true
	}
	if post.DataID != "" {
		x.processedIDs[post.DataID] = true
	}
}

// likeOnly handles ModeLike: one like per unliked post.
func (x *Executor) likeOnly(ctx context.Context, post feed.Post, bar browser.Element, sum *Summary) (int, error) {
	if x.alreadyLiked(ctx, post, bar) {
		sum.Skips++
		return 0, nil
	}
	if err := x.likePost(ctx, post, bar); err != nil {
		return 0, err
	}
	sum.Likes++
	x.logger.Info("Liked post.", zap.String("urn", post.URN))
	if x.typist != nil {
		if err := x.typist.ActionPause(ctx); err != nil {
			sum.Cancelled = true
		}
	}
	return 1, nil
}

// commentAndLike handles ModeComment and ModeBoth: comment first, then a
// courtesy like. The like counts against the budget only in ModeBoth.
func (x *Executor) commentAndLike(ctx context.Context, post feed.Post, bar browser.Element, sum *Summary) (int, error) {
	plan := x.engine.PlanComment(ctx, post, bar, x.commentedURNs)
	if plan.Skip != policy.SkipNone {
		sum.Skips++
		return 0, nil
	}

	if err := x.limiter.Wait(ctx); err != nil {
		return 0, err
	}
	x.locator.ExpandSeeMore(ctx, post.Root)
	if err := x.commenter.Submit(ctx, post, bar, plan); err != nil {
		return 0, fmt.Errorf("comment: %w", err)
	}
	sum.Comments++
	taken := 1
	// Only real URNs go to disk; hash-fallback identities are DOM-bound and
	// meaningless to later runs.
	if post.URN != "" {
		x.commentedURNs[post.URN] = true
		x.store.MarkCommented(post.URN)
	}
	x.logger.Info("Commented on post.",
		zap.String("urn", post.URN),
		zap.String("perspective", plan.Perspective))

	if x.typist != nil {
		if err := x.typist.ActionPause(ctx); err != nil {
			sum.Cancelled = true
			return taken, nil
		}
	}

	if !x.alreadyLiked(ctx, post, bar) {
		if err := x.likePost(ctx, post, bar); err != nil {
			x.logger.Debug("Courtesy like failed.", zap.Error(err))
			return taken, nil
		}
		sum.Likes++
		if x.cfg.Mode == ModeBoth {
			taken++
		}
	}
	return taken, nil
}

func (x *Executor) alreadyLiked(ctx context.Context, post feed.Post, bar browser.Element) bool {
	if val, ok, _ := x.page.Attribute(ctx, post.Root, markerLiked); ok && val == "1" {
		return true
	}
	return x.engine.IsLiked(ctx, bar)
}

func (x *Executor) likePost(ctx context.Context, post feed.Post, bar browser.Element) error {
	if err := x.limiter.Wait(ctx); err != nil {
		return err
	}
	btn, err := x.page.FindWithin(ctx, bar, browser.LikeButton)
	if err != nil {
		return fmt.Errorf("like button: %w", err)
	}
	if err := x.page.Click(ctx, btn); err != nil {
		return fmt.Errorf("like click: %w", err)
	}
	if err := x.page.SetAttribute(ctx, post.Root, markerLiked, "1"); err != nil {
		x.logger.Debug("Liked marker not set.", zap.Error(err))
	}
	return nil
}

// handleStall coaxes the feed into loading more posts: a plain scroll with
// a key resample first, then the aggressive multi-attempt recovery. stalled
// counts the consecutive scroll rounds that surfaced nothing new; it resets
// the moment a fresh key appears and, in a bounded run, ends the stream
// once it reaches the idle cap. Returns false when the run should stop.
func (x *Executor) handleStall(ctx context.Context, sum *Summary, stalled *int) bool {
	if ctx.Err() != nil {
		sum.Cancelled = true
		return false
	}
	known := make(map[string]bool, len(x.processed))
	for key := range x.processed {
		known[key] = true
	}
	for _, key := range x.locator.VisiblePostKeys(ctx, scanLimit) {
		known[key] = true
	}

	if err := x.scroller.Advance(ctx); err == nil {
		sum.Scrolls++
		for _, key := range x.locator.VisiblePostKeys(ctx, scanLimit) {
			if !known[key] {
				*stalled = 0
				return true
			}
		}
	} else if ctx.Err() != nil {
		sum.Cancelled = true
		return false
	}

	if x.scroller.LoadMore(ctx, known, emptyViewportTries) {
		sum.Scrolls++
		*stalled = 0
		return true
	}
	if ctx.Err() != nil {
		sum.Cancelled = true
		return false
	}

	// The plain scroll plus every aggressive attempt came up empty.
	*stalled += 1 + emptyViewportTries
	if !x.cfg.Infinite && *stalled >= maxIdleScrolls {
		x.logger.Info("Feed appears exhausted, no new posts loaded.",
			zap.Int("stalled_rounds", *stalled))
		return false
	}
	return true
}
