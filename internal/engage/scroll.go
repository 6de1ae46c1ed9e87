// File: internal/engage/scroll.go
package engage

import (
	"context"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/feedpilot/internal/browser"
	"github.com/xkilldash9x/feedpilot/internal/config"
	"github.com/xkilldash9x/feedpilot/internal/feed"
	"github.com/xkilldash9x/feedpilot/internal/humanoid"
)

const (
	// Viewport fraction advanced on a normal feed scroll.
	feedScrollFraction = 0.9
	// Keys sampled when probing whether a load attempt surfaced new posts.
	loadProbeLimit = 20
	// Default number of aggressive load attempts before the feed is
	// declared exhausted.
	defaultLoadTries = 4
)

// Scroller advances the feed and coaxes lazy loading when the viewport runs
// dry.
type Scroller struct {
	page    browser.Page
	locator *feed.Locator
	pacing  config.PacingConfig
	rng     *rand.Rand
	logger  *zap.Logger
}

// NewScroller builds a scroller. A nil rng gets a time-seeded source.
func NewScroller(page browser.Page, locator *feed.Locator, pacing config.PacingConfig, rng *rand.Rand, logger *zap.Logger) *Scroller {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Scroller{page: page, locator: locator, pacing: pacing, rng: rng, logger: logger}
}

// Advance scrolls the feed forward one step. When the page height does not
// grow it jumps to the bottom and waits out the lazy loader.
func (s *Scroller) Advance(ctx context.Context) error {
	before, err := s.page.PageHeight(ctx)
	if err != nil {
		s.logger.Debug("Page height unavailable before scroll.", zap.Error(err))
	}
	if err := s.page.ScrollBy(ctx, feedScrollFraction); err != nil {
		return err
	}
	if err := humanoid.Pause(ctx, s.rng, s.pacing.ScrollWaitMin, s.pacing.ScrollWaitMax); err != nil {
		return err
	}

	after, heightErr := s.page.PageHeight(ctx)
	if heightErr != nil || after > before {
		return nil
	}

	// Height stalled. Slam to the bottom and give the loader extra time.
	s.logger.Debug("Feed height stalled, forcing bottom scroll.",
		zap.Float64("height", after))
	if err := s.page.ScrollToBottom(ctx); err != nil {
		if kerr := s.page.KeyPress(ctx, "End"); kerr != nil {
			s.logger.Debug("Bottom scroll fallback failed.", zap.Error(kerr))
		}
	}
	extra := s.pacing.ScrollWaitMax + 800*time.Millisecond
	return humanoid.Pause(ctx, s.rng, extra, extra+800*time.Millisecond)
}

// LoadMore aggressively tries to surface posts beyond the known keys. Each
// attempt slams to the bottom, jiggles the viewport and clears overlays,
// then probes for keys not in prev. Returns true when new posts appeared.
func (s *Scroller) LoadMore(ctx context.Context, prev map[string]bool, tries int) bool {
	if tries <= 0 {
		tries = defaultLoadTries
	}
	for attempt := 1; attempt <= tries; attempt++ {
		if ctx.Err() != nil {
			return false
		}
		if err := s.page.ScrollToBottom(ctx); err != nil {
			if kerr := s.page.KeyPress(ctx, "End"); kerr != nil {
				s.logger.Debug("Bottom scroll failed during load attempt.",
					zap.Int("attempt", attempt), zap.Error(kerr))
			}
		}
		if err := humanoid.Pause(ctx, s.rng, s.pacing.ScrollWaitMin, s.pacing.ScrollWaitMax); err != nil {
			return false
		}

		// A small up and down jiggle often wakes the lazy loader when a
		// straight bottom scroll does not.
		if err := s.page.ScrollBy(ctx, -0.2); err != nil {
			s.logger.Debug("Upward jiggle failed.", zap.Error(err))
		}
		if err := humanoid.Pause(ctx, s.rng, s.pacing.ScrollWaitMin/2, s.pacing.ScrollWaitMin); err != nil {
			return false
		}
		if err := s.page.ScrollBy(ctx, 0.8); err != nil {
			s.logger.Debug("Downward jiggle failed.", zap.Error(err))
		}

		browser.DismissOverlays(ctx, s.page, s.logger)

		for _, key := range s.locator.VisiblePostKeys(ctx, loadProbeLimit) {
			if !prev[key] {
				s.logger.Debug("Fresh posts surfaced.", zap.Int("attempt", attempt))
				return true
			}
		}
	}
	return false
}
