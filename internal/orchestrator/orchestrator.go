// File: internal/orchestrator/orchestrator.go

// Package orchestrator ties the session together: it validates the requested
// run, signs in, positions the browser on the feed and hands control to the
// engagement executor or the post composer.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/feedpilot/internal/ai"
	"github.com/xkilldash9x/feedpilot/internal/browser"
	"github.com/xkilldash9x/feedpilot/internal/config"
	"github.com/xkilldash9x/feedpilot/internal/dedup"
	"github.com/xkilldash9x/feedpilot/internal/engage"
	"github.com/xkilldash9x/feedpilot/internal/feed"
	"github.com/xkilldash9x/feedpilot/internal/humanoid"
	"github.com/xkilldash9x/feedpilot/internal/policy"
)

var (
	// ErrNoCommentSource is returned when a commenting mode is requested
	// without either static text or an enabled generator.
	ErrNoCommentSource = errors.New("commenting requires comment text or an enabled generator")
	// ErrInvalidMode is returned for modes outside like, comment and both.
	ErrInvalidMode = errors.New("invalid engagement mode")
)

// Orchestrator runs complete sessions over one logged-in page.
type Orchestrator struct {
	page      browser.Page
	cfg       *config.Config
	generator ai.Generator

	locator   *feed.Locator
	typist    *humanoid.Typist
	mentioner *engage.Mentioner

	rng    *rand.Rand
	logger *zap.Logger
}

// New builds an orchestrator over an already-connected page. generator may
// be nil when AI generation is disabled.
func New(page browser.Page, cfg *config.Config, generator ai.Generator, rng *rand.Rand, logger *zap.Logger) *Orchestrator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	typist := humanoid.NewTypist(page, cfg.Pacing, rng, logger)
	return &Orchestrator{
		page:      page,
		cfg:       cfg,
		generator: generator,
		locator:   feed.NewLocator(page, logger),
		typist:    typist,
		mentioner: engage.NewMentioner(page, typist, logger),
		rng:       rng,
		logger:    logger.Named("orchestrator"),
	}
}

// EngageStream validates the configuration, signs in, opens the feed and
// runs the engagement stream to completion.
func (o *Orchestrator) EngageStream(ctx context.Context) (engage.Summary, error) {
	if err := o.validateEngage(); err != nil {
		return engage.Summary{}, err
	}
	if err := o.EnsureLoggedIn(ctx); err != nil {
		return engage.Summary{}, err
	}
	if err := o.openFeed(ctx); err != nil {
		return engage.Summary{}, err
	}

	store := dedup.NewStore(o.cfg.Engage.StateDir, o.logger)
	store.Load()

	engine := policy.NewEngine(o.page, o.locator, o.generator, o.cfg.Engage, o.cfg.AI, o.rng, o.logger)
	commenter := engage.NewCommenter(o.page, o.typist, o.mentioner, o.cfg.Engage.MentionPosition, o.logger)
	scroller := engage.NewScroller(o.page, o.locator, o.cfg.Pacing, o.rng, o.logger)
	executor := engage.NewExecutor(o.page, o.locator, engine, commenter, scroller,
		store, o.typist, o.cfg.Engage, o.cfg.Pacing, o.rng, o.logger)

	sum := executor.Run(ctx)
	store.Save()
	return sum, nil
}

func (o *Orchestrator) validateEngage() error {
	switch o.cfg.Engage.Mode {
	case engage.ModeLike:
		return nil
	case engage.ModeComment, engage.ModeBoth:
		if o.cfg.Engage.CommentText != "" {
			return nil
		}
		if o.cfg.AI.Enabled && o.generator != nil {
			return nil
		}
		return ErrNoCommentSource
	default:
		return fmt.Errorf("%w: %q", ErrInvalidMode, o.cfg.Engage.Mode)
	}
}

// openFeed navigates to the feed and clears anything floating over it.
func (o *Orchestrator) openFeed(ctx context.Context) error {
	if err := o.page.Navigate(ctx, o.cfg.Target.FeedURL); err != nil {
		return fmt.Errorf("open feed: %w", err)
	}
	if err := humanoid.Pause(ctx, o.rng, o.cfg.Pacing.PageLoadWaitMin, o.cfg.Pacing.PageLoadWaitMax); err != nil {
		return err
	}
	browser.DismissOverlays(ctx, o.page, o.logger)
	return nil
}
