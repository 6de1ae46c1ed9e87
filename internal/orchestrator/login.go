// File: internal/orchestrator/login.go
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/feedpilot/internal/browser"
	"github.com/xkilldash9x/feedpilot/internal/humanoid"
)

var (
	// ErrMissingCredentials is returned when a login is needed but no
	// username or password is configured.
	ErrMissingCredentials = errors.New("credentials not configured")
	// ErrChallengeRequired is returned when the site demands interactive
	// verification that the automation cannot complete.
	ErrChallengeRequired = errors.New("verification challenge required")
	// ErrLoginNotConfirmed is returned when the feed never appears after
	// submitting credentials.
	ErrLoginNotConfirmed = errors.New("login not confirmed")
)

const loginPollStep = 500 * time.Millisecond

// EnsureLoggedIn signs in unless the session already is. Credentials are
// typed with human pacing; success is confirmed by the feed appearing.
func (o *Orchestrator) EnsureLoggedIn(ctx context.Context) error {
	if o.isLoggedIn(ctx) {
		o.logger.Info("Session already signed in.")
		return nil
	}
	if o.cfg.Auth.Username == "" || o.cfg.Auth.Password == "" {
		return ErrMissingCredentials
	}

	if err := o.page.Navigate(ctx, o.cfg.Target.LoginURL); err != nil {
		return fmt.Errorf("open login page: %w", err)
	}
	if err := humanoid.Pause(ctx, o.rng, o.cfg.Pacing.PageLoadWaitMin, o.cfg.Pacing.PageLoadWaitMax); err != nil {
		return err
	}
	// A live session cookie redirects the login URL straight to the feed.
	if o.isLoggedIn(ctx) {
		o.logger.Info("Existing session restored.")
		return nil
	}

	username, err := o.page.FindFirst(ctx, browser.LoginUsername)
	if err != nil {
		return fmt.Errorf("username field: %w", err)
	}
	if err := o.typist.Type(ctx, username, o.cfg.Auth.Username); err != nil {
		return fmt.Errorf("type username: %w", err)
	}
	if err := o.typist.ActionPause(ctx); err != nil {
		return err
	}

	password, err := o.page.FindFirst(ctx, browser.LoginPassword)
	if err != nil {
		return fmt.Errorf("password field: %w", err)
	}
	if err := o.typist.Type(ctx, password, o.cfg.Auth.Password); err != nil {
		return fmt.Errorf("type password: %w", err)
	}

	submit, err := o.page.FindFirst(ctx, browser.LoginSubmit)
	if err != nil {
		return fmt.Errorf("sign-in button: %w", err)
	}
	if err := o.page.Click(ctx, submit); err != nil {
		return fmt.Errorf("submit login: %w", err)
	}
	o.logger.Info("Credentials submitted.")
	if err := humanoid.Pause(ctx, o.rng, o.cfg.Pacing.PageLoadWaitMin, o.cfg.Pacing.PageLoadWaitMax); err != nil {
		return err
	}

	if el, err := o.page.FindFirst(ctx, browser.LoginChallenge); err == nil {
		if visible, _ := o.page.IsVisible(ctx, el); visible {
			o.logger.Warn("Login blocked by a verification challenge.")
			return ErrChallengeRequired
		}
	}

	return o.waitForFeed(ctx)
}

// isLoggedIn checks the cheap signals first: a feed URL, then the identity
// module rendered only for signed-in members.
func (o *Orchestrator) isLoggedIn(ctx context.Context) bool {
	if url, err := o.page.CurrentURL(ctx); err == nil &&
		strings.Contains(strings.ToLower(url), "/feed") {
		return true
	}
	if el, err := o.page.FindFirst(ctx, browser.FeedIdentity); err == nil {
		if visible, _ := o.page.IsVisible(ctx, el); visible {
			return true
		}
	}
	return false
}

func (o *Orchestrator) waitForFeed(ctx context.Context) error {
	deadline := time.Now().Add(o.cfg.Browser.ElementTimeout)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if o.isLoggedIn(ctx) {
			o.logger.Info("Login confirmed.")
			return nil
		}
		if !time.Now().Before(deadline) {
			url, _ := o.page.CurrentURL(ctx)
			o.logger.Warn("Feed never appeared after login.", zap.String("url", url))
			return ErrLoginNotConfirmed
		}
		time.Sleep(loginPollStep)
	}
}
