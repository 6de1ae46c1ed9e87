// File: internal/orchestrator/compose.go
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/feedpilot/internal/browser"
	"github.com/xkilldash9x/feedpilot/internal/engage"
)

// ErrNoPostContent is returned when ComposePost has neither text nor a
// generator to produce it.
var ErrNoPostContent = errors.New("no post text and no generator configured")

// ComposeOptions describes one post to publish. When Text is empty the
// generator writes it from Topic and Style. Text may carry @{Name} mention
// placeholders.
type ComposeOptions struct {
	Topic      string
	Style      string
	Text       string
	MediaPaths []string
}

// ComposePost signs in, opens the share composer, writes the post with any
// inline mentions resolved, attaches media and publishes.
func (o *Orchestrator) ComposePost(ctx context.Context, opts ComposeOptions) error {
	text := opts.Text
	if text == "" {
		if o.generator == nil {
			return ErrNoPostContent
		}
		generated, err := o.generator.GeneratePost(ctx, opts.Topic, opts.Style)
		if err != nil {
			return fmt.Errorf("generate post: %w", err)
		}
		text = generated
	}

	if err := o.EnsureLoggedIn(ctx); err != nil {
		return err
	}
	if err := o.openFeed(ctx); err != nil {
		return err
	}

	trigger, err := o.page.FindFirst(ctx, browser.ComposerTrigger)
	if err != nil {
		return fmt.Errorf("composer trigger: %w", err)
	}
	if err := o.page.Click(ctx, trigger); err != nil {
		return fmt.Errorf("open composer: %w", err)
	}
	if err := o.typist.ActionPause(ctx); err != nil {
		return err
	}

	editor, err := o.findComposerEditor(ctx)
	if err != nil {
		return err
	}
	if err := o.page.Click(ctx, editor); err != nil {
		o.logger.Debug("Composer editor click failed.", zap.Error(err))
	}

	if engage.ContainsInlineMentions(text) {
		if err := o.mentioner.ComposeWithMentions(ctx, editor, text); err != nil {
			return fmt.Errorf("compose post: %w", err)
		}
	} else if err := o.typist.Type(ctx, editor, text); err != nil {
		o.logger.Warn("Typing post failed, setting text directly.", zap.Error(err))
		if setErr := o.page.SetText(ctx, editor, text); setErr != nil {
			return fmt.Errorf("compose post: %w", setErr)
		}
	}

	if len(opts.MediaPaths) > 0 {
		if err := o.attachMedia(ctx, opts.MediaPaths); err != nil {
			o.logger.Warn("Media attachment failed, posting text only.", zap.Error(err))
		}
	}

	submit, err := o.page.FindFirst(ctx, browser.ComposerSubmit)
	if err != nil {
		return fmt.Errorf("post button: %w", err)
	}
	if err := o.page.Click(ctx, submit); err != nil {
		return fmt.Errorf("publish post: %w", err)
	}
	o.logger.Info("Post published.", zap.Int("media", len(opts.MediaPaths)))
	return o.typist.ActionPause(ctx)
}

// findComposerEditor prefers the editor inside the share dialog so a stray
// comment box elsewhere on the page is never picked up.
func (o *Orchestrator) findComposerEditor(ctx context.Context) (browser.Element, error) {
	if dialog, err := o.page.FindFirst(ctx, browser.ComposerDialog); err == nil {
		if editor, err := o.page.FindWithin(ctx, dialog, browser.ComposerEditor); err == nil {
			return editor, nil
		}
	}
	editor, err := o.page.FindFirst(ctx, browser.ComposerEditor)
	if err != nil {
		return browser.Element{}, fmt.Errorf("composer editor: %w", err)
	}
	return editor, nil
}

// attachMedia opens the media tray and feeds absolute paths to the hidden
// file input. The tray click comes first because some layouts only create
// the input afterwards.
func (o *Orchestrator) attachMedia(ctx context.Context, paths []string) error {
	abs := make([]string, 0, len(paths))
	for _, p := range paths {
		full, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("resolve media path %q: %w", p, err)
		}
		abs = append(abs, full)
	}

	button, btnErr := o.page.FindFirst(ctx, browser.MediaButton)
	if btnErr == nil {
		if err := o.page.Click(ctx, button); err != nil {
			o.logger.Debug("Media button click failed.", zap.Error(err))
		}
		if err := o.typist.ActionPause(ctx); err != nil {
			return err
		}
	}

	input, err := o.page.FindFirst(ctx, browser.MediaFileInput)
	if err != nil && btnErr == nil {
		// One retry: the input is created lazily by the tray.
		if clickErr := o.page.Click(ctx, button); clickErr == nil {
			if pauseErr := o.typist.ActionPause(ctx); pauseErr != nil {
				return pauseErr
			}
			input, err = o.page.FindFirst(ctx, browser.MediaFileInput)
		}
	}
	if err != nil {
		return fmt.Errorf("file input: %w", err)
	}

	if err := o.page.UploadFiles(ctx, input, abs); err != nil {
		return fmt.Errorf("upload media: %w", err)
	}
	o.waitForPreview(ctx)
	return nil
}

// waitForPreview polls for a rendered media thumbnail; the upload still
// proceeds when none is detected.
func (o *Orchestrator) waitForPreview(ctx context.Context) {
	deadline := time.Now().Add(o.cfg.Browser.ShortTimeout)
	for time.Now().Before(deadline) && ctx.Err() == nil {
		if el, err := o.page.FindFirst(ctx, browser.MediaPreview); err == nil {
			if visible, _ := o.page.IsVisible(ctx, el); visible {
				return
			}
		}
		time.Sleep(loginPollStep)
	}
	o.logger.Debug("Media preview not detected before timeout.")
}
