// File: internal/engage/comment.go
package engage

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/xkilldash9x/feedpilot/internal/browser"
	"github.com/xkilldash9x/feedpilot/internal/feed"
	"github.com/xkilldash9x/feedpilot/internal/humanoid"
	"github.com/xkilldash9x/feedpilot/internal/policy"
)

// DOM markers stamped on a post root after we acted on it, so later passes
// recognize the post even when its dedupe keys shift.
const (
	markerCommented = "data-fp-commented"
	markerLiked     = "data-fp-liked"
)

// Mention placement relative to the comment text.
const (
	MentionPrepend = "prepend"
	MentionAppend  = "append"
)

// Commenter opens a post's comment editor, composes the text with optional
// author mentions and submits it.
type Commenter struct {
	page            browser.Page
	typist          *humanoid.Typist
	mentioner       *Mentioner
	mentionPosition string
	logger          *zap.Logger
}

// NewCommenter builds a commenter. mentionPosition selects where an author
// mention lands when the plan carries an author name.
func NewCommenter(page browser.Page, typist *humanoid.Typist, mentioner *Mentioner, mentionPosition string, logger *zap.Logger) *Commenter {
	if mentionPosition != MentionPrepend {
		mentionPosition = MentionAppend
	}
	return &Commenter{
		page:            page,
		typist:          typist,
		mentioner:       mentioner,
		mentionPosition: mentionPosition,
		logger:          logger,
	}
}

// Submit runs the full comment flow against the post and stamps the root
// with the commented marker on success.
func (c *Commenter) Submit(ctx context.Context, post feed.Post, bar browser.Element, plan policy.CommentPlan) error {
	btn, err := c.page.FindWithin(ctx, bar, browser.CommentButton)
	if err != nil {
		return fmt.Errorf("comment button: %w", err)
	}
	if err := c.page.Click(ctx, btn); err != nil {
		return fmt.Errorf("open comment editor: %w", err)
	}
	c.typist.ActionPause(ctx)

	editor, err := c.findEditor(ctx, post.Root)
	if err != nil {
		return err
	}
	if err := c.page.Click(ctx, editor); err != nil {
		c.logger.Debug("Editor click failed, focusing directly.", zap.Error(err))
	}
	if err := c.page.Focus(ctx, editor); err != nil {
		return fmt.Errorf("focus comment editor: %w", err)
	}

	author := strings.TrimSpace(plan.AuthorName)
	if author != "" && c.mentionPosition == MentionPrepend {
		c.insertAuthorMention(ctx, editor, author, false)
	}

	if err := c.typeComment(ctx, editor, plan.Text); err != nil {
		return err
	}

	if author != "" && c.mentionPosition == MentionAppend {
		// Move the caret past the typed text before appending.
		if err := c.page.KeyPress(ctx, "End"); err != nil {
			c.logger.Debug("Caret move before mention failed.", zap.Error(err))
		}
		c.insertAuthorMention(ctx, editor, author, true)
	}

	browser.DismissOverlays(ctx, c.page, c.logger)

	submit, err := c.findSubmit(ctx, post.Root)
	if err != nil {
		return err
	}
	if err := c.page.Click(ctx, submit); err != nil {
		return fmt.Errorf("submit comment: %w", err)
	}

	if err := c.page.SetAttribute(ctx, post.Root, markerCommented, "1"); err != nil {
		c.logger.Debug("Commented marker not set.", zap.Error(err))
	}
	if err := c.page.KeyPress(ctx, "Escape"); err != nil {
		c.logger.Debug("Editor blur failed.", zap.Error(err))
	}
	return nil
}

// findEditor prefers the editor scoped to the post root so a busy feed does
// not route text into a neighboring post.
func (c *Commenter) findEditor(ctx context.Context, root browser.Element) (browser.Element, error) {
	editor, err := c.page.FindWithin(ctx, root, browser.CommentEditor)
	if err == nil {
		return editor, nil
	}
	editor, err = c.page.FindFirst(ctx, browser.CommentEditor)
	if err != nil {
		return browser.Element{}, fmt.Errorf("comment editor: %w", err)
	}
	return editor, nil
}

func (c *Commenter) findSubmit(ctx context.Context, root browser.Element) (browser.Element, error) {
	submit, err := c.page.FindWithin(ctx, root, browser.CommentSubmit)
	if err == nil {
		return submit, nil
	}
	submit, err = c.page.FindFirst(ctx, browser.CommentSubmit)
	if err != nil {
		return browser.Element{}, fmt.Errorf("comment submit: %w", err)
	}
	return submit, nil
}

// typeComment types the plan text, resolving inline @{Name} placeholders,
// and falls back to a direct value set when keystrokes fail.
func (c *Commenter) typeComment(ctx context.Context, editor browser.Element, text string) error {
	var err error
	if ContainsInlineMentions(text) {
		err = c.mentioner.ComposeWithMentions(ctx, editor, text)
	} else {
		err = c.typist.Type(ctx, editor, text)
	}
	if err == nil {
		return nil
	}
	c.logger.Warn("Typing comment failed, setting text directly.", zap.Error(err))
	plain := inlineMentionRe.ReplaceAllString(text, "@$1")
	if setErr := c.page.SetText(ctx, editor, plain); setErr != nil {
		return fmt.Errorf("compose comment: %w", setErr)
	}
	return nil
}

// insertAuthorMention resolves the mention through the typeahead, keeping a
// literal @Name when no entity can be verified.
func (c *Commenter) insertAuthorMention(ctx context.Context, editor browser.Element, author string, leadingSpace bool) {
	if c.mentioner.InsertMention(ctx, editor, author, leadingSpace) {
		return
	}
	c.logger.Debug("Mention entity not verified, keeping literal text.",
		zap.String("author", author))
	if err := c.page.SendKeys(ctx, editor, " @"+author+" "); err != nil {
		c.logger.Debug("Literal mention fallback failed.", zap.Error(err))
	}
}
