// File: internal/policy/policy.go

// Package policy decides what to do with a post: whether to comment, what
// text to use, and which gates skip the post entirely. The checks run in a
// fixed order so every skip is attributed to the first reason that applies.
package policy

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/feedpilot/internal/ai"
	"github.com/xkilldash9x/feedpilot/internal/browser"
	"github.com/xkilldash9x/feedpilot/internal/config"
	"github.com/xkilldash9x/feedpilot/internal/feed"
)

// SkipReason identifies why a post was not commented on.
type SkipReason string

const (
	SkipNone                 SkipReason = ""
	SkipCommentsDisabled     SkipReason = "comments_disabled"
	SkipAlreadyLiked         SkipReason = "already_liked"
	SkipURNAlreadyCommented  SkipReason = "urn_already_commented"
	SkipNoCommentText        SkipReason = "no_comment_text"
	SkipUserCommentExists    SkipReason = "user_comment_exists"
	SkipSimilarCommentExists SkipReason = "similar_comment_exists"
)

// CommentPlan is the outcome of deciding whether and how to comment.
type CommentPlan struct {
	Text        string
	Perspective string
	AuthorName  string
	Skip        SkipReason
}

// Engine evaluates posts against the configured engagement policy.
type Engine struct {
	page      browser.Page
	locator   *feed.Locator
	generator ai.Generator

	mode          string
	commentText   string
	mentionAuthor bool
	aiEnabled     bool
	perspectives  []string

	rng    *rand.Rand
	logger *zap.Logger
}

// NewEngine builds a policy engine. generator may be nil when AI commenting
// is disabled.
func NewEngine(page browser.Page, locator *feed.Locator, generator ai.Generator,
	engCfg config.EngageConfig, aiCfg config.AIConfig, rng *rand.Rand, logger *zap.Logger) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{
		page:          page,
		locator:       locator,
		generator:     generator,
		mode:          engCfg.Mode,
		commentText:   engCfg.CommentText,
		mentionAuthor: engCfg.MentionAuthor,
		aiEnabled:     aiCfg.Enabled && generator != nil,
		perspectives:  ai.NormalizePerspectives(aiCfg.Perspectives),
		rng:           rng,
		logger:        logger,
	}
}

// PlanComment runs the comment gates for one post. commentedURNs is the
// session set of URNs already commented; the plan may add to it when an
// existing comment is discovered on the post.
func (e *Engine) PlanComment(ctx context.Context, post feed.Post, bar browser.Element,
	commentedURNs map[string]bool) CommentPlan {

	plan := CommentPlan{}

	if e.mode != "comment" && e.mode != "both" {
		plan.Skip = SkipCommentsDisabled
		return plan
	}

	if e.mentionAuthor {
		plan.AuthorName = post.Author
	}

	// In comment-only mode an existing like means an earlier run already
	// engaged this post.
	if e.mode == "comment" && e.IsLiked(ctx, bar) {
		e.logger.Info("Skipping comment: post already liked.", zap.String("urn", post.URN))
		plan.Skip = SkipAlreadyLiked
		return plan
	}

	if post.URN != "" && commentedURNs[post.URN] {
		e.logger.Info("Skipping comment: URN already commented.", zap.String("urn", post.URN))
		plan.Skip = SkipURNAlreadyCommented
		return plan
	}

	plan.Text, plan.Perspective = e.determineCommentText(ctx, post)
	if plan.Text == "" {
		e.logger.Info("Skipping comment: no comment text available.")
		plan.Skip = SkipNoCommentText
		return plan
	}

	if e.locator.HasUserComment(ctx, post.Root) {
		e.logger.Info("Skipping comment: existing user comment detected.", zap.String("urn", post.URN))
		if post.URN != "" {
			commentedURNs[post.URN] = true
		}
		return skipPlan(plan, SkipUserCommentExists)
	}

	if e.locator.HasSimilarComment(ctx, post.Root, plan.Text) {
		e.logger.Info("Skipping comment: similar comment already present.", zap.String("urn", post.URN))
		if post.URN != "" {
			commentedURNs[post.URN] = true
		}
		return skipPlan(plan, SkipSimilarCommentExists)
	}

	return plan
}

// skipPlan converts a plan into a skip. A skipped plan never carries text:
// the two outcomes are mutually exclusive.
func skipPlan(plan CommentPlan, reason SkipReason) CommentPlan {
	plan.Skip = reason
	plan.Text = ""
	plan.Perspective = ""
	return plan
}

// determineCommentText resolves the comment body: generated text when AI is
// enabled and the post has readable content, otherwise the configured
// static text.
func (e *Engine) determineCommentText(ctx context.Context, post feed.Post) (string, string) {
	text := e.commentText
	perspective := ""

	if e.aiEnabled {
		postText := e.locator.TextForAI(ctx, post.Root)
		if postText == "" {
			e.logger.Info("Empty post text; falling back to static comment.")
		} else {
			summary := Summarize(postText, DefaultSummarySentences)
			perspective = ai.ChoosePerspective(e.rng, e.perspectives)
			generated, err := e.generator.GenerateComment(ctx, summary, perspective)
			if err != nil {
				e.logger.Error("Comment generation failed; falling back to static comment.", zap.Error(err))
				perspective = ""
			} else {
				text = generated
			}
		}
	}

	return strings.TrimSpace(text), perspective
}

// IsLiked reports whether the like button in the action bar is pressed.
func (e *Engine) IsLiked(ctx context.Context, bar browser.Element) bool {
	btn, err := e.page.FindWithin(ctx, bar, browser.LikeButton)
	if err != nil {
		return false
	}
	pressed, _, _ := e.page.Attribute(ctx, btn, "aria-pressed")
	return strings.EqualFold(strings.TrimSpace(pressed), "true")
}
