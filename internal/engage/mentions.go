// File: internal/engage/mentions.go
package engage

import (
	"context"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/feedpilot/internal/browser"
	"github.com/xkilldash9x/feedpilot/internal/humanoid"
)

// Polling windows for the typeahead tray.
const (
	suggestionWaitTimeout = 8 * time.Second
	entityVerifyTimeout   = 4 * time.Second
	suggestionPollStep    = 200 * time.Millisecond
)

var inlineMentionRe = regexp.MustCompile(`@\{([^}]+)\}`)

// Mentioner turns @Name tokens into linked mention entities by driving the
// editor's typeahead tray.
type Mentioner struct {
	page   browser.Page
	typist *humanoid.Typist
	logger *zap.Logger

	suggestionWait time.Duration
	verifyWait     time.Duration
	pollStep       time.Duration
}

// NewMentioner builds a mentioner over the page.
func NewMentioner(page browser.Page, typist *humanoid.Typist, logger *zap.Logger) *Mentioner {
	return &Mentioner{
		page:           page,
		typist:         typist,
		logger:         logger,
		suggestionWait: suggestionWaitTimeout,
		verifyWait:     entityVerifyTimeout,
		pollStep:       suggestionPollStep,
	}
}

// ContainsInlineMentions reports whether the text carries @{Name}
// placeholders.
func ContainsInlineMentions(text string) bool {
	return inlineMentionRe.MatchString(text)
}

// ComposeWithMentions types the text into the editor, resolving each
// @{Name} placeholder into a mention entity as it goes.
func (m *Mentioner) ComposeWithMentions(ctx context.Context, editor browser.Element, text string) error {
	idx := 0
	for _, loc := range inlineMentionRe.FindAllStringSubmatchIndex(text, -1) {
		if segment := text[idx:loc[0]]; segment != "" {
			if err := m.typist.Type(ctx, editor, segment); err != nil {
				return err
			}
		}
		name := strings.TrimSpace(text[loc[2]:loc[3]])
		if name != "" {
			if verified := m.InsertMention(ctx, editor, name, false); !verified {
				// The typed @name stays behind as literal text.
				m.logger.Debug("Mention entity not verified.", zap.String("name", name))
			}
		}
		idx = loc[1]
	}
	if tail := text[idx:]; tail != "" {
		return m.typist.Type(ctx, editor, tail)
	}
	return nil
}

// InsertMention types "@" + name into the editor, waits for the suggestion
// tray, selects an entry and verifies a mention entity materialized.
// Returns whether the entity was verified; either way a trailing space is
// left after the insertion point. leadingSpace forces a separator space
// before the "@" even when the editor already ends with whitespace.
func (m *Mentioner) InsertMention(ctx context.Context, editor browser.Element, name string, leadingSpace bool) bool {
	if name == "" {
		return false
	}
	if err := m.page.Click(ctx, editor); err != nil {
		m.logger.Debug("Editor click before mention failed.", zap.Error(err))
	}
	if err := m.page.Focus(ctx, editor); err != nil {
		return false
	}

	// Separate the "@" from preceding text so the tray triggers reliably.
	if leadingSpace || m.needsSeparator(ctx, editor) {
		m.send(ctx, editor, " ")
	}
	m.send(ctx, editor, "@")

	safeName := humanoid.StripNonBMP(name)
	for _, r := range safeName {
		m.send(ctx, editor, string(r))
	}

	// Nudge the editor: space then backspace returns the caret to the name
	// end and wakes a stubborn typeahead.
	m.send(ctx, editor, " ")
	if err := m.page.KeyPress(ctx, "Backspace"); err != nil {
		m.logger.Debug("Mention nudge backspace failed.", zap.Error(err))
	}

	m.waitForSuggestions(ctx)

	selected := m.selectFirstSuggestion(ctx)
	if !selected {
		selected = m.selectBestMatch(ctx, safeName)
	}
	m.logger.Debug("Mention suggestion selection.",
		zap.String("name", name), zap.Bool("selected", selected))

	verified := m.VerifyEntity(ctx, editor, name, m.verifyWait)

	// Trailing space so the next word does not stick to the entity.
	m.send(ctx, editor, " ")
	return verified
}

func (m *Mentioner) needsSeparator(ctx context.Context, editor browser.Element) bool {
	text, err := m.page.Text(ctx, editor)
	if err != nil || text == "" {
		return true
	}
	last := text[len(text)-1]
	return last != ' ' && last != '\n' && last != '\t'
}

func (m *Mentioner) send(ctx context.Context, editor browser.Element, s string) {
	if err := m.page.SendKeys(ctx, editor, s); err != nil {
		m.logger.Debug("Mention keystroke failed.", zap.Error(err))
	}
}

// waitForSuggestions polls until the tray shows at least one visible item.
func (m *Mentioner) waitForSuggestions(ctx context.Context) bool {
	deadline := time.Now().Add(m.suggestionWait)
	for {
		if ctx.Err() != nil {
			return false
		}
		items, err := m.page.FindAll(ctx, browser.MentionSuggestionItems)
		if err == nil {
			for _, el := range items {
				if ok, _ := m.page.IsVisible(ctx, el); ok {
					return true
				}
			}
		}
		if !time.Now().Before(deadline) {
			return false
		}
		time.Sleep(m.pollStep)
	}
}

// selectFirstSuggestion clicks the first visible option inside the tray.
func (m *Mentioner) selectFirstSuggestion(ctx context.Context) bool {
	container, err := m.page.FindFirst(ctx, browser.MentionSuggestionContainer)
	if err != nil {
		return false
	}
	if ok, _ := m.page.IsVisible(ctx, container); !ok {
		return false
	}
	first, err := m.page.FindWithin(ctx, container, browser.MentionFirstSuggestion)
	if err != nil {
		return false
	}
	if ok, _ := m.page.IsVisible(ctx, first); !ok {
		return false
	}
	return m.page.Click(ctx, first) == nil
}

// selectBestMatch ranks suggestion items against the expected name (exact
// over prefix over substring) and clicks the best visible one.
func (m *Mentioner) selectBestMatch(ctx context.Context, expected string) bool {
	items, err := m.page.FindAll(ctx, browser.MentionSuggestionItems)
	if err != nil || len(items) == 0 {
		return false
	}
	exp := strings.ToLower(strings.TrimSpace(expected))
	best := -1
	bestScore := -1
	for i, el := range items {
		if ok, _ := m.page.IsVisible(ctx, el); !ok {
			continue
		}
		text, _ := m.page.Text(ctx, el)
		score := matchScore(strings.ToLower(strings.TrimSpace(text)), exp)
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	if best < 0 {
		return false
	}
	return m.page.Click(ctx, items[best]) == nil
}

func matchScore(text, expected string) int {
	if expected == "" {
		return 0
	}
	switch {
	case text == expected:
		return 3
	case strings.HasPrefix(text, expected):
		return 2
	case strings.Contains(text, expected):
		return 1
	}
	return 0
}

// VerifyEntity polls the editor for a rendered mention entity containing
// the name.
func (m *Mentioner) VerifyEntity(ctx context.Context, editor browser.Element, name string, timeout time.Duration) bool {
	target := strings.ToLower(strings.TrimSpace(name))
	if target == "" {
		return false
	}
	deadline := time.Now().Add(timeout)
	for {
		if ctx.Err() != nil {
			return false
		}
		els, err := m.page.FindAllWithin(ctx, editor, browser.MentionEntity)
		if err == nil {
			for _, el := range els {
				if ok, _ := m.page.IsVisible(ctx, el); !ok {
					continue
				}
				text, _ := m.page.Text(ctx, el)
				if strings.Contains(strings.ToLower(text), target) {
					return true
				}
			}
		}
		if !time.Now().Before(deadline) {
			return false
		}
		time.Sleep(m.pollStep)
	}
}
