// File: internal/humanoid/typist.go
package humanoid

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/feedpilot/internal/browser"
	"github.com/xkilldash9x/feedpilot/internal/config"
)

// Typist types text into page elements one keystroke at a time with
// jittered inter-key delays.
type Typist struct {
	page   browser.Page
	pacing config.PacingConfig
	rng    *rand.Rand
	logger *zap.Logger
}

// NewTypist builds a typist over the page. Pass a seeded rng for
// deterministic tests; a nil rng gets a time-seeded one.
func NewTypist(page browser.Page, pacing config.PacingConfig, rng *rand.Rand, logger *zap.Logger) *Typist {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Typist{page: page, pacing: pacing, rng: rng, logger: logger}
}

// Type focuses the element and sends the text key by key. Characters
// outside the Basic Multilingual Plane are dropped: ChromeDriver-style key
// events cannot encode them and they abort the whole input otherwise.
func (t *Typist) Type(ctx context.Context, el browser.Element, text string) error {
	if err := t.page.Focus(ctx, el); err != nil {
		return fmt.Errorf("focus for typing: %w", err)
	}
	cleaned := StripNonBMP(text)
	if dropped := len([]rune(text)) - len([]rune(cleaned)); dropped > 0 {
		t.logger.Debug("Dropped non-BMP characters before typing.", zap.Int("count", dropped))
	}
	for _, r := range cleaned {
		if err := t.page.SendKeys(ctx, el, string(r)); err != nil {
			return fmt.Errorf("send key: %w", err)
		}
		delay := t.keyDelay(r)
		if err := sleep(ctx, delay); err != nil {
			return err
		}
	}
	return nil
}

// keyDelay returns the pause after one keystroke. Sentence punctuation gets
// a longer beat, mirroring how people break at clause boundaries.
func (t *Typist) keyDelay(r rune) time.Duration {
	d := PauseDuration(t.rng, t.pacing.TypingDelayMin, t.pacing.TypingDelayMax)
	switch r {
	case '.', '!', '?', ',':
		d += PauseDuration(t.rng, t.pacing.TypingDelayMin, t.pacing.TypingDelayMax)
	}
	return d
}

// ActionPause waits the configured between-action interval.
func (t *Typist) ActionPause(ctx context.Context) error {
	return Pause(ctx, t.rng, t.pacing.ActionDelayMin, t.pacing.ActionDelayMax)
}

// ScrollPause waits the configured post-scroll settle interval.
func (t *Typist) ScrollPause(ctx context.Context) error {
	return Pause(ctx, t.rng, t.pacing.ScrollWaitMin, t.pacing.ScrollWaitMax)
}

// StripNonBMP removes runes above U+FFFF (emoji, astral-plane symbols).
func StripNonBMP(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r <= 0xFFFF {
			b.WriteRune(r)
		}
	}
	return b.String()
}
