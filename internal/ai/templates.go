// File: internal/ai/templates.go
package ai

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
)

// maxPostLength caps rendered post text, matching the platform limit.
const maxPostLength = 3000

// defaultTemplates maps topics to canned posts used when neither the API
// nor a custom template covers the topic.
var defaultTemplates = map[string]string{
	"leadership":   "Leadership isn't just about guiding teams. It's about inspiring innovation, fostering growth, and building resilience through challenges. What leadership qualities do you value most? #LeadershipInsights #ProfessionalGrowth",
	"productivity": "Productivity isn't about doing more. It's about achieving meaningful results with focused intention. What productivity techniques have made the biggest difference in your professional life? #ProductivityHacks #WorkSmarter",
	"technology":   "The technological landscape continues to evolve at breakneck speed. Businesses that embrace digital transformation aren't just surviving, they're thriving. What emerging tech trends are you most excited about? #TechTrends #DigitalTransformation",
	"networking":   "Meaningful connections form the backbone of professional success. Quality always trumps quantity when building a network that truly supports your growth. How do you nurture professional relationships? #ProfessionalNetworking #CareerGrowth",
	"remote work":  "Remote work has permanently reshaped our professional landscape, offering flexibility while challenging traditional collaboration. What unexpected benefits have you discovered in your remote work journey? #RemoteWork #FutureOfWork",
	"ai":           "Artificial Intelligence isn't just changing how we work, it's redefining what's possible. The organizations that thrive will thoughtfully integrate AI into their strategic vision. What AI application has made the most impact in your sphere? #ArtificialIntelligence #Innovation",
}

// TemplateSource generates posts from local templates without any API. It
// implements Generator so the composer can fall back to it when AI is
// disabled or fails.
type TemplateSource struct {
	custom []string
	rng    *rand.Rand
	logger *zap.Logger
}

var _ Generator = (*TemplateSource)(nil)

// NewTemplateSource loads custom templates from path (one per line, with an
// optional {topic} placeholder). A missing file is not an error.
func NewTemplateSource(path string, rng *rand.Rand, logger *zap.Logger) *TemplateSource {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	t := &TemplateSource{rng: rng, logger: logger}
	if path == "" {
		return t
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("Failed to load custom post templates.", zap.String("path", path), zap.Error(err))
		} else {
			logger.Info("No custom posts file found; using built-in templates.", zap.String("path", path))
		}
		return t
	}
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			t.custom = append(t.custom, line)
		}
	}
	logger.Info("Loaded custom post templates.", zap.Int("count", len(t.custom)), zap.String("path", path))
	return t
}

// GeneratePost renders a post about the topic: a custom template when any
// are loaded, then a topic default, then a randomized composition.
func (t *TemplateSource) GeneratePost(_ context.Context, topic, _ string) (string, error) {
	if len(t.custom) > 0 {
		tpl := t.custom[t.rng.Intn(len(t.custom))]
		return capPost(strings.ReplaceAll(tpl, "{topic}", topic)), nil
	}
	if tpl, ok := defaultTemplates[strings.ToLower(strings.TrimSpace(topic))]; ok {
		return capPost(tpl), nil
	}
	return capPost(t.randomizedPost(topic)), nil
}

// GenerateComment returns a neutral canned comment; template mode has no
// per-post context to react to.
func (t *TemplateSource) GenerateComment(context.Context, string, string) (string, error) {
	comments := []string{
		"Thanks for sharing this, a really useful perspective.",
		"Great point, this matches what I have seen in practice.",
		"Appreciate the insight, plenty to think about here.",
	}
	return comments[t.rng.Intn(len(comments))], nil
}

func (t *TemplateSource) randomizedPost(topic string) string {
	intros := []string{
		"Quick thought on",
		"A practical take on",
		"Some reflections about",
		"Here's a perspective on",
	}
	values := []string{
		"focus on clear outcomes over busywork",
		"ship small, iterate fast, and listen to feedback",
		"keep systems simple and resilient",
		"optimize for long-term maintainability",
	}
	questions := []string{
		"what's one tip that helped you most?",
		"how are you approaching this right now?",
		"what trade-offs do you consider first?",
		"what's a pattern you'd repeat?",
	}
	hashtagsPool := []string{
		"#Productivity", "#Tech", "#AI", "#DigitalTransformation",
		"#CareerGrowth", "#Engineering", "#SaaS",
	}
	tags := make([]string, 0, 3)
	for _, i := range t.rng.Perm(len(hashtagsPool))[:3] {
		tags = append(tags, hashtagsPool[i])
	}
	return fmt.Sprintf("%s %s.\n\nKey principle: %s.\n\nCurious to hear from this community. %s\n\n%s",
		intros[t.rng.Intn(len(intros))],
		topic,
		values[t.rng.Intn(len(values))],
		questions[t.rng.Intn(len(questions))],
		strings.Join(tags, " "),
	)
}

func capPost(text string) string {
	if len(text) <= maxPostLength {
		return text
	}
	return strings.TrimRight(text[:maxPostLength-3], " ") + "..."
}
