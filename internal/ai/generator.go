// File: internal/ai/generator.go

// Package ai generates comment and post text, either through the Gemini API
// or from local templates when no API is configured.
package ai

import (
	"context"
	"math/rand"
)

// Generator produces engagement text.
type Generator interface {
	// GenerateComment writes a short comment responding to the post text
	// from the given perspective.
	GenerateComment(ctx context.Context, postText, perspective string) (string, error)
	// GeneratePost writes a full post about the topic in the given style.
	GeneratePost(ctx context.Context, topic, style string) (string, error)
}

// Perspectives recognized by comment generation.
var allowedPerspectives = []string{"funny", "motivational", "insightful"}

// NormalizePerspectives maps friendly aliases to canonical perspective
// names and substitutes the full default set for an empty list.
func NormalizePerspectives(perspectives []string) []string {
	if len(perspectives) == 0 {
		return append([]string(nil), allowedPerspectives...)
	}
	out := make([]string, 0, len(perspectives))
	for _, p := range perspectives {
		if p == "perspective" {
			p = "insightful"
		}
		out = append(out, p)
	}
	return out
}

// ChoosePerspective picks a random recognized perspective from the
// candidates, falling back to the full allowed set when none qualify.
func ChoosePerspective(rng *rand.Rand, perspectives []string) string {
	pool := make([]string, 0, len(perspectives))
	for _, p := range perspectives {
		for _, allowed := range allowedPerspectives {
			if p == allowed {
				pool = append(pool, p)
				break
			}
		}
	}
	if len(pool) == 0 {
		pool = allowedPerspectives
	}
	return pool[rng.Intn(len(pool))]
}
