// File: internal/ai/templates_test.go
package ai

import (
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestTemplateSourceUsesCustomTemplates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "CustomPosts.txt")
	require.NoError(t, os.WriteFile(path, []byte("Thoughts on {topic} today.\n\nAnother take on {topic}.\n"), 0o644))

	src := NewTemplateSource(path, rand.New(rand.NewSource(1)), zap.NewNop())
	post, err := src.GeneratePost(context.Background(), "observability", "")
	require.NoError(t, err)
	assert.Contains(t, post, "observability")
	assert.NotContains(t, post, "{topic}")
}

func TestTemplateSourceTopicDefaults(t *testing.T) {
	src := NewTemplateSource("", rand.New(rand.NewSource(1)), zap.NewNop())
	post, err := src.GeneratePost(context.Background(), "Leadership", "")
	require.NoError(t, err)
	assert.Contains(t, post, "Leadership isn't just about guiding teams")
}

func TestTemplateSourceRandomizedFallback(t *testing.T) {
	src := NewTemplateSource("", rand.New(rand.NewSource(1)), zap.NewNop())
	post, err := src.GeneratePost(context.Background(), "quantum basket weaving", "")
	require.NoError(t, err)
	assert.Contains(t, post, "quantum basket weaving")
	assert.Contains(t, post, "#", "randomized posts carry hashtags")
}

func TestTemplateSourceMissingFileIsFine(t *testing.T) {
	src := NewTemplateSource(filepath.Join(t.TempDir(), "missing.txt"), rand.New(rand.NewSource(1)), zap.NewNop())
	post, err := src.GeneratePost(context.Background(), "ai", "")
	require.NoError(t, err)
	assert.NotEmpty(t, post)
}

func TestCapPost(t *testing.T) {
	long := strings.Repeat("a", maxPostLength+100)
	capped := capPost(long)
	assert.Len(t, capped, maxPostLength)
	assert.True(t, strings.HasSuffix(capped, "..."))
	assert.Equal(t, "short", capPost("short"))
}

func TestTemplateSourceComment(t *testing.T) {
	src := NewTemplateSource("", rand.New(rand.NewSource(1)), zap.NewNop())
	comment, err := src.GenerateComment(context.Background(), "anything", "funny")
	require.NoError(t, err)
	assert.NotEmpty(t, comment)
}
