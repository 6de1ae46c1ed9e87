// File: internal/ai/gemini_test.go
package ai

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/feedpilot/internal/config"
)

func setupGeminiClient(t *testing.T, handler http.HandlerFunc) *GeminiClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.AIConfig{
		APIKey:      "test-key",
		Model:       "gemini-2.0-flash",
		Endpoint:    server.URL,
		APITimeout:  5 * time.Second,
		MaxTokens:   180,
		Temperature: 0.7,
	}
	client, err := NewGeminiClient(cfg, zap.NewNop())
	require.NoError(t, err)
	return client
}

func geminiReply(text string) []byte {
	payload := map[string]any{
		"candidates": []map[string]any{
			{
				"content":      map[string]any{"parts": []map[string]string{{"text": text}}},
				"finishReason": "STOP",
			},
		},
	}
	out, _ := json.Marshal(payload)
	return out
}

func TestNewGeminiClientRequiresAPIKey(t *testing.T) {
	_, err := NewGeminiClient(config.AIConfig{}, zap.NewNop())
	assert.Error(t, err)
}

func TestGenerateCommentSendsPerspective(t *testing.T) {
	var captured geminiRequestPayload
	client := setupGeminiClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write(geminiReply("  Nice perspective on shipping early.  "))
	})

	text, err := client.GenerateComment(context.Background(), "We shipped early and learned a lot.", "motivational")
	require.NoError(t, err)
	assert.Equal(t, "Nice perspective on shipping early.", text, "response is trimmed")

	require.Len(t, captured.Contents, 1)
	prompt := captured.Contents[0].Parts[0].Text
	assert.Contains(t, prompt, "We shipped early and learned a lot.")
	assert.Contains(t, prompt, perspectiveInstructions["motivational"])
	assert.Equal(t, 180, captured.GenerationConfig.MaxOutputTokens)
	assert.InDelta(t, 0.7, captured.GenerationConfig.Temperature, 1e-9)
}

func TestGenerateCommentUnknownPerspectiveFallsBack(t *testing.T) {
	var captured geminiRequestPayload
	client := setupGeminiClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&captured)
		w.Write(geminiReply("ok"))
	})

	_, err := client.GenerateComment(context.Background(), "post", "sarcastic")
	require.NoError(t, err)
	assert.Contains(t, captured.Contents[0].Parts[0].Text, perspectiveInstructions["insightful"])
}

func TestGenerateRetriesTransientErrors(t *testing.T) {
	var calls atomic.Int32
	client := setupGeminiClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write(geminiReply("recovered"))
	})

	text, err := client.GenerateComment(context.Background(), "post", "funny")
	require.NoError(t, err)
	assert.Equal(t, "recovered", text)
	assert.Equal(t, int32(2), calls.Load())
}

func TestGenerateDoesNotRetryPermanentErrors(t *testing.T) {
	var calls atomic.Int32
	client := setupGeminiClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	})

	_, err := client.GenerateComment(context.Background(), "post", "funny")
	assert.Error(t, err)
	assert.Equal(t, int32(1), calls.Load(), "4xx responses must not be retried")
}

func TestGenerateBlockedBySafetyIsPermanent(t *testing.T) {
	var calls atomic.Int32
	client := setupGeminiClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		payload := map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []any{}}, "finishReason": "SAFETY"},
			},
		}
		out, _ := json.Marshal(payload)
		w.Write(out)
	})

	_, err := client.GenerateComment(context.Background(), "post", "funny")
	assert.ErrorContains(t, err, "SAFETY")
	assert.Equal(t, int32(1), calls.Load())
}

func TestNormalizePerspectives(t *testing.T) {
	assert.Equal(t, []string{"funny", "motivational", "insightful"}, NormalizePerspectives(nil))
	assert.Equal(t, []string{"insightful"}, NormalizePerspectives([]string{"perspective"}))
	assert.Equal(t, []string{"funny", "custom"}, NormalizePerspectives([]string{"funny", "custom"}))
}

func TestChoosePerspective(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 50; i++ {
		p := ChoosePerspective(rng, []string{"funny", "bogus"})
		assert.Equal(t, "funny", p, "unrecognized candidates are filtered out")
	}
	p := ChoosePerspective(rng, []string{"bogus"})
	assert.Contains(t, []string{"funny", "motivational", "insightful"}, p)
}
