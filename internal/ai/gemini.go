// File: internal/ai/gemini.go
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/xkilldash9x/feedpilot/internal/config"
)

// GeminiClient implements Generator over the Gemini REST API.
type GeminiClient struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
	logger     *zap.Logger
	config     config.AIConfig
}

var _ Generator = (*GeminiClient)(nil)

// -- Gemini API request/response structures --

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
	Role  string       `json:"role,omitempty"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiSystemInstruction struct {
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type geminiRequestPayload struct {
	Contents          []geminiContent          `json:"contents"`
	SystemInstruction *geminiSystemInstruction `json:"system_instruction,omitempty"`
	GenerationConfig  geminiGenerationConfig   `json:"generationConfig,omitempty"`
}

type geminiResponsePayload struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}

// NewGeminiClient initializes the client.
func NewGeminiClient(cfg config.AIConfig, logger *zap.Logger) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent", cfg.Model)
	}
	timeout := cfg.APITimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &GeminiClient{
		apiKey:     cfg.APIKey,
		endpoint:   endpoint,
		config:     cfg,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.Named("ai.gemini"),
	}, nil
}

const commentSystemPrompt = "You write authentic, engaging professional comments that add value to the conversation."

var perspectiveInstructions = map[string]string{
	"funny":        "Add a witty, light-hearted take on the post. Keep it professional but funny.",
	"motivational": "Provide encouragement and uplifting perspective. Be inspiring.",
	"insightful":   "Give a thoughtful comment that adds unique value to the discussion. Share a unique insight or perspective.",
}

const commentPromptTemplate = `Write a comment in response to this post.

Post content:
%s

Guidelines:
- Tone: %s
- Length: 1-2 concise sentences
- Style: Natural, conversational, and professional
- No emojis or quotes
- Sound like a real human, not AI-generated
- Add value to the conversation
- Be specific and relevant to the post

Comment:`

// GenerateComment writes a short comment responding to postText.
func (c *GeminiClient) GenerateComment(ctx context.Context, postText, perspective string) (string, error) {
	instruction, ok := perspectiveInstructions[perspective]
	if !ok {
		instruction = perspectiveInstructions["insightful"]
	}
	prompt := fmt.Sprintf(commentPromptTemplate, postText, instruction)
	return c.generate(ctx, commentSystemPrompt, prompt, clampTokens(c.config.MaxTokens, 20, 300))
}

const postSystemPrompt = "You are a professional growth strategist who writes engaging, human-like posts."

const postPromptTemplate = `Write a professional social post about "%s" in a %s style.

Follow this structure:
1. Hook: a bold, curiosity-driven first line.
2. Story: a mini-story or analogy showing a problem, a journey, a resolution.
3. Lesson: the key takeaway in simple, clear language.
4. Engagement question: end with a contextual question, not a generic one.
5. Hashtags: add 3-5 strong, relevant hashtags.

Rules:
- Short sentences. No jargon. Conversational tone.
- Keep it under 300 words.
- Do not use emojis unless natural.
- Prefer niche hashtags over generic ones.`

// GeneratePost writes a full post about the topic.
func (c *GeminiClient) GeneratePost(ctx context.Context, topic, style string) (string, error) {
	if style == "" {
		style = "professional"
	}
	prompt := fmt.Sprintf(postPromptTemplate, topic, style)
	return c.generate(ctx, postSystemPrompt, prompt, clampTokens(c.config.MaxTokens*4, 100, 900))
}

// generate sends the prompts to the Gemini API with retries.
func (c *GeminiClient) generate(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	payload := geminiRequestPayload{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: userPrompt}}},
		},
		SystemInstruction: &geminiSystemInstruction{
			Parts: []geminiPart{{Text: systemPrompt}},
		},
		GenerationConfig: geminiGenerationConfig{
			Temperature:     clampTemperature(c.config.Temperature),
			TopP:            0.9,
			MaxOutputTokens: maxTokens,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request payload: %w", err)
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = 2 * time.Minute
	b.MaxInterval = 30 * time.Second

	var responseContent string

	operation := func() error {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBuffer(body))
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create HTTP request: %w", err))
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("x-goog-api-key", c.apiKey)

		startTime := time.Now()
		resp, err := c.httpClient.Do(httpReq)
		duration := time.Since(startTime)

		if err != nil {
			c.logger.Warn("Network error during generation request, retrying...", zap.Error(err))
			return fmt.Errorf("failed to execute HTTP request: %w", err)
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response body: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			return c.handleAPIError(resp.StatusCode, respBody)
		}

		var responsePayload geminiResponsePayload
		if err := json.Unmarshal(respBody, &responsePayload); err != nil {
			return backoff.Permanent(fmt.Errorf("failed to decode response payload: %w", err))
		}
		if len(responsePayload.Candidates) == 0 {
			return backoff.Permanent(fmt.Errorf("gemini API returned no candidates"))
		}

		candidate := responsePayload.Candidates[0]
		if len(candidate.Content.Parts) == 0 {
			if candidate.FinishReason == "SAFETY" || candidate.FinishReason == "BLOCKLIST" {
				return backoff.Permanent(fmt.Errorf("gemini API blocked the request (reason: %s)", candidate.FinishReason))
			}
			return fmt.Errorf("gemini API returned empty content parts (reason: %s)", candidate.FinishReason)
		}

		c.logger.Info("Generation complete.",
			zap.Duration("duration", duration),
			zap.Int("prompt_tokens", responsePayload.UsageMetadata.PromptTokenCount),
			zap.Int("completion_tokens", responsePayload.UsageMetadata.CandidatesTokenCount),
			zap.Int("total_tokens", responsePayload.UsageMetadata.TotalTokenCount),
		)
		responseContent = strings.TrimSpace(candidate.Content.Parts[0].Text)
		return nil
	}

	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return "", err
	}
	return responseContent, nil
}

func (c *GeminiClient) handleAPIError(statusCode int, body []byte) error {
	c.logger.Error("Gemini API returned error status.",
		zap.Int("status", statusCode), zap.String("response", string(body)))
	err := fmt.Errorf("gemini API error: status %d, body: %s", statusCode, string(body))

	switch statusCode {
	case http.StatusTooManyRequests, http.StatusServiceUnavailable, http.StatusInternalServerError:
		return err // Transient, retry.
	default:
		return backoff.Permanent(err)
	}
}

func clampTemperature(t float64) float64 {
	if t < 0.1 {
		return 0.1
	}
	if t > 1.0 {
		return 1.0
	}
	return t
}

func clampTokens(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
