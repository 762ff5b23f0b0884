package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/troikatech/care-voice/pkg/client"
	"github.com/troikatech/care-voice/pkg/otel"
	"github.com/troikatech/care-voice/pkg/retry"
)

// GeminiProvider implements the Provider interface for Google Gemini
type GeminiProvider struct {
	apiKey   string
	sampling Sampling
	logger   *zap.Logger
	baseURL  string
	http     *client.HTTPClient
}

// NewGeminiProvider creates a new Gemini provider
func NewGeminiProvider(apiKey, baseURL string, sampling Sampling, timeout time.Duration, logger *zap.Logger) *GeminiProvider {
	if apiKey == "" {
		return &GeminiProvider{logger: logger}
	}
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}

	return &GeminiProvider{
		apiKey:   apiKey,
		sampling: sampling,
		logger:   logger,
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     client.NewHTTPClient("gemini", timeout, client.WithRetry(retry.Config{MaxAttempts: 1})),
	}
}

// Name returns the provider name
func (p *GeminiProvider) Name() string {
	return "gemini"
}

// IsAvailable checks if the provider is available
func (p *GeminiProvider) IsAvailable() bool {
	return p.apiKey != ""
}

func (p *GeminiProvider) GenerateReply(ctx context.Context, req *ReplyRequest) (string, error) {
	if !p.IsAvailable() {
		return "", fmt.Errorf("gemini: %w", ErrNotAvailable)
	}

	requestBody := map[string]interface{}{
		"systemInstruction": map[string]interface{}{
			"parts": []map[string]interface{}{
				{"text": SystemPrompt},
			},
		},
		"contents": []map[string]interface{}{
			{
				"role": "user",
				"parts": []map[string]interface{}{
					{"text": UserPrompt(req)},
				},
			},
		},
		"generationConfig": map[string]interface{}{
			"temperature":     p.sampling.Temperature,
			"maxOutputTokens": p.sampling.MaxTokens,
		},
	}

	apiURL := fmt.Sprintf("%s/models/%s:generateContent?key=%s", p.baseURL, p.sampling.Model, url.QueryEscape(p.apiKey))

	var reply string
	err := otel.ClientSpan(ctx, p.Name(), "generate_content", func(ctx context.Context) error {
		resp, err := p.http.PostJSON(ctx, apiURL, requestBody, nil)
		if err != nil {
			return fmt.Errorf("failed to execute request: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("Gemini API error: %d - %s", resp.StatusCode, string(resp.Body))
		}

		var geminiResp struct {
			Candidates []struct {
				Content struct {
					Parts []struct {
						Text string `json:"text"`
					} `json:"parts"`
				} `json:"content"`
			} `json:"candidates"`
		}
		if err := json.Unmarshal(resp.Body, &geminiResp); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		if len(geminiResp.Candidates) == 0 {
			return fmt.Errorf("gemini: %w", ErrEmptyResponse)
		}

		var b strings.Builder
		for _, part := range geminiResp.Candidates[0].Content.Parts {
			b.WriteString(part.Text)
		}
		reply = strings.TrimSpace(b.String())
		return nil
	})
	if err != nil {
		return "", err
	}
	return reply, nil
}
