package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/troikatech/care-voice/pkg/client"
	"github.com/troikatech/care-voice/pkg/otel"
	"github.com/troikatech/care-voice/pkg/retry"
)

// AnthropicProvider implements the Provider interface for Anthropic Claude
type AnthropicProvider struct {
	apiKey   string
	sampling Sampling
	logger   *zap.Logger
	baseURL  string
	http     *client.HTTPClient
}

// NewAnthropicProvider creates a new Anthropic provider
func NewAnthropicProvider(apiKey, baseURL string, sampling Sampling, timeout time.Duration, logger *zap.Logger) *AnthropicProvider {
	if apiKey == "" {
		return &AnthropicProvider{logger: logger}
	}
	if baseURL == "" {
		baseURL = "https://api.anthropic.com/v1"
	}

	return &AnthropicProvider{
		apiKey:   apiKey,
		sampling: sampling,
		logger:   logger,
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     client.NewHTTPClient("anthropic", timeout, client.WithRetry(retry.Config{MaxAttempts: 1})),
	}
}

// Name returns the provider name
func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

// IsAvailable checks if the provider is available
func (p *AnthropicProvider) IsAvailable() bool {
	return p.apiKey != ""
}

func (p *AnthropicProvider) GenerateReply(ctx context.Context, req *ReplyRequest) (string, error) {
	if !p.IsAvailable() {
		return "", fmt.Errorf("anthropic: %w", ErrNotAvailable)
	}

	requestBody := map[string]interface{}{
		"model":       p.sampling.Model,
		"max_tokens":  p.sampling.MaxTokens,
		"temperature": p.sampling.Temperature,
		"system":      SystemPrompt,
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": UserPrompt(req),
			},
		},
	}
	headers := map[string]string{
		"x-api-key":         p.apiKey,
		"anthropic-version": "2023-06-01",
	}

	var reply string
	err := otel.ClientSpan(ctx, p.Name(), "messages", func(ctx context.Context) error {
		resp, err := p.http.PostJSON(ctx, p.baseURL+"/messages", requestBody, headers)
		if err != nil {
			return fmt.Errorf("failed to execute request: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("Anthropic API error: %d - %s", resp.StatusCode, string(resp.Body))
		}

		var anthropicResp struct {
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
		}
		if err := json.Unmarshal(resp.Body, &anthropicResp); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		if len(anthropicResp.Content) == 0 {
			return fmt.Errorf("anthropic: %w", ErrEmptyResponse)
		}

		var b strings.Builder
		for _, block := range anthropicResp.Content {
			if block.Type == "" || block.Type == "text" {
				b.WriteString(block.Text)
			}
		}
		reply = strings.TrimSpace(b.String())
		return nil
	})
	if err != nil {
		return "", err
	}
	return reply, nil
}
