package ai

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/troikatech/care-voice/pkg/metrics"
	"github.com/troikatech/care-voice/pkg/otel"
)

// OpenAIProvider implements the Provider interface for OpenAI
type OpenAIProvider struct {
	client   *openai.Client
	sampling Sampling
	logger   *zap.Logger
}

// NewOpenAIProvider creates a new OpenAI provider. baseURL may be empty.
func NewOpenAIProvider(apiKey, baseURL string, sampling Sampling, logger *zap.Logger) *OpenAIProvider {
	if apiKey == "" {
		return &OpenAIProvider{logger: logger}
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if sampling.Model == "" {
		sampling.Model = openai.GPT4oMini
	}

	return &OpenAIProvider{
		client:   openai.NewClientWithConfig(cfg),
		sampling: sampling,
		logger:   logger,
	}
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// IsAvailable checks if the provider is available
func (p *OpenAIProvider) IsAvailable() bool {
	return p.client != nil
}

func (p *OpenAIProvider) GenerateReply(ctx context.Context, req *ReplyRequest) (string, error) {
	if !p.IsAvailable() {
		return "", fmt.Errorf("openai: %w", ErrNotAvailable)
	}

	start := time.Now()
	var reply string
	err := otel.ClientSpan(ctx, p.Name(), "chat_completion", func(ctx context.Context) error {
		resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: p.sampling.Model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: SystemPrompt},
				{Role: openai.ChatMessageRoleUser, Content: UserPrompt(req)},
			},
			MaxTokens:   p.sampling.MaxTokens,
			Temperature: p.sampling.Temperature,
		})
		if err != nil {
			return fmt.Errorf("openai chat completion: %w", err)
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("openai: %w", ErrEmptyResponse)
		}
		reply = resp.Choices[0].Message.Content
		return nil
	})
	metrics.RecordServiceCall(p.Name(), err == nil, time.Since(start))

	if err != nil {
		return "", err
	}
	return reply, nil
}
