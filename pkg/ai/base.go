package ai

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotAvailable is returned by a provider without credentials.
	ErrNotAvailable = errors.New("provider not available")
	// ErrNoProviders is returned when no configured provider could answer.
	ErrNoProviders = errors.New("no AI providers available")
	// ErrEmptyResponse is returned when a provider answers without any choice or candidate.
	ErrEmptyResponse = errors.New("provider returned no choices")
)

// Provider is the base interface for all AI providers
type Provider interface {
	// GenerateReply answers a caller utterance. An empty string is a valid answer.
	GenerateReply(ctx context.Context, req *ReplyRequest) (string, error)

	// IsAvailable checks if the provider is available/configured
	IsAvailable() bool

	// Name returns the provider name
	Name() string
}

// ReplyRequest is one caller utterance with its language hint.
type ReplyRequest struct {
	Utterance string
	Language  string
	Name      string
}

// Sampling settings shared by every provider.
type Sampling struct {
	Model       string
	MaxTokens   int
	Temperature float32
}

// SystemPrompt fixes the assistant's tone.
const SystemPrompt = "You are a concise, friendly customer-care assistant. " +
	"Answer in the same language as the user. Be helpful and brief."

// UserPrompt embeds the language hint, optional caller name and utterance.
func UserPrompt(req *ReplyRequest) string {
	namePart := ""
	if req.Name != "" {
		namePart = fmt.Sprintf(" The caller's name is %s.", req.Name)
	}
	return fmt.Sprintf("Language hint: %s. %s User said: %s", req.Language, namePart, req.Utterance)
}
