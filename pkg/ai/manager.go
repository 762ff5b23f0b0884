package ai

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/troikatech/care-voice/pkg/metrics"
)

// Manager tries providers in the order they were configured.
type Manager struct {
	providers []Provider
	logger    *zap.Logger
}

func NewManager(providers []Provider, logger *zap.Logger) *Manager {
	return &Manager{
		providers: providers,
		logger:    logger,
	}
}

// GetAvailableProvider returns the first available provider, or nil.
func (m *Manager) GetAvailableProvider() Provider {
	for _, provider := range m.providers {
		if provider.IsAvailable() {
			return provider
		}
	}
	return nil
}

// HasAvailable reports whether any provider is configured.
func (m *Manager) HasAvailable() bool {
	return m.GetAvailableProvider() != nil
}

// Names lists the available providers in preference order.
func (m *Manager) Names() []string {
	names := []string{}
	for _, provider := range m.providers {
		if provider.IsAvailable() {
			names = append(names, provider.Name())
		}
	}
	return names
}

// GenerateReply returns the first successful reply. Each failure moves on to
// the next provider unless ctx is done; the returned error joins every failure.
func (m *Manager) GenerateReply(ctx context.Context, req *ReplyRequest) (string, error) {
	var errs []error
	for _, provider := range m.providers {
		if !provider.IsAvailable() {
			continue
		}

		reply, err := provider.GenerateReply(ctx, req)
		if err == nil {
			if len(errs) > 0 {
				m.logger.Info("AI provider answered after failover",
					zap.String("provider", provider.Name()),
					zap.Int("failed", len(errs)),
				)
			}
			return reply, nil
		}

		errs = append(errs, fmt.Errorf("%s: %w", provider.Name(), err))
		metrics.RecordFallback("ai_" + provider.Name())
		m.logger.Warn("AI provider failed, trying next",
			zap.String("provider", provider.Name()),
			zap.Error(err),
		)

		if ctx.Err() != nil {
			break
		}
	}

	if len(errs) == 0 {
		return "", ErrNoProviders
	}
	return "", fmt.Errorf("all AI providers failed: %w", errors.Join(errs...))
}
