// Package app builds the call pipeline from configuration. It is shared by
// the server and the operator CLIs.
package app

import (
	"go.uber.org/zap"

	"github.com/troikatech/care-voice/pkg/ai"
	"github.com/troikatech/care-voice/pkg/audit"
	"github.com/troikatech/care-voice/pkg/callflow"
	"github.com/troikatech/care-voice/pkg/crm"
	"github.com/troikatech/care-voice/pkg/env"
	"github.com/troikatech/care-voice/pkg/langdetect"
	"github.com/troikatech/care-voice/pkg/profile"
	"github.com/troikatech/care-voice/pkg/twiml"
	"github.com/troikatech/care-voice/pkg/voice"
)

// Pipeline holds the long-lived components built at startup.
type Pipeline struct {
	Profiles  *profile.Service
	AIManager *ai.Manager
	Calls     *callflow.Orchestrator
}

// Defaults converts the configured fallbacks.
func Defaults(cfg *env.Config) profile.Defaults {
	return profile.Defaults{Language: cfg.DefaultLanguage, Gender: profile.Gender(cfg.DefaultGender)}
}

// NewAIProviders returns the configured providers in preference order.
func NewAIProviders(cfg *env.Config, logger *zap.Logger) []ai.Provider {
	sampling := ai.Sampling{
		MaxTokens:   cfg.OpenAIMaxTokens,
		Temperature: float32(cfg.AITemperature),
	}
	providers := []ai.Provider{}

	if cfg.OpenAIApiKey != "" {
		s := sampling
		s.Model = cfg.OpenAIModel
		providers = append(providers, ai.NewOpenAIProvider(cfg.OpenAIApiKey, "", s, logger))
		logger.Info("OpenAI provider initialized", zap.String("model", cfg.OpenAIModel))
	}
	if cfg.GeminiApiKey != "" {
		s := sampling
		s.Model = cfg.GeminiModel
		providers = append(providers, ai.NewGeminiProvider(cfg.GeminiApiKey, "", s, cfg.AITimeout(), logger))
		logger.Info("Gemini provider initialized", zap.String("model", cfg.GeminiModel))
	}
	if cfg.AnthropicApiKey != "" {
		s := sampling
		s.Model = cfg.AnthropicModel
		providers = append(providers, ai.NewAnthropicProvider(cfg.AnthropicApiKey, "", s, cfg.AITimeout(), logger))
		logger.Info("Anthropic provider initialized", zap.String("model", cfg.AnthropicModel))
	}

	if len(providers) == 0 {
		logger.Warn("No AI providers configured - replies will use canned greetings")
	}
	return providers
}

// NewPipeline wires CRM, detection, reply generation and rendering over store.
func NewPipeline(cfg *env.Config, store profile.Store, recorder audit.Recorder, logger *zap.Logger) *Pipeline {
	defaults := Defaults(cfg)
	profiles := profile.NewService(store, defaults, recorder, logger)

	var fetcher crm.Fetcher
	if cfg.CRMBaseURL != "" {
		fetcher = crm.NewClient(cfg.CRMBaseURL, cfg.CRMToken, cfg.CRMTimeout(), logger)
		logger.Info("CRM lookup enabled", zap.Duration("timeout", cfg.CRMTimeout()))
	}

	local := callflow.NewLocalSource(profiles, logger)
	crmSource := callflow.NewCRMSource(fetcher, profiles, logger)
	detection := callflow.NewDetectionSource(langdetect.NewWhatlang(), profiles, cfg.CRMTimeout(), logger)
	resolver := callflow.NewResolver(
		[]callflow.Source{local, crmSource},
		[]callflow.Source{local, crmSource, detection},
		defaults, logger,
	)

	aiManager := ai.NewManager(NewAIProviders(cfg, logger), logger)
	replies := ai.NewReplyGenerator(aiManager, cfg.AITimeout(), logger)

	calls := callflow.NewOrchestrator(
		resolver,
		voice.NewSelector(defaults.Language, defaults.Gender),
		replies,
		twiml.NewRenderer(),
		cfg.VoiceContinuePath,
		logger,
	)

	return &Pipeline{
		Profiles:  profiles,
		AIManager: aiManager,
		Calls:     calls,
	}
}
