package callflow

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/troikatech/care-voice/pkg/crm"
	"github.com/troikatech/care-voice/pkg/langdetect"
	"github.com/troikatech/care-voice/pkg/logger"
	"github.com/troikatech/care-voice/pkg/metrics"
	"github.com/troikatech/care-voice/pkg/profile"
)

// Lookup is the input every source sees.
type Lookup struct {
	CallerID  string
	Utterance string
}

// Source is one step of the resolution chain. A miss returns (nil, false);
// sources never fail.
type Source interface {
	Name() string
	Lookup(ctx context.Context, in Lookup) (*profile.Profile, bool)
}

// LocalSource reads the profile store.
type LocalSource struct {
	profiles *profile.Service
	logger   *zap.Logger
}

func NewLocalSource(profiles *profile.Service, logger *zap.Logger) *LocalSource {
	return &LocalSource{profiles: profiles, logger: logger}
}

func (s *LocalSource) Name() string { return "local" }

func (s *LocalSource) Lookup(ctx context.Context, in Lookup) (*profile.Profile, bool) {
	if in.CallerID == "" {
		return nil, false
	}

	p, err := s.profiles.GetByPhone(ctx, in.CallerID)
	if err != nil {
		if !errors.Is(err, profile.ErrNotFound) {
			metrics.RecordFallback(s.Name())
			s.logger.Warn("Local profile lookup failed", logger.MaskPhone("caller", in.CallerID), zap.Error(err))
		}
		return nil, false
	}
	return p, true
}

// CRMSource fetches the caller from the CRM and upserts the result locally.
type CRMSource struct {
	fetcher  crm.Fetcher
	profiles *profile.Service
	logger   *zap.Logger
}

// NewCRMSource returns a source that always misses when fetcher is nil.
func NewCRMSource(fetcher crm.Fetcher, profiles *profile.Service, logger *zap.Logger) *CRMSource {
	return &CRMSource{fetcher: fetcher, profiles: profiles, logger: logger}
}

func (s *CRMSource) Name() string { return "crm" }

func (s *CRMSource) Lookup(ctx context.Context, in Lookup) (*profile.Profile, bool) {
	if s.fetcher == nil || in.CallerID == "" {
		return nil, false
	}

	ext, err := s.fetcher.FetchProfile(ctx, in.CallerID)
	if err != nil {
		if !errors.Is(err, crm.ErrNotFound) && !errors.Is(err, crm.ErrNotConfigured) {
			metrics.RecordFallback(s.Name())
		}
		return nil, false
	}

	defaults := s.profiles.Defaults()
	p, err := s.profiles.UpsertFromExternal(ctx, in.CallerID, ext.ToExternal(), defaults.Language, defaults.Gender)
	if err != nil {
		metrics.RecordFallback(s.Name())
		s.logger.Warn("CRM upsert failed", logger.MaskPhone("caller", in.CallerID), zap.Error(err))
		return nil, false
	}
	return p, true
}

// detectedLanguages maps detector codes to the tags stored on profiles.
var detectedLanguages = map[string]string{
	"en": "en-US",
	"hi": "hi-IN",
	"mr": "mr-IN",
}

// DetectionSource creates a default profile in the language of the utterance.
// It always hits.
type DetectionSource struct {
	detector langdetect.Detector
	profiles *profile.Service
	timeout  time.Duration
	logger   *zap.Logger
}

func NewDetectionSource(detector langdetect.Detector, profiles *profile.Service, timeout time.Duration, logger *zap.Logger) *DetectionSource {
	return &DetectionSource{detector: detector, profiles: profiles, timeout: timeout, logger: logger}
}

func (s *DetectionSource) Name() string { return "detection" }

func (s *DetectionSource) Lookup(ctx context.Context, in Lookup) (*profile.Profile, bool) {
	defaults := s.profiles.Defaults()
	language := s.detect(ctx, in.Utterance, defaults.Language)

	if in.CallerID == "" {
		p := defaults.Transient("")
		p.LanguageCode = language
		return p, true
	}

	p, err := s.profiles.GetOrCreateDefault(ctx, in.CallerID, language, defaults.Gender)
	if err != nil {
		metrics.RecordFallback(s.Name())
		s.logger.Warn("Default profile creation failed, continuing unsaved",
			logger.MaskPhone("caller", in.CallerID), zap.Error(err))
		p = defaults.Transient(in.CallerID)
		p.LanguageCode = language
	}
	return p, true
}

func (s *DetectionSource) detect(ctx context.Context, utterance, fallback string) string {
	if s.detector == nil || utterance == "" {
		return fallback
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	code, err := s.detector.Detect(ctx, utterance)
	if err != nil {
		s.logger.Debug("Language detection gave no result", zap.Error(err))
		return fallback
	}
	if tag, ok := detectedLanguages[code]; ok {
		return tag
	}
	return fallback
}
