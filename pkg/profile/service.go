package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/troikatech/care-voice/pkg/audit"
	"github.com/troikatech/care-voice/pkg/logger"
)

const resourceType = "customer"

// Service applies profile rules on top of a Store.
type Service struct {
	store    Store
	defaults Defaults
	audit    audit.Recorder
	logger   *zap.Logger
	now      func() time.Time
}

func NewService(store Store, defaults Defaults, recorder audit.Recorder, logger *zap.Logger) *Service {
	if recorder == nil {
		recorder = audit.NopRecorder{}
	}
	return &Service{
		store:    store,
		defaults: defaults,
		audit:    recorder,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Defaults returns the configured fallback language and gender.
func (s *Service) Defaults() Defaults {
	return s.defaults
}

// GetByPhone returns the profile for phone or ErrNotFound.
func (s *Service) GetByPhone(ctx context.Context, phone string) (*Profile, error) {
	p, err := s.store.FindByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	return s.defaults.Apply(p), nil
}

// GetByID returns the profile with id or ErrNotFound.
func (s *Service) GetByID(ctx context.Context, id string) (*Profile, error) {
	p, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.defaults.Apply(p), nil
}

// List returns a page of profiles, newest first, and the total count.
func (s *Service) List(ctx context.Context, skip, limit int64) ([]*Profile, int64, error) {
	profiles, total, err := s.store.List(ctx, skip, limit)
	if err != nil {
		return nil, 0, err
	}
	for _, p := range profiles {
		s.defaults.Apply(p)
	}
	return profiles, total, nil
}

// Create inserts a new profile. Returns ErrConflict if the phone is taken.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Profile, error) {
	phone := strings.TrimSpace(in.PhoneNumber)
	if phone == "" {
		return nil, fmt.Errorf("phone_number is required")
	}

	if _, err := s.store.FindByPhone(ctx, phone); err == nil {
		return nil, ErrConflict
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	now := s.now()
	p := &Profile{
		PhoneNumber:  phone,
		Name:         in.Name,
		Gender:       s.defaults.Gender,
		LanguageCode: s.defaults.Language,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if in.Gender != nil {
		p.Gender = *in.Gender
	}
	if in.LanguageCode != nil && *in.LanguageCode != "" {
		p.LanguageCode = *in.LanguageCode
	}

	if err := s.store.Insert(ctx, p); err != nil {
		return nil, err
	}

	s.record(ctx, audit.ActionCreate, p, nil)
	return p, nil
}

// Update applies the non-nil fields of in to the profile with id.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*Profile, error) {
	p, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.defaults.Apply(p)

	changed := map[string]interface{}{}
	if in.Name != nil {
		p.Name = in.Name
		changed["name"] = true
	}
	if in.Gender != nil {
		p.Gender = *in.Gender
		changed["gender"] = string(*in.Gender)
	}
	if in.LanguageCode != nil {
		p.LanguageCode = *in.LanguageCode
		changed["language_code"] = *in.LanguageCode
	}
	p.UpdatedAt = s.now()

	if err := s.store.Update(ctx, p); err != nil {
		return nil, err
	}

	s.record(ctx, audit.ActionUpdate, p, changed)
	return p, nil
}

// GetOrCreateDefault returns the existing profile for phone, or creates one with
// the given language and gender. A concurrent insert for the same phone is
// resolved by re-reading the winner.
func (s *Service) GetOrCreateDefault(ctx context.Context, phone, language string, gender Gender) (*Profile, error) {
	if existing, err := s.GetByPhone(ctx, phone); err == nil {
		return existing, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	now := s.now()
	p := &Profile{
		PhoneNumber:  phone,
		Gender:       gender,
		LanguageCode: language,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.defaults.Apply(p)

	err := s.store.Insert(ctx, p)
	if errors.Is(err, ErrConflict) {
		s.logger.Info("Profile created concurrently, re-reading", logger.MaskPhone("phone", phone))
		return s.GetByPhone(ctx, phone)
	}
	if err != nil {
		return nil, err
	}

	s.record(ctx, audit.ActionDefaultCreate, p, map[string]interface{}{"language_code": p.LanguageCode})
	return p, nil
}

// UpsertFromExternal merges an external record into the profile for phone.
//
// A new profile copies every external field and falls back to the given
// defaults. An existing profile keeps its name and gender unless the external
// record supplies them; language prefers external, then existing, then fallback.
func (s *Service) UpsertFromExternal(ctx context.Context, phone string, ext External, fallbackLanguage string, fallbackGender Gender) (*Profile, error) {
	existing, err := s.GetByPhone(ctx, phone)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	if existing == nil {
		now := s.now()
		p := &Profile{
			PhoneNumber:  phone,
			Name:         nonEmpty(ext.Name),
			Gender:       fallbackGender,
			LanguageCode: firstNonEmpty(ext.LanguageCode, fallbackLanguage),
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if ext.Gender != nil {
			p.Gender = *ext.Gender
		}
		s.defaults.Apply(p)

		err := s.store.Insert(ctx, p)
		if err == nil {
			s.record(ctx, audit.ActionCRMUpsert, p, map[string]interface{}{"created": true})
			return p, nil
		}
		if !errors.Is(err, ErrConflict) {
			return nil, err
		}

		// Another turn inserted the phone between our read and write; merge into it.
		existing, err = s.GetByPhone(ctx, phone)
		if err != nil {
			return nil, err
		}
	}

	if name := nonEmpty(ext.Name); name != nil {
		existing.Name = name
	}
	if ext.Gender != nil {
		existing.Gender = *ext.Gender
	} else if existing.Gender == "" {
		existing.Gender = fallbackGender
	}
	existing.LanguageCode = firstNonEmpty(ext.LanguageCode, existing.LanguageCode, fallbackLanguage)
	existing.UpdatedAt = s.now()

	if err := s.store.Update(ctx, existing); err != nil {
		return nil, err
	}

	s.record(ctx, audit.ActionCRMUpsert, existing, map[string]interface{}{"created": false})
	return existing, nil
}

func (s *Service) record(ctx context.Context, action audit.Action, p *Profile, metadata map[string]interface{}) {
	s.audit.Record(ctx, audit.Event{
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   p.ID,
		Metadata:     metadata,
	})
}

func nonEmpty(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
