// Package profile holds the caller profile model and the rules for creating,
// updating and merging profiles.
package profile

import (
	"errors"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when no profile matches a phone number or id.
	ErrNotFound = errors.New("profile not found")
	// ErrConflict is returned when a profile already exists for a phone number.
	ErrConflict = errors.New("profile already exists for this phone")
)

// Gender is the caller's voice preference.
type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderNeutral Gender = "neutral"
)

// ParseGender matches s case-insensitively against the known genders.
func ParseGender(s string) (Gender, bool) {
	switch g := Gender(strings.ToLower(strings.TrimSpace(s))); g {
	case GenderMale, GenderFemale, GenderNeutral:
		return g, true
	default:
		return "", false
	}
}

// Profile is a known or provisional caller, keyed by phone number.
type Profile struct {
	ID           string    `json:"id"`
	PhoneNumber  string    `json:"phone_number"`
	Name         *string   `json:"name"`
	Gender       Gender    `json:"gender"`
	LanguageCode string    `json:"language_code"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// DisplayName returns the name or "" when unknown.
func (p *Profile) DisplayName() string {
	if p == nil || p.Name == nil {
		return ""
	}
	return *p.Name
}

// Defaults are substituted whenever a gender or language is missing.
type Defaults struct {
	Language string
	Gender   Gender
}

// Apply fills empty gender/language fields on p.
func (d Defaults) Apply(p *Profile) *Profile {
	if p == nil {
		return nil
	}
	if _, ok := ParseGender(string(p.Gender)); !ok {
		p.Gender = d.Gender
	}
	if p.LanguageCode == "" {
		p.LanguageCode = d.Language
	}
	return p
}

// Transient returns an unsaved profile carrying only defaults.
func (d Defaults) Transient(phone string) *Profile {
	return &Profile{PhoneNumber: phone, Gender: d.Gender, LanguageCode: d.Language}
}

// CreateInput is the payload for an explicit create.
type CreateInput struct {
	PhoneNumber  string  `json:"phone_number" binding:"required"`
	Name         *string `json:"name" binding:"omitempty,max=120"`
	Gender       *Gender `json:"gender"`
	LanguageCode *string `json:"language_code"`
}

// UpdateInput is a partial update; nil fields are left untouched.
type UpdateInput struct {
	Name         *string `json:"name" binding:"omitempty,max=120"`
	Gender       *Gender `json:"gender"`
	LanguageCode *string `json:"language_code"`
}

// External is a normalized third-party record ready to be merged.
// Gender is nil when the source omitted it or supplied an unknown value.
type External struct {
	PhoneNumber  string
	Name         *string
	Gender       *Gender
	LanguageCode string
}
