package crm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/troikatech/care-voice/pkg/profile"
)

// ExternalProfile is a CRM record as returned by the upstream, before merging.
type ExternalProfile struct {
	PhoneNumber  string
	Name         *string
	Gender       *string
	LanguageCode *string
}

// NormalizedGender lowercases the raw gender; nil when absent.
func (p *ExternalProfile) NormalizedGender() *string {
	if p.Gender == nil {
		return nil
	}
	g := strings.ToLower(*p.Gender)
	return &g
}

// NormalizedLanguage converts underscore tags (en_US) to hyphenated ones.
func (p *ExternalProfile) NormalizedLanguage() *string {
	if p.LanguageCode == nil {
		return nil
	}
	l := strings.ReplaceAll(*p.LanguageCode, "_", "-")
	return &l
}

// ToExternal converts the record into the form the profile service merges.
// Unknown genders are dropped.
func (p *ExternalProfile) ToExternal() profile.External {
	ext := profile.External{PhoneNumber: p.PhoneNumber, Name: p.Name}
	if g := p.NormalizedGender(); g != nil {
		if parsed, ok := profile.ParseGender(*g); ok {
			ext.Gender = &parsed
		}
	}
	if l := p.NormalizedLanguage(); l != nil {
		ext.LanguageCode = strings.TrimSpace(*l)
	}
	return ext
}

// decodeProfile parses a CRM body. The record may sit under a "profile" key and
// may use "phone"/"language" in place of "phone_number"/"language_code".
func decodeProfile(body []byte) (*ExternalProfile, error) {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	if nested, ok := payload["profile"]; ok {
		var inner map[string]json.RawMessage
		if err := json.Unmarshal(nested, &inner); err == nil && inner != nil {
			payload = inner
		}
	}

	if _, ok := payload["phone_number"]; !ok {
		if v, ok := payload["phone"]; ok {
			payload["phone_number"] = v
		}
	}
	if _, ok := payload["language_code"]; !ok {
		if v, ok := payload["language"]; ok {
			payload["language_code"] = v
		}
	}

	phone, err := stringField(payload, "phone_number")
	if err != nil {
		return nil, err
	}
	if phone == nil {
		return nil, fmt.Errorf("%w: phone_number is required", ErrInvalidPayload)
	}

	out := &ExternalProfile{PhoneNumber: *phone}
	if out.Name, err = stringField(payload, "name"); err != nil {
		return nil, err
	}
	if out.Gender, err = stringField(payload, "gender"); err != nil {
		return nil, err
	}
	if out.LanguageCode, err = stringField(payload, "language_code"); err != nil {
		return nil, err
	}
	return out, nil
}

// stringField returns nil for a missing or null key and an error for any
// non-string value.
func stringField(payload map[string]json.RawMessage, key string) (*string, error) {
	raw, ok := payload[key]
	if !ok || string(raw) == "null" {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("%w: %s must be a string", ErrInvalidPayload, key)
	}
	return &s, nil
}
