// Package voice maps a caller's language and gender preference onto the
// language tags and voice ids the telephony provider can synthesize.
package voice

import (
	"strings"

	"github.com/troikatech/care-voice/pkg/profile"
	"github.com/troikatech/care-voice/pkg/utils"
)

// Provider voice ids. The generic pair serves every language without its own voices.
const (
	VoiceMale        = "man"
	VoiceFemale      = "alice"
	VoiceHindiMale   = "Polly.Raveena"
	VoiceHindiFemale = "Polly.Aditi"
)

const (
	languageEnglishUS = "en-US"
	languageHindi     = "hi-IN"
)

// Selection is the provider language tag and voice for one turn.
type Selection struct {
	Language string
	Voice    string
}

type override struct {
	language string
	male     string
	other    string
}

// Marathi has no provider voice and is read by the Hindi female voice.
var overrides = map[string]override{
	"en": {language: languageEnglishUS, male: VoiceMale, other: VoiceFemale},
	"hi": {language: languageHindi, male: VoiceHindiMale, other: VoiceHindiFemale},
	"mr": {language: languageHindi, male: VoiceHindiFemale, other: VoiceHindiFemale},
}

// Selector picks voices, substituting its defaults for missing input.
type Selector struct {
	defaultLanguage string
	defaultGender   profile.Gender
}

func NewSelector(defaultLanguage string, defaultGender profile.Gender) *Selector {
	if strings.TrimSpace(defaultLanguage) == "" {
		defaultLanguage = languageEnglishUS
	}
	if _, ok := profile.ParseGender(string(defaultGender)); !ok {
		defaultGender = profile.GenderNeutral
	}
	return &Selector{defaultLanguage: defaultLanguage, defaultGender: defaultGender}
}

// Select never fails; unknown languages keep their tag with a gender-only voice.
func (s *Selector) Select(language string, gender profile.Gender) Selection {
	language = utils.NormalizeLanguageTag(language)
	if language == "" {
		language = s.defaultLanguage
	}
	if gender == "" {
		gender = s.defaultGender
	}
	male := gender == profile.GenderMale

	if o, ok := overrides[strings.ToLower(utils.BaseLanguage(language))]; ok {
		if male {
			return Selection{Language: o.language, Voice: o.male}
		}
		return Selection{Language: o.language, Voice: o.other}
	}

	if male {
		return Selection{Language: language, Voice: VoiceMale}
	}
	return Selection{Language: language, Voice: VoiceFemale}
}
