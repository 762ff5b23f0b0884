package utils

import (
	"strings"
	"testing"
)

func TestMaskPhoneNumber(t *testing.T) {
	tests := []struct {
		name  string
		phone string
		want  string
	}{
		{"empty", "", ""},
		{"us number", "+14155551234", "+141••••••34"},
		{"ten digits", "+4412345678", "+441•••••78"},
		{"eleven digits", "+44123456789", "+441••••••89"},
		{"indian number", "+919876543210", "+919•••••••10"},
		{"short", "+1555", "•••55"},
		{"tiny", "123", "•••"},
		{"client identity", "client:alice", "••••••••••ce"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MaskPhoneNumber(tt.phone)
			if got != tt.want {
				t.Errorf("MaskPhoneNumber(%q) = %q, want %q", tt.phone, got, tt.want)
			}
			if masked := strings.Count(got, "•"); masked*2 < len(tt.phone)-1 {
				t.Errorf("MaskPhoneNumber(%q) masks only %d characters", tt.phone, masked)
			}
		})
	}
}

func TestValidateE164(t *testing.T) {
	if !ValidateE164("+14155551234") {
		t.Error("ValidateE164(+14155551234) = false, want true")
	}
	if ValidateE164("4155551234") {
		t.Error("ValidateE164(4155551234) = true, want false")
	}
}

func TestValidCallerID(t *testing.T) {
	tests := map[string]bool{
		"+14155551234":           true,
		"client:alice":           true,
		"sip:bob@pbx.example":    true,
		"":                       false,
		"+1 415":                 false,
		"a/b":                    false,
		"\x00":                   false,
		"bad\tid":                false,
		strings.Repeat("9", 129): false,
	}
	for id, want := range tests {
		if got := ValidCallerID(id); got != want {
			t.Errorf("ValidCallerID(%q) = %v, want %v", id, got, want)
		}
	}
}

func TestNormalizeCallerID(t *testing.T) {
	tests := []struct {
		from string
		want string
	}{
		{"+14155551234", "+14155551234"},
		{"  +919876543210 ", "+919876543210"},
		{"client:alice", "client:alice"},
		{"", ""},
		{"Anonymous", ""},
		{"+266696687", ""},
		{"+7378742833", ""},
		{"sip:a b@pbx", ""},
		{"a/b", ""},
	}
	for _, tt := range tests {
		if got := NormalizeCallerID(tt.from); got != tt.want {
			t.Errorf("NormalizeCallerID(%q) = %q, want %q", tt.from, got, tt.want)
		}
	}
}

func TestBaseLanguage(t *testing.T) {
	tests := map[string]string{
		"en-US":      "en",
		"hi-IN":      "hi",
		"mr":         "mr",
		"":           "",
		"zh-Hant-TW": "zh",
	}
	for in, want := range tests {
		if got := BaseLanguage(in); got != want {
			t.Errorf("BaseLanguage(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeLanguageTag(t *testing.T) {
	if got := NormalizeLanguageTag("en_US"); got != "en-US" {
		t.Errorf("NormalizeLanguageTag(en_US) = %q, want en-US", got)
	}
	if got := NormalizeLanguageTag(" hi-IN "); got != "hi-IN" {
		t.Errorf("NormalizeLanguageTag(' hi-IN ') = %q, want hi-IN", got)
	}
}
