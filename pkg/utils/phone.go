package utils

import (
	"regexp"
	"strings"
	"unicode"
)

var e164Regex = regexp.MustCompile(`^\+[1-9]\d{1,14}$`)

// withheldCallers are the values providers put in From when the number is hidden.
var withheldCallers = map[string]bool{
	"anonymous":   true,
	"restricted":  true,
	"unknown":     true,
	"unavailable": true,
	"+266696687":  true,
	"+7378742833": true,
	"+2562533":    true,
	"+8656696":    true,
}

// MaskPhoneNumber hides everything but the leading country/area digits and
// the last two digits, so at least half of any real number is masked.
// +14155551234 -> +141••••••34
func MaskPhoneNumber(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ""
	}

	if ValidateE164(phone) && len(phone) > 8 {
		digits := phone[1:]
		return "+" + digits[:3] + strings.Repeat("•", len(digits)-5) + digits[len(digits)-2:]
	}

	if len(phone) > 4 {
		return strings.Repeat("•", len(phone)-2) + phone[len(phone)-2:]
	}
	return strings.Repeat("•", len(phone))
}

// ValidateE164 reports whether phone is in E.164 format.
func ValidateE164(phone string) bool {
	return e164Regex.MatchString(phone)
}

// maxCallerIDLength bounds stored caller ids; SIP URIs are the longest seen.
const maxCallerIDLength = 128

// ValidCallerID reports whether id can key a profile: E.164 numbers and
// provider client or SIP identities alike, non-empty, without whitespace,
// control characters or slashes.
func ValidCallerID(id string) bool {
	if id == "" || len(id) > maxCallerIDLength {
		return false
	}
	for _, r := range id {
		if r == '/' || unicode.IsSpace(r) || unicode.IsControl(r) {
			return false
		}
	}
	return true
}

// NormalizeCallerID cleans the provider's From value. Withheld numbers and ids
// a profile cannot be keyed by become "" so they are never persisted.
func NormalizeCallerID(from string) string {
	from = strings.TrimSpace(strings.ReplaceAll(from, "\x00", ""))
	if withheldCallers[strings.ToLower(from)] || !ValidCallerID(from) {
		return ""
	}
	return from
}
