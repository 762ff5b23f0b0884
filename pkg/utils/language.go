package utils

import "strings"

// BaseLanguage returns the portion of a language tag before the first hyphen.
// "en-US" -> "en", "mr" -> "mr".
func BaseLanguage(tag string) string {
	base, _, _ := strings.Cut(tag, "-")
	return base
}

// NormalizeLanguageTag turns underscore separated tags ("en_US") into the
// hyphenated form used throughout the service.
func NormalizeLanguageTag(tag string) string {
	return strings.ReplaceAll(strings.TrimSpace(tag), "_", "-")
}
