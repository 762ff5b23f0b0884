package callflow

import (
	"strings"

	"github.com/troikatech/care-voice/pkg/utils"
)

const defaultPrompt = "Welcome. Please say your question after the beep."

var prompts = map[string]string{
	"en": defaultPrompt,
	"hi": "स्वागत है। बीप के बाद अपना प्रश्न बोलें।",
	"mr": "स्वागत आहे. बीपनंतर आपला प्रश्न बोला.",
}

// Prompt returns the greeting played before speech capture.
func Prompt(language string) string {
	if p, ok := prompts[strings.ToLower(utils.BaseLanguage(language))]; ok {
		return p
	}
	return defaultPrompt
}
