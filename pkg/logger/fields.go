package logger

import (
	"go.uber.org/zap"

	"github.com/troikatech/care-voice/pkg/utils"
)

// MaskPhone is a zap.String with the middle digits of phone hidden.
func MaskPhone(key, phone string) zap.Field {
	return zap.String(key, utils.MaskPhoneNumber(phone))
}

// TurnFields returns the fields logged for every call turn.
func TurnFields(stage, callerID, language, voice string) []zap.Field {
	return []zap.Field{
		zap.String("stage", stage),
		MaskPhone("caller", callerID),
		zap.String("language", language),
		zap.String("voice", voice),
	}
}
