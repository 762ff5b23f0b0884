// Package logger holds the process-wide zap logger and field helpers that keep
// caller phone numbers out of the logs.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const serviceName = "care-voice"

// Log is a no-op until Init runs, so packages and tests can log unconditionally.
var Log = zap.NewNop()

// New builds a JSON logger in production and a colored console logger elsewhere.
// Unknown levels fall back to info.
func New(level string, env string) (*zap.Logger, error) {
	var config zap.Config
	if env == "production" {
		config = zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "ts"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	config.Level = zap.NewAtomicLevelAt(lvl)
	config.InitialFields = map[string]interface{}{"service": serviceName, "env": env}

	return config.Build()
}

func Init(level string, env string) error {
	logger, err := New(level, env)
	if err != nil {
		return err
	}

	Log = logger
	return nil
}

func Sync() {
	if Log != nil {
		_ = Log.Sync()
	}
}
