package env

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TZ", "UTC")
	t.Setenv("DEFAULT_GENDER", "")
	t.Setenv("DEFAULT_LANGUAGE", "")
	t.Setenv("CRM_TIMEOUT_SECONDS", "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.DefaultLanguage != "en-US" {
		t.Errorf("DefaultLanguage = %q, want en-US", cfg.DefaultLanguage)
	}
	if cfg.DefaultGender != "neutral" {
		t.Errorf("DefaultGender = %q, want neutral", cfg.DefaultGender)
	}
	if got := cfg.CRMTimeout(); got != 3*time.Second {
		t.Errorf("CRMTimeout() = %v, want 3s", got)
	}
	if cfg.VoiceContinuePath != "/voice/handle" {
		t.Errorf("VoiceContinuePath = %q, want /voice/handle", cfg.VoiceContinuePath)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("TZ", "UTC")
	t.Setenv("DEFAULT_GENDER", "Female")
	t.Setenv("DEFAULT_LANGUAGE", "hi-IN")
	t.Setenv("CRM_TIMEOUT_SECONDS", "1.5")
	t.Setenv("DATABASE_URL", "mongodb://db:27017")
	t.Setenv("MONGO_URI", "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.DefaultGender != "female" {
		t.Errorf("DefaultGender = %q, want female", cfg.DefaultGender)
	}
	if cfg.DefaultLanguage != "hi-IN" {
		t.Errorf("DefaultLanguage = %q, want hi-IN", cfg.DefaultLanguage)
	}
	if got := cfg.CRMTimeout(); got != 1500*time.Millisecond {
		t.Errorf("CRMTimeout() = %v, want 1.5s", got)
	}
	if cfg.MongoURI != "mongodb://db:27017" {
		t.Errorf("MongoURI = %q, want DATABASE_URL fallback", cfg.MongoURI)
	}
}

func TestLoad_NormalizesDefaultLanguage(t *testing.T) {
	t.Setenv("TZ", "UTC")
	t.Setenv("DEFAULT_GENDER", "")
	t.Setenv("DEFAULT_LANGUAGE", " hi_IN ")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DefaultLanguage != "hi-IN" {
		t.Errorf("DefaultLanguage = %q, want hi-IN", cfg.DefaultLanguage)
	}
}

func TestLoad_InvalidGender(t *testing.T) {
	t.Setenv("TZ", "UTC")
	t.Setenv("DEFAULT_GENDER", "robot")

	if _, err := Load(""); err == nil {
		t.Error("Load() error = nil, want error for invalid DEFAULT_GENDER")
	}
}
