package env

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/troikatech/care-voice/pkg/utils"
)

type Config struct {
	AppEnv  string
	AppPort string
	TZ      string

	RedisURL string

	MongoURI string
	DBName   string

	AITimeoutMs   int
	AITemperature float64

	// AI Provider API Keys
	OpenAIApiKey    string
	OpenAIModel     string
	OpenAIMaxTokens int

	GeminiApiKey string
	GeminiModel  string

	AnthropicApiKey string
	AnthropicModel  string

	// CRM integration
	CRMBaseURL        string
	CRMToken          string
	CRMTimeoutSeconds float64

	// Defaults for personalization
	DefaultLanguage string
	DefaultGender   string

	// Path the provider posts gathered speech to
	VoiceContinuePath string

	APIRateLimitRPM int

	LogLevel           string
	CORSAllowedOrigins string

	OTELEndpoint    string
	OTELEnabled     bool
	OTELSampleRatio float64
}

func Load(envFile string) (*Config, error) {
	if envFile != "" {
		// A missing .env is fine; production injects the environment directly.
		if err := godotenv.Load(envFile); err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to load .env file: %w", err)
			}
		}
	}

	cfg := &Config{
		AppEnv:  getEnv("APP_ENV", "development"),
		AppPort: getEnv("APP_PORT", "8080"),
		TZ:      getEnv("TZ", "UTC"),

		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),

		MongoURI: getEnv("MONGO_URI", getEnv("DATABASE_URL", "mongodb://localhost:27017")),
		DBName:   getEnv("DB_NAME", "care_voice"),

		AITimeoutMs:   getEnvInt("AI_TIMEOUT_MS", 4000),
		AITemperature: getEnvFloat("AI_TEMPERATURE", 0.3),

		OpenAIApiKey:    getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:     getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIMaxTokens: getEnvInt("OPENAI_MAX_TOKENS", 120),

		GeminiApiKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-1.5-flash"),

		AnthropicApiKey: getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicModel:  getEnv("ANTHROPIC_MODEL", "claude-3-5-haiku-20241022"),

		CRMBaseURL:        getEnv("CRM_API_BASE_URL", ""),
		CRMToken:          getEnv("CRM_API_TOKEN", ""),
		CRMTimeoutSeconds: getEnvFloat("CRM_TIMEOUT_SECONDS", 3.0),

		DefaultLanguage: utils.NormalizeLanguageTag(getEnv("DEFAULT_LANGUAGE", "en-US")),
		DefaultGender:   strings.ToLower(getEnv("DEFAULT_GENDER", "neutral")),

		VoiceContinuePath: getEnv("VOICE_CONTINUE_PATH", "/voice/handle"),

		APIRateLimitRPM: getEnvInt("API_RATE_LIMIT_RPM", 180),

		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),

		OTELEndpoint: getEnv("OTEL_ENDPOINT", ""),
		OTELEnabled:  getEnvBool("OTEL_ENABLED", false),

		OTELSampleRatio: getEnvFloat("OTEL_SAMPLE_RATIO", 1.0),
	}

	switch cfg.DefaultGender {
	case "male", "female", "neutral":
	default:
		return nil, fmt.Errorf("invalid DEFAULT_GENDER %q: must be male, female or neutral", cfg.DefaultGender)
	}

	if !strings.HasPrefix(cfg.VoiceContinuePath, "/") {
		cfg.VoiceContinuePath = "/" + cfg.VoiceContinuePath
	}

	loc, err := time.LoadLocation(cfg.TZ)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %s: %w", cfg.TZ, err)
	}
	time.Local = loc

	return cfg, nil
}

// CRMTimeout returns the CRM lookup budget as a duration.
func (c *Config) CRMTimeout() time.Duration {
	if c.CRMTimeoutSeconds <= 0 {
		return 3 * time.Second
	}
	return time.Duration(c.CRMTimeoutSeconds * float64(time.Second))
}

// AITimeout returns the generation-service budget as a duration.
func (c *Config) AITimeout() time.Duration {
	if c.AITimeoutMs <= 0 {
		return 4 * time.Second
	}
	return time.Duration(c.AITimeoutMs) * time.Millisecond
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	strValue := os.Getenv(key)
	if strValue == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(strValue)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvFloat(key string, defaultValue float64) float64 {
	strValue := os.Getenv(key)
	if strValue == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(strValue, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	strValue := os.Getenv(key)
	if strValue == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(strValue)
	if err != nil {
		return defaultValue
	}
	return value
}
