// Package config provides environment configuration for the archive service.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	// Server settings
	ServerPort         string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration

	// LLM settings
	AnthropicAPIKey string
	OpenAIAPIKey    string
	DefaultProvider string
	DefaultModel    string
	ModelA          string
	ModelB          string
	MaxNewTokens    int
	Temperature     float64
	TopP            float64

	// Dialogue settings
	AutoArchive       bool
	DialogueExchanges int
	DialogueInterval  time.Duration
	TriggerSecret     string

	// Archive settings
	ArchivePath string
	ArchiveDSN  string

	// Memory settings
	MemoryAPIKey    string
	MemoryBaseURL   string
	MemoryUserID    string
	MemorySessionID string
	MemoryDisabled  bool

	// NATS settings
	NATSURL   string
	NATSToken string

	// Rate limiting
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Logging
	LogLevel string

	// Tracing
	TracingEndpoint string
	TracingEnabled  bool
}

// Load reads configuration from the environment. A .env file in the working
// directory is merged in first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		// Server
		ServerPort:         getEnv("PORT", "8000"),
		ServerReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
		ServerWriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 120*time.Second),

		// LLM
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		DefaultProvider: getEnv("DEFAULT_PROVIDER", "anthropic"),
		DefaultModel:    getEnv("ANTHROPIC_MODEL", "claude-3-5-sonnet-20241022"),
		ModelA:          getEnv("MODEL_A", "claude-3-5-sonnet-20241022"),
		ModelB:          getEnv("MODEL_B", "claude-3-5-haiku-20241022"),
		MaxNewTokens:    getIntEnv("MAX_NEW_TOKENS", 1024),
		Temperature:     getFloatEnv("TEMPERATURE", 0.7),
		TopP:            getFloatEnv("TOP_P", 0.95),

		// Dialogue
		AutoArchive:       getBoolEnv("AUTO_ARCHIVE", true),
		DialogueExchanges: getIntEnv("DIALOGUE_EXCHANGES", 6),
		DialogueInterval:  time.Duration(getIntEnv("DIALOGUE_INTERVAL_MINUTES", 60)) * time.Minute,
		TriggerSecret:     getEnv("TRIGGER_SECRET", ""),

		// Archive
		ArchivePath: getEnv("ARCHIVE_PATH", "data/conversations.jsonl"),
		ArchiveDSN:  getEnv("ARCHIVE_DSN", ""),

		// Memory
		MemoryAPIKey:    getEnv("MEM0_API_KEY", ""),
		MemoryBaseURL:   getEnv("MEM0_BASE_URL", "https://api.mem0.ai"),
		MemoryUserID:    getEnv("MEM0_USER_ID", "scintara"),
		MemorySessionID: getEnv("MEM0_SESSION_ID", "archive"),
		MemoryDisabled:  getBoolEnv("MEM0_DISABLED", false),

		// NATS (optional record-created notifications)
		NATSURL:   getEnv("NATS_URL", ""),
		NATSToken: getEnv("NATS_TOKEN", ""),

		// Rate limiting
		RateLimitRequests: getIntEnv("RATE_LIMIT_REQUESTS", 60),
		RateLimitWindow:   getDurationEnv("RATE_LIMIT_WINDOW", time.Minute),

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "info"),

		// Tracing
		TracingEndpoint: getEnv("TRACING_ENDPOINT", "localhost:4318"),
		TracingEnabled:  getBoolEnv("TRACING_ENABLED", false),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
