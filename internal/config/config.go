package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds application configuration
type Config struct {
	ServerPort  string
	BaseURL     string
	FrontendURL string

	SpotifyClientID     string
	SpotifyClientSecret string
	SpotifyRedirectURI  string

	OpenAIKey string
	AIModel   string
	AIBaseURL string

	SessionTTL      time.Duration
	InsightTTL      time.Duration
	InsightMaxUsers int
	SweepInterval   time.Duration
	RateLimitPerMin int
	RedisURL        string
	EnableHSTS      bool
	ServerDebugMode bool
	OTELEnabled     bool
	OTELEndpoint    string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),

		SpotifyClientID:     getEnv("SPOTIFY_CLIENT_ID", ""),
		SpotifyClientSecret: getEnv("SPOTIFY_CLIENT_SECRET", ""),
		SpotifyRedirectURI:  getEnv("SPOTIFY_REDIRECT_URI", ""),

		OpenAIKey: getEnv("OPENAI_API_KEY", ""),
		AIModel:   getEnv("AI_MODEL", ""),
		AIBaseURL: getEnv("AI_BASE_URL", ""),

		SessionTTL:      getEnvDuration("SESSION_TTL", 24*time.Hour),
		InsightTTL:      getEnvDuration("INSIGHT_TTL", 7*24*time.Hour),
		InsightMaxUsers: getEnvInt("INSIGHT_MAX_USERS", 1000),
		SweepInterval:   getEnvDuration("SWEEP_INTERVAL", time.Hour),
		RateLimitPerMin: getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
		RedisURL:        getEnv("REDIS_URL", ""),
		EnableHSTS:      getEnvBool("ENABLE_HSTS", false),
		ServerDebugMode: getEnvBool("SERVER_DEBUG_MODE", false),
		OTELEnabled:     getEnvBool("OTEL_ENABLED", false),
		OTELEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	if cfg.SpotifyClientID == "" || cfg.SpotifyClientSecret == "" {
		return nil, fmt.Errorf("SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET are required")
	}

	if cfg.SpotifyRedirectURI == "" {
		cfg.SpotifyRedirectURI = cfg.BaseURL + "/callback"
	}

	if cfg.OpenAIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
