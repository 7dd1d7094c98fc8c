package config

import (
	"os"
	"sync"
	"testing"
	"time"
)

var envMutex sync.Mutex

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		envVars     map[string]string
		expectError bool
		validate    func(*testing.T, *Config)
	}{
		{
			name: "all required env vars set",
			envVars: map[string]string{
				"SPOTIFY_CLIENT_ID":     "client-id",
				"SPOTIFY_CLIENT_SECRET": "client-secret",
				"SPOTIFY_REDIRECT_URI":  "http://localhost:8080/callback",
				"OPENAI_API_KEY":        "sk-test-key",
				"SERVER_PORT":           "9090",
			},
			expectError: false,
			validate: func(t *testing.T, cfg *Config) {
				if cfg.SpotifyClientID != "client-id" {
					t.Errorf("Expected SpotifyClientID to be 'client-id', got '%s'", cfg.SpotifyClientID)
				}
				if cfg.OpenAIKey != "sk-test-key" {
					t.Errorf("Expected OpenAIKey to be 'sk-test-key', got '%s'", cfg.OpenAIKey)
				}
				if cfg.ServerPort != "9090" {
					t.Errorf("Expected ServerPort to be '9090', got '%s'", cfg.ServerPort)
				}
			},
		},
		{
			name: "missing provider credentials",
			envVars: map[string]string{
				"SPOTIFY_CLIENT_ID":     "",
				"SPOTIFY_CLIENT_SECRET": "",
				"OPENAI_API_KEY":        "sk-test-key",
			},
			expectError: true,
		},
		{
			name: "missing OPENAI_API_KEY",
			envVars: map[string]string{
				"SPOTIFY_CLIENT_ID":     "client-id",
				"SPOTIFY_CLIENT_SECRET": "client-secret",
				"OPENAI_API_KEY":        "",
			},
			expectError: true,
		},
		{
			name: "default values",
			envVars: map[string]string{
				"SPOTIFY_CLIENT_ID":     "client-id",
				"SPOTIFY_CLIENT_SECRET": "client-secret",
				"SPOTIFY_REDIRECT_URI":  "",
				"OPENAI_API_KEY":        "sk-test-key",
				"SERVER_PORT":           "",
				"BASE_URL":              "",
			},
			expectError: false,
			validate: func(t *testing.T, cfg *Config) {
				if cfg.ServerPort != "8080" {
					t.Errorf("Expected default ServerPort to be '8080', got '%s'", cfg.ServerPort)
				}
				if cfg.SpotifyRedirectURI != "http://localhost:8080/callback" {
					t.Errorf("Expected redirect URI derived from BASE_URL, got '%s'", cfg.SpotifyRedirectURI)
				}
				if cfg.FrontendURL != "http://localhost:3000" {
					t.Errorf("Expected default FrontendURL to be 'http://localhost:3000', got '%s'", cfg.FrontendURL)
				}
				if cfg.SessionTTL != 24*time.Hour {
					t.Errorf("Expected default SessionTTL to be 24h, got %v", cfg.SessionTTL)
				}
				if cfg.InsightMaxUsers != 1000 {
					t.Errorf("Expected default InsightMaxUsers to be 1000, got %d", cfg.InsightMaxUsers)
				}
				if cfg.RateLimitPerMin != 60 {
					t.Errorf("Expected default RateLimitPerMin to be 60, got %d", cfg.RateLimitPerMin)
				}
			},
		},
		{
			name: "tuning knobs parsed",
			envVars: map[string]string{
				"SPOTIFY_CLIENT_ID":     "client-id",
				"SPOTIFY_CLIENT_SECRET": "client-secret",
				"OPENAI_API_KEY":        "sk-test-key",
				"SESSION_TTL":           "2h",
				"INSIGHT_MAX_USERS":     "25",
				"SWEEP_INTERVAL":        "10m",
			},
			expectError: false,
			validate: func(t *testing.T, cfg *Config) {
				if cfg.SessionTTL != 2*time.Hour {
					t.Errorf("Expected SessionTTL to be 2h, got %v", cfg.SessionTTL)
				}
				if cfg.InsightMaxUsers != 25 {
					t.Errorf("Expected InsightMaxUsers to be 25, got %d", cfg.InsightMaxUsers)
				}
				if cfg.SweepInterval != 10*time.Minute {
					t.Errorf("Expected SweepInterval to be 10m, got %v", cfg.SweepInterval)
				}
			},
		},
	}

	// All config-related env vars that might be modified
	allConfigEnvVars := []string{
		"SPOTIFY_CLIENT_ID",
		"SPOTIFY_CLIENT_SECRET",
		"SPOTIFY_REDIRECT_URI",
		"OPENAI_API_KEY",
		"SERVER_PORT",
		"BASE_URL",
		"FRONTEND_URL",
		"SESSION_TTL",
		"INSIGHT_TTL",
		"INSIGHT_MAX_USERS",
		"SWEEP_INTERVAL",
		"RATE_LIMIT_PER_MINUTE",
		"REDIS_URL",
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			envMutex.Lock()
			defer envMutex.Unlock()

			// Save original env vars for all config-related vars
			originalEnv := make(map[string]string)
			for _, key := range allConfigEnvVars {
				originalEnv[key] = os.Getenv(key)
				_ = os.Unsetenv(key) // Ignore error in test setup
			}

			// Set test env vars
			for key, value := range tt.envVars {
				if value != "" {
					_ = os.Setenv(key, value) // Ignore error in test setup
				}
			}

			// Cleanup: restore original env vars
			defer func() {
				for key, value := range originalEnv {
					if value != "" {
						_ = os.Setenv(key, value) // Ignore error in test cleanup
					} else {
						_ = os.Unsetenv(key) // Ignore error in test cleanup
					}
				}
			}()

			cfg, err := Load()

			if tt.expectError {
				if err == nil {
					t.Error("Expected error but got nil")
				}
				return
			}

			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			if cfg == nil {
				t.Fatal("Config is nil")
			}

			if tt.validate != nil {
				tt.validate(t, cfg)
			}
		})
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		value        string
		defaultValue bool
		want         bool
	}{
		{
			name:         "env var set to 'true'",
			key:          "TEST_BOOL_TRUE",
			value:        "true",
			defaultValue: false,
			want:         true,
		},
		{
			name:         "env var set to '1'",
			key:          "TEST_BOOL_ONE",
			value:        "1",
			defaultValue: false,
			want:         true,
		},
		{
			name:         "env var set to 'false'",
			key:          "TEST_BOOL_FALSE",
			value:        "false",
			defaultValue: true,
			want:         false,
		},
		{
			name:         "env var not set",
			key:          "TEST_BOOL_NOT_SET",
			value:        "",
			defaultValue: false,
			want:         false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			envMutex.Lock()
			defer envMutex.Unlock()

			original := os.Getenv(tt.key)
			if tt.value != "" {
				_ = os.Setenv(tt.key, tt.value) // Ignore error in test setup
			} else {
				_ = os.Unsetenv(tt.key) // Ignore error in test setup
			}
			defer func() {
				if original != "" {
					_ = os.Setenv(tt.key, original) // Ignore error in test cleanup
				} else {
					_ = os.Unsetenv(tt.key) // Ignore error in test cleanup
				}
			}()

			got := getEnvBool(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnvBool(%s, %v) = %v, want %v", tt.key, tt.defaultValue, got, tt.want)
			}
		})
	}
}

func TestGetEnvDuration(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		value        string
		defaultValue time.Duration
		want         time.Duration
	}{
		{
			name:         "valid duration",
			key:          "TEST_DUR_VALID",
			value:        "90s",
			defaultValue: time.Minute,
			want:         90 * time.Second,
		},
		{
			name:         "invalid duration falls back",
			key:          "TEST_DUR_INVALID",
			value:        "not-a-duration",
			defaultValue: time.Minute,
			want:         time.Minute,
		},
		{
			name:         "env var not set",
			key:          "TEST_DUR_NOT_SET",
			value:        "",
			defaultValue: time.Hour,
			want:         time.Hour,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			envMutex.Lock()
			defer envMutex.Unlock()

			original := os.Getenv(tt.key)
			if tt.value != "" {
				_ = os.Setenv(tt.key, tt.value) // Ignore error in test setup
			} else {
				_ = os.Unsetenv(tt.key) // Ignore error in test setup
			}
			defer func() {
				if original != "" {
					_ = os.Setenv(tt.key, original) // Ignore error in test cleanup
				} else {
					_ = os.Unsetenv(tt.key) // Ignore error in test cleanup
				}
			}()

			got := getEnvDuration(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnvDuration(%s, %v) = %v, want %v", tt.key, tt.defaultValue, got, tt.want)
			}
		})
	}
}
