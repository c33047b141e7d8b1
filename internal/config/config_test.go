package config

import (
	"os"
	"testing"
	"time"
)

func TestGetEnvOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal string
		expected   string
	}{
		{"uses env value", "TEST_VAR_1", "hello", "default", "hello"},
		{"uses default when empty", "TEST_VAR_2", "", "default", "default"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.envValue != "" {
				os.Setenv(tc.key, tc.envValue)
				defer os.Unsetenv(tc.key)
			}

			result := getEnvOrDefault(tc.key, tc.defaultVal)
			if result != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, result)
			}
		})
	}
}

func TestGetEnvAsIntOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal int
		expected   int
	}{
		{"parses integer", "TEST_INT_1", "42", 10, 42},
		{"uses default for empty", "TEST_INT_2", "", 10, 10},
		{"uses default for non-numeric", "TEST_INT_3", "abc", 10, 10},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.envValue != "" {
				os.Setenv(tc.key, tc.envValue)
				defer os.Unsetenv(tc.key)
			}

			result := getEnvAsIntOrDefault(tc.key, tc.defaultVal)
			if result != tc.expected {
				t.Errorf("Expected %d, got %d", tc.expected, result)
			}
		})
	}
}

func TestGetEnvAsSecondsOrDefault(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		expected time.Duration
	}{
		{"parses seconds", "5", 5 * time.Second},
		{"zero falls back", "0", 30 * time.Second},
		{"negative falls back", "-3", 30 * time.Second},
		{"garbage falls back", "soon", 30 * time.Second},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("TEST_SECONDS", tc.envValue)

			result := getEnvAsSecondsOrDefault("TEST_SECONDS", 30*time.Second)
			if result != tc.expected {
				t.Errorf("Expected %s, got %s", tc.expected, result)
			}
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "UPSTREAM_PROVIDER", "PRIMARY_MODEL", "FALLBACK_MODEL", "HISTORY_MAX_ITEMS", "UPSTREAM_TIMEOUT_SECONDS"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Port != "8000" {
		t.Errorf("Expected port 8000, got %q", cfg.Port)
	}
	if cfg.UpstreamProvider != "groq" {
		t.Errorf("Expected groq provider, got %q", cfg.UpstreamProvider)
	}
	if cfg.PrimaryModel != "llama3-70b-8192" || cfg.FallbackModel != "llama3-8b-8192" {
		t.Errorf("Unexpected models: %q / %q", cfg.PrimaryModel, cfg.FallbackModel)
	}
	if cfg.HistoryMaxItems != 100 {
		t.Errorf("Expected history cap 100, got %d", cfg.HistoryMaxItems)
	}
	if cfg.UpstreamTimeout != 30*time.Second {
		t.Errorf("Expected 30s upstream timeout, got %s", cfg.UpstreamTimeout)
	}
}

func TestLoadClient_Defaults(t *testing.T) {
	t.Setenv("ULEMSEE_API_URL", "")
	t.Setenv("ULEMSEE_HEALTH_INTERVAL_SECONDS", "")

	cfg := LoadClient()

	if cfg.BaseURL != "http://localhost:8000" {
		t.Errorf("Expected default base URL, got %q", cfg.BaseURL)
	}
	if cfg.HealthInterval != 30*time.Second {
		t.Errorf("Expected 30s health interval, got %s", cfg.HealthInterval)
	}
}
