package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Upstream
	UpstreamProvider string // "groq" | "gemini"
	UpstreamTimeout  time.Duration

	// Groq
	GroqAPIKey    string
	GroqBaseURL   string
	PrimaryModel  string
	FallbackModel string

	// Gemini AI
	GeminiAPIKey         string
	GeminiModel          string
	GeminiFallbackModel  string
	GeminiConcurrentReqs int

	// History
	HistoryMaxItems int

	// Redis (optional, fans history events out across instances)
	RedisURL string

	// Frontend
	FrontendURL string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:                 getEnvOrDefault("PORT", "8000"),
		Env:                  getEnvOrDefault("ENVIRONMENT", "development"),
		UpstreamProvider:     strings.ToLower(getEnvOrDefault("UPSTREAM_PROVIDER", "groq")),
		UpstreamTimeout:      getEnvAsSecondsOrDefault("UPSTREAM_TIMEOUT_SECONDS", 30*time.Second),
		GroqAPIKey:           os.Getenv("GROQ_API_KEY"),
		GroqBaseURL:          getEnvOrDefault("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
		PrimaryModel:         getEnvOrDefault("PRIMARY_MODEL", "llama3-70b-8192"),
		FallbackModel:        getEnvOrDefault("FALLBACK_MODEL", "llama3-8b-8192"),
		GeminiAPIKey:         os.Getenv("GEMINI_API_KEY"),
		GeminiModel:          getEnvOrDefault("GEMINI_MODEL", "gemini-2.0-flash"),
		GeminiFallbackModel:  getEnvOrDefault("GEMINI_FALLBACK_MODEL", "gemini-2.0-flash-lite"),
		GeminiConcurrentReqs: getEnvAsIntOrDefault("GEMINI_CONCURRENT_REQUESTS", 5),
		HistoryMaxItems:      getEnvAsIntOrDefault("HISTORY_MAX_ITEMS", 100),
		RedisURL:             getEnvOrDefault("REDIS_URL", ""),
		FrontendURL:          getEnvOrDefault("FRONTEND_URL", "*"),
	}

	return cfg
}

// ClientConfig configures the API client and the ulemsee CLI.
type ClientConfig struct {
	BaseURL        string
	Timeout        time.Duration
	HealthInterval time.Duration
}

func LoadClient() *ClientConfig {
	godotenv.Load()

	return &ClientConfig{
		BaseURL:        getEnvOrDefault("ULEMSEE_API_URL", "http://localhost:8000"),
		Timeout:        getEnvAsSecondsOrDefault("ULEMSEE_TIMEOUT_SECONDS", 30*time.Second),
		HealthInterval: getEnvAsSecondsOrDefault("ULEMSEE_HEALTH_INTERVAL_SECONDS", 30*time.Second),
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsSecondsOrDefault(key string, defaultVal time.Duration) time.Duration {
	n := getEnvAsIntOrDefault(key, 0)
	if n <= 0 {
		return defaultVal
	}
	return time.Duration(n) * time.Second
}
