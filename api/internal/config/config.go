package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all dynamic configuration for the cipher API.
// 🛡️ SLA: Everything is read once at process start; nothing is reloaded.
type Config struct {
	Environment    string // "development" or "production"
	Port           string
	AllowedOrigins []string

	// 🛡️ Managed key: empty means "generate one for this process lifetime"
	ManagedKeyHex    string
	ManagedKeyCipher string

	LogLevel  string
	LogFormat string

	MaxBodyBytes   int64
	RateLimitRPS   float64
	RateLimitBurst int
	MetricsEnabled bool
}

// Load reads an optional .env file, parses the environment and applies sensible default fallbacks.
func Load() (*Config, error) {
	// A missing .env is normal in containers; real env vars always win.
	_ = godotenv.Load()

	env := getEnv("TEXTCIPHER_ENV", "production")

	// 1. 🛡️ Strict CORS: Must be explicitly defined in Production
	corsOrigins := getEnv("CORS_ALLOWED_ORIGINS", "")
	if corsOrigins == "" {
		if env == "production" {
			return nil, errors.New("config: CORS_ALLOWED_ORIGINS environment variable is required in production")
		}
		corsOrigins = "*"
	}

	// 2. 🛡️ Key material must be exactly 256 bits when provided
	managedKey := strings.TrimSpace(getEnv("MANAGED_KEY", ""))
	if managedKey != "" {
		raw, err := hex.DecodeString(managedKey)
		if err != nil || len(raw) != 32 {
			return nil, errors.New("config: MANAGED_KEY must be 64 hex characters (256 bits)")
		}
	}

	maxBody, err := getEnvInt64("MAX_BODY_BYTES", 1_048_576)
	if err != nil {
		return nil, err
	}
	rps, err := getEnvFloat("RATE_LIMIT_RPS", 10)
	if err != nil {
		return nil, err
	}
	burst, err := getEnvInt64("RATE_LIMIT_BURST", 30)
	if err != nil {
		return nil, err
	}
	metrics, err := getEnvBool("METRICS_ENABLED", true)
	if err != nil {
		return nil, err
	}

	return &Config{
		Environment:      env,
		Port:             getEnv("PORT", "8000"),
		AllowedOrigins:   splitOrigins(corsOrigins),
		ManagedKeyHex:    managedKey,
		ManagedKeyCipher: getEnv("MANAGED_KEY_CIPHER", "aes-256-gcm"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "json"),
		MaxBodyBytes:     maxBody,
		RateLimitRPS:     rps,
		RateLimitBurst:   int(burst),
		MetricsEnabled:   metrics,
	}, nil
}

// IsProduction reports whether the strict production posture applies.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func splitOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}

// getEnv retrieves an environment variable or returns a fallback value.
// An empty value counts as unset.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) (int64, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("config: %s must be a positive integer, got %q", key, raw)
	}
	return v, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("config: %s must be a positive number, got %q", key, raw)
	}
	return v, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("config: %s must be a boolean, got %q", key, raw)
	}
	return v, nil
}
