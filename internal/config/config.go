package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	MerchantID         string
	SaltKey            string
	SaltIndex          int
	CallbackBaseURL    string
	GatewayBaseURL     string
	GatewayProduction  bool
	GatewayTimeout     time.Duration
	AmountCeiling      float64
	CallbackVerify     bool
	CORSAllowedOrigins []string
	RateLimitRPM       int
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "8080"),
		MerchantID:         strings.TrimSpace(k.String("MERCHANT_ID")),
		SaltKey:            strings.TrimSpace(k.String("SALT_KEY")),
		SaltIndex:          parseInt(k.String("SALT_INDEX"), 1),
		CallbackBaseURL:    strings.TrimRight(strings.TrimSpace(k.String("CALLBACK_BASE_URL")), "/"),
		GatewayBaseURL:     strings.TrimRight(strings.TrimSpace(k.String("GATEWAY_BASE_URL")), "/"),
		GatewayProduction:  parseBool(k.String("GATEWAY_PRODUCTION")),
		GatewayTimeout:     time.Duration(parseInt(k.String("GATEWAY_TIMEOUT_MS"), 10000)) * time.Millisecond,
		AmountCeiling:      parseFloat(k.String("AMOUNT_CEILING"), 100000),
		CallbackVerify:     parseBool(k.String("CALLBACK_VERIFY")),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),
		RateLimitRPM:       parseInt(k.String("RATE_LIMIT_RPM"), 60),
	}

	if cfg.MerchantID == "" {
		return nil, errors.New("MERCHANT_ID is required")
	}
	if cfg.SaltKey == "" {
		return nil, errors.New("SALT_KEY is required")
	}
	if cfg.CallbackBaseURL == "" {
		return nil, errors.New("CALLBACK_BASE_URL is required")
	}
	if cfg.SaltIndex < 1 {
		return nil, errors.New("SALT_INDEX must be a positive integer")
	}
	if cfg.AmountCeiling <= 0 {
		return nil, errors.New("AMOUNT_CEILING must be greater than zero")
	}

	return cfg, nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

func parseInt(value string, fallback int) int {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(trimmed)
	if err != nil {
		return fallback
	}
	return parsed
}

func parseFloat(value string, fallback float64) float64 {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// MustLoad behaves like Load but panics on error. Useful for tests and command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
