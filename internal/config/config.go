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
//
// ProcessorSecretKey and SigningSecret are read once at startup and must
// never appear in any response body. PublishableKey is the only processor
// identifier exposed to clients (via GET /config).
type Config struct {
	AppEnv             string
	Port               string
	ProcessorSecretKey string
	PublishableKey     string
	ProcessorBaseURL   string
	SigningSecret      string
	StaticDir          string
	RedisURL           string
	CORSAllowedOrigins []string
	CartAmount         int64
	CartCurrency       string
	ProcessorTimeout   time.Duration
	ReplayTTL          time.Duration
	IdempotencyTTL     time.Duration
	RateLimitWindow    time.Duration
	RateLimitMax       int
	MaxBodyBytes       int64
	AllowUnsignedHooks bool
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
		Port:               valueOrDefault(k.String("PORT"), "4242"),
		ProcessorSecretKey: strings.TrimSpace(k.String("PROCESSOR_SECRET_KEY")),
		PublishableKey:     strings.TrimSpace(k.String("PROCESSOR_PUBLISHABLE_KEY")),
		ProcessorBaseURL:   valueOrDefault(k.String("PROCESSOR_BASE_URL"), "https://api.stripe.com"),
		SigningSecret:      strings.TrimSpace(k.String("WEBHOOK_SIGNING_SECRET")),
		StaticDir:          valueOrDefault(k.String("STATIC_DIR"), "./client/web"),
		RedisURL:           strings.TrimSpace(k.String("REDIS_URL")),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),
		CartAmount:         parseInt64(k.String("CART_AMOUNT"), 1099),
		CartCurrency:       strings.ToUpper(valueOrDefault(k.String("CART_CURRENCY"), "AUD")),
		ProcessorTimeout:   parseDuration(k.String("PROCESSOR_TIMEOUT"), "10s"),
		ReplayTTL:          parseDuration(k.String("WEBHOOK_REPLAY_TTL"), "24h"),
		IdempotencyTTL:     parseDuration(k.String("IDEMPOTENCY_TTL"), "10m"),
		RateLimitWindow:    parseDuration(k.String("RATE_LIMIT_WINDOW"), "1m"),
		RateLimitMax:       int(parseInt64(k.String("RATE_LIMIT_MAX"), 30)),
		MaxBodyBytes:       parseInt64(k.String("MAX_BODY_BYTES"), 64*1024),
		AllowUnsignedHooks: parseBool(k.String("WEBHOOK_ALLOW_UNSIGNED")),
	}

	if cfg.ProcessorSecretKey == "" {
		return nil, errors.New("PROCESSOR_SECRET_KEY is required")
	}
	if cfg.PublishableKey == "" {
		return nil, errors.New("PROCESSOR_PUBLISHABLE_KEY is required")
	}
	if cfg.SigningSecret == "" && !cfg.AllowUnsignedHooks {
		return nil, errors.New("WEBHOOK_SIGNING_SECRET is required unless WEBHOOK_ALLOW_UNSIGNED is set")
	}
	if cfg.AllowUnsignedHooks && cfg.AppEnv == "production" {
		return nil, errors.New("WEBHOOK_ALLOW_UNSIGNED must not be enabled in production")
	}

	return cfg, nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "4242"
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

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseInt64(value string, fallback int64) int64 {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(trimmed, 10, 64)
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
