package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr       string
	EndpointPrefix string
	GinMode        string

	JWTSecret string
	TokenTTL  time.Duration

	// Admin is the account created at startup. Empty Username disables it.
	Admin AdminAccount

	KafkaBrokers     []string
	KafkaTopicPrefix string

	ConsulAddr  string
	ServiceName string

	// SnapshotFile is read at startup when it exists and written on shutdown.
	SnapshotFile string
}

type AdminAccount struct {
	Username string
	Password string
	Phone    string
	Email    string
}

// Load reads .env when present, then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv.
func FromEnv(getenv func(string) string) (Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg := Config{
		HTTPAddr:       get("HTTP_ADDR", ":8080"),
		EndpointPrefix: get("SERVICE_ENDPOINT_PREFIX", "/v1"),
		GinMode:        get("GIN_MODE", ""),
		JWTSecret:      get("JWT_SECRET", ""),
		Admin: AdminAccount{
			Username: get("ADMIN_USERNAME", ""),
			Password: get("ADMIN_PASSWORD", ""),
			Phone:    get("ADMIN_PHONE", ""),
			Email:    get("ADMIN_EMAIL", ""),
		},
		KafkaTopicPrefix: get("KAFKA_TOPIC_PREFIX", "marketplace"),
		ConsulAddr:       get("CONSUL_ADDR", ""),
		ServiceName:      get("SERVICE_NAME", "marketplace"),
		SnapshotFile:     get("SNAPSHOT_FILE", ""),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is not set")
	}
	if !strings.HasPrefix(cfg.EndpointPrefix, "/") {
		return Config{}, fmt.Errorf("SERVICE_ENDPOINT_PREFIX must start with /, got %q", cfg.EndpointPrefix)
	}

	ttl, err := time.ParseDuration(get("TOKEN_TTL", "24h"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid TOKEN_TTL: %w", err)
	}
	if ttl <= 0 {
		return Config{}, fmt.Errorf("TOKEN_TTL must be positive, got %s", ttl)
	}
	cfg.TokenTTL = ttl

	for _, b := range strings.Split(get("KAFKA_BROKERS", ""), ",") {
		if b = strings.TrimSpace(b); b != "" {
			cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
		}
	}

	if cfg.Admin.Username != "" && cfg.Admin.Password == "" {
		return Config{}, fmt.Errorf("ADMIN_PASSWORD is required when ADMIN_USERNAME is set")
	}
	return cfg, nil
}
