package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envOf(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(envOf(map[string]string{"JWT_SECRET": "s3cret"}))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "/v1", cfg.EndpointPrefix)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "marketplace", cfg.KafkaTopicPrefix)
	assert.Equal(t, "marketplace", cfg.ServiceName)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Empty(t, cfg.Admin.Username)
}

func TestFromEnv_Overrides(t *testing.T) {
	cfg, err := FromEnv(envOf(map[string]string{
		"JWT_SECRET":              "s3cret",
		"HTTP_ADDR":               ":9090",
		"SERVICE_ENDPOINT_PREFIX": "/api",
		"TOKEN_TTL":               "90m",
		"KAFKA_BROKERS":           "k1:9092, k2:9092,",
		"ADMIN_USERNAME":          "admin",
		"ADMIN_PASSWORD":          "admin123",
		"CONSUL_ADDR":             "localhost:8500",
		"SNAPSHOT_FILE":           "/tmp/marketplace.db",
	}))
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "/api", cfg.EndpointPrefix)
	assert.Equal(t, 90*time.Minute, cfg.TokenTTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "admin", cfg.Admin.Username)
	assert.Equal(t, "localhost:8500", cfg.ConsulAddr)
	assert.Equal(t, "/tmp/marketplace.db", cfg.SnapshotFile)
}

func TestFromEnv_Errors(t *testing.T) {
	tests := map[string]map[string]string{
		"missing secret":     {},
		"bad ttl":            {"JWT_SECRET": "s", "TOKEN_TTL": "soon"},
		"negative ttl":       {"JWT_SECRET": "s", "TOKEN_TTL": "-1h"},
		"bad prefix":         {"JWT_SECRET": "s", "SERVICE_ENDPOINT_PREFIX": "v1"},
		"admin with no pass": {"JWT_SECRET": "s", "ADMIN_USERNAME": "admin"},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := FromEnv(envOf(env))
			assert.Error(t, err)
		})
	}
}
