package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.Zero(t, cfg.RoomTTL, "rooms should not expire unless ROOM_TTL is set")
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("HTTP_HOST", "127.0.0.1")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("ALLOWED_ORIGIN", "http://a.example, http://b.example")
	t.Setenv("STORAGE_TYPE", "REDIS")
	t.Setenv("REDIS_URL", "redis://cache:6379/1")
	t.Setenv("ROOM_TTL", "2h")
	t.Setenv("BROKER_TYPE", "nats")
	t.Setenv("NATS_URL", "nats://bus:4222")
	t.Setenv("RETAIN_SNAPSHOTS", "true")
	t.Setenv("PUBLISH_STRUCTURED", "1")
	t.Setenv("PUBLISH_ERRORS", "true")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.HTTPHost)
	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, StorageRedis, cfg.StorageType)
	assert.Equal(t, "redis://cache:6379/1", cfg.RedisURL)
	assert.Equal(t, 2*time.Hour, cfg.RoomTTL)
	assert.Equal(t, BrokerNATS, cfg.BrokerType)
	assert.Equal(t, "nats://bus:4222", cfg.NATSURL)
	assert.True(t, cfg.RetainSnapshots)
	assert.True(t, cfg.PublishStructured)
	assert.True(t, cfg.PublishErrors)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"HTTP_PORT", "eighty"},
		{"STORAGE_TYPE", "postgres"},
		{"BROKER_TYPE", "kafka"},
		{"ROOM_TTL", "forever"},
		{"RETAIN_SNAPSHOTS", "maybe"},
		{"LOG_LEVEL", "loud"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.ErrorContains(t, err, tt.key)
		})
	}
}
