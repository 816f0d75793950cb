// Package config reads server settings from the environment
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Storage and broker backends
const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
	BrokerMemory  = "memory"
	BrokerNATS    = "nats"
)

// Config holds every server setting
type Config struct {
	HTTPHost       string
	HTTPPort       int
	AllowedOrigins []string

	StorageType string
	RedisURL    string
	RoomTTL     time.Duration

	BrokerType string
	NATSURL    string

	// RetainSnapshots replays the last snapshot to late subscribers (memory broker)
	RetainSnapshots bool
	// PublishStructured also publishes snapshots on the versioned topic
	PublishStructured bool
	// PublishErrors reports failed inbound requests on the room error topic
	PublishErrors bool

	LogLevel slog.Level
}

// Default returns the configuration used when no variables are set
func Default() Config {
	return Config{
		HTTPPort:       8080,
		AllowedOrigins: []string{"http://localhost:3000"},
		StorageType:    StorageMemory,
		RedisURL:       "redis://localhost:6379",
		RoomTTL:        0, // rooms are kept until removed
		BrokerType:     BrokerMemory,
		NATSURL:        "nats://localhost:4222",
		LogLevel:       slog.LevelInfo,
	}
}

// Load reads configuration from the environment, falling back to Default
func Load() (Config, error) {
	cfg := Default()
	var err error

	cfg.HTTPHost = getEnvOrDefault("HTTP_HOST", cfg.HTTPHost)
	if cfg.HTTPPort, err = getEnvInt("HTTP_PORT", cfg.HTTPPort); err != nil {
		return Config{}, err
	}
	if origins := os.Getenv("ALLOWED_ORIGIN"); origins != "" {
		cfg.AllowedOrigins = splitList(origins)
	}

	cfg.StorageType = strings.ToLower(getEnvOrDefault("STORAGE_TYPE", cfg.StorageType))
	if cfg.StorageType != StorageMemory && cfg.StorageType != StorageRedis {
		return Config{}, fmt.Errorf("STORAGE_TYPE must be %q or %q, got %q", StorageMemory, StorageRedis, cfg.StorageType)
	}
	cfg.RedisURL = getEnvOrDefault("REDIS_URL", cfg.RedisURL)
	if cfg.RoomTTL, err = getEnvDuration("ROOM_TTL", cfg.RoomTTL); err != nil {
		return Config{}, err
	}

	cfg.BrokerType = strings.ToLower(getEnvOrDefault("BROKER_TYPE", cfg.BrokerType))
	if cfg.BrokerType != BrokerMemory && cfg.BrokerType != BrokerNATS {
		return Config{}, fmt.Errorf("BROKER_TYPE must be %q or %q, got %q", BrokerMemory, BrokerNATS, cfg.BrokerType)
	}
	cfg.NATSURL = getEnvOrDefault("NATS_URL", cfg.NATSURL)

	if cfg.RetainSnapshots, err = getEnvBool("RETAIN_SNAPSHOTS", cfg.RetainSnapshots); err != nil {
		return Config{}, err
	}
	if cfg.PublishStructured, err = getEnvBool("PUBLISH_STRUCTURED", cfg.PublishStructured); err != nil {
		return Config{}, err
	}
	if cfg.PublishErrors, err = getEnvBool("PUBLISH_ERRORS", cfg.PublishErrors); err != nil {
		return Config{}, err
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(level)); err != nil {
			return Config{}, fmt.Errorf("LOG_LEVEL: %w", err)
		}
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
