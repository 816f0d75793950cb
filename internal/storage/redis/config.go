package redis

import "time"

// Config holds Redis connection and behavior settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// RoomTTL is refreshed on every write; zero keeps rooms forever
	RoomTTL time.Duration

	// MaxMutateRetries bounds optimistic transaction retries per mutation
	MaxMutateRetries int
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:              "redis://localhost:6379",
		PoolSize:         10,
		MinIdleConns:     2,
		RoomTTL:          0,
		MaxMutateRetries: 50,
	}
}
