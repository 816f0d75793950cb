package cli

import (
	"os"
)

// Config holds CLI configuration
type Config struct {
	ServerURL string
	NATSURL   string
	Output    string
	Verbose   bool
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL: getEnvOrDefault("COUPLOBBY_SERVER", "http://localhost:8080"),
		NATSURL:   getEnvOrDefault("COUPLOBBY_NATS", "nats://localhost:4222"),
		Output:    "text",
		Verbose:   false,
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
