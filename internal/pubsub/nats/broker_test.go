package nats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubject(t *testing.T) {
	tests := []struct {
		topic    string
		expected string
	}{
		{"state-room/abc-123", "state-room.abc-123"},
		{"v2/state-room/abc", "v2.state-room.abc"},
		{"/app/state-game", "app.state-game"},
		{"room-errors/abc", "room-errors.abc"},
	}

	for _, tt := range tests {
		t.Run(tt.topic, func(t *testing.T) {
			assert.Equal(t, tt.expected, Subject(tt.topic))
		})
	}
}

func TestTopicReversesSubject(t *testing.T) {
	assert.Equal(t, "state-room/abc-123", Topic(Subject("state-room/abc-123")))
}

func TestDestination(t *testing.T) {
	assert.Equal(t, "/app/state-game", Destination("app.state-game"))
	assert.Equal(t, "/app/join-game/abc-123", Destination("app.join-game.abc-123"))
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "nats://127.0.0.1:4222", cfg.URL)
	assert.Equal(t, 5, cfg.MaxReconnects)
}
