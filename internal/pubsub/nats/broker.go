// Package nats adapts a NATS connection to pubsub.Broker.
// Topics use "/" separators; NATS subjects use ".".
package nats

import (
	"context"
	"log/slog"
	"strings"
	"time"

	natsio "github.com/nats-io/nats.go"

	"github.com/mcoot/couplobby/internal/pubsub"
)

// Config holds NATS connection settings
type Config struct {
	URL           string
	Name          string
	Timeout       time.Duration
	ReconnectWait time.Duration
	MaxReconnects int
}

// DefaultConfig returns sensible defaults for a NATS connection
func DefaultConfig() Config {
	return Config{
		URL:           natsio.DefaultURL,
		Name:          "couplobby",
		Timeout:       10 * time.Second,
		ReconnectWait: 2 * time.Second,
		MaxReconnects: 5,
	}
}

// Broker publishes and subscribes over a NATS connection.
// Reconnection and keep-alive are handled by the client library.
type Broker struct {
	conn   *natsio.Conn
	logger *slog.Logger
}

var _ pubsub.Broker = (*Broker)(nil)

// Connect dials the NATS server
func Connect(cfg Config, logger *slog.Logger) (*Broker, error) {
	logger = logger.With(slog.String("component", "pubsub-nats"))

	opts := []natsio.Option{
		natsio.Name(cfg.Name),
		natsio.Timeout(cfg.Timeout),
		natsio.ReconnectWait(cfg.ReconnectWait),
		natsio.MaxReconnects(cfg.MaxReconnects),
		natsio.DisconnectErrHandler(func(_ *natsio.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", slog.Any("error", err))
			}
		}),
		natsio.ReconnectHandler(func(nc *natsio.Conn) {
			logger.Info("nats reconnected", slog.String("url", nc.ConnectedUrl()))
		}),
	}

	nc, err := natsio.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, err
	}
	logger.Info("nats connected", slog.String("url", nc.ConnectedUrl()))
	return NewWithConn(nc, logger), nil
}

// NewWithConn wraps an existing connection
func NewWithConn(nc *natsio.Conn, logger *slog.Logger) *Broker {
	return &Broker{conn: nc, logger: logger}
}

func (b *Broker) Publish(ctx context.Context, topic string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if b.conn.IsClosed() {
		return pubsub.ErrClosed
	}
	return b.conn.Publish(Subject(topic), payload)
}

func (b *Broker) Subscribe(topic string, handler pubsub.Handler) (pubsub.Subscription, error) {
	if b.conn.IsClosed() {
		return nil, pubsub.ErrClosed
	}
	sub, err := b.conn.Subscribe(Subject(topic), func(m *natsio.Msg) {
		handler(pubsub.Message{Topic: Topic(m.Subject), Payload: m.Data})
	})
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// Close drains in-flight messages before closing the connection
func (b *Broker) Close() error {
	if b.conn.IsClosed() {
		return nil
	}
	return b.conn.Drain()
}

// Subject converts a topic such as "state-room/abc" into "state-room.abc"
func Subject(topic string) string {
	return strings.ReplaceAll(strings.Trim(topic, "/"), "/", ".")
}

// Topic converts a subject back into a topic
func Topic(subject string) string {
	return strings.ReplaceAll(subject, ".", "/")
}
