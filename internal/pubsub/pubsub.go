// Package pubsub defines the topic-based transport room snapshots are
// broadcast over.
package pubsub

import (
	"context"
	"errors"
)

// ErrClosed is returned when publishing to or subscribing on a closed broker
var ErrClosed = errors.New("broker closed")

// Message is one payload delivered on a topic.
// Payload is shared between subscribers and must not be modified.
type Message struct {
	Topic   string
	Payload []byte
}

// Handler receives messages for a subscription, one at a time and in
// publish order
type Handler func(msg Message)

// Subscription is a live registration of a Handler on a topic
type Subscription interface {
	Unsubscribe() error
}

// Broker delivers each published payload to every current subscriber of
// the topic. Delivery is best effort.
type Broker interface {
	Publish(ctx context.Context, topic string, payload []byte) error
	Subscribe(topic string, handler Handler) (Subscription, error)
	Close() error
}
