package testutil

import (
	"context"
	"sync"

	"github.com/mcoot/couplobby/internal/pubsub"
)

// RecordingBroker is a pubsub.Broker that records publishes and never
// delivers anything. Set PublishErr to make publishes fail.
type RecordingBroker struct {
	mu         sync.Mutex
	published  []pubsub.Message
	PublishErr error
}

var _ pubsub.Broker = (*RecordingBroker)(nil)

func (b *RecordingBroker) Publish(ctx context.Context, topic string, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.PublishErr != nil {
		return b.PublishErr
	}
	b.published = append(b.published, pubsub.Message{Topic: topic, Payload: payload})
	return nil
}

func (b *RecordingBroker) Subscribe(topic string, handler pubsub.Handler) (pubsub.Subscription, error) {
	return nopSubscription{}, nil
}

func (b *RecordingBroker) Close() error {
	return nil
}

// Published returns a copy of every recorded publish in order
func (b *RecordingBroker) Published() []pubsub.Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	result := make([]pubsub.Message, len(b.published))
	copy(result, b.published)
	return result
}

// PublishedOn returns the recorded payloads for one topic
func (b *RecordingBroker) PublishedOn(topic string) []string {
	var result []string
	for _, msg := range b.Published() {
		if msg.Topic == topic {
			result = append(result, string(msg.Payload))
		}
	}
	return result
}

type nopSubscription struct{}

func (nopSubscription) Unsubscribe() error { return nil }
