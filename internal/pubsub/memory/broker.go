// Package memory is an in-process pubsub.Broker
package memory

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mcoot/couplobby/internal/pubsub"
)

// Config controls broker behavior
type Config struct {
	// Retain keeps the last payload per topic and replays it to new subscribers
	Retain bool
}

// Broker runs one hub goroutine per active topic
type Broker struct {
	hubs   map[string]*hub
	mu     sync.Mutex
	closed bool
	cfg    Config
	logger *slog.Logger
}

var _ pubsub.Broker = (*Broker)(nil)

// New creates a new in-memory broker
func New(cfg Config, logger *slog.Logger) *Broker {
	return &Broker{
		hubs:   make(map[string]*hub),
		cfg:    cfg,
		logger: logger.With(slog.String("component", "pubsub-memory")),
	}
}

// Publish queues payload for every subscriber of topic. It blocks while the
// topic's queue is full, until ctx is done.
func (b *Broker) Publish(ctx context.Context, topic string, payload []byte) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return pubsub.ErrClosed
	}
	h, ok := b.hubs[topic]
	if !ok {
		if !b.cfg.Retain {
			// nobody is listening
			b.mu.Unlock()
			return nil
		}
		h = b.createHubLocked(topic)
	}
	b.mu.Unlock()

	select {
	case h.broadcast <- payload:
		return nil
	case <-h.done:
		// released after its last subscriber left
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe registers handler on topic. When retention is enabled the last
// payload on the topic is delivered first.
func (b *Broker) Subscribe(topic string, handler pubsub.Handler) (pubsub.Subscription, error) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, pubsub.ErrClosed
	}
	h, ok := b.hubs[topic]
	if !ok {
		h = b.createHubLocked(topic)
	}
	h.refs++
	b.mu.Unlock()

	s := newSubscriber(b, h, handler)
	go s.pump()

	select {
	case h.register <- s:
		return s, nil
	case <-h.done:
		close(s.send)
		return nil, pubsub.ErrClosed
	}
}

// Close stops every hub and ends all subscriptions
func (b *Broker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	for topic, h := range b.hubs {
		close(h.done)
		delete(b.hubs, topic)
	}
	return nil
}

// SubscriberCount returns the number of registered subscribers on topic
func (b *Broker) SubscriberCount(topic string) int {
	b.mu.Lock()
	h, ok := b.hubs[topic]
	b.mu.Unlock()
	if !ok {
		return 0
	}
	return h.subscriberCount()
}

// TopicCount returns the number of topics with a running hub
func (b *Broker) TopicCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.hubs)
}

func (b *Broker) createHubLocked(topic string) *hub {
	h := newHub(topic, b.cfg.Retain, b.logger)
	b.hubs[topic] = h
	go h.run()
	return h
}

// release drops a subscription's hold on its hub, stopping the hub once no
// subscriptions remain and nothing is retained
func (b *Broker) release(h *hub) {
	b.mu.Lock()
	defer b.mu.Unlock()

	h.refs--
	if h.refs > 0 || b.cfg.Retain || b.closed {
		return
	}
	if current, ok := b.hubs[h.topic]; ok && current == h {
		delete(b.hubs, h.topic)
		close(h.done)
	}
}
