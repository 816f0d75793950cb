package memory

import (
	"sync"

	"github.com/mcoot/couplobby/internal/pubsub"
)

const (
	// Buffer size for payloads queued to one subscriber
	sendBufferSize = 256

	// Buffer size for payloads queued to a hub
	broadcastBufferSize = 256
)

// subscriber owns a delivery goroutine that hands queued payloads to the
// handler in order
type subscriber struct {
	broker  *Broker
	hub     *hub
	handler pubsub.Handler
	send    chan []byte
	once    sync.Once
}

var _ pubsub.Subscription = (*subscriber)(nil)

func newSubscriber(b *Broker, h *hub, handler pubsub.Handler) *subscriber {
	return &subscriber{
		broker:  b,
		hub:     h,
		handler: handler,
		send:    make(chan []byte, sendBufferSize),
	}
}

func (s *subscriber) pump() {
	for payload := range s.send {
		s.handler(pubsub.Message{Topic: s.hub.topic, Payload: payload})
	}
}

// Unsubscribe stops delivery. It is safe to call more than once and from
// inside the handler.
func (s *subscriber) Unsubscribe() error {
	s.once.Do(func() {
		select {
		case s.hub.unregister <- s:
		case <-s.hub.done:
		}
		s.broker.release(s.hub)
	})
	return nil
}
