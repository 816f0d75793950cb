package memory

import (
	"log/slog"
	"sync"
)

// hub fans payloads out to the subscribers of a single topic
type hub struct {
	topic       string
	subscribers map[*subscriber]bool
	mu          sync.RWMutex
	logger      *slog.Logger

	// retained is the last payload, replayed to late subscribers
	retain   bool
	retained []byte

	// refs counts subscriptions handed out by the broker; guarded by Broker.mu
	refs int

	// Channels for managing subscribers
	register   chan *subscriber
	unregister chan *subscriber
	broadcast  chan []byte
	done       chan struct{}
}

func newHub(topic string, retain bool, logger *slog.Logger) *hub {
	return &hub{
		topic:       topic,
		subscribers: make(map[*subscriber]bool),
		logger:      logger.With(slog.String("topic", topic)),
		retain:      retain,
		register:    make(chan *subscriber),
		unregister:  make(chan *subscriber),
		broadcast:   make(chan []byte, broadcastBufferSize),
		done:        make(chan struct{}),
	}
}

// run is the hub's event loop. All membership changes and deliveries go
// through it, so a subscriber sees payloads in publish order.
func (h *hub) run() {
	h.logger.Debug("pubsub hub started")
	for {
		select {
		case s := <-h.register:
			// Payloads published before the subscription must not reach it
			h.drainBroadcast()
			h.mu.Lock()
			h.subscribers[s] = true
			count := len(h.subscribers)
			h.mu.Unlock()
			if h.retained != nil {
				h.deliver(s, h.retained)
			}
			h.logger.Debug("pubsub subscriber registered", slog.Int("total_subscribers", count))

		case s := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.subscribers[s]; ok {
				delete(h.subscribers, s)
				close(s.send)
			}
			count := len(h.subscribers)
			h.mu.Unlock()
			h.logger.Debug("pubsub subscriber unregistered", slog.Int("total_subscribers", count))

		case payload := <-h.broadcast:
			h.fanOut(payload)

		case <-h.done:
			h.mu.Lock()
			count := len(h.subscribers)
			for s := range h.subscribers {
				close(s.send)
				delete(h.subscribers, s)
			}
			h.mu.Unlock()
			h.logger.Debug("pubsub hub stopped", slog.Int("disconnected_subscribers", count))
			return
		}
	}
}

// fanOut delivers payload to every current subscriber and retains it
func (h *hub) fanOut(payload []byte) {
	if h.retain {
		h.retained = payload
	}
	h.mu.RLock()
	dropped := 0
	for s := range h.subscribers {
		if !h.deliver(s, payload) {
			dropped++
		}
	}
	h.mu.RUnlock()
	if dropped > 0 {
		h.logger.Warn("pubsub broadcast partial failure", slog.Int("dropped", dropped))
	}
}

// drainBroadcast fans out every payload already queued
func (h *hub) drainBroadcast() {
	for {
		select {
		case payload := <-h.broadcast:
			h.fanOut(payload)
		default:
			return
		}
	}
}

func (h *hub) deliver(s *subscriber, payload []byte) bool {
	select {
	case s.send <- payload:
		return true
	default:
		h.logger.Warn("pubsub message dropped - subscriber buffer full")
		return false
	}
}

func (h *hub) subscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}
