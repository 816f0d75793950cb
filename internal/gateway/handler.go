// Package gateway exposes room topics and inbound requests to browsers
// over a websocket speaking JSON frames.
package gateway

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/mcoot/couplobby/internal/pubsub"
)

// Dispatcher handles SEND frames
type Dispatcher interface {
	Dispatch(ctx context.Context, destination string, body []byte) error
}

// Handler upgrades requests and serves one connection per request
type Handler struct {
	broker         pubsub.Broker
	dispatcher     Dispatcher
	originPatterns []string
	logger         *slog.Logger

	mu       sync.Mutex
	cancels  map[*connection]context.CancelFunc
	shutdown bool
}

// NewHandler creates a new Handler. originPatterns lists hosts allowed to
// connect cross-origin.
func NewHandler(broker pubsub.Broker, dispatcher Dispatcher, originPatterns []string, logger *slog.Logger) *Handler {
	return &Handler{
		broker:         broker,
		dispatcher:     dispatcher,
		originPatterns: originPatterns,
		logger:         logger.With(slog.String("component", "gateway")),
		cancels:        make(map[*connection]context.CancelFunc),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	closed := h.shutdown
	h.mu.Unlock()
	if closed {
		http.Error(w, "Server is shutting down", http.StatusServiceUnavailable)
		return
	}

	// The server's read/write timeouts must not cut long-lived sockets
	rc := http.NewResponseController(w)
	_ = rc.SetReadDeadline(time.Time{})
	_ = rc.SetWriteDeadline(time.Time{})

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		h.logger.Warn("websocket accept failed", slog.String("error", err.Error()))
		return
	}
	defer ws.Close(websocket.StatusInternalError, "connection handler exited")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	conn := newConnection(ctx, ws, h.broker, h.dispatcher, h.logger.With(slog.String("remote_addr", r.RemoteAddr)))
	if !h.track(conn, cancel) {
		ws.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}
	defer h.untrack(conn)
	conn.logger.Info("websocket connected")

	go conn.writePump(cancel)
	conn.readPump()

	conn.close()
	ws.Close(websocket.StatusNormalClosure, "")
	conn.logger.Info("websocket disconnected")
}

func (h *Handler) track(conn *connection, cancel context.CancelFunc) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.shutdown {
		return false
	}
	h.cancels[conn] = cancel
	return true
}

func (h *Handler) untrack(conn *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.cancels, conn)
}

// Shutdown ends every open connection and refuses new ones
func (h *Handler) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.shutdown = true
	for _, cancel := range h.cancels {
		cancel()
	}
	h.logger.Info("gateway shut down", slog.Int("connections", len(h.cancels)))
}

// ConnectionCount returns the number of open connections
func (h *Handler) ConnectionCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.cancels)
}

// OriginPatterns converts allowed CORS origins such as
// "http://localhost:3000" into the host patterns websocket.Accept matches.
func OriginPatterns(origins []string) []string {
	patterns := make([]string, 0, len(origins))
	for _, origin := range origins {
		u, err := url.Parse(origin)
		if err != nil || u.Host == "" {
			patterns = append(patterns, origin)
			continue
		}
		patterns = append(patterns, u.Host)
	}
	return patterns
}
