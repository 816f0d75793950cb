package gateway

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/mcoot/couplobby/internal/pubsub"
)

const (
	// Time allowed to write a frame to the peer
	writeWait = 5 * time.Second

	// Buffer size for outgoing frames
	sendBufferSize = 64
)

// connection holds the subscriptions of one websocket client
type connection struct {
	ctx        context.Context
	ws         *websocket.Conn
	broker     pubsub.Broker
	dispatcher Dispatcher
	logger     *slog.Logger
	out        chan Frame

	mu   sync.Mutex
	subs map[string]pubsub.Subscription
}

func newConnection(ctx context.Context, ws *websocket.Conn, broker pubsub.Broker, dispatcher Dispatcher, logger *slog.Logger) *connection {
	return &connection{
		ctx:        ctx,
		ws:         ws,
		broker:     broker,
		dispatcher: dispatcher,
		logger:     logger,
		out:        make(chan Frame, sendBufferSize),
		subs:       make(map[string]pubsub.Subscription),
	}
}

// readPump handles client frames in order until the connection ends
func (c *connection) readPump() {
	for {
		var frame Frame
		if err := wsjson.Read(c.ctx, c.ws, &frame); err != nil {
			status := websocket.CloseStatus(err)
			if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway && !errors.Is(err, context.Canceled) {
				c.logger.Debug("websocket read ended", slog.String("error", err.Error()))
			}
			return
		}
		c.handle(frame)
	}
}

// writePump serializes frames to the socket. A failed write ends the connection.
func (c *connection) writePump(cancel context.CancelFunc) {
	for {
		select {
		case <-c.ctx.Done():
			return
		case frame := <-c.out:
			writeCtx, writeCancel := context.WithTimeout(c.ctx, writeWait)
			err := wsjson.Write(writeCtx, c.ws, frame)
			writeCancel()
			if err != nil {
				c.logger.Debug("websocket write failed", slog.String("error", err.Error()))
				cancel()
				return
			}
		}
	}
}

func (c *connection) handle(frame Frame) {
	switch frame.Command {
	case CommandSubscribe:
		c.subscribe(frame.Destination)
	case CommandUnsubscribe:
		c.unsubscribe(frame.Destination)
	case CommandSend:
		if err := c.dispatcher.Dispatch(c.ctx, frame.Destination, []byte(frame.Body)); err != nil {
			c.enqueue(Frame{Command: CommandError, Destination: frame.Destination, Body: err.Error()})
		}
	default:
		c.enqueue(Frame{Command: CommandError, Destination: frame.Destination, Body: "unknown command " + frame.Command})
	}
}

func (c *connection) subscribe(destination string) {
	topic, ok := strings.CutPrefix(destination, topicPrefix)
	if !ok || topic == "" {
		c.enqueue(Frame{Command: CommandError, Destination: destination, Body: "destination is not a topic"})
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.subs[destination]; exists {
		return
	}

	sub, err := c.broker.Subscribe(topic, func(msg pubsub.Message) {
		c.enqueue(Frame{Command: CommandMessage, Destination: destination, Body: string(msg.Payload)})
	})
	if err != nil {
		c.logger.Warn("subscribe failed",
			slog.String("topic", topic),
			slog.String("error", err.Error()))
		c.enqueue(Frame{Command: CommandError, Destination: destination, Body: err.Error()})
		return
	}
	c.subs[destination] = sub
}

func (c *connection) unsubscribe(destination string) {
	c.mu.Lock()
	sub, ok := c.subs[destination]
	delete(c.subs, destination)
	c.mu.Unlock()
	if ok {
		_ = sub.Unsubscribe()
	}
}

// enqueue queues a frame for the write pump, dropping it if the client is
// not keeping up
func (c *connection) enqueue(frame Frame) {
	select {
	case c.out <- frame:
	case <-c.ctx.Done():
	default:
		c.logger.Warn("websocket frame dropped - client buffer full",
			slog.String("destination", frame.Destination))
	}
}

// close releases every subscription
func (c *connection) close() {
	c.mu.Lock()
	subs := c.subs
	c.subs = make(map[string]pubsub.Subscription)
	c.mu.Unlock()

	for _, sub := range subs {
		_ = sub.Unsubscribe()
	}
}
