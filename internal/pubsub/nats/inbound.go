package nats

import (
	"context"
	"log/slog"
	"time"

	natsio "github.com/nats-io/nats.go"
)

const (
	stateGameSubject = "app.state-game"
	joinGameSubject  = "app.join-game.*"

	// dispatchTimeout bounds handling of one inbound message
	dispatchTimeout = 10 * time.Second
)

// Dispatcher routes an inbound message by destination
type Dispatcher interface {
	Dispatch(ctx context.Context, destination string, body []byte) error
}

// BindInbound subscribes to the client request subjects and hands each
// message to d as destination "/app/state-game" or "/app/join-game/<token>".
// Requests that carry a reply subject are answered with "OK" or the error text.
func (b *Broker) BindInbound(d Dispatcher) (func(), error) {
	var subs []*natsio.Subscription
	unbind := func() {
		for _, sub := range subs {
			_ = sub.Unsubscribe()
		}
	}

	for _, subject := range []string{stateGameSubject, joinGameSubject} {
		sub, err := b.conn.Subscribe(subject, b.inboundHandler(d))
		if err != nil {
			unbind()
			return nil, err
		}
		subs = append(subs, sub)
	}
	b.logger.Info("nats inbound bound",
		slog.String("state_subject", stateGameSubject),
		slog.String("join_subject", joinGameSubject))
	return unbind, nil
}

// inboundHandler runs each message on its own goroutine so a slow room
// does not hold up requests for other rooms behind it.
func (b *Broker) inboundHandler(d Dispatcher) natsio.MsgHandler {
	return func(m *natsio.Msg) {
		go b.handleInbound(d, m)
	}
}

func (b *Broker) handleInbound(d Dispatcher, m *natsio.Msg) {
	ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
	defer cancel()

	err := d.Dispatch(ctx, Destination(m.Subject), m.Data)
	if m.Reply == "" {
		return
	}
	reply := []byte("OK")
	if err != nil {
		reply = []byte(err.Error())
	}
	if err := m.Respond(reply); err != nil {
		b.logger.Warn("nats reply failed",
			slog.String("subject", m.Subject),
			slog.Any("error", err))
	}
}

// Destination converts an inbound subject into a router destination
func Destination(subject string) string {
	return "/" + Topic(subject)
}
