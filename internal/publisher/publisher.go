// Package publisher encodes room snapshots and broadcasts them to every
// subscriber of the room's topic.
package publisher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mcoot/couplobby/internal/model"
	"github.com/mcoot/couplobby/internal/pubsub"
	"github.com/mcoot/couplobby/internal/wire"
)

// SnapshotPublisher broadcasts a room snapshot
type SnapshotPublisher interface {
	Publish(ctx context.Context, snapshot model.RoomSnapshot) error
}

// Publisher sends snapshots for one topic family using one codec.
// Snapshots of a room are handed to the broker in revision order; a
// snapshot older than one already sent for the same room is discarded.
type Publisher struct {
	broker pubsub.Broker
	codec  wire.Codec
	topic  TopicFunc
	logger *slog.Logger

	mu        sync.Mutex
	sequences map[model.RoomToken]*sequence
}

// sequence tracks the newest revision sent for one room
type sequence struct {
	mu        sync.Mutex
	last      uint64
	published bool
}

var _ SnapshotPublisher = (*Publisher)(nil)

// New creates a new Publisher
func New(broker pubsub.Broker, codec wire.Codec, topic TopicFunc, logger *slog.Logger) *Publisher {
	return &Publisher{
		broker:    broker,
		codec:     codec,
		topic:     topic,
		logger:    logger.With(slog.String("component", "publisher"), slog.String("codec", codec.Name())),
		sequences: make(map[model.RoomToken]*sequence),
	}
}

func (p *Publisher) Publish(ctx context.Context, snapshot model.RoomSnapshot) error {
	seq := p.sequence(snapshot.Token)
	seq.mu.Lock()
	defer seq.mu.Unlock()

	if seq.published && snapshot.Revision < seq.last {
		p.logger.Debug("stale snapshot discarded",
			slog.String("token", string(snapshot.Token)),
			slog.Uint64("revision", snapshot.Revision),
			slog.Uint64("last_published", seq.last))
		return nil
	}

	payload, err := p.codec.Encode(snapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot of room %s: %w", snapshot.Token, err)
	}

	topic := p.topic(snapshot.Token)
	if err := p.broker.Publish(ctx, topic, payload); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}

	seq.last = snapshot.Revision
	seq.published = true
	p.logger.Debug("snapshot published",
		slog.String("topic", topic),
		slog.Uint64("revision", snapshot.Revision),
		slog.Int("players", len(snapshot.Players)))
	return nil
}

func (p *Publisher) sequence(token model.RoomToken) *sequence {
	p.mu.Lock()
	defer p.mu.Unlock()
	seq, ok := p.sequences[token]
	if !ok {
		seq = &sequence{}
		p.sequences[token] = seq
	}
	return seq
}

// Multi publishes each snapshot through every publisher in turn
type Multi []SnapshotPublisher

var _ SnapshotPublisher = Multi(nil)

func (m Multi) Publish(ctx context.Context, snapshot model.RoomSnapshot) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, snapshot); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
