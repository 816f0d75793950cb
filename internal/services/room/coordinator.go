package room

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mcoot/couplobby/internal/dependencies/clock"
	"github.com/mcoot/couplobby/internal/dependencies/ids"
	"github.com/mcoot/couplobby/internal/model"
	"github.com/mcoot/couplobby/internal/services/dealer"
	"github.com/mcoot/couplobby/internal/storage"
)

// DealBatchSize is the number of cards a player receives on joining
const DealBatchSize = 2

// Publisher broadcasts room snapshots to the room's observers
type Publisher interface {
	Publish(ctx context.Context, snapshot model.RoomSnapshot) error
}

// Coordinator owns room creation and membership. Every successful join or
// state request is published; failures never are.
type Coordinator struct {
	storage   storage.RoomStore
	dealer    *dealer.Dealer
	ids       ids.Generator
	clock     clock.Clock
	publisher Publisher
	logger    *slog.Logger
}

// NewCoordinator creates a new Coordinator
func NewCoordinator(
	storage storage.RoomStore,
	dealer *dealer.Dealer,
	ids ids.Generator,
	clock clock.Clock,
	publisher Publisher,
	logger *slog.Logger,
) *Coordinator {
	return &Coordinator{
		storage:   storage,
		dealer:    dealer,
		ids:       ids,
		clock:     clock,
		publisher: publisher,
		logger:    logger,
	}
}

// CreateRoom creates an empty room. Nobody can be subscribed to the new
// token yet, so nothing is published.
func (c *Coordinator) CreateRoom(ctx context.Context, name string) (model.RoomSnapshot, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.RoomSnapshot{}, fmt.Errorf("%w: room name is required", model.ErrInvalidRequest)
	}

	room, err := c.storage.Create(ctx, name)
	if err != nil {
		c.logger.Error("failed to create room",
			slog.String("room_name", name),
			slog.String("error", err.Error()),
		)
		return model.RoomSnapshot{}, err
	}

	c.logger.Info("room created",
		slog.String("token", string(room.Token)),
		slog.String("room_name", room.Name),
	)
	return room.Snapshot(), nil
}

// Snapshot returns the current state of a room without publishing it
func (c *Coordinator) Snapshot(ctx context.Context, token model.RoomToken) (model.RoomSnapshot, error) {
	room, err := c.storage.Get(ctx, token)
	if err != nil {
		return model.RoomSnapshot{}, err
	}
	return room.Snapshot(), nil
}

// RequestState publishes the current state of a room so late subscribers
// can catch up, and returns it
func (c *Coordinator) RequestState(ctx context.Context, token model.RoomToken) (model.RoomSnapshot, error) {
	snapshot, err := c.Snapshot(ctx, token)
	if err != nil {
		return model.RoomSnapshot{}, err
	}
	c.publish(ctx, snapshot)
	return snapshot, nil
}

// JoinRoom adds a new player with a fresh hand to the room and publishes
// the resulting state. The join carries no client identity, so each call
// admits a distinct player.
func (c *Coordinator) JoinRoom(ctx context.Context, token model.RoomToken, playerName string) (model.RoomSnapshot, error) {
	// Names are stored exactly as sent; only blank ones are refused.
	if strings.TrimSpace(playerName) == "" {
		return model.RoomSnapshot{}, fmt.Errorf("%w: player name is required", model.ErrInvalidRequest)
	}

	candidate := model.Player{
		ID:   model.PlayerID(c.ids.NewID()),
		Name: playerName,
	}

	room, err := c.storage.MutateMembers(ctx, token, func(room *model.Room) (bool, error) {
		if room.HasPlayer(candidate.ID) {
			return false, nil
		}
		player := candidate.Clone()
		player.Cards = c.dealer.Deal(DealBatchSize)
		player.RoomToken = room.Token
		player.JoinedAt = c.clock.Now()
		room.Players = append(room.Players, player)
		return true, nil
	})
	if err != nil {
		return model.RoomSnapshot{}, err
	}

	c.logger.Info("player joined room",
		slog.String("token", string(room.Token)),
		slog.String("player_id", string(candidate.ID)),
		slog.Int("players", len(room.Players)),
		slog.Uint64("revision", room.Revision),
	)

	snapshot := room.Snapshot()
	c.publish(ctx, snapshot)
	return snapshot, nil
}

// publish is best effort; a failed broadcast does not fail the caller
func (c *Coordinator) publish(ctx context.Context, snapshot model.RoomSnapshot) {
	if err := c.publisher.Publish(ctx, snapshot); err != nil {
		c.logger.Warn("failed to publish room snapshot",
			slog.String("token", string(snapshot.Token)),
			slog.Uint64("revision", snapshot.Revision),
			slog.String("error", err.Error()),
		)
	}
}
