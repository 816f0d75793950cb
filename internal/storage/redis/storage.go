package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/couplobby/internal/dependencies/clock"
	"github.com/mcoot/couplobby/internal/dependencies/ids"
	"github.com/mcoot/couplobby/internal/model"
	"github.com/mcoot/couplobby/internal/storage"
)

// maxCreateAttempts bounds token allocation retries on collision
const maxCreateAttempts = 5

// Storage is a Redis-backed implementation of storage.RoomStore.
// Each room is one JSON blob; mutations use WATCH/MULTI on that key so
// different rooms never contend.
type Storage struct {
	client *redis.Client
	cfg    Config

	ids   ids.Generator
	clock clock.Clock
}

// New creates a new Redis storage instance
func New(cfg Config, ids ids.Generator, clock clock.Clock) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return NewWithClient(client, cfg, ids, clock), nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config, ids ids.Generator, clock clock.Clock) *Storage {
	if cfg.MaxMutateRetries <= 0 {
		cfg.MaxMutateRetries = DefaultConfig().MaxMutateRetries
	}
	return &Storage{
		client: client,
		cfg:    cfg,
		ids:    ids,
		clock:  clock,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.RoomStore = (*Storage)(nil)

func (s *Storage) Create(ctx context.Context, name string) (*model.Room, error) {
	now := s.clock.Now()

	for attempt := 0; attempt < maxCreateAttempts; attempt++ {
		room := &model.Room{
			Token:     model.RoomToken(s.ids.NewID()),
			Name:      name,
			Players:   []model.Player{},
			CreatedAt: now,
			UpdatedAt: now,
		}
		data, err := json.Marshal(room)
		if err != nil {
			return nil, err
		}

		ok, err := s.client.SetNX(ctx, roomKey(room.Token), data, s.cfg.RoomTTL).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			return room, nil
		}
	}
	return nil, model.ErrTokenExhausted
}

func (s *Storage) Get(ctx context.Context, token model.RoomToken) (*model.Room, error) {
	return getRoom(ctx, s.client, token)
}

func (s *Storage) Exists(ctx context.Context, token model.RoomToken) (bool, error) {
	exists, err := s.client.Exists(ctx, roomKey(token)).Result()
	if err != nil {
		return false, err
	}
	return exists > 0, nil
}

func (s *Storage) MutateMembers(ctx context.Context, token model.RoomToken, fn storage.MutateFunc) (*model.Room, error) {
	key := roomKey(token)

	var result *model.Room
	txf := func(tx *redis.Tx) error {
		current, err := getRoom(ctx, tx, token)
		if err != nil {
			return err
		}

		working := current.Clone()
		changed, err := fn(working)
		if err != nil {
			return err
		}
		if !changed {
			result = current
			return nil
		}

		// identity and name are immutable once created
		working.Token = current.Token
		working.Name = current.Name
		working.CreatedAt = current.CreatedAt
		working.Revision = current.Revision + 1
		working.UpdatedAt = s.clock.Now()

		data, err := json.Marshal(working)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, s.cfg.RoomTTL)
			return nil
		})
		if err != nil {
			return err
		}
		result = working
		return nil
	}

	for attempt := 0; attempt < s.cfg.MaxMutateRetries; attempt++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			// another writer committed first; re-read and re-apply
			continue
		}
		return nil, err
	}
	return nil, model.ErrMutationConflict
}

// getter is satisfied by both the client and a watched transaction
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func getRoom(ctx context.Context, c getter, token model.RoomToken) (*model.Room, error) {
	data, err := c.Get(ctx, roomKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrRoomNotFound
		}
		return nil, err
	}

	var room model.Room
	if err := json.Unmarshal(data, &room); err != nil {
		return nil, err
	}
	if room.Players == nil {
		room.Players = []model.Player{}
	}
	return &room, nil
}
