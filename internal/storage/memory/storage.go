package memory

import (
	"context"
	"sync"

	"github.com/mcoot/couplobby/internal/dependencies/clock"
	"github.com/mcoot/couplobby/internal/dependencies/ids"
	"github.com/mcoot/couplobby/internal/model"
	"github.com/mcoot/couplobby/internal/storage"
)

// maxCreateAttempts bounds token allocation retries on collision
const maxCreateAttempts = 5

// Storage is an in-memory implementation of storage.RoomStore.
// The map lock only guards lookups and inserts; each room has its own
// lock held for the full read-modify-write of a mutation.
type Storage struct {
	mu    sync.RWMutex
	rooms map[model.RoomToken]*roomEntry

	ids   ids.Generator
	clock clock.Clock
}

type roomEntry struct {
	mu   sync.Mutex
	room *model.Room
}

// New creates a new in-memory storage instance
func New(ids ids.Generator, clock clock.Clock) *Storage {
	return &Storage{
		rooms: make(map[model.RoomToken]*roomEntry),
		ids:   ids,
		clock: clock,
	}
}

// Ensure Storage implements the interface
var _ storage.RoomStore = (*Storage)(nil)

func (s *Storage) Create(ctx context.Context, name string) (*model.Room, error) {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for attempt := 0; attempt < maxCreateAttempts; attempt++ {
		token := model.RoomToken(s.ids.NewID())
		if _, exists := s.rooms[token]; exists {
			continue
		}

		room := &model.Room{
			Token:     token,
			Name:      name,
			Players:   []model.Player{},
			CreatedAt: now,
			UpdatedAt: now,
		}
		s.rooms[token] = &roomEntry{room: room}
		return room.Clone(), nil
	}
	return nil, model.ErrTokenExhausted
}

func (s *Storage) Get(ctx context.Context, token model.RoomToken) (*model.Room, error) {
	entry, err := s.entry(token)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.room.Clone(), nil
}

func (s *Storage) Exists(ctx context.Context, token model.RoomToken) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.rooms[token]
	return ok, nil
}

func (s *Storage) MutateMembers(ctx context.Context, token model.RoomToken, fn storage.MutateFunc) (*model.Room, error) {
	entry, err := s.entry(token)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	working := entry.room.Clone()
	changed, err := fn(working)
	if err != nil {
		return nil, err
	}
	if changed {
		// identity and name are immutable once created
		working.Token = entry.room.Token
		working.Name = entry.room.Name
		working.CreatedAt = entry.room.CreatedAt
		working.Revision = entry.room.Revision + 1
		working.UpdatedAt = s.clock.Now()
		entry.room = working
	}
	return entry.room.Clone(), nil
}

// entry looks up the per-room handle without holding the room lock
func (s *Storage) entry(token model.RoomToken) (*roomEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.rooms[token]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	return entry, nil
}
