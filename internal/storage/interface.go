package storage

import (
	"context"

	"github.com/mcoot/couplobby/internal/model"
)

// MutateFunc changes a room's membership in place.
// It runs against a working copy; the copy is committed only when the
// function reports a change and returns no error.
type MutateFunc func(room *model.Room) (changed bool, err error)

// RoomStore is the authoritative map from room token to room state.
// Mutations on the same token are serialized; mutations on different
// tokens must not contend on a store-wide lock.
type RoomStore interface {
	// Create allocates a fresh token and stores an empty room
	Create(ctx context.Context, name string) (*model.Room, error)
	// Get returns a copy of the room, or model.ErrRoomNotFound
	Get(ctx context.Context, token model.RoomToken) (*model.Room, error)
	// Exists reports whether a room with the token is stored
	Exists(ctx context.Context, token model.RoomToken) (bool, error)
	// MutateMembers applies fn atomically with respect to other mutations on the token
	MutateMembers(ctx context.Context, token model.RoomToken, fn MutateFunc) (*model.Room, error)
}
