package response

import (
	"github.com/mcoot/couplobby/internal/model"
	"github.com/mcoot/couplobby/internal/wire"
)

// Room is a room in API responses; players is always a JSON array
type Room = wire.StructuredRoom

// Player is a room member in API responses
type Player = wire.StructuredPlayer

// RoomFromSnapshot converts a model.RoomSnapshot to a response Room
func RoomFromSnapshot(s model.RoomSnapshot) Room {
	return wire.NewStructuredRoom(s)
}

// Health is the response for the health endpoint
type Health struct {
	Status string `json:"status"`
}
