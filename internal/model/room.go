package model

import "time"

// RoomToken is the external handle of a room, used for joins and topic routing
type RoomToken string

// Room is a named lobby grouping players
type Room struct {
	Token   RoomToken
	Name    string
	Players []Player // ordered, never contains the same ID twice

	// Revision increases by one for every committed membership change
	Revision  uint64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GetPlayer returns the member with the given ID, or nil if not found
func (r *Room) GetPlayer(id PlayerID) *Player {
	for i := range r.Players {
		if r.Players[i].ID == id {
			return &r.Players[i]
		}
	}
	return nil
}

// HasPlayer reports whether the player is a member of the room
func (r *Room) HasPlayer(id PlayerID) bool {
	return r.GetPlayer(id) != nil
}

// Clone returns a deep copy of the room
func (r *Room) Clone() *Room {
	clone := *r
	clone.Players = make([]Player, len(r.Players))
	for i, p := range r.Players {
		clone.Players[i] = p.Clone()
	}
	return &clone
}

// Snapshot captures the room's current state
func (r *Room) Snapshot() RoomSnapshot {
	players := make([]PlayerSnapshot, len(r.Players))
	for i, p := range r.Players {
		cards := make([]CardType, len(p.Cards))
		copy(cards, p.Cards)
		players[i] = PlayerSnapshot{
			ID:    p.ID,
			Name:  p.Name,
			Cards: cards,
		}
	}
	return RoomSnapshot{
		Token:    r.Token,
		Name:     r.Name,
		Players:  players,
		Revision: r.Revision,
	}
}
