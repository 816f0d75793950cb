package model

import "time"

// PlayerID uniquely identifies a player for the lifetime of the process
type PlayerID string

// Player is a member of a room holding a hand of cards
type Player struct {
	ID    PlayerID
	Name  string // not unique across players
	Cards []CardType

	// RoomToken points back at the owning room for lookups only.
	// The room's member list is the source of truth for membership.
	RoomToken RoomToken
	JoinedAt  time.Time
}

// Clone returns a deep copy of the player
func (p Player) Clone() Player {
	clone := p
	if p.Cards != nil {
		clone.Cards = make([]CardType, len(p.Cards))
		copy(clone.Cards, p.Cards)
	}
	return clone
}
