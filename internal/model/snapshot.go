package model

// RoomSnapshot is the full state of a room as of its latest mutation
type RoomSnapshot struct {
	Token    RoomToken
	Name     string
	Players  []PlayerSnapshot
	Revision uint64 // not carried on the wire
}

// PlayerSnapshot is a member as rendered in a room snapshot
type PlayerSnapshot struct {
	ID    PlayerID
	Name  string
	Cards []CardType
}
