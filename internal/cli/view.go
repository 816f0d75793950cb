package cli

import (
	"time"

	"github.com/mcoot/couplobby/internal/model"
	"github.com/mcoot/couplobby/internal/wire"
)

// RoomView is a subscriber's picture of one room. A payload that cannot be
// decoded leaves the previous state in place.
type RoomView struct {
	codec   wire.Codec
	current model.RoomSnapshot
	valid   bool
}

// NewRoomView creates an empty view decoding payloads with codec
func NewRoomView(codec wire.Codec) *RoomView {
	return &RoomView{codec: codec}
}

// Apply decodes payload and replaces the current state with it
func (v *RoomView) Apply(payload []byte) error {
	snapshot, err := v.codec.Decode(payload)
	if err != nil {
		return err
	}
	v.current = snapshot
	v.valid = true
	return nil
}

// Current returns the last successfully decoded snapshot
func (v *RoomView) Current() (model.RoomSnapshot, bool) {
	return v.current, v.valid
}

// WatchEvent is printed for every payload received while watching
type WatchEvent struct {
	Time  time.Time `json:"time"`
	Room  *Room     `json:"room,omitempty"`
	Error string    `json:"error,omitempty"`
	Raw   string    `json:"raw,omitempty"`
}

func (v *RoomView) event(payload []byte, now time.Time) WatchEvent {
	evt := WatchEvent{Time: now}
	if err := v.Apply(payload); err != nil {
		evt.Error = err.Error()
		evt.Raw = string(payload)
	}
	if snapshot, ok := v.Current(); ok {
		room := roomFromSnapshot(snapshot)
		evt.Room = &room
	}
	return evt
}

func roomFromSnapshot(snapshot model.RoomSnapshot) Room {
	room := Room{
		Token:    string(snapshot.Token),
		RoomName: snapshot.Name,
		Players:  make([]Player, 0, len(snapshot.Players)),
	}
	for _, p := range snapshot.Players {
		cards := make([]string, len(p.Cards))
		for i, c := range p.Cards {
			cards[i] = c.String()
		}
		room.Players = append(room.Players, Player{
			PlayerID:   string(p.ID),
			PlayerName: p.Name,
			Cards:      cards,
		})
	}
	return room
}
