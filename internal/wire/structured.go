package wire

import (
	"encoding/json"
	"fmt"

	"github.com/mcoot/couplobby/internal/model"
)

// Structured renders players as a JSON array of objects, so ids and names
// round-trip regardless of their content.
type Structured struct{}

var _ Codec = Structured{}

// StructuredRoom is the JSON shape of a room for structured consumers.
// The HTTP API responds with the same shape.
type StructuredRoom struct {
	Token    string             `json:"token"`
	RoomName string             `json:"roomName"`
	Players  []StructuredPlayer `json:"players"`
}

type StructuredPlayer struct {
	PlayerID   string   `json:"playerId"`
	PlayerName string   `json:"playerName"`
	Cards      []string `json:"cards"`
}

// NewStructuredRoom converts a snapshot; players is never nil so an empty
// room renders as [].
func NewStructuredRoom(snapshot model.RoomSnapshot) StructuredRoom {
	players := make([]StructuredPlayer, len(snapshot.Players))
	for i, p := range snapshot.Players {
		cards := make([]string, len(p.Cards))
		for j, c := range p.Cards {
			cards[j] = c.String()
		}
		players[i] = StructuredPlayer{
			PlayerID:   string(p.ID),
			PlayerName: p.Name,
			Cards:      cards,
		}
	}
	return StructuredRoom{
		Token:    string(snapshot.Token),
		RoomName: snapshot.Name,
		Players:  players,
	}
}

// Snapshot converts back into a model snapshot, validating card identifiers
func (r StructuredRoom) Snapshot() (model.RoomSnapshot, error) {
	players := make([]model.PlayerSnapshot, len(r.Players))
	for i, p := range r.Players {
		cards := make([]model.CardType, len(p.Cards))
		for j, raw := range p.Cards {
			card, err := model.ParseCardType(raw)
			if err != nil {
				return model.RoomSnapshot{}, fmt.Errorf("%w: %v", model.ErrEncodingFailure, err)
			}
			cards[j] = card
		}
		players[i] = model.PlayerSnapshot{
			ID:    model.PlayerID(p.PlayerID),
			Name:  p.PlayerName,
			Cards: cards,
		}
	}
	return model.RoomSnapshot{
		Token:   model.RoomToken(r.Token),
		Name:    r.RoomName,
		Players: players,
	}, nil
}

func (Structured) Name() string { return "structured" }

func (Structured) Encode(snapshot model.RoomSnapshot) ([]byte, error) {
	return marshalCompact(NewStructuredRoom(snapshot))
}

func (Structured) Decode(payload []byte) (model.RoomSnapshot, error) {
	var r StructuredRoom
	if err := json.Unmarshal(payload, &r); err != nil {
		return model.RoomSnapshot{}, encodingFailure("%v", err)
	}
	return r.Snapshot()
}
