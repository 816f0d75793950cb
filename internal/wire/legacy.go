package wire

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/mcoot/couplobby/internal/model"
)

const (
	recordPrefix    = "Player("
	recordSeparator = "), Player("
)

var recordPattern = regexp.MustCompile(`^playerId=(.*?),\s*playerName=(.*?),\s*cards=(.*)$`)

// Legacy is the codec existing subscribers understand. The players field
// is a single string rendering of the member list rather than a JSON array:
//
//	{"token":"t","roomName":"n","players":"[Player(playerId=a, playerName=b, cards=[DUQUE, CAPITAO])]"}
//
// A player name containing a comma cannot be parsed back.
type Legacy struct{}

var _ Codec = Legacy{}

type legacyPayload struct {
	Token    string `json:"token"`
	RoomName string `json:"roomName"`
	Players  string `json:"players"`
}

func (Legacy) Name() string { return "legacy" }

func (Legacy) Encode(snapshot model.RoomSnapshot) ([]byte, error) {
	return marshalCompact(legacyPayload{
		Token:    string(snapshot.Token),
		RoomName: snapshot.Name,
		Players:  FormatPlayers(snapshot.Players),
	})
}

func (Legacy) Decode(payload []byte) (model.RoomSnapshot, error) {
	var p legacyPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return model.RoomSnapshot{}, encodingFailure("%v", err)
	}
	players, err := ParsePlayers(p.Players)
	if err != nil {
		return model.RoomSnapshot{}, err
	}
	return model.RoomSnapshot{
		Token:   model.RoomToken(p.Token),
		Name:    p.RoomName,
		Players: players,
	}, nil
}

// FormatPlayers renders members as the legacy players blob. An empty list is "[]".
func FormatPlayers(players []model.PlayerSnapshot) string {
	records := make([]string, len(players))
	for i, p := range players {
		cards := make([]string, len(p.Cards))
		for j, c := range p.Cards {
			cards[j] = c.String()
		}
		records[i] = fmt.Sprintf("Player(playerId=%s, playerName=%s, cards=[%s])",
			p.ID, p.Name, strings.Join(cards, ", "))
	}
	return "[" + strings.Join(records, ", ") + "]"
}

// ParsePlayers reads a legacy players blob back into member records
func ParsePlayers(blob string) ([]model.PlayerSnapshot, error) {
	if !strings.HasPrefix(blob, "[") || !strings.HasSuffix(blob, "]") {
		return nil, encodingFailure("players blob is not bracketed: %q", blob)
	}
	inner := blob[1 : len(blob)-1]
	if inner == "" {
		return []model.PlayerSnapshot{}, nil
	}

	records := strings.Split(inner, recordSeparator)
	first, last := 0, len(records)-1

	if !strings.HasPrefix(records[first], recordPrefix) {
		return nil, encodingFailure("players blob does not start with %q", recordPrefix)
	}
	records[first] = strings.TrimPrefix(records[first], recordPrefix)

	if !strings.HasSuffix(records[last], ")") {
		return nil, encodingFailure("players blob has an unterminated record")
	}
	records[last] = strings.TrimSuffix(records[last], ")")

	players := make([]model.PlayerSnapshot, 0, len(records))
	for _, record := range records {
		p, err := parseRecord(record)
		if err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, nil
}

func parseRecord(record string) (model.PlayerSnapshot, error) {
	m := recordPattern.FindStringSubmatch(record)
	if m == nil {
		return model.PlayerSnapshot{}, encodingFailure("malformed player record %q", record)
	}

	list := m[3]
	if !strings.HasPrefix(list, "[") || !strings.HasSuffix(list, "]") {
		return model.PlayerSnapshot{}, encodingFailure("malformed card list %q", list)
	}
	list = strings.TrimSpace(list[1 : len(list)-1])

	cards := []model.CardType{}
	if list != "" {
		for _, raw := range strings.Split(list, ",") {
			card, err := model.ParseCardType(strings.TrimSpace(raw))
			if err != nil {
				return model.PlayerSnapshot{}, fmt.Errorf("%w: %v", model.ErrEncodingFailure, err)
			}
			cards = append(cards, card)
		}
	}

	return model.PlayerSnapshot{
		ID:    model.PlayerID(m[1]),
		Name:  m[2],
		Cards: cards,
	}, nil
}
