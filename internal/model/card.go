package model

import "fmt"

// CardType identifies one of the five character cards.
// The string value is the identifier used on the wire.
type CardType string

const (
	CardDuke       CardType = "DUQUE"
	CardAssassin   CardType = "ASSASSINO"
	CardCountess   CardType = "CONDESSA"
	CardCaptain    CardType = "CAPITAO"
	CardAmbassador CardType = "EMBAIXADOR"
)

// allCardTypes is the fixed draw order used by the dealer
var allCardTypes = []CardType{
	CardDuke,
	CardAssassin,
	CardCountess,
	CardCaptain,
	CardAmbassador,
}

var cardDisplayNames = map[CardType]string{
	CardDuke:       "Duque",
	CardAssassin:   "Assassino",
	CardCountess:   "Condessa",
	CardCaptain:    "Capitão",
	CardAmbassador: "Embaixador",
}

var cardDescriptions = map[CardType]string{
	CardDuke:       "Takes 3 coins from the treasury",
	CardAssassin:   "Pays 3 coins to assassinate another player",
	CardCountess:   "Blocks an assassination attempt",
	CardCaptain:    "Steals 2 coins from another player",
	CardAmbassador: "Exchanges 2 cards with the deck",
}

// AllCardTypes returns every card type in a fixed order
func AllCardTypes() []CardType {
	result := make([]CardType, len(allCardTypes))
	copy(result, allCardTypes)
	return result
}

// Valid reports whether c is one of the known card types
func (c CardType) Valid() bool {
	_, ok := cardDisplayNames[c]
	return ok
}

// DisplayName returns the human-readable card name
func (c CardType) DisplayName() string {
	return cardDisplayNames[c]
}

// Description returns the card's in-game ability
func (c CardType) Description() string {
	return cardDescriptions[c]
}

func (c CardType) String() string {
	return string(c)
}

// ParseCardType converts a wire identifier into a CardType
func ParseCardType(s string) (CardType, error) {
	c := CardType(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown card type %q", s)
	}
	return c, nil
}
