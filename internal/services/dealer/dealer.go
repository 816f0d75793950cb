package dealer

import (
	"github.com/mcoot/couplobby/internal/dependencies/random"
	"github.com/mcoot/couplobby/internal/model"
)

// Dealer draws character cards at random
type Dealer struct {
	random random.Random
	deck   []model.CardType
}

// New creates a new Dealer drawing from every card type
func New(random random.Random) *Dealer {
	return &Dealer{
		random: random,
		deck:   model.AllCardTypes(),
	}
}

// Deal draws n cards independently and with replacement.
// Duplicates within the result are kept.
func (d *Dealer) Deal(n int) []model.CardType {
	if n <= 0 {
		return []model.CardType{}
	}
	cards := make([]model.CardType, n)
	for i := range cards {
		cards[i] = d.deck[d.random.Intn(len(d.deck))]
	}
	return cards
}
