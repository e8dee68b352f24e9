package variant

import (
	"solitaire/game"

	"golang.org/x/exp/rand"
)

// Shuffle returns a fresh deck in an order determined by seed.
func Shuffle(seed uint64) []game.Card {
	deck := game.NewDeck()
	r := rand.New(rand.NewSource(seed))
	r.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
	return deck
}

// DealSeed lays out the deck produced by seed.
func (k Kind) DealSeed(seed uint64) game.Layout {
	return k.Deal(Shuffle(seed))
}
