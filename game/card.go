package game

import (
	"fmt"
	"strconv"
	"strings"
)

// Card is a playing card packed into one byte: the low 7 bits hold the
// identity (suit*13 + rank, jokers at 53 and 54) and bit 7 marks a
// face-down card.
type Card uint8

const (
	Club = iota
	Diamond
	Heart
	Spade
	JokerSuit
)

const (
	NumSuits = 4
	NumRanks = 13
	DeckSize = NumSuits * NumRanks

	Ace   = 0
	Jack  = 10
	Queen = 11
	King  = 12
)

const (
	RedJoker   Card = 53
	BlackJoker Card = 54

	faceDownBit Card = 0x80
	idMask      Card = 0x7f
)

var suitNames = [...]string{"club", "diamond", "heart", "spade"}

var rankNames = [...]string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "jack", "queen", "king"}

// Encode packs a suit and rank into a Card. Jokers are encoded with suit
// JokerSuit and rank 0 (red) or 1 (black).
func Encode(suit, rank int, faceDown bool) Card {
	var c Card
	switch {
	case suit >= 0 && suit < NumSuits && rank >= 0 && rank < NumRanks:
		c = Card(suit*NumRanks + rank)
	case suit == JokerSuit && (rank == 0 || rank == 1):
		c = RedJoker + Card(rank)
	default:
		panic(fmt.Sprintf("card out of range: suit %d rank %d", suit, rank))
	}
	if faceDown {
		c |= faceDownBit
	}
	return c
}

// Decode is the inverse of Encode.
func (c Card) Decode() (suit, rank int, faceDown bool) {
	id := c.ID()
	if id >= RedJoker {
		return JokerSuit, int(id - RedJoker), c.FaceDown()
	}
	return int(id) / NumRanks, int(id) % NumRanks, c.FaceDown()
}

// ID strips the face-down flag.
func (c Card) ID() Card { return c & idMask }

func (c Card) FaceDown() bool { return c&faceDownBit != 0 }

// Flip toggles the face-down flag.
func (c Card) Flip() Card { return c ^ faceDownBit }

func (c Card) Suit() int {
	suit, _, _ := c.Decode()
	return suit
}

func (c Card) Rank() int {
	_, rank, _ := c.Decode()
	return rank
}

func (c Card) IsJoker() bool { return c.ID() == RedJoker || c.ID() == BlackJoker }

func (c Card) IsRed() bool {
	if c.IsJoker() {
		return c.ID() == RedJoker
	}
	suit := c.Suit()
	return suit == Diamond || suit == Heart
}

// Valid reports whether the identity bits name a real card.
func (c Card) Valid() bool { return c.ID() <= BlackJoker }

// IsOneRankAbove reports whether higher is exactly one rank above lower.
func IsOneRankAbove(lower, higher Card) bool {
	return lower.Rank()+1 == higher.Rank()
}

func IsSameSuit(a, b Card) bool {
	return a.Suit() == b.Suit()
}

// IsSimilarSuit reports whether both cards share a colour.
func IsSimilarSuit(a, b Card) bool {
	return a.IsRed() == b.IsRed()
}

// Name returns the board-visible name, e.g. "club_1" or "heart_king".
func (c Card) Name() string {
	switch c.ID() {
	case RedJoker:
		return "joker_red"
	case BlackJoker:
		return "joker_black"
	}
	suit, rank, _ := c.Decode()
	return suitNames[suit] + "_" + rankNames[rank]
}

func (c Card) String() string {
	if c.FaceDown() {
		return "[" + c.Name() + "]"
	}
	return c.Name()
}

// ParseCard converts a board-visible name back into a Card.
func ParseCard(name string, faceDown bool) (Card, error) {
	switch name {
	case "joker_red":
		return Encode(JokerSuit, 0, faceDown), nil
	case "joker_black":
		return Encode(JokerSuit, 1, faceDown), nil
	}

	suitName, rankName, ok := strings.Cut(name, "_")
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCard, name)
	}
	suit := indexOf(suitNames[:], suitName)
	rank := indexOf(rankNames[:], rankName)
	if suit < 0 || rank < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCard, name)
	}
	return Encode(suit, rank, faceDown), nil
}

// NewDeck returns the 52 face-up cards in identity order.
func NewDeck() []Card {
	deck := make([]Card, DeckSize)
	for i := range deck {
		deck[i] = Card(i)
	}
	return deck
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	// Accept "11".."13" for face cards as well.
	if v, err := strconv.Atoi(name); err == nil && v >= 1 && v <= NumRanks && len(names) == NumRanks {
		return v - 1
	}
	return -1
}
