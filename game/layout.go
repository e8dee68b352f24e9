package game

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash"
)

// Pile is an ordered stack of cards, bottom first.
type Pile []Card

// Top returns the last card of the pile.
func (p Pile) Top() (Card, bool) {
	if len(p) == 0 {
		return 0, false
	}
	return p[len(p)-1], true
}

// Find returns the index of the card with the same identity, or -1.
func (p Pile) Find(c Card) int {
	for i := len(p) - 1; i >= 0; i-- {
		if p[i].ID() == c.ID() {
			return i
		}
	}
	return -1
}

// FaceUp returns the index of the first face-up card of the run that ends
// at the top, or len(p) if the top card is face-down or the pile is empty.
func (p Pile) FaceUp() int {
	i := len(p)
	for i > 0 && !p[i-1].FaceDown() {
		i--
	}
	return i
}

// Layout is the full set of piles of a game. Pile indices are assigned by
// the variant.
type Layout []Pile

func NewLayout(piles int) Layout {
	return make(Layout, piles)
}

// Clone deep-copies the layout.
func (l Layout) Clone() Layout {
	c := make(Layout, len(l))
	for i, p := range l {
		if len(p) > 0 {
			c[i] = append(Pile(nil), p...)
		}
	}
	return c
}

func (l Layout) Top(pile int) (Card, bool) {
	if pile < 0 || pile >= len(l) {
		return 0, false
	}
	return l[pile].Top()
}

// CardCount sums the number of cards in the given piles.
func (l Layout) CardCount(piles ...int) int {
	n := 0
	for _, i := range piles {
		n += len(l[i])
	}
	return n
}

// Key returns a canonical encoding of the layout: for every pile its length
// followed by its card bytes. Equal layouts have equal keys.
func (l Layout) Key() string {
	size := len(l)
	for _, p := range l {
		size += len(p)
	}
	b := make([]byte, 0, size)
	for _, p := range l {
		b = append(b, byte(len(p)))
		for _, c := range p {
			b = append(b, byte(c))
		}
	}
	return string(b)
}

// LayoutFromKey rebuilds a layout from Key.
func LayoutFromKey(key string) (Layout, error) {
	var l Layout
	for i := 0; i < len(key); {
		n := int(key[i])
		i++
		if i+n > len(key) {
			return nil, fmt.Errorf("truncated layout key at pile %d", len(l))
		}
		var p Pile
		if n > 0 {
			p = make(Pile, n)
			for j := 0; j < n; j++ {
				p[j] = Card(key[i+j])
			}
		}
		l = append(l, p)
		i += n
	}
	return l, nil
}

// Hash fingerprints the layout.
func (l Layout) Hash() uint64 {
	return xxhash.Sum64String(l.Key())
}

func (l Layout) Equal(other Layout) bool {
	return l.Key() == other.Key()
}

// Apply performs the move. For Flip moves the move's Card is rewritten to
// the flipped top card, so applying the same value again in reverse
// restores the layout.
func (l Layout) Apply(m *Move) error {
	return l.transfer(m, false)
}

// Undo reverses a move previously passed to Apply.
func (l Layout) Undo(m *Move) error {
	return l.transfer(m, true)
}

func (l Layout) transfer(m *Move, undo bool) error {
	from, to := m.Origin, m.Destination
	if undo {
		from, to = to, from
	}
	if from < 0 || from >= len(l) || to < 0 || to >= len(l) {
		return &MoveError{Move: *m, Undo: undo, Err: ErrPileOutOfRange}
	}
	if from == to {
		return &MoveError{Move: *m, Undo: undo, Err: ErrSamePile}
	}

	origin := l[from]
	idx := origin.Find(m.Card)
	if idx < 0 {
		return &MoveError{Move: *m, Undo: undo, Err: ErrCardNotFound}
	}

	switch m.Instruction {
	case Flip:
		m.Card = origin[len(origin)-1].Flip()
		for i := len(origin) - 1; i >= idx; i-- {
			l[to] = append(l[to], origin[i].Flip())
		}
	default:
		l[to] = append(l[to], origin[idx:]...)
	}
	l[from] = origin[:idx:idx]
	return nil
}

func (l Layout) String() string {
	var sb strings.Builder
	for i, p := range l {
		fmt.Fprintf(&sb, "%2d:", i)
		for _, c := range p {
			sb.WriteByte(' ')
			sb.WriteString(c.String())
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
