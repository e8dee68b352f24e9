package game

import "fmt"

// Board names the piles of a variant so that player input and layout files
// can refer to them.
type Board struct {
	names []string
	index map[string]int
}

// NewBoard creates a board whose pile i is called names[i].
func NewBoard(names ...string) *Board {
	b := &Board{
		names: names,
		index: make(map[string]int, len(names)),
	}
	for i, name := range names {
		if _, ok := b.index[name]; ok {
			panic(fmt.Sprintf("duplicate pile name %q", name))
		}
		b.index[name] = i
	}
	return b
}

// Group returns names prefix_0 .. prefix_{n-1}.
func Group(prefix string, n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("%s_%d", prefix, i)
	}
	return names
}

func (b *Board) Len() int { return len(b.names) }

func (b *Board) Names() []string { return b.names }

func (b *Board) Name(pile int) string {
	if pile < 0 || pile >= len(b.names) {
		return fmt.Sprintf("pile_%d", pile)
	}
	return b.names[pile]
}

func (b *Board) Index(name string) (int, error) {
	i, ok := b.index[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownPile, name)
	}
	return i, nil
}

// ParseMove builds a move from board-visible names, as reported by a drag
// or click on the board.
func (b *Board) ParseMove(origin, card, destination string, instruction Instruction) (Move, error) {
	from, err := b.Index(origin)
	if err != nil {
		return Move{}, err
	}
	to, err := b.Index(destination)
	if err != nil {
		return Move{}, err
	}
	c, err := ParseCard(card, false)
	if err != nil {
		return Move{}, err
	}
	return NewMove(from, c, to, instruction), nil
}

// Describe renders a move with pile names.
func (b *Board) Describe(m Move) string {
	s := fmt.Sprintf("%s: %s -> %s", m.Card.Name(), b.Name(m.Origin), b.Name(m.Destination))
	if m.Instruction == Flip {
		s += " (flip)"
	}
	return s
}
