package game

import (
	"fmt"
	"strings"
)

// Instruction says how cards travel between piles.
type Instruction int

const (
	// None moves the run in order, faces unchanged.
	None Instruction = iota
	// Flip moves the run from the top down, turning every card over. Used
	// for stock/waste transfers.
	Flip
)

func (i Instruction) String() string {
	switch i {
	case None:
		return "none"
	case Flip:
		return "flip"
	default:
		return fmt.Sprintf("instruction(%d)", int(i))
	}
}

// Move relocates Card and every card above it from Origin to Destination.
type Move struct {
	Origin      int
	Card        Card
	Destination int
	Instruction Instruction
	// Flips lists the piles whose top card the on-move hook turned over
	// after this move was applied, in the order they were turned.
	Flips []int
}

func NewMove(origin int, card Card, destination int, instruction Instruction) Move {
	return Move{
		Origin:      origin,
		Card:        card,
		Destination: destination,
		Instruction: instruction,
	}
}

// Matches compares the parts of a move a player controls. Face state and
// hook side effects are ignored.
func (m Move) Matches(other Move) bool {
	return m.Origin == other.Origin &&
		m.Destination == other.Destination &&
		m.Instruction == other.Instruction &&
		m.Card.ID() == other.Card.ID()
}

// Clone copies the move so the Flips slice is not shared.
func (m Move) Clone() Move {
	if m.Flips != nil {
		m.Flips = append([]int(nil), m.Flips...)
	}
	return m
}

func (m Move) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %d->%d", m.Card, m.Origin, m.Destination)
	if m.Instruction != None {
		fmt.Fprintf(&sb, " (%s)", m.Instruction)
	}
	if len(m.Flips) > 0 {
		fmt.Fprintf(&sb, " flips %v", m.Flips)
	}
	return sb.String()
}
