package engine

import "solitaire/game"

// History keeps the moves played and the moves undone since, newest last.
type History struct {
	done   []game.Move
	undone []game.Move
}

// Push records a new move and forgets the redo stack.
func (h *History) Push(m game.Move) {
	h.done = append(h.done, m)
	h.undone = nil
}

// Last returns the most recent move.
func (h *History) Last() (game.Move, bool) {
	if len(h.done) == 0 {
		return game.Move{}, false
	}
	return h.done[len(h.done)-1].Clone(), true
}

// Next returns the move Redo would replay.
func (h *History) Next() (game.Move, bool) {
	if len(h.undone) == 0 {
		return game.Move{}, false
	}
	return h.undone[len(h.undone)-1].Clone(), true
}

// StepBack moves the last move to the redo stack, replacing it with m as
// it stands after being reverted.
func (h *History) StepBack(m game.Move) {
	h.done = h.done[:len(h.done)-1]
	h.undone = append(h.undone, m)
}

// StepForward moves the next redo move back onto the history.
func (h *History) StepForward(m game.Move) {
	h.undone = h.undone[:len(h.undone)-1]
	h.done = append(h.done, m)
}

func (h *History) Len() int { return len(h.done) }

func (h *History) Redoable() int { return len(h.undone) }

// Moves returns a copy of the played moves.
func (h *History) Moves() []game.Move {
	moves := make([]game.Move, len(h.done))
	for i, m := range h.done {
		moves[i] = m.Clone()
	}
	return moves
}
