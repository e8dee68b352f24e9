package game

import (
	"errors"
	"fmt"
)

var (
	ErrSamePile       = errors.New("origin and destination are the same pile")
	ErrPileOutOfRange = errors.New("pile index out of range")
	ErrCardNotFound   = errors.New("card not found in origin pile")
	ErrInvalidCard    = errors.New("invalid card name")
	ErrUnknownPile    = errors.New("unknown pile name")
)

// MoveError reports a move that does not fit the layout it was applied to.
type MoveError struct {
	Move Move
	Undo bool
	Err  error
}

func (e *MoveError) Error() string {
	op := "apply"
	if e.Undo {
		op = "undo"
	}
	return fmt.Sprintf("failed to %s move %s: %v", op, e.Move, e.Err)
}

func (e *MoveError) Unwrap() error { return e.Err }
