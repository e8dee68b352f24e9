package engine

import (
	"testing"

	"solitaire/game"

	"github.com/stretchr/testify/require"
)

func TestHistory(t *testing.T) {
	a := game.NewMove(0, game.Encode(game.Club, 0, false), 1, game.None)
	b := game.NewMove(1, game.Encode(game.Heart, 3, false), 2, game.None)
	c := game.NewMove(2, game.Encode(game.Spade, 7, false), 0, game.None)

	t.Run("empty", func(t *testing.T) {
		h := History{}
		_, ok := h.Last()
		require.False(t, ok)
		_, ok = h.Next()
		require.False(t, ok)
		require.Empty(t, h.Moves())
	})

	t.Run("step back and forward", func(t *testing.T) {
		h := History{}
		h.Push(a)
		h.Push(b)

		last, ok := h.Last()
		require.True(t, ok)
		require.Equal(t, b, last)

		h.StepBack(last)
		require.Equal(t, 1, h.Len())
		require.Equal(t, 1, h.Redoable())

		next, ok := h.Next()
		require.True(t, ok)
		require.Equal(t, b, next)

		h.StepForward(next)
		require.Equal(t, []game.Move{a, b}, h.Moves())
		require.Zero(t, h.Redoable())
	})

	t.Run("push forgets undone moves", func(t *testing.T) {
		h := History{}
		h.Push(a)
		h.Push(b)
		m, _ := h.Last()
		h.StepBack(m)

		h.Push(c)
		require.Zero(t, h.Redoable())
		require.Equal(t, []game.Move{a, c}, h.Moves())
	})

	t.Run("returned moves are copies", func(t *testing.T) {
		h := History{}
		flip := game.NewMove(3, game.Encode(game.Diamond, 2, false), 1, game.None)
		flip.Flips = []int{3}
		h.Push(flip)

		last, _ := h.Last()
		last.Flips[0] = 9
		moves := h.Moves()
		require.Equal(t, []int{3}, moves[0].Flips)
	})
}
