package variant

import (
	"context"
	"errors"
	"testing"

	"solitaire/game"
	"solitaire/searcher"

	"github.com/stretchr/testify/require"
)

func up(suit, rank int) game.Card { return game.Encode(suit, rank, false) }

func down(suit, rank int) game.Card { return game.Encode(suit, rank, true) }

// run builds a foundation holding ace through rank n-1 of suit.
func run(suit, n int) game.Pile {
	p := game.Pile{}
	for r := 0; r < n; r++ {
		p = append(p, up(suit, r))
	}
	return p
}

// klondikeLayout is an empty Klondike board with the default redeals.
func klondikeLayout() game.Layout {
	l := game.NewLayout(klondikeBoard.Len())
	Klondike.SetRedeals(l, DefaultRedeals)
	return l
}

func requireFullDeck(t *testing.T, l game.Layout) {
	t.Helper()
	seen := map[game.Card]bool{}
	for _, p := range l {
		for _, c := range p {
			if c.IsJoker() {
				continue
			}
			require.False(t, seen[c.ID()], "duplicate card %s", c)
			seen[c.ID()] = true
		}
	}
	require.Len(t, seen, game.DeckSize)
}

func replayToWin(t *testing.T, k Kind, layout game.Layout, moves []game.Move) {
	t.Helper()
	l := layout.Clone()
	for _, m := range moves {
		require.NoError(t, k.Play(l, &m))
	}
	require.True(t, k.IsWon(l), "Replaying the solution should win:\n%s", l)
}

// requirePlayRevert plays moves from layout, reverts them all in reverse
// order and checks that layout is back where it started.
func requirePlayRevert(t *testing.T, k Kind, layout game.Layout, moves []game.Move) {
	t.Helper()
	l := layout.Clone()
	played := make([]game.Move, 0, len(moves))
	for _, m := range moves {
		require.NoError(t, k.Play(l, &m))
		played = append(played, m)
	}
	for i := len(played) - 1; i >= 0; i-- {
		require.NoError(t, k.Revert(l, &played[i]))
	}
	require.True(t, layout.Equal(l), "Reverting every move should restore the layout:\n%s", l)
}

// wander plays up to steps generated moves from layout, picking a different
// candidate each step.
func wander(t *testing.T, k Kind, layout game.Layout, steps int) []game.Move {
	t.Helper()
	l := layout.Clone()
	var moves []game.Move
	for i := 0; i < steps && !k.IsWon(l); i++ {
		s := searcher.NewState(l, searcher.DefaultBuckets)
		k.Generate(s)
		require.NoError(t, s.Err())
		require.Equal(t, s.Len(), s.States())
		if s.Len() == 0 {
			break
		}
		m := s.Node(i % s.Len()).Move
		require.NoError(t, k.Play(l, &m))
		moves = append(moves, m)
	}
	return moves
}

func TestPlayRevert(t *testing.T) {
	for _, k := range Kinds() {
		t.Run(k.String(), func(t *testing.T) {
			for seed := uint64(1); seed <= 4; seed++ {
				deal := k.DealSeed(seed)
				requirePlayRevert(t, k, deal, wander(t, k, deal, 60))

				moves, _, err := k.Solve(context.Background(), searcher.NewSolver(), deal)
				if errors.Is(err, searcher.ErrNoSolution) {
					continue
				}
				require.NoError(t, err)
				requirePlayRevert(t, k, deal, moves)
			}
		})
	}
}

func TestKind(t *testing.T) {
	t.Run("parses names", func(t *testing.T) {
		for input, want := range map[string]Kind{
			"klondike": Klondike,
			"FreeCell": FreeCell,
			"tri-peaks": TriPeaks,
		} {
			got, err := ParseKind(input)
			require.NoError(t, err)
			require.Equal(t, want, got)
		}
		_, err := ParseKind("spider")
		require.Error(t, err)
	})

	t.Run("string round trips", func(t *testing.T) {
		for _, k := range Kinds() {
			got, err := ParseKind(k.String())
			require.NoError(t, err)
			require.Equal(t, k, got)
		}
	})

	t.Run("deal needs a full deck", func(t *testing.T) {
		require.Panics(t, func() { Klondike.Deal(game.NewDeck()[:10]) })
	})
}

func TestShuffle(t *testing.T) {
	require.Equal(t, Shuffle(7), Shuffle(7), "Same seed should give the same deck")
	require.NotEqual(t, Shuffle(7), Shuffle(8))
	require.ElementsMatch(t, game.NewDeck(), Shuffle(7))
}

func TestKlondike(t *testing.T) {
	t.Run("deal", func(t *testing.T) {
		l := Klondike.DealSeed(1)
		require.Len(t, l, 14)
		require.Equal(t, DefaultRedeals, Klondike.Redeals(l))
		for i := 0; i < 7; i++ {
			require.Len(t, l[i], i+1)
			for j, c := range l[i] {
				require.Equal(t, j < i, c.FaceDown(), "only the top tableau card is face up")
			}
		}
		require.Len(t, l[klondikeStock], 24)
		for _, c := range l[klondikeStock] {
			require.True(t, c.FaceDown())
		}
		requireFullDeck(t, l)
	})

	t.Run("safe automove is offered alone", func(t *testing.T) {
		l := klondikeLayout()
		l[0] = game.Pile{up(game.Heart, 4)}
		l[1] = game.Pile{down(game.Spade, 9), up(game.Club, 1)}
		l[7] = run(game.Club, 1)
		l[8] = run(game.Heart, 4)
		l[klondikeStock] = game.Pile{down(game.Diamond, 6)}

		s := searcher.NewState(l, searcher.DefaultBuckets)
		Klondike.Generate(s)

		require.NoError(t, s.Err())
		require.Len(t, s.Nodes(), 1)
		require.Equal(t, game.NewMove(1, up(game.Club, 1), 7, game.None), game.Move{
			Origin:      s.Node(0).Move.Origin,
			Card:        s.Node(0).Move.Card,
			Destination: s.Node(0).Move.Destination,
		})
		require.Equal(t, []int{1}, s.Node(0).Move.Flips, "Moving the two should reveal the card below")
	})

	t.Run("unsafe foundation plays are filed with the rest", func(t *testing.T) {
		l := klondikeLayout()
		l[0] = game.Pile{up(game.Heart, 4)}
		l[8] = run(game.Heart, 4)
		l[7] = run(game.Club, 1)
		l[klondikeStock] = game.Pile{down(game.Diamond, 6)}

		s := searcher.NewState(l, searcher.DefaultBuckets)
		Klondike.Generate(s)

		require.Len(t, s.Nodes(), 2)
		require.True(t, s.Node(0).Move.Matches(game.NewMove(0, up(game.Heart, 4), 8, game.None)))
		require.True(t, s.Node(1).Move.Matches(game.NewMove(klondikeStock, down(game.Diamond, 6), klondikeWaste, game.Flip)))
	})

	t.Run("recycle only with an empty stock", func(t *testing.T) {
		l := klondikeLayout()
		l[klondikeWaste] = game.Pile{up(game.Diamond, 6), up(game.Spade, 9)}

		s := searcher.NewState(l, searcher.DefaultBuckets)
		Klondike.Generate(s)

		require.Len(t, s.Nodes(), 1)
		m := s.Node(0).Move
		require.True(t, Klondike.IsRecycle(m))
		require.Equal(t, game.Flip, m.Instruction)
	})

	t.Run("recycle spends a redeal", func(t *testing.T) {
		l := klondikeLayout()
		Klondike.SetRedeals(l, 1)
		l[klondikeWaste] = game.Pile{up(game.Diamond, 6), up(game.Spade, 9)}
		before := l.Clone()

		m := game.NewMove(klondikeWaste, up(game.Diamond, 6), klondikeStock, game.Flip)
		require.NoError(t, Klondike.Play(l, &m))
		require.Zero(t, Klondike.Redeals(l))
		require.Equal(t, game.Pile{down(game.Spade, 9), down(game.Diamond, 6)}, l[klondikeStock])

		s := searcher.NewState(l, searcher.DefaultBuckets)
		Klondike.Generate(s)
		for _, n := range s.Nodes() {
			require.False(t, Klondike.IsRecycle(n.Move), "No recycle should be offered without redeals")
		}

		require.NoError(t, Klondike.Revert(l, &m))
		require.True(t, before.Equal(l))
	})

	t.Run("no recycle without redeals", func(t *testing.T) {
		l := klondikeLayout()
		Klondike.SetRedeals(l, 0)
		l[klondikeWaste] = game.Pile{up(game.Diamond, 6), up(game.Spade, 9)}

		s := searcher.NewState(l, searcher.DefaultBuckets)
		Klondike.Generate(s)
		require.Empty(t, s.Nodes())

		m := game.NewMove(klondikeWaste, up(game.Diamond, 6), klondikeStock, game.Flip)
		require.ErrorIs(t, Klondike.Play(l, &m), ErrNoRedeals)
	})

	t.Run("redeals bound the search", func(t *testing.T) {
		// Clubs ace to five come off the stock as 3, 5, 2, 4, A, which takes
		// two recycles to play out. Six to king wait on the first column.
		l := klondikeLayout()
		for r := game.King; r >= 5; r-- {
			l[0] = append(l[0], up(game.Club, r))
		}
		l[8] = run(game.Diamond, 13)
		l[9] = run(game.Heart, 13)
		l[10] = run(game.Spade, 13)
		l[klondikeStock] = game.Pile{down(game.Club, 0), down(game.Club, 3), down(game.Club, 1), down(game.Club, 4), down(game.Club, 2)}
		requireFullDeck(t, l)

		Klondike.SetRedeals(l, 1)
		moves, _, err := Klondike.Solve(context.Background(), searcher.NewSolver(), l)
		require.ErrorIs(t, err, searcher.ErrNoSolution)
		require.NotErrorIs(t, err, searcher.ErrBudgetExhausted)
		require.Nil(t, moves)

		Klondike.SetRedeals(l, 2)
		moves, _, err = Klondike.Solve(context.Background(), searcher.NewSolver(), l)
		require.NoError(t, err)
		recycles := 0
		for _, m := range moves {
			if Klondike.IsRecycle(m) {
				recycles++
			}
		}
		require.Equal(t, 2, recycles)
		replayToWin(t, Klondike, l, moves)
	})

	t.Run("reveal is undone", func(t *testing.T) {
		l := klondikeLayout()
		l[0] = game.Pile{down(game.Spade, 9), up(game.Heart, game.King)}
		before := l.Clone()

		m := game.NewMove(0, up(game.Heart, game.King), 1, game.None)
		require.NoError(t, Klondike.Play(l, &m))
		require.Equal(t, game.Pile{up(game.Spade, 9)}, l[0])
		require.Equal(t, []int{0}, m.Flips)

		require.NoError(t, Klondike.Revert(l, &m))
		require.True(t, before.Equal(l))
	})

	t.Run("solves an endgame", func(t *testing.T) {
		l := klondikeLayout()
		l[0] = game.Pile{down(game.Heart, game.Queen), up(game.Spade, game.King)}
		l[1] = game.Pile{up(game.Heart, game.King)}
		l[7] = run(game.Club, 13)
		l[8] = run(game.Diamond, 13)
		l[9] = run(game.Heart, 11)
		l[10] = run(game.Spade, 12)
		require.False(t, Klondike.IsWon(l))

		moves, _, err := Klondike.Solve(context.Background(), searcher.NewSolver(), l)
		require.NoError(t, err)
		replayToWin(t, Klondike, l, moves)
	})

	t.Run("deadlock has no solution", func(t *testing.T) {
		l := klondikeLayout()
		l[0] = game.Pile{down(game.Spade, 5), up(game.Heart, 3)}
		l[1] = game.Pile{down(game.Club, 2), up(game.Diamond, 3)}

		moves, _, err := Klondike.Solve(context.Background(), searcher.NewSolver(), l)
		require.ErrorIs(t, err, searcher.ErrNoSolution)
		require.NotErrorIs(t, err, searcher.ErrBudgetExhausted)
		require.Nil(t, moves)
	})

	t.Run("won and priority", func(t *testing.T) {
		l := klondikeLayout()
		for i, suit := range []int{game.Club, game.Diamond, game.Heart, game.Spade} {
			l[7+i] = run(suit, 13)
		}
		require.True(t, Klondike.IsWon(l))
		require.Equal(t, 52, Klondike.Priority(l))
	})
}

func TestFreeCell(t *testing.T) {
	t.Run("deal", func(t *testing.T) {
		l := FreeCell.DealSeed(3)
		require.Len(t, l, 16)
		for i, pile := range freeCellTableau {
			want := 6
			if i < 4 {
				want = 7
			}
			require.Len(t, l[pile], want)
		}
		for _, p := range l {
			for _, c := range p {
				require.False(t, c.FaceDown())
			}
		}
		requireFullDeck(t, l)
	})

	t.Run("priority discounts cells", func(t *testing.T) {
		l := game.NewLayout(16)
		l[4] = run(game.Club, 3)
		l[0] = game.Pile{up(game.Heart, 9)}
		require.Equal(t, 2, FreeCell.Priority(l))

		l[1] = game.Pile{up(game.Heart, 8)}
		l[2] = game.Pile{up(game.Heart, 7)}
		l[3] = game.Pile{up(game.Heart, 6)}
		require.Equal(t, 0, FreeCell.Priority(l), "Priority should not go negative")
	})

	t.Run("ace in a cell goes home alone", func(t *testing.T) {
		l := game.NewLayout(16)
		l[2] = game.Pile{up(game.Diamond, game.Ace)}
		l[8] = game.Pile{up(game.Spade, 5), up(game.Heart, 4)}

		s := searcher.NewState(l, searcher.DefaultBuckets)
		FreeCell.Generate(s)

		require.Len(t, s.Nodes(), 1)
		require.True(t, s.Node(0).Move.Matches(game.NewMove(2, up(game.Diamond, game.Ace), 4, game.None)))
	})

	t.Run("runs and capacity", func(t *testing.T) {
		pile := game.Pile{up(game.Club, 9), up(game.Spade, 7), up(game.Heart, 6), up(game.Club, 5)}
		require.Equal(t, 1, runStart(pile))
		require.Equal(t, 0, runStart(nil))
		require.Equal(t, 5, moveCapacity(4, 0))
		require.Equal(t, 12, moveCapacity(2, 2))
	})

	t.Run("solves an endgame", func(t *testing.T) {
		l := game.NewLayout(16)
		l[4] = run(game.Club, 11)
		l[5] = run(game.Diamond, 11)
		l[6] = run(game.Heart, 11)
		l[7] = run(game.Spade, 11)
		l[8] = game.Pile{up(game.Club, game.Queen), up(game.Diamond, game.King)}
		l[9] = game.Pile{up(game.Diamond, game.Queen), up(game.Club, game.King)}
		l[10] = game.Pile{up(game.Heart, game.Queen), up(game.Spade, game.King)}
		l[11] = game.Pile{up(game.Spade, game.Queen), up(game.Heart, game.King)}

		moves, _, err := FreeCell.Solve(context.Background(), searcher.NewSolver(), l)
		require.NoError(t, err)
		replayToWin(t, FreeCell, l, moves)
	})
}

func TestTriPeaks(t *testing.T) {
	t.Run("coverage", func(t *testing.T) {
		require.Equal(t, []int{3, 4}, coveredBy[0])
		require.Equal(t, []int{13, 14}, coveredBy[6])
		require.Equal(t, []int{9}, covering[18])
		require.Equal(t, []int{9, 10}, covering[19])
		for i := 0; i < 18; i++ {
			require.Len(t, coveredBy[i], 2)
		}
		for i := 18; i < triPeaksPyramids; i++ {
			require.Empty(t, coveredBy[i])
		}
	})

	t.Run("deal", func(t *testing.T) {
		l := TriPeaks.DealSeed(5)
		require.Len(t, l, 30)
		for i := 0; i < triPeaksPyramids; i++ {
			require.Len(t, l[i], 1)
			require.Equal(t, i < 18, l[i][0].FaceDown())
		}
		require.Empty(t, l[triPeaksWaste])
		require.Len(t, l[triPeaksStock], 24)
		requireFullDeck(t, l)
	})

	t.Run("removing the last cover reveals", func(t *testing.T) {
		l := game.NewLayout(30)
		l[9] = game.Pile{down(game.Heart, 5)}
		l[18] = game.Pile{up(game.Heart, 4)}
		l[19] = game.Pile{up(game.Spade, 2)}
		l[triPeaksWaste] = game.Pile{up(game.Club, 3)}

		first := game.NewMove(18, up(game.Heart, 4), triPeaksWaste, game.None)
		require.NoError(t, TriPeaks.Play(l, &first))
		require.Empty(t, first.Flips, "Pile 19 still covers pile 9")

		l[19] = nil
		second := game.NewMove(triPeaksWaste, up(game.Heart, 4), 18, game.None)
		require.NoError(t, TriPeaks.Play(l, &second))
		third := game.NewMove(18, up(game.Heart, 4), triPeaksWaste, game.None)
		require.NoError(t, TriPeaks.Play(l, &third))
		require.Equal(t, []int{9}, third.Flips)
		require.False(t, l[9][0].FaceDown())

		require.NoError(t, TriPeaks.Revert(l, &third))
		require.True(t, l[9][0].FaceDown())
	})

	t.Run("solves a small layout", func(t *testing.T) {
		l := game.NewLayout(30)
		l[9] = game.Pile{down(game.Heart, 5)}
		l[18] = game.Pile{up(game.Heart, 4)}
		l[triPeaksWaste] = game.Pile{up(game.Club, 3)}

		moves, _, err := TriPeaks.Solve(context.Background(), searcher.NewSolver(), l)
		require.NoError(t, err)
		require.Len(t, moves, 2)
		require.Equal(t, []int{9}, moves[0].Flips)
		replayToWin(t, TriPeaks, l, moves)
	})

	t.Run("stock is drawn when nothing fits", func(t *testing.T) {
		l := game.NewLayout(30)
		l[18] = game.Pile{up(game.Heart, 9)}
		l[triPeaksWaste] = game.Pile{up(game.Club, 3)}
		l[triPeaksStock] = game.Pile{down(game.Club, 8)}

		moves, _, err := TriPeaks.Solve(context.Background(), searcher.NewSolver(), l)
		require.NoError(t, err)
		require.Len(t, moves, 2)
		require.Equal(t, triPeaksStock, moves[0].Origin)
		require.Equal(t, game.Flip, moves[0].Instruction)
	})
}
