// Package variant holds the rules of each supported patience game: deal,
// move generation, win detection and the on-move hook.
package variant

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"solitaire/experiments/metrics"
	"solitaire/game"
	"solitaire/searcher"
)

var ErrNoRedeals = errors.New("no redeals left")

// Kind enumerates the supported games.
type Kind int

const (
	Klondike Kind = iota
	FreeCell
	TriPeaks
)

var kindNames = map[Kind]string{
	Klondike: "klondike",
	FreeCell: "freecell",
	TriPeaks: "tripeaks",
}

func Kinds() []Kind { return []Kind{Klondike, FreeCell, TriPeaks} }

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "-", ""))
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown variant %q", s)
}

// Board names the piles of the game.
func (k Kind) Board() *game.Board {
	switch k {
	case Klondike:
		return klondikeBoard
	case FreeCell:
		return freeCellBoard
	case TriPeaks:
		return triPeaksBoard
	default:
		panic(fmt.Sprintf("unknown variant %d", int(k)))
	}
}

// Deal lays out a shuffled deck.
func (k Kind) Deal(deck []game.Card) game.Layout {
	if len(deck) != game.DeckSize {
		panic(fmt.Sprintf("deal needs %d cards, got %d", game.DeckSize, len(deck)))
	}
	switch k {
	case Klondike:
		return klondikeDeal(deck)
	case FreeCell:
		return freeCellDeal(deck)
	case TriPeaks:
		return triPeaksDeal(deck)
	default:
		panic(fmt.Sprintf("unknown variant %d", int(k)))
	}
}

// Generate proposes candidate moves for the solver.
func (k Kind) Generate(s *searcher.State) {
	switch k {
	case Klondike:
		klondikeGenerate(s)
	case FreeCell:
		freeCellGenerate(s)
	case TriPeaks:
		triPeaksGenerate(s)
	}
}

func (k Kind) IsWon(l game.Layout) bool {
	switch k {
	case Klondike, FreeCell:
		return foundationsComplete(l, k.foundations())
	case TriPeaks:
		return triPeaksWon(l)
	default:
		return false
	}
}

// OnMove runs the side effects of a move, such as revealing the card below
// a moved run. It is called after applying a move and, with undo set,
// before reversing it.
func (k Kind) OnMove(m *game.Move, piles game.Layout, undo bool) {
	switch k {
	case Klondike:
		klondikeOnMove(m, piles, undo)
	case TriPeaks:
		triPeaksOnMove(m, piles, undo)
	}
}

// IsRecycle reports whether the move turns the waste back into the stock.
func (k Kind) IsRecycle(m game.Move) bool {
	return k == Klondike && m.Origin == klondikeWaste && m.Destination == klondikeStock
}

// Redeals reports how many more times the waste may be turned back into
// the stock. It is always zero for games without a recycle.
func (k Kind) Redeals(l game.Layout) int {
	if k != Klondike || len(l) <= klondikeRedeals {
		return 0
	}
	return len(l[klondikeRedeals])
}

// SetRedeals sets the number of recycles left in l. The count is part of
// the layout, so the solver only finds lines that keep within it.
func (k Kind) SetRedeals(l game.Layout, n int) {
	if k != Klondike || len(l) <= klondikeRedeals {
		return
	}
	l[klondikeRedeals] = slices.Repeat(game.Pile{redealToken}, max(n, 0))
}

// Priority scores a layout the way the solver files it.
func (k Kind) Priority(l game.Layout) int {
	switch k {
	case Klondike:
		return l.CardCount(klondikeFoundations...)
	case FreeCell:
		return freeCellPriority(l)
	case TriPeaks:
		return triPeaksPriority(l)
	default:
		return 0
	}
}

func (k Kind) priority(s *searcher.State) int { return k.Priority(s.Layout()) }

func (k Kind) foundations() []int {
	switch k {
	case Klondike:
		return klondikeFoundations
	case FreeCell:
		return freeCellFoundations
	default:
		return nil
	}
}

// Solve searches for a winning line from layout.
func (k Kind) Solve(ctx context.Context, solver *searcher.Solver, layout game.Layout) ([]game.Move, metrics.SearchMetric, error) {
	return solver.Solve(ctx, layout, k.Generate, func(s *searcher.State) bool {
		return k.IsWon(s.Layout())
	})
}

// Play applies a move to a live layout and runs the on-move hook.
func (k Kind) Play(l game.Layout, m *game.Move) error {
	if k.IsRecycle(*m) && k.Redeals(l) == 0 {
		return ErrNoRedeals
	}
	m.Flips = nil
	if err := l.Apply(m); err != nil {
		return err
	}
	k.OnMove(m, l, false)
	return nil
}

// Revert undoes a move previously passed to Play.
func (k Kind) Revert(l game.Layout, m *game.Move) error {
	if m.Origin < 0 || m.Origin >= len(l) || m.Destination < 0 || m.Destination >= len(l) {
		return &game.MoveError{Move: *m, Undo: true, Err: game.ErrPileOutOfRange}
	}
	k.OnMove(m, l, true)
	if err := l.Undo(m); err != nil {
		k.OnMove(m, l, false)
		return err
	}
	return nil
}
