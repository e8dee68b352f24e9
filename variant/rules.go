package variant

import (
	"solitaire/game"

	"github.com/samber/lo"
)

// Move ranks. Within a bucket a higher rank is filed nearer the front.
const (
	rankAutomove   = 100
	rankCellOut    = 40
	rankExpose     = 5
	rankKingToGap  = 4
	rankFoundation = 3
	rankClearPile  = 3
	rankPlay       = 2
	rankDraw       = 2
	rankMinor      = 1
)

func foundationsComplete(l game.Layout, foundations []int) bool {
	for _, f := range foundations {
		top, ok := l[f].Top()
		if !ok || top.Rank() != game.King {
			return false
		}
	}
	return true
}

// foundationTarget finds the foundation that accepts card: the pile of its
// suit one rank below, or the first empty pile for an ace.
func foundationTarget(l game.Layout, foundations []int, card game.Card) (int, bool) {
	empty := -1
	for _, f := range foundations {
		top, ok := l[f].Top()
		if !ok {
			if empty < 0 {
				empty = f
			}
			continue
		}
		if game.IsSameSuit(top, card) && game.IsOneRankAbove(top, card) {
			return f, true
		}
	}
	if card.Rank() == game.Ace && empty >= 0 {
		return empty, true
	}
	return 0, false
}

// isSafeAutomove reports whether sending card to its foundation can never
// block a later play: its rank is below 2, or no opposite-colour card that
// could still need it as a base remains off the foundations.
func isSafeAutomove(l game.Layout, foundations []int, card game.Card) bool {
	if card.Rank() < 2 {
		return true
	}
	heights := lo.FilterMap(foundations, func(f int, _ int) (int, bool) {
		top, ok := l[f].Top()
		return len(l[f]), ok && top.IsRed() != card.IsRed()
	})
	if len(heights) < 2 {
		return false
	}
	return card.Rank() <= lo.Min(heights)
}

// fitsTableau reports whether card may be placed on top in an
// alternating-colour descending build.
func fitsTableau(top, card game.Card) bool {
	return !top.FaceDown() && game.IsOneRankAbove(card, top) && !game.IsSimilarSuit(card, top)
}

// revealTop turns over the face-down top card of pile and records it.
func revealTop(m *game.Move, piles game.Layout, pile int) {
	if top, ok := piles[pile].Top(); ok && top.FaceDown() {
		piles[pile][len(piles[pile])-1] = top.Flip()
		m.Flips = append(m.Flips, pile)
	}
}

// hideRevealed reverses revealTop calls, latest first.
func hideRevealed(m *game.Move, piles game.Layout) {
	for i := len(m.Flips) - 1; i >= 0; i-- {
		p := m.Flips[i]
		if top, ok := piles[p].Top(); ok && !top.FaceDown() {
			piles[p][len(piles[p])-1] = top.Flip()
		}
	}
}
