package variant

import (
	"solitaire/game"
	"solitaire/searcher"
)

// Tri-Peaks: 28 single-card piles forming three peaks, rows of 3, 6, 9 and
// 10 cards from the top. A card is free once both cards overlapping it from
// the row below are gone.
const (
	triPeaksPyramids = 28
	triPeaksWaste    = 28
	triPeaksStock    = 29
)

var (
	triPeaksBoard = game.NewBoard(append(game.Group("pyramid", triPeaksPyramids), "waste", "stock")...)

	// coveredBy[i] lists the piles overlapping pile i.
	coveredBy = buildCoverage()
	// covering[i] lists the piles pile i overlaps.
	covering = invertCoverage(coveredBy)
)

func buildCoverage() [triPeaksPyramids][]int {
	var c [triPeaksPyramids][]int
	for peak := 0; peak < 3; peak++ {
		c[peak] = []int{3 + 2*peak, 4 + 2*peak}
	}
	for j := 0; j < 6; j++ {
		peak, side := j/2, j%2
		c[3+j] = []int{9 + 3*peak + side, 10 + 3*peak + side}
	}
	for k := 0; k < 9; k++ {
		c[9+k] = []int{18 + k, 19 + k}
	}
	return c
}

func invertCoverage(coveredBy [triPeaksPyramids][]int) [triPeaksPyramids][]int {
	var c [triPeaksPyramids][]int
	for i, piles := range coveredBy {
		for _, p := range piles {
			c[p] = append(c[p], i)
		}
	}
	return c
}

func triPeaksDeal(deck []game.Card) game.Layout {
	l := game.NewLayout(triPeaksBoard.Len())
	for i := 0; i < triPeaksPyramids; i++ {
		c := deck[i].ID()
		if len(coveredBy[i]) > 0 {
			c = c.Flip()
		}
		l[i] = game.Pile{c}
	}
	for _, c := range deck[triPeaksPyramids:] {
		l[triPeaksStock] = append(l[triPeaksStock], c.ID().Flip())
	}
	return l
}

func isUncovered(l game.Layout, pile int) bool {
	for _, p := range coveredBy[pile] {
		if len(l[p]) > 0 {
			return false
		}
	}
	return true
}

func triPeaksWon(l game.Layout) bool {
	for i := 0; i < triPeaksPyramids; i++ {
		if len(l[i]) > 0 {
			return false
		}
	}
	return true
}

func triPeaksPriority(l game.Layout) int {
	cleared := 0
	for i := 0; i < triPeaksPyramids; i++ {
		if len(l[i]) == 0 {
			cleared++
		}
	}
	return max(cleared-len(l[triPeaksWaste])/2, 0)
}

// triPeaksOnMove turns over the cards a removed pyramid card was the last to
// cover.
func triPeaksOnMove(m *game.Move, piles game.Layout, undo bool) {
	if undo {
		hideRevealed(m, piles)
		return
	}
	m.Flips = nil
	if m.Origin >= triPeaksPyramids {
		return
	}
	for _, p := range covering[m.Origin] {
		if isUncovered(piles, p) {
			revealTop(m, piles, p)
		}
	}
}

func triPeaksGenerate(s *searcher.State) {
	l := s.Layout()

	if waste, ok := l[triPeaksWaste].Top(); ok {
		for i := 0; i < triPeaksPyramids; i++ {
			card, ok := l[i].Top()
			if !ok || card.FaceDown() {
				continue
			}
			if game.IsOneRankAbove(waste, card) || game.IsOneRankAbove(card, waste) {
				s.TryMove(game.NewMove(i, card, triPeaksWaste, game.None), rankExpose, TriPeaks.priority, triPeaksOnMove)
			}
		}
	}

	if top, ok := l[triPeaksStock].Top(); ok {
		s.TryMove(game.NewMove(triPeaksStock, top, triPeaksWaste, game.Flip), rankMinor, TriPeaks.priority, triPeaksOnMove)
	}
}
