package variant

import (
	"solitaire/game"
	"solitaire/searcher"
)

var (
	freeCellCells       = []int{0, 1, 2, 3}
	freeCellFoundations = []int{4, 5, 6, 7}
	freeCellTableau     = []int{8, 9, 10, 11, 12, 13, 14, 15}

	freeCellBoard = game.NewBoard(append(append(game.Group("cell", 4), game.Group("foundation", 4)...), game.Group("tableau", 8)...)...)
)

func freeCellDeal(deck []game.Card) game.Layout {
	l := game.NewLayout(freeCellBoard.Len())
	next := 0
	for i, t := range freeCellTableau {
		n := 6
		if i < 4 {
			n = 7
		}
		for j := 0; j < n; j++ {
			l[t] = append(l[t], deck[next].ID())
			next++
		}
	}
	return l
}

// freeCellPriority counts cards sent home, less cards parked in cells.
func freeCellPriority(l game.Layout) int {
	return max(l.CardCount(freeCellFoundations...)-l.CardCount(freeCellCells...), 0)
}

func firstEmpty(l game.Layout, piles []int) (int, bool) {
	for _, p := range piles {
		if len(l[p]) == 0 {
			return p, true
		}
	}
	return 0, false
}

func countEmpty(l game.Layout, piles []int) int {
	n := 0
	for _, p := range piles {
		if len(l[p]) == 0 {
			n++
		}
	}
	return n
}

// runStart returns the index where the alternating descending run ending at
// the top of pile begins.
func runStart(pile game.Pile) int {
	if len(pile) == 0 {
		return 0
	}
	i := len(pile) - 1
	for i > 0 && fitsTableau(pile[i-1], pile[i]) {
		i--
	}
	return i
}

// moveCapacity is the longest run that can be moved one card at a time
// through free cells and empty columns.
func moveCapacity(freeCells, emptyColumns int) int {
	return (freeCells + 1) << emptyColumns
}

func freeCellGenerate(s *searcher.State) {
	l := s.Layout()
	try := func(m game.Move, rank int) {
		s.TryMove(m, rank, FreeCell.priority, searcher.NoOnMove)
	}

	sources := append(freeCellCells[:len(freeCellCells):len(freeCellCells)], freeCellTableau...)

	var toFoundation []game.Move
	for _, from := range sources {
		top, ok := l[from].Top()
		if !ok {
			continue
		}
		to, ok := foundationTarget(l, freeCellFoundations, top)
		if !ok {
			continue
		}
		m := game.NewMove(from, top, to, game.None)
		if isSafeAutomove(l, freeCellFoundations, top) {
			try(m, rankAutomove)
			return
		}
		toFoundation = append(toFoundation, m)
	}
	for _, m := range toFoundation {
		try(m, rankFoundation)
	}

	freeCells := countEmpty(l, freeCellCells)
	emptyColumns := countEmpty(l, freeCellTableau)
	gap, hasGap := firstEmpty(l, freeCellTableau)

	// Cells back to the tableau
	for _, from := range freeCellCells {
		card, ok := l[from].Top()
		if !ok {
			continue
		}
		for _, to := range freeCellTableau {
			if top, ok := l[to].Top(); ok && fitsTableau(top, card) {
				try(game.NewMove(from, card, to, game.None), rankCellOut)
			}
		}
		if hasGap {
			try(game.NewMove(from, card, gap, game.None), rankCellOut)
		}
	}

	for _, from := range freeCellTableau {
		pile := l[from]
		if len(pile) == 0 {
			continue
		}
		for k := runStart(pile); k < len(pile); k++ {
			card, length := pile[k], len(pile)-k
			for _, to := range freeCellTableau {
				if to == from {
					continue
				}
				if top, ok := l[to].Top(); ok && fitsTableau(top, card) && length <= moveCapacity(freeCells, emptyColumns) {
					try(game.NewMove(from, card, to, game.None), rankMinor)
				}
			}
			if hasGap && k > 0 && length <= moveCapacity(freeCells, emptyColumns-1) {
				try(game.NewMove(from, card, gap, game.None), rankMinor)
			}
		}

		if cell, ok := firstEmpty(l, freeCellCells); ok {
			try(game.NewMove(from, pile[len(pile)-1], cell, game.None), rankMinor)
		}
	}
}
