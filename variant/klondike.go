package variant

import (
	"solitaire/game"
	"solitaire/searcher"
)

// Klondike piles: seven tableau columns, four foundations, waste, stock and
// one face-down joker for every redeal still allowed.
const (
	klondikeWaste   = 11
	klondikeStock   = 12
	klondikeRedeals = 13
)

// DefaultRedeals is how many times a Klondike waste may be turned back into
// the stock.
const DefaultRedeals = 3

var redealToken = game.RedJoker.Flip()

var (
	klondikeTableau     = []int{0, 1, 2, 3, 4, 5, 6}
	klondikeFoundations = []int{7, 8, 9, 10}

	klondikeBoard = game.NewBoard(append(append(game.Group("tableau", 7), game.Group("foundation", 4)...), "waste", "stock", "redeals")...)
)

func klondikeDeal(deck []game.Card) game.Layout {
	l := game.NewLayout(klondikeBoard.Len())
	next := 0
	for i, t := range klondikeTableau {
		for j := 0; j <= i; j++ {
			c := deck[next].ID()
			if j < i {
				c = c.Flip()
			}
			l[t] = append(l[t], c)
			next++
		}
	}
	for ; next < len(deck); next++ {
		l[klondikeStock] = append(l[klondikeStock], deck[next].ID().Flip())
	}
	Klondike.SetRedeals(l, DefaultRedeals)
	return l
}

func klondikeOnMove(m *game.Move, piles game.Layout, undo bool) {
	recycle := Klondike.IsRecycle(*m)
	if undo {
		if recycle {
			piles[klondikeRedeals] = append(piles[klondikeRedeals], redealToken)
		}
		hideRevealed(m, piles)
		return
	}
	m.Flips = nil
	if recycle {
		if n := len(piles[klondikeRedeals]); n > 0 {
			piles[klondikeRedeals] = piles[klondikeRedeals][:n-1]
		}
	}
	if m.Origin < klondikeFoundations[0] {
		revealTop(m, piles, m.Origin)
	}
}

func klondikeGenerate(s *searcher.State) {
	l := s.Layout()
	try := func(m game.Move, rank int) {
		s.TryMove(m, rank, Klondike.priority, klondikeOnMove)
	}

	// Foundation plays; a safe one is the only candidate offered
	var toFoundation []game.Move
	for _, from := range append(klondikeTableau[:len(klondikeTableau):len(klondikeTableau)], klondikeWaste) {
		top, ok := l[from].Top()
		if !ok || top.FaceDown() {
			continue
		}
		to, ok := foundationTarget(l, klondikeFoundations, top)
		if !ok {
			continue
		}
		m := game.NewMove(from, top, to, game.None)
		if isSafeAutomove(l, klondikeFoundations, top) {
			try(m, rankAutomove)
			return
		}
		toFoundation = append(toFoundation, m)
	}
	for _, m := range toFoundation {
		try(m, rankFoundation)
	}

	if top, ok := l[klondikeStock].Top(); ok {
		try(game.NewMove(klondikeStock, top, klondikeWaste, game.Flip), rankDraw)
	}

	klondikeTableauMoves(l, try)

	if len(l[klondikeStock]) == 0 && len(l[klondikeWaste]) > 0 && Klondike.Redeals(l) > 0 {
		try(game.NewMove(klondikeWaste, l[klondikeWaste][0], klondikeStock, game.Flip), rankMinor)
	}
}

func klondikeTableauMoves(l game.Layout, try func(game.Move, int)) {
	for _, from := range klondikeTableau {
		pile := l[from]
		start := pile.FaceUp()
		for k := start; k < len(pile); k++ {
			card := pile[k]
			for _, to := range klondikeTableau {
				if to == from {
					continue
				}
				top, ok := l[to].Top()
				switch {
				case !ok:
					// Only kings go to an empty column, and only if that frees something
					if card.Rank() != game.King || k == 0 {
						continue
					}
					if k == start {
						try(game.NewMove(from, card, to, game.None), rankKingToGap)
					}
				case fitsTableau(top, card):
					switch {
					case k == start && k > 0:
						try(game.NewMove(from, card, to, game.None), rankExpose)
					case k == start:
						try(game.NewMove(from, card, to, game.None), rankClearPile)
					default:
						// Splitting a run only helps if the card left behind can go up
						if _, ok := foundationTarget(l, klondikeFoundations, pile[k-1]); ok {
							try(game.NewMove(from, card, to, game.None), rankPlay)
						}
					}
				}
			}
		}
	}

	if card, ok := l[klondikeWaste].Top(); ok {
		for _, to := range klondikeTableau {
			top, ok := l[to].Top()
			switch {
			case !ok && card.Rank() == game.King:
				try(game.NewMove(klondikeWaste, card, to, game.None), rankKingToGap)
			case ok && fitsTableau(top, card):
				try(game.NewMove(klondikeWaste, card, to, game.None), rankPlay)
			}
		}
	}

	for _, from := range klondikeFoundations {
		card, ok := l[from].Top()
		if !ok {
			continue
		}
		for _, to := range klondikeTableau {
			if top, ok := l[to].Top(); ok && fitsTableau(top, card) {
				try(game.NewMove(from, card, to, game.None), rankMinor)
			}
		}
	}
}
