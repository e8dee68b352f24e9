package searcher

import (
	"errors"
	"fmt"
	"slices"

	"solitaire/experiments/metrics"
	"solitaire/game"
)

// Node is a discovered search state. Parent is -1 for moves generated from
// the root layout.
type Node struct {
	Parent int
	Move   game.Move
	State  int // Index into the state set
}

// MoveGenerator proposes candidate moves by calling State.TryMove.
type MoveGenerator func(s *State)

// WinPredicate reports whether the current layout is won.
type WinPredicate func(s *State) bool

// PriorityFunc scores a layout into a bucket index. It is evaluated on the
// layout reached by the candidate move.
type PriorityFunc func(s *State) int

// OnMoveFunc is a variant hook run after a move is applied (undo false) and
// before it is reversed (undo true). Piles it turns over are recorded in
// the move's Flips so the reverse call can restore them.
type OnMoveFunc func(m *game.Move, piles game.Layout, undo bool)

// NoOnMove is the hook for variants without side effects.
func NoOnMove(*game.Move, game.Layout, bool) {}

// State is the working memory of one search.
type State struct {
	piles   game.Layout
	seen    map[string]int
	states  []string
	nodes   []Node
	queues  [][]int
	qIndex  int
	parent  int
	err     error
	metrics metrics.Collector
}

func newState(layout game.Layout, buckets int, collector metrics.Collector) *State {
	return &State{
		piles:   layout.Clone(),
		seen:    make(map[string]int),
		queues:  make([][]int, buckets),
		parent:  -1,
		metrics: collector,
	}
}

// NewState prepares a state for driving a generator by hand.
func NewState(layout game.Layout, buckets int) *State {
	return newState(layout, buckets, metrics.NewDummyCollector())
}

// Layout returns the live piles. Generators must leave them as they found
// them.
func (s *State) Layout() game.Layout { return s.piles }

func (s *State) Pile(i int) game.Pile { return s.piles[i] }

func (s *State) Nodes() []Node { return s.nodes }

// Len returns the number of nodes created so far.
func (s *State) Len() int { return len(s.nodes) }

func (s *State) Node(i int) Node { return s.nodes[i] }

// States returns the number of distinct layouts discovered.
func (s *State) States() int { return len(s.states) }

// Bucket returns the node indices queued at priority p, front first.
func (s *State) Bucket(p int) []int { return s.queues[p] }

// Parent is the node being expanded, or -1 while seeding from the root.
func (s *State) Parent() int { return s.parent }

// Err returns the first contract violation hit by TryMove.
func (s *State) Err() error { return s.err }

func (s *State) fail(err error) {
	if s.err == nil {
		s.err = err
	}
}

// TryMove applies m, runs the on-move hook, snapshots the result and
// reverts. A snapshot not seen before becomes a new node filed into the
// bucket chosen by priority. Within a bucket, priorities above the bucket
// being expanded go to the front, others are inserted at len/rank so that
// higher ranks land nearer the front.
func (s *State) TryMove(m game.Move, rank int, priority PriorityFunc, onMove OnMoveFunc) bool {
	if s.err != nil {
		return false
	}
	if onMove == nil {
		onMove = NoOnMove
	}

	m.Flips = nil
	if err := s.piles.Apply(&m); err != nil {
		s.fail(err)
		return false
	}
	onMove(&m, s.piles, false)
	key := s.piles.Key()
	_, seen := s.seen[key]
	p := 0
	if !seen {
		p = priority(s)
	}
	onMove(&m, s.piles, true)
	if err := s.piles.Undo(&m); err != nil {
		s.fail(err)
		return false
	}

	if seen {
		return false
	}
	if p < 0 || p >= len(s.queues) {
		s.fail(fmt.Errorf("%w: %d not in [0, %d)", ErrPriorityOutOfRange, p, len(s.queues)))
		return false
	}

	s.seen[key] = len(s.states)
	s.states = append(s.states, key)
	idx := len(s.nodes)
	s.nodes = append(s.nodes, Node{Parent: s.parent, Move: m, State: len(s.states) - 1})
	s.metrics.AddNode()

	at := 0
	if p <= s.qIndex {
		at = len(s.queues[p]) / max(rank, 1)
	}
	s.queues[p] = slices.Insert(s.queues[p], at, idx)
	return true
}

// restore loads the layout of a node into the live piles.
func (s *State) restore(node int) error {
	layout, err := game.LayoutFromKey(s.states[s.nodes[node].State])
	if err != nil {
		return errors.Join(ErrCorruptState, err)
	}
	s.piles = layout
	return nil
}

// history walks parent links back to the root.
func (s *State) history(node int) []game.Move {
	var moves []game.Move
	for i := node; i >= 0; i = s.nodes[i].Parent {
		moves = append(moves, s.nodes[i].Move.Clone())
	}
	slices.Reverse(moves)
	return moves
}
