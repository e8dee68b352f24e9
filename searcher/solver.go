package searcher

import (
	"context"
	"errors"
	"fmt"

	"solitaire/experiments/metrics"
	"solitaire/game"

	"github.com/rs/zerolog/log"
)

const (
	DefaultBudget       = 15000
	DefaultPollInterval = 200
	DefaultBuckets      = 53
)

var (
	ErrNoSolution         = errors.New("no solution found")
	ErrBudgetExhausted    = fmt.Errorf("%w: node budget exhausted", ErrNoSolution)
	ErrCancelled          = errors.New("search cancelled")
	ErrPriorityOutOfRange = errors.New("priority out of range")
	ErrCorruptState       = errors.New("corrupt state snapshot")
)

type Option func(s *Solver)

// Solver runs a bounded best-first search over layouts. A Solver holds only
// configuration and may be shared by concurrent searches.
type Solver struct {
	budget       int
	pollInterval int
	buckets      int
	withMetrics  bool
	trace        func(node Node, layout game.Layout)
}

// WithBudget caps the number of node expansions.
func WithBudget(expansions int) Option {
	return func(s *Solver) {
		if expansions > 0 {
			s.budget = expansions
		}
	}
}

// WithPollInterval sets how many expansions pass between cancellation checks.
func WithPollInterval(expansions int) Option {
	return func(s *Solver) {
		if expansions > 0 {
			s.pollInterval = expansions
		}
	}
}

// WithBuckets sets the number of priority buckets. Priorities must fall in
// [0, buckets).
func WithBuckets(buckets int) Option {
	return func(s *Solver) {
		if buckets > 0 {
			s.buckets = buckets
		}
	}
}

func WithMetrics() Option {
	return func(s *Solver) {
		s.withMetrics = true
	}
}

// WithTrace calls fn for every node before it is expanded.
func WithTrace(fn func(node Node, layout game.Layout)) Option {
	return func(s *Solver) {
		s.trace = fn
	}
}

func NewSolver(options ...Option) *Solver {
	s := &Solver{ // Default values
		budget:       DefaultBudget,
		pollInterval: DefaultPollInterval,
		buckets:      DefaultBuckets,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

func (s *Solver) Budget() int { return s.budget }

// Solve searches for a move sequence from layout to a won layout.
//
// It returns ErrNoSolution when the frontier empties, ErrBudgetExhausted
// when the expansion budget runs out, ErrCancelled when ctx is done and a
// *game.MoveError when the generator proposes a move that does not fit.
// A layout that is already won yields an empty history.
func Solve(ctx context.Context, layout game.Layout, generate MoveGenerator, isWon WinPredicate) ([]game.Move, error) {
	moves, _, err := NewSolver().Solve(ctx, layout, generate, isWon)
	return moves, err
}

func (s *Solver) Solve(ctx context.Context, layout game.Layout, generate MoveGenerator, isWon WinPredicate) ([]game.Move, metrics.SearchMetric, error) {
	collector := metrics.NewDummyCollector()
	if s.withMetrics {
		collector = metrics.NewCollector()
	}
	collector.Start(s.budget)

	state := newState(layout, s.buckets, collector)
	moves, err := s.search(ctx, state, generate, isWon)

	outcome := metrics.Solved
	switch {
	case err == nil:
	case errors.Is(err, ErrBudgetExhausted):
		outcome = metrics.OutOfTime
	case errors.Is(err, ErrNoSolution):
		outcome = metrics.Exhausted
	case errors.Is(err, ErrCancelled):
		outcome = metrics.Cancelled
	default:
		outcome = metrics.Failed
	}
	metric := collector.Complete(outcome, len(moves))

	log.Debug().
		Str("outcome", string(outcome)).
		Int("nodes", len(state.nodes)).
		Int("states", len(state.states)).
		Int("moves", len(moves)).
		Msg("solver: finished")
	return moves, metric, err
}

func (s *Solver) search(ctx context.Context, state *State, generate MoveGenerator, isWon WinPredicate) ([]game.Move, error) {
	if isWon(state) {
		return []game.Move{}, nil
	}

	// Seed the frontier from the root layout
	generate(state)
	if err := state.Err(); err != nil {
		return nil, err
	}

	nQExpand, lastQ := 0, 0
	for expanded := 0; expanded < s.budget; expanded++ {
		if expanded%s.pollInterval == 0 && ctx.Err() != nil {
			return nil, fmt.Errorf("%w after %d expansions: %w", ErrCancelled, expanded, ctx.Err())
		}

		q := selectBucket(state.queues, nQExpand, lastQ)
		if q < 0 {
			log.Debug().Int("expanded", expanded).Int("n_q_expand", nQExpand).Msg("solver: frontier empty")
			return nil, ErrNoSolution
		}

		node := state.queues[q][0]
		state.queues[q] = state.queues[q][1:]
		if err := state.restore(node); err != nil {
			return nil, err
		}
		if s.trace != nil {
			s.trace(state.nodes[node], state.piles)
		}

		if isWon(state) {
			log.Debug().Int("expanded", expanded).Int("n_q_expand", nQExpand).Msg("solver: found solution")
			return state.history(node), nil
		}

		state.parent = node
		state.qIndex = q
		generate(state)
		if err := state.Err(); err != nil {
			return nil, err
		}
		state.metrics.AddExpansion(q)

		if q == lastQ {
			nQExpand++
		} else {
			lastQ, nQExpand = q, 0
		}
	}

	log.Debug().Int("budget", s.budget).Int("n_q_expand", nQExpand).Msg("solver: met node limit")
	return nil, ErrBudgetExhausted
}

// selectBucket picks the bucket to expand next, or -1 when all are empty.
// The highest non-empty bucket is taken while it has been expanded fewer
// consecutive times than its own index. Once that run is spent the search
// drops to the first non-empty bucket below the last one expanded, so a
// single promising line cannot starve the rest of the frontier.
func selectBucket(queues [][]int, nQExpand, lastQ int) int {
	q := -1
	highest := true
	for i := len(queues) - 1; i >= 0; i-- {
		if len(queues[i]) == 0 {
			continue
		}
		q = i
		if (highest && nQExpand < i) || i < lastQ || lastQ == 0 {
			break
		}
		highest = false
	}
	return q
}
