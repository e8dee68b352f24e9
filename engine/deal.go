package engine

import (
	"context"
	"errors"
	"fmt"
	"math"

	"solitaire/game"
	"solitaire/searcher"
	"solitaire/variant"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog/log"
	"lukechampine.com/frand"
)

const DefaultDealAttempts = 3

// DealOptions controls how a new game is dealt.
type DealOptions struct {
	// Seed of the first shuffle; later attempts use Seed+1, Seed+2 and so
	// on. Zero picks a random seed.
	Seed     uint64
	Attempts uint
	Solver   *searcher.Solver
}

// DealResult describes the deal a session was started from.
type DealResult struct {
	Seed     uint64
	Attempts int
	Verified bool
}

// Deal shuffles and lays out a new game, solving each candidate on a
// background worker and reshuffling up to Attempts times until one is
// winnable. If every attempt fails the last deal is still returned, along
// with an error wrapping searcher.ErrNoSolution, so the caller may offer it
// anyway. Cancelling ctx aborts between or during attempts. Candidates are
// solved under the deal limit set by options.
func Deal(ctx context.Context, kind variant.Kind, opts DealOptions, options ...SessionOption) (*Session, DealResult, error) {
	if opts.Seed == 0 {
		opts.Seed = frand.Uint64n(math.MaxUint64) + 1
	}
	if opts.Attempts == 0 {
		opts.Attempts = DefaultDealAttempts
	}
	if opts.Solver == nil {
		opts.Solver = searcher.NewSolver()
	}
	solve := func(ctx context.Context, layout game.Layout) ([]game.Move, error) {
		moves, _, err := kind.Solve(ctx, opts.Solver, layout)
		return moves, err
	}

	limit := dealLimit(kind, options)

	result := DealResult{}
	var layout game.Layout
	moves, err := retry.DoWithData(
		func() ([]game.Move, error) {
			result.Seed = opts.Seed + uint64(result.Attempts)
			result.Attempts++
			layout = kind.DealSeed(result.Seed)
			kind.SetRedeals(layout, limit)

			moves, err := solveAsync(ctx, solve, layout)
			if err != nil && !errors.Is(err, searcher.ErrNoSolution) {
				return nil, retry.Unrecoverable(err)
			}
			return moves, err
		},
		retry.Context(ctx),
		retry.Attempts(opts.Attempts),
		retry.Delay(0),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			if n+1 >= opts.Attempts {
				return
			}
			log.Info().Str("variant", kind.String()).Uint64("seed", result.Seed).
				Uint("attempt", n+1).Err(err).Msg("deal not verified, reshuffling")
		}),
	)

	switch {
	case err == nil:
		result.Verified = true
		log.Info().Str("variant", kind.String()).Uint64("seed", result.Seed).
			Int("attempts", result.Attempts).Int("solution", len(moves)).Msg("deal verified")
		return NewSession(ctx, kind, layout, append([]SessionOption{WithSolution(moves)}, options...)...), result, nil
	case errors.Is(err, searcher.ErrNoSolution):
		session := NewSession(ctx, kind, layout, options...)
		return session, result, fmt.Errorf("no winnable deal in %d attempts: %w", result.Attempts, err)
	default:
		return nil, result, fmt.Errorf("failed to deal: %w", err)
	}
}

// dealLimit reports the deal limit a session built with options would use.
func dealLimit(kind variant.Kind, options []SessionOption) int {
	s := &Session{kind: kind, dealLimit: DefaultDealLimit}
	for _, option := range options {
		option(s)
	}
	return s.dealLimit
}
