package engine

import (
	"context"

	"solitaire/game"
)

type resolveJob struct {
	generation uint64
	atMove     int
	layout     game.Layout
}

// runResolve solves one job and hands the result to the single-slot
// results channel. A worker whose context is cancelled while waiting for
// the slot gives up without sending.
func runResolve(ctx context.Context, solve SolveFunc, job resolveJob, results chan<- Resolution) {
	moves, err := solve(ctx, job.layout)
	r := Resolution{
		Generation: job.generation,
		AtMove:     job.atMove,
		Moves:      moves,
		Err:        err,
	}
	select {
	case results <- r:
	case <-ctx.Done():
	}
}

// solveAsync runs solve on a background worker and waits for it, so that a
// caller blocked here can still be interrupted through ctx.
func solveAsync(ctx context.Context, solve SolveFunc, layout game.Layout) ([]game.Move, error) {
	results := make(chan Resolution, 1)
	go runResolve(ctx, solve, resolveJob{layout: layout}, results)
	select {
	case r := <-results:
		return r.Moves, r.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
