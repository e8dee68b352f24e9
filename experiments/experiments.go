// Package experiments measures solver behaviour over batches of seeded
// deals and stores the results.
package experiments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"solitaire/experiments/metrics"
	"solitaire/searcher"
	"solitaire/variant"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

type Config struct {
	Variants []variant.Kind
	Games    int    // Per variant
	Workers  int    // Concurrent solves
	Seed     uint64 // Seed of the first deal; deal i uses Seed+i
	Solver   []searcher.Option
}

// Run deals Games seeded layouts per variant, solves each with metrics on
// up to Workers goroutines and hands the records and per-variant summaries
// to w. Records are ordered by variant, then seed.
func Run(ctx context.Context, cfg Config, w metrics.Writer) ([]metrics.DealRecord, []metrics.Summary, error) {
	if cfg.Games <= 0 || len(cfg.Variants) == 0 {
		return nil, nil, errors.New("experiment needs at least one variant and one game")
	}
	solver := searcher.NewSolver(append(cfg.Solver, searcher.WithMetrics())...)

	log.Info().Int("variants", len(cfg.Variants)).Int("games", cfg.Games).Int("workers", cfg.Workers).
		Int("budget", solver.Budget()).Msg("starting experiment...")
	start := time.Now()

	records, err := solveAll(ctx, cfg, solver)
	if err != nil {
		return nil, nil, err
	}
	summaries := Summarize(records)
	for _, s := range summaries {
		log.Info().Str("variant", s.Variant).Int("solved", s.Solved).Int("games", s.Games).
			Float64("mean_expanded", s.MeanExpanded).Dur("mean_duration", s.MeanDuration).Msg("variant summary")
	}
	log.Info().Dur("elapsed", time.Since(start)).Msg("completed experiment")

	if w == nil {
		return records, summaries, nil
	}
	if err := w.WriteDealRecords(records); err != nil {
		return records, summaries, fmt.Errorf("failed to write deal records: %w", err)
	}
	log.Info().Str("location", w.Location()).Msg("stored deal records")
	if err := w.WriteSummaries(summaries); err != nil {
		return records, summaries, fmt.Errorf("failed to write summaries: %w", err)
	}
	log.Info().Str("location", w.Location()).Msg("stored summaries")
	return records, summaries, nil
}

func solveAll(ctx context.Context, cfg Config, solver *searcher.Solver) ([]metrics.DealRecord, error) {
	records := make([]metrics.DealRecord, len(cfg.Variants)*cfg.Games)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Workers, 1))

	for vi, kind := range cfg.Variants {
		for i := 0; i < cfg.Games; i++ {
			id := vi*cfg.Games + i
			seed := cfg.Seed + uint64(i)
			g.Go(func() error {
				record, err := solveDeal(gctx, solver, kind, seed)
				if err != nil {
					return err
				}
				record.ID = id + 1
				records[id] = record
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}

// solveDeal solves one deal. Failing to find a solution is a result, not an
// error.
func solveDeal(ctx context.Context, solver *searcher.Solver, kind variant.Kind, seed uint64) (metrics.DealRecord, error) {
	layout := kind.DealSeed(seed)
	_, metric, err := kind.Solve(ctx, solver, layout)
	if err != nil && !errors.Is(err, searcher.ErrNoSolution) {
		return metrics.DealRecord{}, fmt.Errorf("%s seed %d: %w", kind, seed, err)
	}
	log.Debug().Str("variant", kind.String()).Uint64("seed", seed).Str("outcome", string(metric.Outcome)).
		Int("expanded", metric.Expanded).Msg("deal solved")

	return metrics.DealRecord{
		DealMetric: metrics.DealMetric{
			Variant:      kind.String(),
			Seed:         seed,
			Hash:         layout.Hash(),
			Attempts:     1,
			SearchMetric: metric,
		},
	}, nil
}

// Summarize aggregates records per variant, in order of first appearance.
func Summarize(records []metrics.DealRecord) []metrics.Summary {
	groups := lo.GroupBy(records, func(r metrics.DealRecord) string { return r.Variant })
	order := lo.Uniq(lo.Map(records, func(r metrics.DealRecord, _ int) string { return r.Variant }))

	return lo.Map(order, func(name string, _ int) metrics.Summary {
		group := groups[name]
		solved := lo.Filter(group, func(r metrics.DealRecord, _ int) bool { return r.Outcome == metrics.Solved })
		n := float64(len(group))

		s := metrics.Summary{
			Variant:      name,
			Games:        len(group),
			Solved:       len(solved),
			SolveRate:    float64(len(solved)) / n,
			MeanExpanded: float64(lo.SumBy(group, func(r metrics.DealRecord) int { return r.Expanded })) / n,
			MeanNodes:    float64(lo.SumBy(group, func(r metrics.DealRecord) int { return r.Nodes })) / n,
			MeanDuration: lo.SumBy(group, func(r metrics.DealRecord) time.Duration { return r.Duration }) / time.Duration(len(group)),
		}
		s.BudgetExceeded = lo.CountBy(group, func(r metrics.DealRecord) bool { return r.Outcome == metrics.OutOfTime })
		if len(solved) > 0 {
			s.MeanSolution = float64(lo.SumBy(solved, func(r metrics.DealRecord) int { return r.SolutionLength })) / float64(len(solved))
		}
		return s
	})
}
