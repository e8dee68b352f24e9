package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"solitaire/config"
	"solitaire/engine"
	"solitaire/experiments"
	"solitaire/experiments/metrics"
	"solitaire/game"
	"solitaire/searcher"
	"solitaire/variant"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const usage = `usage: solitaire <command> [flags]

commands:
  deal        deal a winnable game and print its solution
  solve       solve a layout read from a YAML file
  play        play a dealt game through a session, following hints
  experiment  solve batches of seeded deals and store the metrics

Run "solitaire <command> -h" for the flags of a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "deal":
		err = runDeal(ctx, args)
	case "solve":
		err = runSolve(ctx, args)
	case "play":
		err = runPlay(ctx, args)
	case "experiment":
		err = runExperiment(ctx, args)
	case "help", "-h", "--help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Error().Err(err).Msg("failed")
		os.Exit(1)
	}
}

// setup parses the command's flags and configures logging.
func setup(ctx context.Context, fs *flag.FlagSet, args []string) (*config.Settings, context.Context, context.CancelFunc, error) {
	config.Flags(fs)
	if err := fs.Parse(args); err != nil {
		return nil, nil, nil, err
	}
	settings, err := config.Load(fs)
	if err != nil {
		return nil, nil, nil, err
	}

	level, _ := settings.LogLevel()
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	settings.Describe(log.Debug()).Str("command", fs.Name()).Msg("settings")

	cancel := context.CancelFunc(func() {})
	if timeout := settings.Timeout(); timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, timeout)
	}
	return settings, ctx, cancel, nil
}

func runDeal(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("deal", flag.ExitOnError)
	seed := fs.Uint64("seed", 0, "shuffle seed, 0 for random")
	out := fs.String("o", "", "write the dealt layout to this YAML file")
	settings, ctx, cancel, err := setup(ctx, fs, args)
	if err != nil {
		return err
	}
	defer cancel()
	kind, _ := settings.Variant()

	session, result, err := engine.Deal(ctx, kind, settings.DealOptions(*seed),
		engine.WithSolver(settings.Solver()), engine.WithDealLimit(settings.DealLimit()))
	if session == nil {
		return err
	}
	defer session.Close()
	if err != nil {
		log.Warn().Err(err).Msg("dealing an unverified game")
	}

	fmt.Printf("%s seed %d (attempt %d)\n%s", kind, result.Seed, result.Attempts, session.Layout())
	if *out != "" {
		if err := writeLayout(*out, kind, session.Layout()); err != nil {
			return err
		}
	}
	if moves, ok := session.Solution(); ok {
		printMoves(kind.Board(), moves)
	}
	return nil
}

func runSolve(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("solve", flag.ExitOnError)
	path := fs.String("layout", "", "YAML layout file")
	trace := fs.Bool("trace", false, "log every expanded node")
	settings, ctx, cancel, err := setup(ctx, fs, args)
	if err != nil {
		return err
	}
	defer cancel()
	if *path == "" {
		return errors.New("solve needs -layout")
	}
	kind, _ := settings.Variant()

	kind, layout, err := readLayout(*path, kind)
	if err != nil {
		return err
	}
	kind.SetRedeals(layout, settings.DealLimit())

	extra := []searcher.Option{searcher.WithMetrics()}
	if *trace {
		extra = append(extra, searcher.WithTrace(func(node searcher.Node, l game.Layout) {
			log.Trace().Int("parent", node.Parent).Str("move", kind.Board().Describe(node.Move)).
				Uint64("layout", l.Hash()).Msg("expand")
		}))
	}
	moves, metric, err := kind.Solve(ctx, settings.Solver(extra...), layout)
	log.Info().Str("outcome", string(metric.Outcome)).Int("expanded", metric.Expanded).
		Int("nodes", metric.Nodes).Dur("duration", metric.Duration).Msg("search finished")
	if err != nil {
		return err
	}
	printMoves(kind.Board(), moves)
	return nil
}

// observer answers unwinnable positions by rolling back.
type observer struct{}

func (observer) Resolved(r engine.Resolution) {
	log.Debug().Uint64("generation", r.Generation).Int("at_move", r.AtMove).Bool("solved", r.Solved()).Msg("resolved")
}

func (observer) Unsolvable(atMove int) engine.Decision {
	fmt.Printf("no win possible after move %d, rolling back\n", atMove)
	return engine.Rollback
}

func (observer) Won() { fmt.Println("won!") }

func runPlay(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("play", flag.ExitOnError)
	seed := fs.Uint64("seed", 0, "shuffle seed, 0 for random")
	takeBack := fs.Int("take-back", 0, "undo and redo every n moves, 0 to never")
	settings, ctx, cancel, err := setup(ctx, fs, args)
	if err != nil {
		return err
	}
	defer cancel()
	kind, _ := settings.Variant()
	board := kind.Board()

	session, _, err := engine.Deal(ctx, kind, settings.DealOptions(*seed),
		engine.WithObserver(observer{}), engine.WithSolver(settings.Solver()), engine.WithDealLimit(settings.DealLimit()))
	if session == nil {
		return err
	}
	defer session.Close()

	for !session.Won() {
		hint, ok := session.Hint()
		if !ok {
			if !session.Pending() {
				return fmt.Errorf("no winning line from move %d", len(session.Moves()))
			}
			if err := session.Await(ctx); err != nil {
				return err
			}
			continue
		}
		if err := session.Apply(hint); err != nil {
			return err
		}
		n := len(session.Moves())
		fmt.Printf("%3d %s\n", n, board.Describe(hint))

		if *takeBack > 0 && n%*takeBack == 0 && !session.Won() {
			if err := session.Undo(); err != nil {
				return err
			}
			if err := session.Redo(); err != nil {
				return err
			}
		}
	}
	fmt.Printf("%d moves, %d deals\n", len(session.Moves()), session.Deals())
	return nil
}

func runExperiment(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("experiment", flag.ExitOnError)
	all := fs.Bool("all", false, "run every variant instead of -variant")
	settings, ctx, cancel, err := setup(ctx, fs, args)
	if err != nil {
		return err
	}
	defer cancel()

	kinds := variant.Kinds()
	if !*all {
		kind, _ := settings.Variant()
		kinds = []variant.Kind{kind}
	}

	var w metrics.Writer
	switch settings.Store() {
	case "sqlite":
		w, err = metrics.NewSQLiteWriter(filepath.Join(settings.OutputDir(), "results.db"), uuid.NewString())
	default:
		w, err = metrics.NewCSVWriter(settings.OutputDir())
	}
	if err != nil {
		return fmt.Errorf("failed to create experiment writer: %w", err)
	}
	defer w.Close()

	_, summaries, err := experiments.Run(ctx, experiments.Config{
		Variants: kinds,
		Games:    settings.ExperimentGames(),
		Workers:  settings.ExperimentWorkers(),
		Seed:     settings.ExperimentSeed(),
		Solver:   settings.SolverOptions(),
	}, w)
	if err != nil {
		return err
	}
	for _, s := range summaries {
		fmt.Printf("%-9s solved %d/%d  mean expanded %.0f  mean duration %s\n",
			s.Variant, s.Solved, s.Games, s.MeanExpanded, s.MeanDuration)
	}
	fmt.Printf("results in %s\n", w.Location())
	return nil
}

// readLayout reads a layout file. A variant named in the file takes
// precedence over kind.
func readLayout(path string, kind variant.Kind) (variant.Kind, game.Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return kind, nil, err
	}
	layout, name, err := game.ReadLayout(bytes.NewReader(data), kind.Board())
	if err == nil && (name == "" || name == kind.String()) {
		return kind, layout, nil
	}
	if name == "" {
		return kind, nil, err
	}
	fileKind, perr := variant.ParseKind(name)
	if perr != nil {
		return kind, nil, perr
	}
	layout, _, err = game.ReadLayout(bytes.NewReader(data), fileKind.Board())
	return fileKind, layout, err
}

func writeLayout(path string, kind variant.Kind, layout game.Layout) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return game.WriteLayout(f, kind.Board(), kind.String(), layout)
}

func printMoves(board *game.Board, moves []game.Move) {
	fmt.Printf("solution in %d moves:\n", len(moves))
	for i, m := range moves {
		fmt.Printf("%3d %s\n", i+1, board.Describe(m))
	}
}
