// Package config resolves run settings from defaults, an optional YAML file,
// SOLITAIRE_* environment variables and command-line flags, in increasing
// order of precedence.
package config

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"solitaire/engine"
	"solitaire/searcher"
	"solitaire/variant"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const (
	NodeBudget        = "node-budget"
	PollInterval      = "poll-interval"
	Buckets           = "buckets"
	DealAttempts      = "deal-attempts"
	DealLimit         = "deal-limit"
	Variant           = "variant"
	LogLevel          = "log-level"
	ExperimentGames   = "experiment-games"
	ExperimentWorkers = "experiment-workers"
	ExperimentSeed    = "experiment-seed"
	OutputDir         = "output-dir"
	Store             = "store"
	Timeout           = "timeout"
	Config            = "config"
)

const EnvPrefix = "SOLITAIRE"

var defaults = map[string]any{
	NodeBudget:        searcher.DefaultBudget,
	PollInterval:      searcher.DefaultPollInterval,
	Buckets:           searcher.DefaultBuckets,
	DealAttempts:      engine.DefaultDealAttempts,
	DealLimit:         engine.DefaultDealLimit,
	Variant:           variant.Klondike.String(),
	LogLevel:          zerolog.InfoLevel.String(),
	ExperimentGames:   20,
	ExperimentWorkers: 4,
	ExperimentSeed:    1,
	OutputDir:         "experiments/results",
	Store:             "csv",
	Timeout:           "0s",
}

type Settings struct {
	v *viper.Viper
}

// Flags registers every setting on fs with its default, so that -h lists
// them. Only flags set explicitly override the other sources.
func Flags(fs *flag.FlagSet) {
	fs.String(Config, "", "YAML file with settings")
	fs.Int(NodeBudget, searcher.DefaultBudget, "solver node expansion budget")
	fs.Int(PollInterval, searcher.DefaultPollInterval, "expansions between cancellation checks")
	fs.Int(Buckets, searcher.DefaultBuckets, "solver priority buckets")
	fs.Int(DealAttempts, engine.DefaultDealAttempts, "reshuffles before giving up on a winnable deal")
	fs.Int(DealLimit, engine.DefaultDealLimit, "Klondike stock recycles allowed per game")
	fs.String(Variant, variant.Klondike.String(), "klondike, freecell or tripeaks")
	fs.String(LogLevel, zerolog.InfoLevel.String(), "trace, debug, info, warn or error")
	fs.Int(ExperimentGames, 20, "deals per variant in an experiment")
	fs.Int(ExperimentWorkers, 4, "parallel experiment solves")
	fs.Uint64(ExperimentSeed, 1, "first experiment seed")
	fs.String(OutputDir, "experiments/results", "directory for experiment results")
	fs.String(Store, "csv", "experiment store: csv or sqlite")
	fs.Duration(Timeout, 0, "cancel a solve after this long, 0 for no limit")
}

// Load builds the settings. fs must have been parsed; it may be nil.
func Load(fs *flag.FlagSet) (*Settings, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	explicit := map[string]string{}
	if fs != nil {
		fs.Visit(func(f *flag.Flag) {
			explicit[f.Name] = f.Value.String()
		})
	}

	if path := explicit[Config]; path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	for name, value := range explicit {
		if name != Config {
			v.Set(name, value)
		}
	}

	s := &Settings{v: v}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Settings) validate() error {
	if _, err := s.Variant(); err != nil {
		return err
	}
	if _, err := s.LogLevel(); err != nil {
		return err
	}
	switch s.Store() {
	case "csv", "sqlite":
	default:
		return fmt.Errorf("unknown store %q", s.Store())
	}
	for _, key := range []string{NodeBudget, PollInterval, Buckets, DealAttempts, ExperimentGames, ExperimentWorkers} {
		if s.v.GetInt(key) <= 0 {
			return fmt.Errorf("%s must be positive, got %d", key, s.v.GetInt(key))
		}
	}
	if s.Timeout() < 0 {
		return fmt.Errorf("%s must not be negative", Timeout)
	}
	if s.DealLimit() < 0 {
		return fmt.Errorf("%s must not be negative", DealLimit)
	}
	return nil
}

func (s *Settings) Variant() (variant.Kind, error) { return variant.ParseKind(s.v.GetString(Variant)) }

func (s *Settings) LogLevel() (zerolog.Level, error) {
	return zerolog.ParseLevel(s.v.GetString(LogLevel))
}

func (s *Settings) NodeBudget() int        { return s.v.GetInt(NodeBudget) }
func (s *Settings) PollInterval() int      { return s.v.GetInt(PollInterval) }
func (s *Settings) Buckets() int           { return s.v.GetInt(Buckets) }
func (s *Settings) DealAttempts() uint     { return s.v.GetUint(DealAttempts) }
func (s *Settings) DealLimit() int         { return s.v.GetInt(DealLimit) }
func (s *Settings) ExperimentGames() int   { return s.v.GetInt(ExperimentGames) }
func (s *Settings) ExperimentWorkers() int { return s.v.GetInt(ExperimentWorkers) }
func (s *Settings) ExperimentSeed() uint64 { return s.v.GetUint64(ExperimentSeed) }
func (s *Settings) OutputDir() string      { return s.v.GetString(OutputDir) }
func (s *Settings) Store() string          { return strings.ToLower(s.v.GetString(Store)) }

// SolverOptions turns the search settings into solver options.
func (s *Settings) SolverOptions(extra ...searcher.Option) []searcher.Option {
	return append([]searcher.Option{
		searcher.WithBudget(s.NodeBudget()),
		searcher.WithPollInterval(s.PollInterval()),
		searcher.WithBuckets(s.Buckets()),
	}, extra...)
}

func (s *Settings) Solver(extra ...searcher.Option) *searcher.Solver {
	return searcher.NewSolver(s.SolverOptions(extra...)...)
}

// DealOptions returns engine deal options for seed, zero meaning random.
func (s *Settings) DealOptions(seed uint64) engine.DealOptions {
	return engine.DealOptions{
		Seed:     seed,
		Attempts: s.DealAttempts(),
		Solver:   s.Solver(),
	}
}

// Describe lists the resolved settings for logging.
func (s *Settings) Describe(e *zerolog.Event) *zerolog.Event {
	return e.Int(NodeBudget, s.NodeBudget()).
		Int(PollInterval, s.PollInterval()).
		Int(Buckets, s.Buckets()).
		Uint(DealAttempts, s.DealAttempts()).
		Int(DealLimit, s.DealLimit()).
		Str(Variant, s.v.GetString(Variant)).
		Str(Store, s.Store())
}

// Timeout is how long a CLI solve may run before it is cancelled, zero
// meaning no limit.
func (s *Settings) Timeout() time.Duration { return s.v.GetDuration(Timeout) }
