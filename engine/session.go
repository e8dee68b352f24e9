package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"solitaire/game"
	"solitaire/searcher"
	"solitaire/variant"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const DefaultDealLimit = variant.DefaultRedeals

var (
	ErrNothingToUndo   = errors.New("nothing to undo")
	ErrNothingToRedo   = errors.New("nothing to redo")
	ErrDealLimit       = variant.ErrNoRedeals
	ErrGameOver        = errors.New("game is over - no moves allowed")
	ErrNoWinnablePoint = errors.New("no earlier position is known to be winnable")
)

// Decision answers the prompt raised when the game became unwinnable.
type Decision int

const (
	// Rollback undoes moves back to the last position known to be winnable.
	Rollback Decision = iota
	// Continue keeps playing without further checks or prompts.
	Continue
)

// Resolution is the outcome of one background solve.
type Resolution struct {
	Generation uint64
	AtMove     int // History length the solve started from
	Moves      []game.Move
	Err        error
}

func (r Resolution) Solved() bool { return r.Err == nil }

func (r Resolution) Cancelled() bool { return errors.Is(r.Err, searcher.ErrCancelled) }

// Observer receives the session's outbound notifications. Calls happen on
// the goroutine that drives the session.
type Observer interface {
	Resolved(r Resolution)
	Unsolvable(atMove int) Decision
	Won()
}

type nopObserver struct{}

func (nopObserver) Resolved(Resolution)    {}
func (nopObserver) Unsolvable(int) Decision { return Continue }
func (nopObserver) Won()                    {}

// SolveFunc finds a winning line from layout.
type SolveFunc func(ctx context.Context, layout game.Layout) ([]game.Move, error)

type SessionOption func(s *Session)

func WithObserver(o Observer) SessionOption {
	return func(s *Session) {
		if o != nil {
			s.observer = o
		}
	}
}

// WithDealLimit caps how many times the waste may be turned back into the
// stock. The limit is written into the layout, so re-solves respect the
// deals left.
func WithDealLimit(limit int) SessionOption {
	return func(s *Session) {
		if limit >= 0 {
			s.dealLimit = limit
		}
	}
}

func WithSolver(solver *searcher.Solver) SessionOption {
	return func(s *Session) {
		if solver != nil {
			kind := s.kind
			s.solve = func(ctx context.Context, layout game.Layout) ([]game.Move, error) {
				moves, _, err := kind.Solve(ctx, solver, layout)
				return moves, err
			}
		}
	}
}

func WithSolveFunc(solve SolveFunc) SessionOption {
	return func(s *Session) {
		if solve != nil {
			s.solve = solve
		}
	}
}

// WithSolution seeds the session with a known winning line, skipping the
// initial solve.
func WithSolution(moves []game.Move) SessionOption {
	return func(s *Session) {
		s.solution = cloneMoves(moves)
		s.solved = true
		s.solvableKnown = true
	}
}

// Session is one game being played. It owns the authoritative layout and
// history and keeps a winning line up to date by re-solving in the
// background after every move the line does not cover.
//
// A Session is not safe for concurrent use. Background results reach it
// only through Poll and Await, which must be called by the owner.
type Session struct {
	ID       uuid.UUID
	kind     variant.Kind
	layout   game.Layout
	history  History
	deals    int
	observer Observer
	solve    SolveFunc

	dealLimit int

	// Cached winning line from the current layout, valid when solved
	solution []game.Move
	solved   bool

	ctx        context.Context
	cancel     context.CancelFunc
	generation uint64
	awaiting   bool
	results    chan Resolution
	workers    sync.WaitGroup

	solvableAt    int  // Longest history prefix known to be winnable
	solvableKnown bool // Whether solvableAt was ever confirmed
	unsolvableAt  int  // History length where a solve first failed, -1 if none
	unverified    bool
}

// NewSession starts a game from layout. Background solves run under ctx.
func NewSession(ctx context.Context, kind variant.Kind, layout game.Layout, options ...SessionOption) *Session {
	s := &Session{ // Default values
		ID:           uuid.New(),
		kind:         kind,
		layout:       layout.Clone(),
		observer:     nopObserver{},
		dealLimit:    DefaultDealLimit,
		ctx:          ctx,
		results:      make(chan Resolution, 1),
		unsolvableAt: -1,
	}
	WithSolver(searcher.NewSolver())(s)
	for _, option := range options {
		option(s)
	}
	kind.SetRedeals(s.layout, s.dealLimit)

	log.Info().Str("session", s.ID.String()).Str("variant", kind.String()).
		Uint64("layout", s.layout.Hash()).Bool("solved", s.solved).Msg("session started")
	if !s.solved {
		s.resolve()
	}
	return s
}

func (s *Session) Kind() variant.Kind { return s.kind }

// Layout returns a copy of the current layout.
func (s *Session) Layout() game.Layout { return s.layout.Clone() }

func (s *Session) Moves() []game.Move { return s.history.Moves() }

func (s *Session) Deals() int { return s.deals }

func (s *Session) Generation() uint64 { return s.generation }

// Unverified reports whether the player chose to continue an unwinnable game.
func (s *Session) Unverified() bool { return s.unverified }

// Pending reports whether a background solve for the current layout is
// outstanding.
func (s *Session) Pending() bool { return s.awaiting }

// Solution returns the cached winning line from the current layout.
func (s *Session) Solution() ([]game.Move, bool) {
	if !s.solved {
		return nil, false
	}
	return cloneMoves(s.solution), true
}

// Hint returns the next move of the cached winning line.
func (s *Session) Hint() (game.Move, bool) {
	if !s.solved || len(s.solution) == 0 {
		return game.Move{}, false
	}
	return s.solution[0].Clone(), true
}

func (s *Session) Won() bool { return s.kind.IsWon(s.layout) }

// Apply plays a move made on the board.
func (s *Session) Apply(m game.Move) error {
	if s.Won() {
		return ErrGameOver
	}
	played := m.Clone()
	if err := s.play(&played); err != nil {
		return err
	}
	s.history.Push(played)
	log.Info().Str("session", s.ID.String()).Str("move", s.kind.Board().Describe(m)).Msg("move applied")
	s.advance(m)
	return nil
}

// Redo replays the most recently undone move.
func (s *Session) Redo() error {
	m, ok := s.history.Next()
	if !ok {
		return ErrNothingToRedo
	}
	played := m.Clone()
	if err := s.play(&played); err != nil {
		return err
	}
	s.history.StepForward(played)
	log.Info().Str("session", s.ID.String()).Str("move", s.kind.Board().Describe(m)).Msg("move redone")
	s.advance(m)
	return nil
}

// Undo takes back the last move.
func (s *Session) Undo() error {
	m, err := s.undo()
	if err != nil {
		return err
	}
	log.Info().Str("session", s.ID.String()).Str("move", s.kind.Board().Describe(m)).Msg("move undone")

	if s.solved {
		// The undone move leads back onto the cached line
		s.solution = append([]game.Move{m.Clone()}, s.solution...)
		return nil
	}
	s.resolve()
	return nil
}

// Rollback undoes moves back to the last position known to be winnable and
// solves again from there. It fails with ErrNoWinnablePoint when no such
// position lies behind the current one.
func (s *Session) Rollback() error {
	if !s.canRollback() {
		return ErrNoWinnablePoint
	}
	target := s.solvableAt
	n := 0
	for s.history.Len() > target {
		if _, err := s.undo(); err != nil {
			return fmt.Errorf("failed to roll back: %w", err)
		}
		n++
	}
	s.unsolvableAt = -1
	log.Info().Str("session", s.ID.String()).Int("undone", n).Int("at_move", target).Msg("rolled back")
	s.resolve()
	return nil
}

// Poll handles a finished background solve if one is waiting. It never
// blocks.
func (s *Session) Poll() bool {
	select {
	case r := <-s.results:
		s.handle(r)
		return true
	default:
		return false
	}
}

// Await blocks until the solve for the current layout has been handled.
// Results of superseded solves are discarded on the way.
func (s *Session) Await(ctx context.Context) error {
	for s.awaiting {
		select {
		case r := <-s.results:
			s.handle(r)
		case <-ctx.Done():
			return ctx.Err()
		case <-s.ctx.Done():
			return s.ctx.Err()
		}
	}
	return nil
}

// Close cancels any background solve and waits for workers to exit.
func (s *Session) Close() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.awaiting = false
	s.workers.Wait()
}

func (s *Session) canRollback() bool {
	return s.solvableKnown && s.solvableAt < s.history.Len()
}

func (s *Session) play(m *game.Move) error {
	if err := s.kind.Play(s.layout, m); err != nil {
		return err
	}
	if s.kind.IsRecycle(*m) {
		s.deals++
	}
	return nil
}

func (s *Session) undo() (game.Move, error) {
	m, ok := s.history.Last()
	if !ok {
		return game.Move{}, ErrNothingToUndo
	}
	if err := s.kind.Revert(s.layout, &m); err != nil {
		return game.Move{}, err
	}
	if s.kind.IsRecycle(m) {
		s.deals--
	}
	s.history.StepBack(m)

	n := s.history.Len()
	s.solvableAt = min(s.solvableAt, n)
	if s.unsolvableAt > n {
		s.unsolvableAt = -1
	}
	return m, nil
}

// advance updates the cached line after m, as submitted, was played.
func (s *Session) advance(m game.Move) {
	if s.Won() {
		s.stop()
		s.solution, s.solved = nil, true
		s.solvableAt, s.solvableKnown = s.history.Len(), true
		log.Info().Str("session", s.ID.String()).Int("moves", s.history.Len()).Msg("game won")
		s.observer.Won()
		return
	}

	if s.solved && len(s.solution) > 0 && s.solution[0].Matches(m) {
		s.solution = s.solution[1:]
		s.solvableAt, s.solvableKnown = s.history.Len(), true
		return
	}
	s.resolve()
}

// stop cancels the outstanding solve, if any.
func (s *Session) stop() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.awaiting = false
}

// resolve starts a background solve of the current layout. Any solve still
// running is cancelled, and its result will be ignored.
func (s *Session) resolve() {
	s.stop()
	s.solution, s.solved = nil, false
	s.generation++
	s.awaiting = true

	ctx, cancel := context.WithCancel(s.ctx)
	s.cancel = cancel
	job := resolveJob{
		generation: s.generation,
		atMove:     s.history.Len(),
		layout:     s.layout.Clone(),
	}
	log.Debug().Str("session", s.ID.String()).Uint64("generation", job.generation).Int("at_move", job.atMove).Msg("re-solving")

	s.workers.Add(1)
	go func() {
		defer s.workers.Done()
		runResolve(ctx, s.solve, job, s.results)
	}()
}

// handle applies a background result. Results from superseded solves are
// dropped.
func (s *Session) handle(r Resolution) {
	if r.Generation != s.generation || !s.awaiting {
		log.Warn().Str("session", s.ID.String()).Uint64("generation", r.Generation).
			Uint64("current", s.generation).Msg("discarding stale solver result")
		return
	}
	s.stop()
	s.observer.Resolved(r)

	switch {
	case r.Solved():
		s.solution, s.solved = cloneMoves(r.Moves), true
		s.solvableAt, s.solvableKnown = r.AtMove, true
		s.unsolvableAt = -1
		log.Info().Str("session", s.ID.String()).Int("at_move", r.AtMove).Int("length", len(r.Moves)).Msg("solution found")
	case r.Cancelled():
		log.Debug().Str("session", s.ID.String()).Uint64("generation", r.Generation).Msg("solve cancelled")
	default:
		if s.unsolvableAt < 0 {
			s.unsolvableAt = r.AtMove
		}
		log.Info().Str("session", s.ID.String()).Int("at_move", r.AtMove).Err(r.Err).Msg("no solution")
		if s.unverified || !errors.Is(r.Err, searcher.ErrNoSolution) {
			return
		}
		if !s.canRollback() {
			// Nothing to go back to: carry on as if the player chose to
			log.Warn().Str("session", s.ID.String()).Int("at_move", r.AtMove).Msg("no winnable position to roll back to")
			s.unverified = true
			return
		}
		switch s.observer.Unsolvable(s.unsolvableAt) {
		case Rollback:
			if err := s.Rollback(); err != nil {
				log.Error().Err(err).Str("session", s.ID.String()).Msg("rollback failed")
			}
		case Continue:
			s.unverified = true
		}
	}
}

func cloneMoves(moves []game.Move) []game.Move {
	if moves == nil {
		return nil
	}
	c := make([]game.Move, len(moves))
	for i, m := range moves {
		c[i] = m.Clone()
	}
	return c
}
