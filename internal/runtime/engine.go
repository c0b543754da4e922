package runtime

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/rootseek/pkg/domain"
	"github.com/aretw0/rootseek/pkg/registry"
	"github.com/aretw0/rootseek/pkg/solver"
)

// PlotSettings controls which plots the engine requests and their x ranges.
type PlotSettings struct {
	Enabled bool

	XMin float64
	XMax float64

	// Intersection requests the combined plot of both curves with the intersection marker.
	Intersection     bool
	IntersectionXMin float64
	IntersectionXMax float64
}

// DefaultPlotSettings returns the ranges used by the explorer.
func DefaultPlotSettings() PlotSettings {
	return PlotSettings{
		Enabled:          true,
		XMin:             -15,
		XMax:             15,
		Intersection:     true,
		IntersectionXMin: -10,
		IntersectionXMax: 10,
	}
}

// Engine is the refinement loop state machine.
// It never performs IO: Render describes what to show and ask,
// Navigate computes the next state from an input line.
type Engine struct {
	registry  *registry.Registry
	equations []domain.EquationID
	search    solver.Options
	plots     PlotSettings
	reprompt  bool
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
	now       func() time.Time
}

// EngineOption defines a functional option for configuring the Engine.
type EngineOption func(*Engine)

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithSearchOptions configures tolerance and solver settings.
func WithSearchOptions(opts solver.Options) EngineOption {
	return func(e *Engine) {
		e.search = opts
	}
}

// WithPlotSettings configures the plots requested by the engine.
func WithPlotSettings(p PlotSettings) EngineOption {
	return func(e *Engine) {
		e.plots = p
	}
}

// WithRepromptInvalidGuesses turns malformed guess lists and replacement guesses
// into re-prompts instead of fatal errors.
func WithRepromptInvalidGuesses(enabled bool) EngineOption {
	return func(e *Engine) {
		e.reprompt = enabled
	}
}

// WithEquations selects the equations to explore (default: every registered equation).
// The intersection is located between the first two.
func WithEquations(ids ...domain.EquationID) EngineOption {
	return func(e *Engine) {
		e.equations = append([]domain.EquationID(nil), ids...)
	}
}

// WithClock overrides the event timestamp source.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates a new engine over the given registry.
func NewEngine(reg *registry.Registry, opts ...EngineOption) *Engine {
	e := &Engine{
		registry: reg,
		search:   solver.DefaultOptions(),
		plots:    DefaultPlotSettings(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if len(e.equations) == 0 {
		e.equations = reg.IDs()
	}
	if e.search.Logger == nil {
		e.search.Logger = e.logger
	}
	return e
}

// Equations returns the ordered equations explored by this engine.
func (e *Engine) Equations() []domain.EquationID {
	return append([]domain.EquationID(nil), e.equations...)
}

// SearchOptions returns the options used for guarded searches.
func (e *Engine) SearchOptions() solver.Options {
	return e.search
}

// Start creates the initial state and requests the plot of the first curve.
func (e *Engine) Start(ctx context.Context, sessionID string) (*domain.State, error) {
	if len(e.equations) < 2 {
		return nil, fmt.Errorf("explorer needs two equations, got %d", len(e.equations))
	}
	for _, id := range e.equations {
		if _, err := e.registry.Lookup(id); err != nil {
			return nil, err
		}
	}

	state := domain.NewState(sessionID, e.equations)
	if plot, ok := e.curvePlot(state.CurrentEquation(), nil); ok {
		state.Outbox = append(state.Outbox, plot)
	}

	e.emitPhaseEnter(ctx, state)
	e.logger.Debug("session started", "session_id", sessionID, "equations", e.equations)
	return state, nil
}

func (e *Engine) equation(id domain.EquationID) (domain.Equation, error) {
	return e.registry.Lookup(id)
}

func (e *Engine) emitPhaseEnter(ctx context.Context, state *domain.State) {
	if e.hooks.OnPhaseEnter == nil {
		return
	}
	e.hooks.OnPhaseEnter(ctx, &domain.PhaseEvent{
		EventBase: e.base(domain.EventPhaseEnter, state),
		Phase:     state.Phase,
		Step:      state.Step(),
	})
}

func (e *Engine) emitRootSearch(ctx context.Context, state *domain.State, g domain.Guess, out domain.RootOutcome, retry bool) {
	if e.hooks.OnRootSearch == nil {
		return
	}
	e.hooks.OnRootSearch(ctx, &domain.SearchEvent{
		EventBase: e.base(domain.EventRootSearch, state),
		Equation:  g.Equation,
		Guess:     g,
		Outcome:   out,
		Retry:     retry,
	})
}

func (e *Engine) emitRetry(ctx context.Context, state *domain.State, d Decision) {
	if e.hooks.OnRetry == nil {
		return
	}
	e.hooks.OnRetry(ctx, &domain.RetryEvent{
		EventBase: e.base(domain.EventRetry, state),
		Equation:  state.CurrentEquation(),
		Decision:  d.String(),
	})
}

func (e *Engine) emitIntersection(ctx context.Context, state *domain.State, guess float64, res domain.IntersectionResult) {
	if e.hooks.OnIntersection == nil {
		return
	}
	e.hooks.OnIntersection(ctx, &domain.IntersectionEvent{
		EventBase: e.base(domain.EventIntersection, state),
		Guess:     guess,
		Result:    res,
	})
}

func (e *Engine) base(t domain.EventType, state *domain.State) domain.EventBase {
	return domain.EventBase{Timestamp: e.now(), Type: t, SessionID: state.SessionID}
}
