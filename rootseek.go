package rootseek

import (
	"context"
	"io"
	"log/slog"

	"github.com/aretw0/rootseek/internal/runtime"
	"github.com/aretw0/rootseek/pkg/domain"
	"github.com/aretw0/rootseek/pkg/registry"
	"github.com/aretw0/rootseek/pkg/solver"
)

// PlotSettings controls which plots the engine requests.
type PlotSettings = runtime.PlotSettings

// DefaultPlotSettings returns the explorer's default plot ranges.
func DefaultPlotSettings() PlotSettings {
	return runtime.DefaultPlotSettings()
}

// Engine is the high-level entry point for the rootseek library.
// It wraps the internal runtime and provides a simplified API for consumers.
type Engine struct {
	runtime   *runtime.Engine
	registry  *registry.Registry
	search    solver.Options
	plots     PlotSettings
	reprompt  bool
	equations []domain.EquationID
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithRegistry replaces the built-in equations.
func WithRegistry(reg *registry.Registry) Option {
	return func(e *Engine) {
		e.registry = reg
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithTolerance sets the residual gate of the root search.
func WithTolerance(tol float64) Option {
	return func(e *Engine) {
		e.search.Tolerance = tol
	}
}

// WithSolverSettings configures the root-finding iteration.
func WithSolverSettings(s solver.Settings) Option {
	return func(e *Engine) {
		e.search.Settings = s
	}
}

// WithValidateIntersection applies the tolerance gate to the intersection.
func WithValidateIntersection(enabled bool) Option {
	return func(e *Engine) {
		e.search.ValidateIntersection = enabled
	}
}

// WithPlotSettings configures the plots requested by the loop.
func WithPlotSettings(p PlotSettings) Option {
	return func(e *Engine) {
		e.plots = p
	}
}

// WithRepromptInvalidGuesses makes malformed guess input recoverable.
func WithRepromptInvalidGuesses(enabled bool) Option {
	return func(e *Engine) {
		e.reprompt = enabled
	}
}

// WithEquations selects the equations explored by the loop (default: the whole registry).
func WithEquations(ids ...domain.EquationID) Option {
	return func(e *Engine) {
		e.equations = ids
	}
}

// New initializes a new explorer engine.
// Without WithRegistry it explores f1(x) = x - 3cos(x) and f2(x) = cos(2x)·x³.
func New(opts ...Option) (*Engine, error) {
	eng := &Engine{
		search: solver.DefaultOptions(),
		plots:  runtime.DefaultPlotSettings(),
	}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.registry == nil {
		eng.registry = registry.Default()
	}
	// Ensure logger is initialized (so we don't pass nil to runtime)
	if eng.logger == nil {
		eng.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	eng.search.Logger = eng.logger

	runtimeOpts := []runtime.EngineOption{
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithLogger(eng.logger),
		runtime.WithSearchOptions(eng.search),
		runtime.WithPlotSettings(eng.plots),
		runtime.WithRepromptInvalidGuesses(eng.reprompt),
	}
	if len(eng.equations) > 0 {
		runtimeOpts = append(runtimeOpts, runtime.WithEquations(eng.equations...))
	}
	eng.runtime = runtime.NewEngine(eng.registry, runtimeOpts...)

	return eng, nil
}

// Start creates the initial state of the refinement loop and triggers lifecycle hooks.
func (e *Engine) Start(ctx context.Context, sessionID string) (*domain.State, error) {
	return e.runtime.Start(ctx, sessionID)
}

// Render generates the actions (view) for the current state without transitioning.
// Returns actions, isTerminal, and error.
func (e *Engine) Render(ctx context.Context, state *domain.State) ([]domain.ActionRequest, bool, error) {
	return e.runtime.Render(ctx, state)
}

// Navigate determines the next state based on one line of input.
func (e *Engine) Navigate(ctx context.Context, state *domain.State, input string) (*domain.State, error) {
	return e.runtime.Navigate(ctx, state, input)
}

// Inspect returns the transitions of the refinement loop for visualization.
func (e *Engine) Inspect() []domain.Transition {
	return runtime.Transitions()
}

// Registry returns the equations known to the engine.
func (e *Engine) Registry() *registry.Registry {
	return e.registry
}

// Equations returns the equations explored by the loop, in order.
func (e *Engine) Equations() []domain.Equation {
	ids := e.runtime.Equations()
	out := make([]domain.Equation, 0, len(ids))
	for _, id := range ids {
		if eq, err := e.registry.Lookup(id); err == nil {
			out = append(out, eq)
		}
	}
	return out
}

// FindRoot runs one guarded root search of a registered equation.
func (e *Engine) FindRoot(id domain.EquationID, guess float64) (domain.RootOutcome, error) {
	eq, err := e.registry.Lookup(id)
	if err != nil {
		return domain.NotFound(), err
	}
	return solver.FindRoot(eq.Fn, guess, e.search), nil
}

// FindIntersection locates a crossing of the first two explored equations near guess.
func (e *Engine) FindIntersection(guess float64) (domain.IntersectionResult, error) {
	ids := e.runtime.Equations()
	if len(ids) < 2 {
		return domain.IntersectionResult{}, domain.ErrUnknownEquation
	}
	f, err := e.registry.Lookup(ids[0])
	if err != nil {
		return domain.IntersectionResult{}, err
	}
	g, err := e.registry.Lookup(ids[1])
	if err != nil {
		return domain.IntersectionResult{}, err
	}
	return solver.FindIntersection(f.Fn, g.Fn, guess, e.search)
}
