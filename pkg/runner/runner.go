package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/aretw0/rootseek/pkg/domain"
	"github.com/aretw0/rootseek/pkg/ports"
)

// ErrInterrupted is returned when the run is stopped by a signal or a cancelled context.
var ErrInterrupted = errors.New("interrupted")

// ContentRenderer is a function that transforms the content before outputting it.
// This allows for TUI rendering (markdown to ANSI) without coupling the core package.
type ContentRenderer func(string) (string, error)

// Runner handles the execution loop of the explorer engine using provided IO.
// It uses an IOHandler strategy to abstract the interaction mode (Text vs JSON).
type Runner struct {
	// Handler is the strategy for IO. If nil, a TextHandler over Input/Output is created.
	Handler IOHandler

	// Plots receives every RENDER_PLOT action. If nil, plots are only listed in the output.
	Plots ports.PlotSink

	// Logger is used for internal debug logging.
	// If nil, a no-op logger is used.
	Logger *slog.Logger

	// Store is the persistence adapter for durable sessions.
	// If nil, sessions are ephemeral.
	Store     ports.StateStore
	SessionID string

	// InputTimeout bounds each prompt. Zero waits forever.
	InputTimeout time.Duration

	Input    io.Reader
	Output   io.Writer
	Headless bool
	Renderer ContentRenderer
	Banner   string
}

// NewRunner creates a new Runner with default Stdin/Stdout.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		Input:  os.Stdin,
		Output: os.Stdout,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.Logger == nil {
		r.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return r
}

// Run executes the refinement loop until the run is done or the user leaves.
// If initialState is nil, engine.Start is called with the runner's session ID.
// It returns the last state reached, which is also the last state saved.
//
// Typing "exit" or "quit", or closing the input, ends the run without error.
// A signal or a cancelled ctx ends it with ErrInterrupted.
func (r *Runner) Run(ctx context.Context, engine ports.StatelessEngine, initialState *domain.State) (*domain.State, error) {
	handler := r.resolveHandler()

	signals := NewSignalManager(ctx)
	defer signals.Stop()

	state, err := r.resolveInitialState(signals.Context(), engine, initialState)
	if err != nil {
		return nil, err
	}
	if err := r.saveState(signals.Context(), state); err != nil {
		return state, fmt.Errorf("critical persistence error: %w", err)
	}

	for {
		loopCtx := signals.Context()

		// A. Render
		actions, terminal, err := engine.Render(loopCtx, state)
		if err != nil {
			return state, fmt.Errorf("render error: %w", err)
		}

		// B. Output (plots are drawn first so their locations print in order)
		actions = r.dispatchPlots(loopCtx, actions)
		needsInput, err := handler.Output(loopCtx, actions)
		if err != nil {
			return state, fmt.Errorf("output error: %w", err)
		}

		if terminal {
			r.Logger.Debug("run finished", "session_id", r.SessionID, "steps", len(state.History))
			return state, nil
		}

		// C. Input. Phases that search without asking are navigated with "".
		input := ""
		if needsInput {
			input, err = r.readInput(loopCtx, handler, signals)
			if errors.Is(err, io.EOF) {
				r.Logger.Debug("input closed", "session_id", r.SessionID, "step", state.Step())
				return state, nil
			}
			if err != nil {
				return state, err
			}
		}

		// D. Navigate
		next, err := engine.Navigate(loopCtx, state, input)
		if err != nil {
			if loopCtx.Err() != nil {
				return state, ErrInterrupted
			}
			return state, fmt.Errorf("navigation error: %w", err)
		}

		// E. Commit
		if err := r.saveState(loopCtx, next); err != nil {
			return next, fmt.Errorf("critical persistence error: %w", err)
		}
		state = next
	}
}

// dispatchPlots hands plot requests to the sink and follows each one with a
// system message naming where it went.
func (r *Runner) dispatchPlots(ctx context.Context, actions []domain.ActionRequest) []domain.ActionRequest {
	out := make([]domain.ActionRequest, 0, len(actions))
	for _, act := range actions {
		out = append(out, act)
		if act.Type != domain.ActionRenderPlot {
			continue
		}
		req, ok := act.Payload.(domain.PlotRequest)
		if !ok {
			continue
		}

		msg := "Plot: " + req.Title
		if r.Plots != nil {
			path, err := r.Plots.Plot(ctx, req)
			switch {
			case err != nil:
				r.Logger.Warn("plot failed", "title", req.Title, "err", err)
				msg = fmt.Sprintf("Plot %q could not be drawn: %v", req.Title, err)
			case path == "":
				continue
			default:
				msg = fmt.Sprintf("%s saved to %s", req.Title, path)
			}
		}
		out = append(out, domain.ActionRequest{Type: domain.ActionSystemMessage, Payload: msg})
	}
	return out
}

func (r *Runner) readInput(ctx context.Context, handler IOHandler, signals *SignalManager) (string, error) {
	inputCtx, cancel := r.createInputContext(ctx)
	defer cancel()

	val, err := handler.Input(inputCtx)
	if err != nil {
		signals.CheckRace()

		if ctx.Err() != nil {
			r.Logger.Debug("runner input: context cancelled", "err", ctx.Err())
			return "", ErrInterrupted
		}
		if errors.Is(inputCtx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("no input within %s", r.InputTimeout)
		}
		if errors.Is(err, io.EOF) {
			return "", io.EOF
		}
		return "", fmt.Errorf("input error: %w", err)
	}

	if val == "exit" || val == "quit" {
		return "", io.EOF
	}
	return val, nil
}

func (r *Runner) createInputContext(parent context.Context) (context.Context, context.CancelFunc) {
	if r.InputTimeout > 0 {
		return context.WithTimeout(parent, r.InputTimeout)
	}
	return parent, func() {}
}

func (r *Runner) saveState(ctx context.Context, state *domain.State) error {
	if r.Store == nil || r.SessionID == "" {
		return nil
	}
	if err := r.Store.Save(ctx, r.SessionID, state); err != nil {
		return err
	}
	r.Logger.Debug("state saved", "session_id", r.SessionID, "step", state.Step())
	return nil
}

// resolveHandler ensures a valid IOHandler is set.
func (r *Runner) resolveHandler() IOHandler {
	if r.Handler != nil {
		return r.Handler
	}
	th := NewTextHandler(r.Input, r.Output, WithTextHandlerRenderer(r.Renderer))
	if !r.Headless && r.Output != nil && r.Banner != "" {
		fmt.Fprintln(r.Output, r.Banner)
	}
	// Memoize to prevent creating new pumps on subsequent Run() calls
	r.Handler = th
	return th
}

func (r *Runner) resolveInitialState(ctx context.Context, engine ports.StatelessEngine, initial *domain.State) (*domain.State, error) {
	if initial != nil {
		return initial, nil
	}
	state, err := engine.Start(ctx, r.SessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to create initial state: %w", err)
	}
	return state, nil
}
