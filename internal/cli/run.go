package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/rootseek/internal/config"
	"github.com/aretw0/rootseek/internal/presentation/tui"
	"github.com/aretw0/rootseek/pkg/plot"
	"github.com/aretw0/rootseek/pkg/ports"
	"github.com/aretw0/rootseek/pkg/registry"
	"github.com/aretw0/rootseek/pkg/runner"
)

// DefaultSessionID is used when no --session is given.
const DefaultSessionID = "default"

// RunOptions contains all the configuration for the run command.
type RunOptions struct {
	Config    config.Config
	Logger    *slog.Logger
	Debug     bool
	JSON      bool
	Headless  bool
	SessionID string
	Fresh     bool

	// In and Out default to Stdin and Stdout.
	In  io.Reader
	Out io.Writer
}

// RunSession executes one interactive exploration.
func RunSession(ctx context.Context, opts RunOptions) error {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.SessionID == "" {
		opts.SessionID = DefaultSessionID
	}
	logger := opts.Logger
	if logger == nil {
		var err error
		if logger, err = NewLogger(opts.Config, opts.Debug); err != nil {
			return err
		}
	}
	quiet := opts.JSON || opts.Headless

	engine, err := NewEngine(opts.Config, logger, opts.Debug)
	if err != nil {
		return err
	}

	sessions, closeStore, err := OpenSessions(ctx, opts.Config, logger)
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}
	defer closeStore()

	sigCtx := NewSignalContext(ctx)
	defer sigCtx.Cancel()

	if opts.Fresh {
		if err := sessions.Delete(sigCtx, opts.SessionID); err != nil {
			return fmt.Errorf("failed to reset session: %w", err)
		}
	}

	state, resumed, err := sessions.LoadOrStart(sigCtx, engine, opts.SessionID)
	if err != nil {
		return fmt.Errorf("failed to init session: %w", err)
	}
	// A finished session has nothing left to ask; run it again from the start.
	if resumed && state.Terminated() {
		logger.Debug("session already finished, restarting", "session_id", opts.SessionID)
		if err := sessions.Delete(sigCtx, opts.SessionID); err != nil {
			return fmt.Errorf("failed to reset session: %w", err)
		}
		if state, resumed, err = sessions.LoadOrStart(sigCtx, engine, opts.SessionID); err != nil {
			return fmt.Errorf("failed to init session: %w", err)
		}
	}

	if !quiet && tui.IsInteractive() {
		tui.PrintBanner(opts.Out)
	}
	logSessionStatus(opts.Out, logger, opts.SessionID, state.Step(), resumed, quiet)

	runnerOpts := []runner.Option{
		runner.WithLogger(logger),
		runner.WithHeadless(opts.Headless),
		runner.WithSessionID(opts.SessionID),
		runner.WithStore(sessions.Store()),
		runner.WithIO(opts.In, opts.Out),
		runner.WithPlotSink(newPlotSink(opts.Config, engine.Registry(), logger)),
	}
	switch {
	case opts.JSON:
		runnerOpts = append(runnerOpts, runner.WithInputHandler(runner.NewJSONHandler(opts.In, opts.Out)))
	case !opts.Headless && tui.IsInteractive():
		runnerOpts = append(runnerOpts, runner.WithRenderer(tui.NewRenderer()))
	}

	r := runner.NewRunner(runnerOpts...)
	finalState, runErr := r.Run(sigCtx, engine, state)

	step := state.Step()
	if finalState != nil {
		step = finalState.Step()
	}
	if sigCtx.Err() != nil && runErr == nil {
		runErr = runner.ErrInterrupted
	}
	logCompletion(opts.Out, step, runErr, quiet, sigCtx.Signal())

	return handleExecutionError(runErr)
}

// newPlotSink writes PNG files when plotting is enabled.
func newPlotSink(cfg config.Config, reg *registry.Registry, logger *slog.Logger) ports.PlotSink {
	if !cfg.Plot.Enabled {
		return plot.Nop{}
	}
	return plot.NewPNGSink(reg, cfg.Plot.Dir,
		plot.WithSamples(cfg.Plot.Samples),
		plot.WithLogger(logger),
	)
}
