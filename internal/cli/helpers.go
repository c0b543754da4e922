package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/aretw0/rootseek/internal/config"
	"github.com/aretw0/rootseek/internal/logging"
	"github.com/aretw0/rootseek/internal/presentation/tui"
	"github.com/aretw0/rootseek/pkg/domain"
	"github.com/aretw0/rootseek/pkg/runner"
)

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	stop   sync.Once
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// It acts as a drop-in replacement for signal.NotifyContext but allows retrieving the signal.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sc.sigCh:
			sc.mu.Lock()
			sc.sigVal = sig
			sc.mu.Unlock()
			sc.Cancel()
		case <-sc.Context.Done():
		}
		sc.stop.Do(func() {
			signal.Stop(sc.sigCh)
		})
	}()

	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// NewLogger builds the application logger from the log settings.
// Debug forces the debug level. Logs always go to Stderr.
func NewLogger(cfg config.Config, debug bool) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	if debug {
		level = slog.LevelDebug
	}
	return logging.NewWithFormat(cfg.Log.Format, level)
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

func logSessionStatus(w io.Writer, logger *slog.Logger, sessionID, step string, resumed, quiet bool) {
	if resumed {
		logger.Info("Session resumed", "session_id", sessionID, "step", step)
		if !quiet {
			printSystemMessage(w, "Resuming at '%s'...", step)
		}
		return
	}
	logger.Info("Session created", "session_id", sessionID)
	if !quiet {
		printSystemMessage(w, "Session '%s' active.", sessionID)
	}
}

func createDebugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnPhaseEnter: func(ctx context.Context, e *domain.PhaseEvent) {
			logger.Debug("Enter phase", "session_id", e.SessionID, "step", e.Step)
		},
		OnRootSearch: func(ctx context.Context, e *domain.SearchEvent) {
			root, found := e.Outcome.Value()
			if found {
				logger.Debug("Root search", "equation", e.Equation, "guess", e.Guess.Value, "root", root, "retry", e.Retry)
			} else {
				logger.Debug("Root search (not found)", "equation", e.Equation, "guess", e.Guess.Value, "retry", e.Retry)
			}
		},
		OnRetry: func(ctx context.Context, e *domain.RetryEvent) {
			logger.Debug("Retry decision", "equation", e.Equation, "decision", e.Decision)
		},
		OnIntersection: func(ctx context.Context, e *domain.IntersectionEvent) {
			logger.Debug("Intersection", "guess", e.Guess, "x", e.Result.X, "y", e.Result.Y)
		},
	}
}

func isInterrupted(err error) bool {
	return errors.Is(err, runner.ErrInterrupted) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, io.EOF)
}

// handleExecutionError maps an interrupted run to a clean exit.
func handleExecutionError(err error) error {
	if err == nil || isInterrupted(err) {
		return nil
	}
	return err
}

func logCompletion(w io.Writer, step string, err error, quiet bool, sig os.Signal) {
	if quiet {
		return
	}
	if err == nil {
		printSystemMessage(w, "Finished at '%s'.", tui.Emphasis(w, step))
		return
	}
	if !isInterrupted(err) {
		return
	}
	switch sig {
	case os.Interrupt:
		fmt.Fprintf(w, "[CTRL+C]\n")
		printSystemMessage(w, "Interrupted at '%s'.", step)
	case nil:
		fmt.Fprintf(w, "\n")
		printSystemMessage(w, "Interrupted at '%s'.", step)
	default:
		fmt.Fprintf(w, "\n")
		printSystemMessage(w, "Terminated at '%s'.", step)
	}
}
