package runner

import (
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/rootseek/pkg/ports"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithStore configures the StateStore for persistence.
func WithStore(store ports.StateStore) Option {
	return func(r *Runner) {
		r.Store = store
	}
}

// WithSessionID sets the session ID for persistence context.
// This is required if WithStore is used.
func WithSessionID(id string) Option {
	return func(r *Runner) {
		r.SessionID = id
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// WithInputHandler configures a custom IOHandler.
func WithInputHandler(handler IOHandler) Option {
	return func(r *Runner) {
		r.Handler = handler
	}
}

// WithIO sets the reader and writer used by the default TextHandler.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(r *Runner) {
		r.Input = in
		r.Output = out
	}
}

// WithPlotSink configures where RENDER_PLOT actions are drawn.
func WithPlotSink(sink ports.PlotSink) Option {
	return func(r *Runner) {
		r.Plots = sink
	}
}

// WithHeadless suppresses the banner.
func WithHeadless(headless bool) Option {
	return func(r *Runner) {
		r.Headless = headless
	}
}

// WithRenderer configures the content renderer (e.g. TUI, Markdown).
func WithRenderer(renderer ContentRenderer) Option {
	return func(r *Runner) {
		r.Renderer = renderer
	}
}

// WithBanner sets the line printed before the first prompt in interactive mode.
func WithBanner(banner string) Option {
	return func(r *Runner) {
		r.Banner = banner
	}
}

// WithInputTimeout bounds how long a single prompt waits for input.
func WithInputTimeout(d time.Duration) Option {
	return func(r *Runner) {
		r.InputTimeout = d
	}
}
