/*
Package runner implements the interactive loop that drives the explorer engine.

It is the bridge between the pure state machine (Render/Navigate) and the outside
world: it prints reports, hands plot requests to a ports.PlotSink, reads one line of
input per prompt, persists every state it reaches and stops when the run is done.

# Key Components

  - Runner: the Render -> Output -> Input -> Navigate -> Save loop.
  - IOHandler: decouples how the loop talks to the user (text or JSON lines).
  - TextHandler: interactive console IO with context-aware reads.
  - JSONHandler: NDJSON actions out, one JSON string (or raw line) per input.

# Usage

	eng, _ := rootseek.New()
	r := runner.NewRunner(
		runner.WithPlotSink(plot.NewPNGSink(eng.Registry(), "plots")),
		runner.WithStore(store),
		runner.WithSessionID("demo"),
	)
	final, err := r.Run(ctx, eng, nil)
*/
package runner
