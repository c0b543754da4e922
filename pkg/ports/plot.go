package ports

import (
	"context"

	"github.com/aretw0/rootseek/pkg/domain"
)

// PlotSink displays the plots requested by the engine.
// The engine emits RENDER_PLOT actions, and the host hands them to a sink.
type PlotSink interface {
	// Plot draws the request and returns a human readable location
	// (e.g. a file path), or "" when nothing was produced.
	Plot(ctx context.Context, req domain.PlotRequest) (string, error)
}
