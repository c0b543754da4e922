package plot

import (
	"context"
	"sync"

	"github.com/aretw0/rootseek/pkg/domain"
)

// Nop discards every plot request.
type Nop struct{}

// Plot implements ports.PlotSink.
func (Nop) Plot(ctx context.Context, req domain.PlotRequest) (string, error) {
	return "", ctx.Err()
}

// Recorder keeps every plot request it receives, in order.
type Recorder struct {
	mu       sync.Mutex
	requests []domain.PlotRequest
}

// Plot implements ports.PlotSink.
func (r *Recorder) Plot(ctx context.Context, req domain.PlotRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, req)
	return "", nil
}

// Requests returns a copy of the recorded requests.
func (r *Recorder) Requests() []domain.PlotRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.PlotRequest(nil), r.requests...)
}
