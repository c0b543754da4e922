package runner

import (
	"context"

	"github.com/aretw0/rootseek/pkg/domain"
	"github.com/aretw0/rootseek/pkg/ports"
)

// RichResponse combines state and rendering actions for rich clients (HTTP, MCP).
type RichResponse struct {
	State    *domain.State          `json:"state"`
	Actions  []domain.ActionRequest `json:"actions,omitempty"`
	Terminal bool                   `json:"terminal"`
}

// Render wraps the current state and its actions without advancing it.
func Render(ctx context.Context, engine ports.StatelessEngine, state *domain.State) (*RichResponse, error) {
	actions, terminal, err := engine.Render(ctx, state)
	if err != nil {
		return &RichResponse{State: state, Terminal: terminal}, err
	}
	return &RichResponse{State: state, Actions: actions, Terminal: terminal}, nil
}
