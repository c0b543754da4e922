package runner

import (
	"context"

	"github.com/aretw0/rootseek/pkg/domain"
)

// IOHandler defines the strategy for interacting with the user.
// This allows switching between Text (CLI) and JSON (structured) modes.
type IOHandler interface {
	// Output presents the actions to the user.
	// Returns true if one of the actions requests input.
	Output(ctx context.Context, actions []domain.ActionRequest) (bool, error)

	// Input reads one line of response from the user.
	// It returns ctx.Err() when the context ends first and io.EOF when input is exhausted.
	Input(ctx context.Context) (string, error)

	// SystemOutput presents a meta-message (plot locations, status) distinct from flow content.
	SystemOutput(ctx context.Context, msg string) error
}
