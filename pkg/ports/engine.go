package ports

import (
	"context"

	"github.com/aretw0/rootseek/pkg/domain"
)

// StatelessEngine defines the interface for state machine cores that do not maintain internal state.
// This is the primary interface used by adapters (e.g., HTTP, MCP, Runner) that manage state externally.
type StatelessEngine interface {
	// Start creates the initial state for a session.
	Start(ctx context.Context, sessionID string) (*domain.State, error)

	// Render calculates the presentation (actions) for a given state without advancing it.
	Render(ctx context.Context, state *domain.State) ([]domain.ActionRequest, bool, error)

	// Navigate progresses the state machine based on one line of input, returning the new state.
	Navigate(ctx context.Context, state *domain.State, input string) (*domain.State, error)

	// Inspect returns the transitions of the state machine for introspection.
	Inspect() []domain.Transition
}

// Explorer is a StatelessEngine that also exposes one-shot searches.
// Servers (HTTP, MCP) use it to answer single queries without a session.
type Explorer interface {
	StatelessEngine

	// Equations returns the explored equations in order.
	Equations() []domain.Equation

	// FindRoot runs one guarded root search of a registered equation.
	FindRoot(id domain.EquationID, guess float64) (domain.RootOutcome, error)

	// FindIntersection locates a crossing of the first two equations near guess.
	FindIntersection(guess float64) (domain.IntersectionResult, error)
}
