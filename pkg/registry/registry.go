package registry

import (
	"fmt"
	"math"
	"sync"

	"github.com/aretw0/rootseek/pkg/domain"
)

// Identifiers of the built-in equations.
const (
	F1 domain.EquationID = "f1"
	F2 domain.EquationID = "f2"
)

// Registry manages the available equations.
// Registration order is preserved; it is the order the explorer walks them in.
type Registry struct {
	mu        sync.RWMutex
	equations map[domain.EquationID]domain.Equation
	order     []domain.EquationID
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		equations: make(map[domain.EquationID]domain.Equation),
	}
}

// Default returns a registry holding f1(x) = x - 3cos(x) and f2(x) = cos(2x)·x³.
func Default() *Registry {
	r := NewRegistry()
	r.Register(domain.Equation{
		ID:    F1,
		Label: "x - 3cos(x) = 0",
		Expr:  "x - 3cos(x)",
		Fn: func(x float64) float64 {
			return x - 3*math.Cos(x)
		},
	})
	r.Register(domain.Equation{
		ID:    F2,
		Label: "cos(2x) · x³ = 0",
		Expr:  "cos(2x) · x³",
		Fn: func(x float64) float64 {
			return math.Cos(2*x) * x * x * x
		},
	})
	return r
}

// Register adds an equation to the registry.
// If an equation with the same ID exists, it is overwritten in place.
func (r *Registry) Register(eq domain.Equation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.equations[eq.ID]; !ok {
		r.order = append(r.order, eq.ID)
	}
	r.equations[eq.ID] = eq
}

// Lookup returns the equation registered under id.
func (r *Registry) Lookup(id domain.EquationID) (domain.Equation, error) {
	r.mu.RLock()
	eq, ok := r.equations[id]
	r.mu.RUnlock()

	if !ok {
		return domain.Equation{}, fmt.Errorf("%w: %s", domain.ErrUnknownEquation, id)
	}
	return eq, nil
}

// Evaluate looks up an equation by ID and evaluates it at x.
func (r *Registry) Evaluate(id domain.EquationID, x float64) (float64, error) {
	eq, err := r.Lookup(id)
	if err != nil {
		return 0, err
	}
	return eq.Eval(x), nil
}

// IDs returns the registered equation IDs in registration order.
func (r *Registry) IDs() []domain.EquationID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.EquationID(nil), r.order...)
}

// Equations returns the registered equations in registration order.
func (r *Registry) Equations() []domain.Equation {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Equation, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.equations[id])
	}
	return out
}
