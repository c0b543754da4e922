package domain

import (
	"encoding/json"
	"math"
)

// RootOutcome is the result of one guarded root search.
// It has two variants: Found (with the accepted root) and NotFound.
// A Found outcome always satisfies |equation(Root)| <= tolerance.
type RootOutcome struct {
	Found bool `json:"found"`

	Root       float64 `json:"root,omitempty"`
	Residual   float64 `json:"residual,omitempty"`
	Iterations int     `json:"iterations,omitempty"`
}

// Found builds the accepted variant.
func Found(root, residual float64, iterations int) RootOutcome {
	return RootOutcome{Found: true, Root: root, Residual: residual, Iterations: iterations}
}

// NotFound builds the rejected variant. The caller cannot tell a solver failure
// from a residual above tolerance.
func NotFound() RootOutcome {
	return RootOutcome{}
}

// Value returns the root and whether one was found.
func (o RootOutcome) Value() (float64, bool) {
	return o.Root, o.Found
}

// IntersectionResult is a point where two equations evaluate to the same value.
// Non-finite coordinates or residuals, which an overflowing equation can
// produce, are encoded as JSON null and decoded back as NaN (+Inf for the
// residual).
type IntersectionResult struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`

	// Residual is |f(X) - g(X)| at the solved point.
	Residual   float64 `json:"residual"`
	Converged  bool    `json:"converged"`
	Iterations int     `json:"iterations"`
}

type intersectionJSON struct {
	X          *float64 `json:"x"`
	Y          *float64 `json:"y"`
	Residual   *float64 `json:"residual"`
	Converged  bool     `json:"converged"`
	Iterations int      `json:"iterations"`
}

// MarshalJSON implements json.Marshaler.
func (r IntersectionResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(intersectionJSON{
		X:          finiteOrNil(r.X),
		Y:          finiteOrNil(r.Y),
		Residual:   finiteOrNil(r.Residual),
		Converged:  r.Converged,
		Iterations: r.Iterations,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *IntersectionResult) UnmarshalJSON(data []byte) error {
	var raw intersectionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = IntersectionResult{
		X:          valueOr(raw.X, math.NaN()),
		Y:          valueOr(raw.Y, math.NaN()),
		Residual:   valueOr(raw.Residual, math.Inf(1)),
		Converged:  raw.Converged,
		Iterations: raw.Iterations,
	}
	return nil
}

// Finite reports whether every number of the result is finite.
func (r IntersectionResult) Finite() bool {
	return finiteOrNil(r.X) != nil && finiteOrNil(r.Y) != nil && finiteOrNil(r.Residual) != nil
}

func finiteOrNil(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func valueOr(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}

// Point is a marker on a plot.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}
