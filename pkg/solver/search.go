package solver

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/aretw0/rootseek/pkg/domain"
)

// DefaultTolerance is the maximum accepted absolute residual.
const DefaultTolerance = 1e-6

// Options configures the guarded searches.
type Options struct {
	// Tolerance is the acceptance gate on |f(root)|.
	Tolerance float64
	// ValidateIntersection applies the tolerance gate to intersections as well.
	ValidateIntersection bool
	Settings             Settings
	Logger               *slog.Logger
}

// DefaultOptions returns the search defaults.
func DefaultOptions() Options {
	return Options{
		Tolerance: DefaultTolerance,
		Settings:  DefaultSettings(),
	}
}

func (o Options) withDefaults() Options {
	if o.Tolerance <= 0 {
		o.Tolerance = DefaultTolerance
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o
}

// FindRoot attempts one root search of f starting at guess.
// It returns Found only when |f(root)| <= Tolerance. Solver failures
// (singular derivative, non-finite values) are folded into NotFound.
func FindRoot(f domain.Func, guess float64, opts Options) domain.RootOutcome {
	o := opts.withDefaults()

	res, err := Solve(f, guess, o.Settings)
	if err != nil && !errors.Is(err, ErrNoConvergence) {
		o.Logger.Debug("root search failed", "guess", guess, "err", fmt.Errorf("%w: %w", domain.ErrSolverConvergence, err))
		return domain.NotFound()
	}

	residual := math.Abs(f(res.X))
	if !finite(residual) || residual > o.Tolerance {
		o.Logger.Debug("root rejected", "guess", guess, "candidate", res.X, "residual", residual, "tolerance", o.Tolerance)
		return domain.NotFound()
	}
	return domain.Found(res.X, residual, res.Iterations)
}

// FindIntersection solves f(x) - g(x) = 0 from guess and reports (x, f(x)).
// The result is reported even when the residual is poor, unless
// ValidateIntersection is set, in which case ErrToleranceRejected is returned
// alongside the unvalidated result.
func FindIntersection(f, g domain.Func, guess float64, opts Options) (domain.IntersectionResult, error) {
	o := opts.withDefaults()
	diff := func(x float64) float64 { return f(x) - g(x) }

	res, err := Solve(diff, guess, o.Settings)
	if err != nil {
		o.Logger.Debug("intersection solve incomplete", "guess", guess, "err", err)
	}

	out := domain.IntersectionResult{
		X:          res.X,
		Y:          f(res.X),
		Residual:   math.Abs(diff(res.X)),
		Converged:  err == nil && res.Converged,
		Iterations: res.Iterations,
	}
	// An overflowing equation leaves a point that cannot have converged.
	if !out.Finite() {
		out.Converged = false
	}

	if o.ValidateIntersection && (!finite(out.Residual) || out.Residual > o.Tolerance) {
		return out, fmt.Errorf("%w: intersection residual %g near %g", domain.ErrToleranceRejected, out.Residual, guess)
	}
	return out, nil
}
