package solver

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/diff/fd"
)

var (
	// ErrSingularDerivative is returned when the derivative vanishes at an iterate.
	ErrSingularDerivative = errors.New("derivative is singular")
	// ErrNonFinite is returned when the function or an iterate leaves the finite reals.
	ErrNonFinite = errors.New("non-finite value encountered")
	// ErrNoConvergence is returned when MaxIterations is exhausted or when no
	// shortened step reduces |f|. The Result still holds the last iterate.
	ErrNoConvergence = errors.New("iteration limit reached without convergence")
)

// Defaults mirror the MINPACK hybrd settings used by common fsolve implementations.
const (
	DefaultMaxIterations = 100
	DefaultXTol          = 1.49012e-8
	DefaultStepBound     = 100.0

	// singularThreshold is the derivative magnitude treated as zero.
	singularThreshold = 1e-12
	// maxHalvings caps the backtracking of a single Newton step.
	maxHalvings = 30
)

// Settings configures the root-finding iteration.
type Settings struct {
	// MaxIterations caps the number of Newton steps.
	MaxIterations int
	// XTol is the relative step size at which the iteration is considered converged.
	XTol float64
	// StepBound limits a single step to StepBound*max(|x|, 1).
	StepBound float64
	// Derivative configures the finite-difference derivative. Defaults to fd.Central.
	Derivative *fd.Settings
}

// DefaultSettings returns the solver defaults.
func DefaultSettings() Settings {
	return Settings{
		MaxIterations: DefaultMaxIterations,
		XTol:          DefaultXTol,
		StepBound:     DefaultStepBound,
	}
}

func (s Settings) withDefaults() Settings {
	if s.MaxIterations <= 0 {
		s.MaxIterations = DefaultMaxIterations
	}
	if s.XTol <= 0 {
		s.XTol = DefaultXTol
	}
	if s.StepBound <= 0 {
		s.StepBound = DefaultStepBound
	}
	if s.Derivative == nil {
		s.Derivative = &fd.Settings{Formula: fd.Central}
	}
	return s
}

// Result is the outcome of one Solve call.
type Result struct {
	X          float64
	Fx         float64
	Iterations int
	Converged  bool
}

// Solve runs a damped Newton iteration from guess towards a root of f.
// The derivative is estimated numerically, so f only needs to be evaluable.
// A step that does not reduce |f| is halved until it does; an iterate is never
// accepted with a larger residual than its predecessor.
// Solve is deterministic: the same f, guess and settings yield the same Result.
func Solve(f func(float64) float64, guess float64, settings Settings) (Result, error) {
	s := settings.withDefaults()

	x := guess
	if !finite(x) {
		return Result{X: x, Fx: math.NaN()}, ErrNonFinite
	}
	fx := f(x)

	for i := 0; i < s.MaxIterations; i++ {
		if !finite(fx) {
			return Result{X: x, Fx: fx, Iterations: i}, ErrNonFinite
		}
		if fx == 0 {
			return Result{X: x, Fx: 0, Iterations: i, Converged: true}, nil
		}

		d := fd.Derivative(f, x, s.Derivative)
		if !finite(d) || math.Abs(d) < singularThreshold {
			return Result{X: x, Fx: fx, Iterations: i}, ErrSingularDerivative
		}

		step := fx / d
		if bound := s.StepBound * math.Max(math.Abs(x), 1); math.Abs(step) > bound {
			step = math.Copysign(bound, step)
		}

		// A full step this small is the convergence test, whatever f does there.
		if math.Abs(step) <= s.XTol*(1+math.Abs(x-step)) {
			x -= step
			return Result{X: x, Fx: f(x), Iterations: i + 1, Converged: true}, nil
		}

		next, fnext, ok := backtrack(f, x, fx, step, s.XTol)
		if !ok {
			return Result{X: x, Fx: fx, Iterations: i + 1}, ErrNoConvergence
		}
		x, fx = next, fnext
	}

	return Result{X: x, Fx: fx, Iterations: s.MaxIterations}, ErrNoConvergence
}

// backtrack halves step until x-step lowers |f| below |fx|. It gives up once
// the step falls under the convergence scale or after maxHalvings.
func backtrack(f func(float64) float64, x, fx, step, xtol float64) (float64, float64, bool) {
	for k := 0; k <= maxHalvings; k++ {
		next := x - step
		if !finite(next) {
			step /= 2
			continue
		}
		if fnext := f(next); finite(fnext) && math.Abs(fnext) < math.Abs(fx) {
			return next, fnext, true
		}
		step /= 2
		if math.Abs(step) <= xtol*(1+math.Abs(x)) {
			break
		}
	}
	return x, fx, false
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
