package domain

import (
	"errors"
	"fmt"
)

// ErrNumericInput is returned when user input cannot be parsed as a real number.
var ErrNumericInput = errors.New("numeric input error")

// ErrSolverConvergence wraps failures of the root-finding primitive.
// It is contained by the guarded search and never reaches the user.
var ErrSolverConvergence = errors.New("solver failed to converge")

// ErrToleranceRejected is returned when a solution's residual exceeds the tolerance.
var ErrToleranceRejected = errors.New("residual exceeds tolerance")

// ErrInvalidResponse is reported when a retry prompt answer is neither "y" nor "n".
var ErrInvalidResponse = errors.New("invalid response")

// ErrUnknownEquation is returned when an equation ID is not registered.
var ErrUnknownEquation = errors.New("unknown equation")

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// NumericInputError describes a token that failed to parse as a real number.
type NumericInputError struct {
	Input    string
	Token    string
	Position int // 1-based token position, 0 for single-value input
	Err      error
}

func (e *NumericInputError) Error() string {
	if e.Position > 0 {
		return fmt.Sprintf("invalid number %q at position %d in %q: %v", e.Token, e.Position, e.Input, e.Err)
	}
	return fmt.Sprintf("invalid number %q: %v", e.Token, e.Err)
}

func (e *NumericInputError) Unwrap() error {
	return e.Err
}

// Is reports every NumericInputError as ErrNumericInput.
func (e *NumericInputError) Is(target error) bool {
	return target == ErrNumericInput
}
