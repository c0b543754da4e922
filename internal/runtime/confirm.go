package runtime

import "strings"

// Decision is the outcome of the retry confirmation prompt.
type Decision int

const (
	// DecisionReprompt keeps the loop at the confirmation prompt.
	DecisionReprompt Decision = iota
	// DecisionRetry asks for exactly one replacement guess.
	DecisionRetry
	// DecisionAbandon gives up on the failed guess.
	DecisionAbandon
)

func (d Decision) String() string {
	switch d {
	case DecisionRetry:
		return "retrying"
	case DecisionAbandon:
		return "abandoned"
	default:
		return "reprompt"
	}
}

// Confirm maps a free-text answer to a Decision. Only "y" and "n" are
// accepted, case-insensitively and ignoring surrounding spaces.
func Confirm(response string) Decision {
	switch strings.ToLower(strings.TrimSpace(response)) {
	case "y":
		return DecisionRetry
	case "n":
		return DecisionAbandon
	}
	return DecisionReprompt
}
