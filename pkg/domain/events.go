package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventPhaseEnter   EventType = "phase_enter"
	EventRootSearch   EventType = "root_search"
	EventRetry        EventType = "retry"
	EventIntersection EventType = "intersection"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id,omitempty"`
}

// PhaseEvent represents entry into a phase of the refinement loop.
type PhaseEvent struct {
	EventBase
	Phase Phase  `json:"phase"`
	Step  string `json:"step"`
}

// SearchEvent represents one guarded root search.
type SearchEvent struct {
	EventBase
	Equation EquationID  `json:"equation"`
	Guess    Guess       `json:"guess"`
	Outcome  RootOutcome `json:"outcome"`
	Retry    bool        `json:"retry,omitempty"`
}

// RetryEvent represents a decision taken at the retry prompt.
type RetryEvent struct {
	EventBase
	Equation EquationID `json:"equation"`
	Decision string     `json:"decision"`
}

// IntersectionEvent represents one intersection search.
type IntersectionEvent struct {
	EventBase
	Guess  float64            `json:"guess"`
	Result IntersectionResult `json:"result"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnPhaseEnter   func(context.Context, *PhaseEvent)
	OnRootSearch   func(context.Context, *SearchEvent)
	OnRetry        func(context.Context, *RetryEvent)
	OnIntersection func(context.Context, *IntersectionEvent)
}
