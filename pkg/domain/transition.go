package domain

// Transition is one edge of the refinement loop, used for introspection
// (graph export) rather than for driving the engine.
type Transition struct {
	From  Phase  `json:"from"`
	To    Phase  `json:"to"`
	Label string `json:"label,omitempty"`
}
