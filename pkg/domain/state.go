package domain

import "fmt"

// Phase is a state of the refinement loop.
type Phase string

const (
	PhaseAwaitGuesses      Phase = "await_guesses"      // Reading a guess list for Cursor.Equation
	PhaseProcessGuesses    Phase = "process_guesses"    // Searching the guess at Cursor (no input)
	PhaseAwaitConfirmation Phase = "await_confirmation" // A guess failed, asking y/n
	PhaseAwaitReplacement  Phase = "await_replacement"  // Reading the single replacement guess
	PhaseAwaitIntersection Phase = "await_intersection" // Reading the intersection guess
	PhaseDone              Phase = "done"               // Sink state
)

// Phases lists every phase in flow order.
var Phases = []Phase{
	PhaseAwaitGuesses,
	PhaseProcessGuesses,
	PhaseAwaitConfirmation,
	PhaseAwaitReplacement,
	PhaseAwaitIntersection,
	PhaseDone,
}

// Cursor points at the guess being processed.
type Cursor struct {
	Equation int `json:"equation"` // index into State.Equations
	Guess    int `json:"guess"`    // index into the batch of that equation
}

// State represents the current snapshot of one explorer run.
// It is plain data so it can be persisted and resumed.
type State struct {
	SessionID string `json:"session_id,omitempty"`

	Phase  Phase  `json:"phase"`
	Cursor Cursor `json:"cursor"`

	// Equations is the ordered list of equations explored in this run.
	Equations []EquationID `json:"equations"`

	// Batches holds the guesses entered per equation, aligned with Equations.
	Batches []GuessBatch `json:"batches"`

	// Pending is the failed guess a retry is being offered for.
	Pending *Guess `json:"pending,omitempty"`

	// Roots collects every accepted root per equation, used for plot markers.
	Roots map[EquationID][]float64 `json:"roots"`

	// LastRoot is the last accepted root per equation. A nil slot means no root
	// was ever found for that equation during this run.
	LastRoot map[EquationID]*float64 `json:"last_root"`

	Intersection *IntersectionResult `json:"intersection,omitempty"`

	// Outbox holds the reports and plots produced by the last transition.
	// It is replaced on every Navigate.
	Outbox []ActionRequest `json:"outbox,omitempty"`

	History []string `json:"history"`

	// Sealed carries the encrypted snapshot when the store encrypts sessions.
	// Every other field except SessionID and Phase is then left empty.
	Sealed string `json:"sealed,omitempty"`
}

// NewState creates a clean state awaiting guesses for the first equation.
func NewState(sessionID string, equations []EquationID) *State {
	s := &State{
		SessionID: sessionID,
		Phase:     PhaseAwaitGuesses,
		Equations: append([]EquationID(nil), equations...),
		Roots:     make(map[EquationID][]float64),
		LastRoot:  make(map[EquationID]*float64),
	}
	s.History = []string{s.Step()}
	return s
}

// CurrentEquation returns the equation the cursor points at.
func (s *State) CurrentEquation() EquationID {
	if s.Cursor.Equation < 0 || s.Cursor.Equation >= len(s.Equations) {
		return ""
	}
	return s.Equations[s.Cursor.Equation]
}

// CurrentGuess returns the guess under the cursor, if any.
func (s *State) CurrentGuess() (Guess, bool) {
	if s.Cursor.Equation >= len(s.Batches) {
		return Guess{}, false
	}
	b := s.Batches[s.Cursor.Equation]
	if s.Cursor.Guess >= len(b.Guesses) {
		return Guess{}, false
	}
	return b.Guesses[s.Cursor.Guess], true
}

// Step names the phase together with its equation ordinal, e.g. "AwaitGuessesEq1".
func (s *State) Step() string {
	eq := s.Cursor.Equation + 1
	switch s.Phase {
	case PhaseAwaitGuesses:
		return fmt.Sprintf("AwaitGuessesEq%d", eq)
	case PhaseProcessGuesses:
		return fmt.Sprintf("ProcessEq%dGuesses", eq)
	case PhaseAwaitConfirmation:
		return fmt.Sprintf("AwaitConfirmationEq%d", eq)
	case PhaseAwaitReplacement:
		return fmt.Sprintf("AwaitReplacementEq%d", eq)
	case PhaseAwaitIntersection:
		return "AwaitIntersectionGuess"
	case PhaseDone:
		return "Done"
	}
	return string(s.Phase)
}

// Terminated reports whether the run reached its sink state.
func (s *State) Terminated() bool {
	return s.Phase == PhaseDone
}

// RecordRoot stores an accepted root and fills the equation's last-root slot.
func (s *State) RecordRoot(id EquationID, root float64) {
	if s.Roots == nil {
		s.Roots = make(map[EquationID][]float64)
	}
	if s.LastRoot == nil {
		s.LastRoot = make(map[EquationID]*float64)
	}
	s.Roots[id] = append(s.Roots[id], root)
	r := root
	s.LastRoot[id] = &r
}

// Snapshot returns a deep copy of the state.
func (s *State) Snapshot() *State {
	if s == nil {
		return nil
	}
	c := *s
	c.Equations = append([]EquationID(nil), s.Equations...)
	c.Batches = nil
	for _, b := range s.Batches {
		c.Batches = append(c.Batches, GuessBatch{Equation: b.Equation, Guesses: append([]Guess(nil), b.Guesses...)})
	}
	if s.Pending != nil {
		p := *s.Pending
		c.Pending = &p
	}
	c.Roots = make(map[EquationID][]float64, len(s.Roots))
	for k, v := range s.Roots {
		c.Roots[k] = append([]float64(nil), v...)
	}
	c.LastRoot = make(map[EquationID]*float64, len(s.LastRoot))
	for k, v := range s.LastRoot {
		if v != nil {
			r := *v
			c.LastRoot[k] = &r
		} else {
			c.LastRoot[k] = nil
		}
	}
	if s.Intersection != nil {
		in := *s.Intersection
		c.Intersection = &in
	}
	c.Outbox = append([]ActionRequest(nil), s.Outbox...)
	c.History = append([]string(nil), s.History...)
	return &c
}
