package domain

// EquationID identifies a registered equation (e.g. "f1").
type EquationID string

// Func is a pure scalar function of one real variable.
type Func func(x float64) float64

// Equation is a named scalar function whose roots the explorer searches for.
// Equations are defined once at startup and never mutated.
type Equation struct {
	ID EquationID `json:"id"`

	// Label is the human readable form used in prompts and reports,
	// e.g. "x - 3cos(x) = 0".
	Label string `json:"label"`

	// Expr is the right-hand expression used as a plot legend, e.g. "x - 3cos(x)".
	Expr string `json:"expr"`

	Fn Func `json:"-"`
}

// Eval evaluates the equation at x.
func (e Equation) Eval(x float64) float64 {
	return e.Fn(x)
}

// Guess is a user supplied starting point for a root search.
type Guess struct {
	Equation EquationID `json:"equation"`
	Value    float64    `json:"value"`

	// Index is the 1-based position of the guess in the comma separated input line.
	Index int `json:"index"`
}

// GuessBatch holds every guess entered for one equation, in input order.
type GuessBatch struct {
	Equation EquationID `json:"equation"`
	Guesses  []Guess    `json:"guesses"`
}

// NewGuessBatch wraps parsed values into indexed guesses.
func NewGuessBatch(id EquationID, values []float64) GuessBatch {
	b := GuessBatch{Equation: id, Guesses: make([]Guess, len(values))}
	for i, v := range values {
		b.Guesses[i] = Guess{Equation: id, Value: v, Index: i + 1}
	}
	return b
}
