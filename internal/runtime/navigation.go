package runtime

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/rootseek/pkg/domain"
	"github.com/aretw0/rootseek/pkg/solver"
)

// Navigate computes the next state from the current state and one line of input.
// The input state is never mutated.
//
// A malformed guess list or replacement guess returns a *domain.NumericInputError
// unless re-prompting was enabled, in which case the state is returned unchanged
// apart from an explanatory message in the outbox.
func (e *Engine) Navigate(ctx context.Context, current *domain.State, input string) (*domain.State, error) {
	if current == nil {
		return nil, fmt.Errorf("navigate: nil state")
	}
	if current.Terminated() {
		return current, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	next := current.Snapshot()
	next.Outbox = nil
	prevStep := next.Step()

	var err error
	switch next.Phase {
	case domain.PhaseAwaitGuesses:
		err = e.acceptGuesses(next, input)
	case domain.PhaseProcessGuesses:
		err = e.processGuess(ctx, next)
	case domain.PhaseAwaitConfirmation:
		e.confirm(ctx, next, input)
	case domain.PhaseAwaitReplacement:
		err = e.acceptReplacement(ctx, next, input)
	case domain.PhaseAwaitIntersection:
		err = e.acceptIntersection(ctx, next, input)
	default:
		err = fmt.Errorf("unknown phase %q", next.Phase)
	}
	if err != nil {
		return nil, err
	}

	if step := next.Step(); step != prevStep {
		next.History = append(next.History, step)
		e.emitPhaseEnter(ctx, next)
		e.logger.Debug("phase transition", "session_id", next.SessionID, "from", prevStep, "to", step)
	}
	return next, nil
}

func (e *Engine) acceptGuesses(state *domain.State, input string) error {
	values, err := ParseGuessList(input)
	if err != nil {
		return e.rejectInput(state, err)
	}

	state.Batches = append(state.Batches, domain.NewGuessBatch(state.CurrentEquation(), values))

	if state.Cursor.Equation+1 < len(state.Equations) {
		state.Cursor.Equation++
		if plot, ok := e.curvePlot(state.CurrentEquation(), nil); ok {
			state.Outbox = append(state.Outbox, plot)
		}
		return nil
	}

	state.Cursor = domain.Cursor{}
	state.Phase = domain.PhaseProcessGuesses
	e.skipEmptyBatches(state)
	return nil
}

// rejectInput either aborts the run or keeps the state and explains why.
func (e *Engine) rejectInput(state *domain.State, err error) error {
	if !e.reprompt {
		return err
	}
	e.logger.Debug("invalid guess input", "session_id", state.SessionID, "err", err)
	state.Outbox = append(state.Outbox, domain.Content("%s", invalidNumberMsg))
	return nil
}

func (e *Engine) processGuess(ctx context.Context, state *domain.State) error {
	guess, ok := state.CurrentGuess()
	if !ok {
		e.advance(state)
		return nil
	}
	eq, err := e.equation(guess.Equation)
	if err != nil {
		return err
	}

	out := solver.FindRoot(eq.Fn, guess.Value, e.search)
	e.emitRootSearch(ctx, state, guess, out, false)

	if root, found := out.Value(); found {
		state.RecordRoot(eq.ID, root)
		state.Outbox = append(state.Outbox,
			domain.Content("Root near to guess #%d for %s: %s", guess.Index, eq.Label, FormatFloat(root)))
		e.advance(state)
		return nil
	}

	g := guess
	state.Pending = &g
	state.Phase = domain.PhaseAwaitConfirmation
	return nil
}

func (e *Engine) confirm(ctx context.Context, state *domain.State, input string) {
	d := Confirm(input)
	e.emitRetry(ctx, state, d)

	switch d {
	case DecisionRetry:
		state.Phase = domain.PhaseAwaitReplacement
	case DecisionAbandon:
		state.Pending = nil
		e.advance(state)
	default:
		state.Outbox = append(state.Outbox, domain.Content("%s", invalidResponseMsg))
	}
}

func (e *Engine) acceptReplacement(ctx context.Context, state *domain.State, input string) error {
	value, err := ParseGuess(input)
	if err != nil {
		return e.rejectInput(state, err)
	}
	if state.Pending == nil {
		return fmt.Errorf("replacement without a pending guess")
	}
	eq, err := e.equation(state.Pending.Equation)
	if err != nil {
		return err
	}

	g := domain.Guess{Equation: eq.ID, Value: value, Index: state.Pending.Index}
	out := solver.FindRoot(eq.Fn, value, e.search)
	e.emitRootSearch(ctx, state, g, out, true)

	if root, found := out.Value(); found {
		state.RecordRoot(eq.ID, root)
		state.Outbox = append(state.Outbox,
			domain.Content("Root near to new guess for %s: %s", eq.Label, FormatFloat(root)))
	}
	// A second failure is silent: the retry budget is one guess.
	state.Pending = nil
	e.advance(state)
	return nil
}

func (e *Engine) acceptIntersection(ctx context.Context, state *domain.State, input string) error {
	guess, err := ParseGuess(input)
	if err != nil {
		state.Outbox = append(state.Outbox, domain.Content("%s", invalidNumberMsg))
		return nil
	}

	f, err := e.equation(state.Equations[0])
	if err != nil {
		return err
	}
	g, err := e.equation(state.Equations[1])
	if err != nil {
		return err
	}

	res, err := solver.FindIntersection(f.Fn, g.Fn, guess, e.search)
	e.emitIntersection(ctx, state, guess, res)
	state.Phase = domain.PhaseDone

	if err != nil {
		if errors.Is(err, domain.ErrToleranceRejected) {
			state.Outbox = append(state.Outbox,
				domain.Content("No intersection found near x = %s.", FormatFloat(guess)))
			return nil
		}
		return err
	}

	state.Intersection = &res
	if plot, ok := e.intersectionPlot(state, res); ok {
		state.Outbox = append(state.Outbox, plot)
	}
	state.Outbox = append(state.Outbox,
		domain.Content("The equations intersect at the point: (%s, %s)", FormatFloat(res.X), FormatFloat(res.Y)))
	return nil
}

// advance moves the cursor past the current guess. After the last guess of the
// last equation it re-plots every equation that ever had a root accepted and
// waits for the intersection guess.
func (e *Engine) advance(state *domain.State) {
	state.Phase = domain.PhaseProcessGuesses
	state.Cursor.Guess++
	e.skipEmptyBatches(state)
}

// skipEmptyBatches moves the cursor to the next guess that exists, or finishes.
func (e *Engine) skipEmptyBatches(state *domain.State) {
	for state.Cursor.Equation < len(state.Batches) {
		if _, ok := state.CurrentGuess(); ok {
			return
		}
		state.Cursor.Equation++
		state.Cursor.Guess = 0
	}
	e.finishGuesses(state)
}

func (e *Engine) finishGuesses(state *domain.State) {
	for _, id := range state.Equations {
		if state.LastRoot[id] == nil {
			continue
		}
		if plot, ok := e.curvePlot(id, state.Roots[id]); ok {
			state.Outbox = append(state.Outbox, plot)
		}
	}
	state.Cursor = domain.Cursor{Equation: len(state.Equations) - 1}
	state.Phase = domain.PhaseAwaitIntersection
}
