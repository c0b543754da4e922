package runtime

import (
	"context"
	"fmt"

	"github.com/aretw0/rootseek/pkg/domain"
)

const (
	guessIntro = "Using the provided plots, make a guess where a root might exist in each equation, " +
		"multiple guesses should be separated by commas.\n"
	guessPrompt        = "For %s, your guess is:  "
	confirmPrompt      = "Unable to locate root near guess %s for equation %s, guess again? (y/n): "
	replacementPrompt  = "Enter a new guess: "
	intersectionPrompt = "Guess x-coordinate where the lines might intersect (one pt. only): "

	invalidResponseMsg = "Invalid response. Please enter 'y' or 'n'."
	invalidNumberMsg   = "Invalid input. Please enter a number."
)

// Render returns the actions for the current state: the outbox produced by the
// last transition followed by the input request of the current phase.
// The boolean reports whether the run is terminal.
func (e *Engine) Render(ctx context.Context, state *domain.State) ([]domain.ActionRequest, bool, error) {
	if state == nil {
		return nil, false, fmt.Errorf("render: nil state")
	}
	actions := append([]domain.ActionRequest(nil), state.Outbox...)

	if state.Terminated() {
		return actions, true, nil
	}

	req, err := e.renderInputRequest(state)
	if err != nil {
		return nil, false, err
	}
	if req != nil {
		actions = append(actions, *req)
	}
	return actions, false, nil
}

// renderInputRequest returns nil for phases that advance without input.
func (e *Engine) renderInputRequest(state *domain.State) (*domain.ActionRequest, error) {
	var act domain.ActionRequest

	switch state.Phase {
	case domain.PhaseAwaitGuesses:
		eq, err := e.equation(state.CurrentEquation())
		if err != nil {
			return nil, err
		}
		prompt := fmt.Sprintf(guessPrompt, eq.Label)
		if state.Cursor.Equation == 0 {
			prompt = guessIntro + prompt
		}
		act = domain.Ask(domain.InputNumbers, prompt)

	case domain.PhaseAwaitConfirmation:
		if state.Pending == nil {
			return nil, fmt.Errorf("confirmation without a pending guess")
		}
		eq, err := e.equation(state.Pending.Equation)
		if err != nil {
			return nil, err
		}
		act = domain.Ask(domain.InputConfirm,
			fmt.Sprintf(confirmPrompt, FormatFloat(state.Pending.Value), eq.Label), "y", "n")

	case domain.PhaseAwaitReplacement:
		act = domain.Ask(domain.InputNumber, replacementPrompt)

	case domain.PhaseAwaitIntersection:
		act = domain.Ask(domain.InputNumber, intersectionPrompt)

	default:
		return nil, nil
	}
	return &act, nil
}

// curvePlot builds the plot of one equation with the given roots marked on the x axis.
func (e *Engine) curvePlot(id domain.EquationID, roots []float64) (domain.ActionRequest, bool) {
	if !e.plots.Enabled {
		return domain.ActionRequest{}, false
	}
	eq, err := e.equation(id)
	if err != nil {
		return domain.ActionRequest{}, false
	}
	markers := make([]domain.Point, 0, len(roots))
	for _, r := range roots {
		markers = append(markers, domain.Point{X: r, Y: 0})
	}
	return domain.Plot(domain.PlotRequest{
		Kind:      domain.PlotCurve,
		Title:     "Plot of " + eq.Label,
		Equations: []domain.EquationID{id},
		Markers:   markers,
		XMin:      e.plots.XMin,
		XMax:      e.plots.XMax,
	}), true
}

func (e *Engine) intersectionPlot(state *domain.State, res domain.IntersectionResult) (domain.ActionRequest, bool) {
	if !e.plots.Enabled || !e.plots.Intersection || !res.Finite() {
		return domain.ActionRequest{}, false
	}
	return domain.Plot(domain.PlotRequest{
		Kind:      domain.PlotIntersection,
		Title:     "Intersection",
		Equations: state.Equations[:2],
		Markers:   []domain.Point{{X: res.X, Y: res.Y}},
		XMin:      e.plots.IntersectionXMin,
		XMax:      e.plots.IntersectionXMax,
	}), true
}
