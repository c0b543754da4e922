package runtime_test

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/aretw0/rootseek/internal/runtime"
	"github.com/aretw0/rootseek/pkg/domain"
	"github.com/aretw0/rootseek/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// transcript collects what a host would have shown while driving the engine.
type transcript struct {
	contents []string
	prompts  []string
	plots    []domain.PlotRequest
}

func (tr *transcript) record(actions []domain.ActionRequest) (needsInput bool) {
	for _, act := range actions {
		switch act.Type {
		case domain.ActionRenderContent:
			tr.contents = append(tr.contents, act.Payload.(string))
		case domain.ActionRenderPlot:
			tr.plots = append(tr.plots, act.Payload.(domain.PlotRequest))
		case domain.ActionRequestInput:
			tr.prompts = append(tr.prompts, act.Payload.(domain.InputRequest).Prompt)
			needsInput = true
		}
	}
	return needsInput
}

// drive feeds inputs to the engine the way the runner does: phases that
// need no input are navigated with an empty line.
func drive(t *testing.T, e *runtime.Engine, state *domain.State, inputs ...string) (*domain.State, *transcript) {
	t.Helper()
	ctx := context.Background()
	tr := &transcript{}

	for i := 0; i < 100; i++ {
		actions, terminal, err := e.Render(ctx, state)
		require.NoError(t, err)
		needsInput := tr.record(actions)
		if terminal {
			return state, tr
		}

		input := ""
		if needsInput {
			if len(inputs) == 0 {
				return state, tr
			}
			input, inputs = inputs[0], inputs[1:]
		}
		state, err = e.Navigate(ctx, state, input)
		require.NoError(t, err)
	}
	t.Fatal("engine did not settle")
	return nil, nil
}

func contains(lines []string, prefix string) bool {
	for _, l := range lines {
		if strings.HasPrefix(l, prefix) {
			return true
		}
	}
	return false
}

// quadRegistry holds g1(x) = x² - 4 (derivative vanishes at 0) and g2(x) = x.
func quadRegistry() *registry.Registry {
	reg := registry.NewRegistry()
	reg.Register(domain.Equation{ID: "g1", Label: "x² - 4 = 0", Fn: func(x float64) float64 { return x*x - 4 }})
	reg.Register(domain.Equation{ID: "g2", Label: "x = 0", Fn: func(x float64) float64 { return x }})
	return reg
}

func TestEngine_DefaultFlow(t *testing.T) {
	e := runtime.NewEngine(registry.Default())
	state, err := e.Start(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseAwaitGuesses, state.Phase)

	final, tr := drive(t, e, state, "1.0", "0", "1.0")

	require.True(t, final.Terminated())
	assert.True(t, contains(tr.contents, "Root near to guess #1 for x - 3cos(x) = 0: 1.170"), tr.contents)
	assert.Contains(t, tr.contents, "Root near to guess #1 for cos(2x) · x³ = 0: 0.0")
	assert.True(t, contains(tr.contents, "The equations intersect at the point: ("), tr.contents)

	require.Len(t, tr.prompts, 3)
	assert.True(t, strings.HasPrefix(tr.prompts[0], "Using the provided plots"))
	assert.True(t, strings.HasSuffix(tr.prompts[0], "For x - 3cos(x) = 0, your guess is:  "))
	assert.Equal(t, "For cos(2x) · x³ = 0, your guess is:  ", tr.prompts[1])
	assert.Equal(t, "Guess x-coordinate where the lines might intersect (one pt. only): ", tr.prompts[2])

	// Initial curves, both curves with roots marked, then the intersection.
	require.Len(t, tr.plots, 5)
	assert.Equal(t, domain.PlotCurve, tr.plots[0].Kind)
	assert.Empty(t, tr.plots[0].Markers)
	assert.Equal(t, "Plot of x - 3cos(x) = 0", tr.plots[0].Title)
	assert.Equal(t, -15.0, tr.plots[0].XMin)
	assert.Len(t, tr.plots[2].Markers, 1)
	assert.Len(t, tr.plots[3].Markers, 1)
	assert.Equal(t, domain.PlotIntersection, tr.plots[4].Kind)
	assert.Equal(t, -10.0, tr.plots[4].XMin)

	require.NotNil(t, final.Intersection)
	in := final.Intersection
	f1 := registry.Default()
	y1, _ := f1.Evaluate(registry.F1, in.X)
	y2, _ := f1.Evaluate(registry.F2, in.X)
	assert.InDelta(t, y1, y2, 1e-6)
	assert.InDelta(t, y1, in.Y, 1e-12)

	require.NotNil(t, final.LastRoot[registry.F1])
	assert.InDelta(t, 1.1701, *final.LastRoot[registry.F1], 1e-4)

	assert.Equal(t, []string{
		"AwaitGuessesEq1",
		"AwaitGuessesEq2",
		"ProcessEq1Guesses",
		"ProcessEq2Guesses",
		"AwaitIntersectionGuess",
		"Done",
	}, final.History)
}

func TestEngine_MultipleGuessesAreLabeledByPosition(t *testing.T) {
	e := runtime.NewEngine(registry.Default(), runtime.WithPlotSettings(runtime.PlotSettings{}))
	state, err := e.Start(context.Background(), "")
	require.NoError(t, err)

	final, tr := drive(t, e, state, "1.0, 1.2", "0")
	assert.Equal(t, domain.PhaseAwaitIntersection, final.Phase)
	assert.True(t, contains(tr.contents, "Root near to guess #1 for x - 3cos(x) = 0: "))
	assert.True(t, contains(tr.contents, "Root near to guess #2 for x - 3cos(x) = 0: "))
	assert.Len(t, final.Roots[registry.F1], 2)
	assert.Empty(t, tr.plots)
}

func TestEngine_MalformedGuessListIsFatal(t *testing.T) {
	e := runtime.NewEngine(registry.Default())
	ctx := context.Background()
	state, err := e.Start(ctx, "")
	require.NoError(t, err)

	next, err := e.Navigate(ctx, state, "abc,2")
	require.Error(t, err)
	assert.Nil(t, next)
	assert.ErrorIs(t, err, domain.ErrNumericInput)
	assert.Equal(t, domain.PhaseAwaitGuesses, state.Phase, "input state must not change")
}

func TestEngine_RepromptInvalidGuesses(t *testing.T) {
	e := runtime.NewEngine(registry.Default(), runtime.WithRepromptInvalidGuesses(true))
	ctx := context.Background()
	state, err := e.Start(ctx, "")
	require.NoError(t, err)

	next, err := e.Navigate(ctx, state, "abc,2")
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseAwaitGuesses, next.Phase)
	assert.Equal(t, 0, next.Cursor.Equation)
	require.Len(t, next.Outbox, 1)
	assert.Equal(t, "Invalid input. Please enter a number.", next.Outbox[0].Payload)
	assert.Equal(t, []string{"AwaitGuessesEq1"}, next.History)
}

func TestEngine_RetryFlow(t *testing.T) {
	e := runtime.NewEngine(quadRegistry())
	ctx := context.Background()
	state, err := e.Start(ctx, "retry")
	require.NoError(t, err)

	// g1 guess 0 has a vanishing derivative.
	state, tr := drive(t, e, state, "0", "1")
	require.Equal(t, domain.PhaseAwaitConfirmation, state.Phase)
	assert.Equal(t, "Unable to locate root near guess 0.0 for equation x² - 4 = 0, guess again? (y/n): ",
		tr.prompts[len(tr.prompts)-1])

	// Anything but y/n re-prompts without changing state.
	next, err := e.Navigate(ctx, state, "maybe")
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseAwaitConfirmation, next.Phase)
	assert.Equal(t, state.Pending, next.Pending)
	require.Len(t, next.Outbox, 1)
	assert.Equal(t, "Invalid response. Please enter 'y' or 'n'.", next.Outbox[0].Payload)

	next, err = e.Navigate(ctx, next, "Y")
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseAwaitReplacement, next.Phase)

	final, tr := drive(t, e, next, "3", "2")
	require.True(t, final.Terminated())

	assert.True(t, contains(tr.contents, "Root near to new guess for x² - 4 = 0: 2"), tr.contents)
	require.NotNil(t, final.LastRoot["g1"])
	assert.InDelta(t, 2.0, *final.LastRoot["g1"], 1e-6)
	assert.Len(t, final.Roots["g1"], 1)

	require.NotNil(t, final.Intersection)
	assert.InDelta(t, (1+math.Sqrt(17))/2, final.Intersection.X, 1e-6)
}

func TestEngine_RetryAbandoned(t *testing.T) {
	e := runtime.NewEngine(quadRegistry())
	state, err := e.Start(context.Background(), "")
	require.NoError(t, err)

	final, tr := drive(t, e, state, "0", "1", "n")
	assert.Equal(t, domain.PhaseAwaitIntersection, final.Phase)
	assert.Nil(t, final.LastRoot["g1"])
	assert.Nil(t, final.Pending)
	assert.False(t, contains(tr.contents, "Root near to new guess"))

	// Only g2 had a root, so only g2 is re-plotted with markers.
	var marked []domain.EquationID
	for _, p := range tr.plots {
		if len(p.Markers) > 0 {
			marked = append(marked, p.Equations...)
		}
	}
	assert.Equal(t, []domain.EquationID{"g2"}, marked)
}

func TestEngine_SecondFailureIsSilent(t *testing.T) {
	e := runtime.NewEngine(quadRegistry())
	state, err := e.Start(context.Background(), "")
	require.NoError(t, err)

	final, tr := drive(t, e, state, "0", "1", "y", "0")
	assert.Equal(t, domain.PhaseAwaitIntersection, final.Phase, "single retry budget")
	assert.Nil(t, final.LastRoot["g1"])
	assert.False(t, contains(tr.contents, "Root near to new guess"))
	assert.True(t, contains(tr.contents, "Root near to guess #1 for x = 0: "))
}

func TestEngine_IntersectionRepromptsOnInvalidNumber(t *testing.T) {
	e := runtime.NewEngine(registry.Default())
	state, err := e.Start(context.Background(), "")
	require.NoError(t, err)

	state, tr := drive(t, e, state, "1.0", "0", "here", "1,2")
	assert.Equal(t, domain.PhaseAwaitIntersection, state.Phase)
	assert.Equal(t, 2, strings.Count(strings.Join(tr.contents, "\n"), "Invalid input. Please enter a number."))

	final, _ := drive(t, e, state, "1.0")
	assert.True(t, final.Terminated())
}

func TestEngine_ValidateIntersection(t *testing.T) {
	reg := registry.NewRegistry()
	reg.Register(domain.Equation{ID: "h1", Label: "x² + 1 = 0", Fn: func(x float64) float64 { return x*x + 1 }})
	reg.Register(domain.Equation{ID: "h2", Label: "0 = 0", Fn: func(float64) float64 { return 0 }})

	opts := runtime.NewEngine(reg).SearchOptions()
	opts.ValidateIntersection = true
	e := runtime.NewEngine(reg, runtime.WithSearchOptions(opts))

	state, err := e.Start(context.Background(), "")
	require.NoError(t, err)

	final, tr := drive(t, e, state, "0", "0", "n", "0")
	require.True(t, final.Terminated())
	assert.Nil(t, final.Intersection)
	assert.Contains(t, tr.contents, "No intersection found near x = 0.0.")
	assert.False(t, contains(tr.contents, "The equations intersect"))
}

func TestEngine_UnvalidatedIntersectionIsAlwaysReported(t *testing.T) {
	reg := registry.NewRegistry()
	reg.Register(domain.Equation{ID: "h1", Label: "x² + 1 = 0", Fn: func(x float64) float64 { return x*x + 1 }})
	reg.Register(domain.Equation{ID: "h2", Label: "0 = 0", Fn: func(float64) float64 { return 0 }})
	e := runtime.NewEngine(reg)

	state, err := e.Start(context.Background(), "")
	require.NoError(t, err)

	final, tr := drive(t, e, state, "0", "0", "n", "0")
	require.True(t, final.Terminated())
	require.NotNil(t, final.Intersection)
	assert.False(t, final.Intersection.Converged)
	assert.Contains(t, tr.contents, "The equations intersect at the point: (0.0, 1.0)")
}

func TestEngine_NavigateDoesNotMutateInput(t *testing.T) {
	e := runtime.NewEngine(registry.Default())
	ctx := context.Background()
	state, err := e.Start(ctx, "")
	require.NoError(t, err)

	before := state.Snapshot()
	_, err = e.Navigate(ctx, state, "1.0")
	require.NoError(t, err)
	assert.Equal(t, before, state)
}

func TestEngine_NavigateTerminatedIsNoop(t *testing.T) {
	e := runtime.NewEngine(registry.Default())
	state := domain.NewState("", []domain.EquationID{registry.F1, registry.F2})
	state.Phase = domain.PhaseDone

	next, err := e.Navigate(context.Background(), state, "anything")
	require.NoError(t, err)
	assert.Same(t, state, next)
}

func TestEngine_StartRequiresTwoEquations(t *testing.T) {
	e := runtime.NewEngine(registry.Default(), runtime.WithEquations(registry.F1))
	_, err := e.Start(context.Background(), "")
	assert.Error(t, err)

	e = runtime.NewEngine(registry.Default(), runtime.WithEquations(registry.F1, "nope"))
	_, err = e.Start(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrUnknownEquation)
}

func TestEngine_CancelledContext(t *testing.T) {
	e := runtime.NewEngine(registry.Default())
	state, err := e.Start(context.Background(), "")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = e.Navigate(ctx, state, "1.0")
	assert.ErrorIs(t, err, context.Canceled)
}
