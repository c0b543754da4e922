package graph_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/aretw0/rootseek/internal/presentation/graph"
	"github.com/aretw0/rootseek/internal/runtime"
	"github.com/aretw0/rootseek/pkg/domain"
)

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name        string
		transitions []domain.Transition
		contains    []string
	}{
		{
			name:        "Node Shapes",
			transitions: runtime.Transitions(),
			contains: []string{
				`await_guesses(("await_guesses"))`,
				`process_guesses[["process_guesses"]]`,
				`await_confirmation[/"await_confirmation"/]`,
				`done((("done")))`,
			},
		},
		{
			name: "Labelled Edge",
			transitions: []domain.Transition{
				{From: domain.PhaseAwaitConfirmation, To: domain.PhaseAwaitReplacement, Label: "y"},
			},
			contains: []string{`await_confirmation -- "y" --> await_replacement`},
		},
		{
			name: "Quote Escaping",
			transitions: []domain.Transition{
				{From: domain.PhaseAwaitGuesses, To: domain.PhaseDone, Label: `say "hi"`},
			},
			contains: []string{`-- "say 'hi'" -->`},
		},
		{
			name: "Unlabelled Edge",
			transitions: []domain.Transition{
				{From: domain.PhaseAwaitIntersection, To: domain.PhaseDone},
			},
			contains: []string{"await_intersection --> done"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := graph.GenerateMermaid(tt.transitions, nil)
			assert.True(t, strings.HasPrefix(out, "graph TD\n"))
			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
			assert.NotContains(t, out, "classDef")
		})
	}
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	state := &domain.State{
		Phase:   domain.PhaseAwaitConfirmation,
		History: []string{"AwaitGuessesEq1", "AwaitGuessesEq2", "ProcessEq1Guesses", "AwaitConfirmationEq1"},
	}

	overlay := graph.OverlayFromState(state)
	want := []domain.Phase{
		domain.PhaseAwaitGuesses,
		domain.PhaseAwaitGuesses,
		domain.PhaseProcessGuesses,
		domain.PhaseAwaitConfirmation,
	}
	if diff := cmp.Diff(want, overlay.Visited); diff != "" {
		t.Errorf("visited phases mismatch (-want +got):\n%s", diff)
	}

	out := graph.GenerateMermaid(runtime.Transitions(), overlay)
	assert.Equal(t, 1, strings.Count(out, "class await_guesses visited;"), "visited phases are deduplicated")
	assert.Contains(t, out, "class process_guesses visited;")
	assert.Contains(t, out, "class await_confirmation current;")
	assert.NotContains(t, out, "class done")
}

func TestPhaseOfStep(t *testing.T) {
	for _, step := range []string{"AwaitReplacementEq2", "AwaitIntersectionGuess", "Done"} {
		_, ok := graph.PhaseOfStep(step)
		assert.True(t, ok, step)
	}
	_, ok := graph.PhaseOfStep("Elsewhere")
	assert.False(t, ok)
	assert.Nil(t, graph.OverlayFromState(nil))
}
