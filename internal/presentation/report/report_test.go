package report

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/rootseek/pkg/domain"
)

func TestMarkdown(t *testing.T) {
	state := domain.NewState("demo", []domain.EquationID{"f1", "f2"})
	state.Batches = []domain.GuessBatch{
		domain.NewGuessBatch("f1", []float64{1, 2}),
		domain.NewGuessBatch("f2", []float64{0.5}),
	}
	state.RecordRoot("f1", 1.1701209)
	state.Phase = domain.PhaseDone
	state.History = append(state.History, "Done")
	state.Intersection = &domain.IntersectionResult{X: 1.25, Y: -2.5, Residual: 1e-12, Converged: true}

	labels := map[domain.EquationID]string{"f1": "x - 3cos(x) = 0"}
	md := Markdown(state, func(id domain.EquationID) string { return labels[id] })

	assert.Contains(t, md, "# Session demo")
	assert.Contains(t, md, "**Step:** `Done`")
	assert.Contains(t, md, "| x - 3cos(x) = 0 | 1, 2 | 1.1701209 |")
	assert.Contains(t, md, "| f2 | 0.5 | none |", "unknown labels fall back to the ID")
	assert.Contains(t, md, "- Point: (1.25, -2.5)")
	assert.Contains(t, md, "1. AwaitGuessesEq1\n2. Done\n")
}

func TestMarkdown_InProgress(t *testing.T) {
	state := domain.NewState("", []domain.EquationID{"f1", "f2"})
	state.Pending = &domain.Guess{Equation: "f1", Value: 0, Index: 1}

	md := Markdown(state, nil)
	assert.Contains(t, md, "# Session (ephemeral)")
	assert.Contains(t, md, "| f1 | - | none |")
	assert.Contains(t, md, "Retry pending for guess 0 of f1.")
	assert.Contains(t, md, "Not located.")
	assert.Empty(t, Markdown(nil, nil))
}
