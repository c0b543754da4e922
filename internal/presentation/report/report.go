// Package report summarises a persisted session as markdown.
package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/rootseek/pkg/domain"
)

// LabelFunc resolves an equation ID to its display label.
type LabelFunc func(domain.EquationID) string

// Markdown renders the guesses, roots and intersection recorded in state.
// Labels fall back to the equation ID when label is nil or returns "".
func Markdown(state *domain.State, label LabelFunc) string {
	if state == nil {
		return ""
	}
	name := func(id domain.EquationID) string {
		if label != nil {
			if l := label(id); l != "" {
				return l
			}
		}
		return string(id)
	}

	var sb strings.Builder
	title := state.SessionID
	if title == "" {
		title = "(ephemeral)"
	}
	fmt.Fprintf(&sb, "# Session %s\n\n", title)
	fmt.Fprintf(&sb, "**Step:** `%s`\n\n", state.Step())

	sb.WriteString("## Equations\n\n")
	sb.WriteString("| Equation | Guesses | Roots found |\n")
	sb.WriteString("|---|---|---|\n")
	for i, id := range state.Equations {
		guesses := "-"
		if i < len(state.Batches) && len(state.Batches[i].Guesses) > 0 {
			guesses = joinGuesses(state.Batches[i].Guesses)
		}
		roots := "none"
		if rs := state.Roots[id]; len(rs) > 0 {
			roots = joinFloats(rs)
		}
		fmt.Fprintf(&sb, "| %s | %s | %s |\n", escape(name(id)), guesses, roots)
	}
	sb.WriteString("\n")

	if state.Pending != nil {
		fmt.Fprintf(&sb, "Retry pending for guess %s of %s.\n\n",
			num(state.Pending.Value), escape(name(state.Pending.Equation)))
	}

	sb.WriteString("## Intersection\n\n")
	if in := state.Intersection; in != nil {
		fmt.Fprintf(&sb, "- Point: (%s, %s)\n", num(in.X), num(in.Y))
		fmt.Fprintf(&sb, "- Residual: %g\n", in.Residual)
		fmt.Fprintf(&sb, "- Converged: %t\n\n", in.Converged)
	} else {
		sb.WriteString("Not located.\n\n")
	}

	sb.WriteString("## History\n\n")
	for i, step := range state.History {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, step)
	}
	return sb.String()
}

func joinGuesses(gs []domain.Guess) string {
	parts := make([]string, len(gs))
	for i, g := range gs {
		parts[i] = num(g.Value)
	}
	return strings.Join(parts, ", ")
}

func joinFloats(vs []float64) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = num(v)
	}
	return strings.Join(parts, ", ")
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'g', 8, 64)
}

func escape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
