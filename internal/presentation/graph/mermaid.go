package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/rootseek/pkg/domain"
)

// GraphOverlay contains run data to highlight on the graph.
type GraphOverlay struct {
	Visited []domain.Phase
	Current domain.Phase
}

// OverlayFromState marks every phase a run went through and the one it is in.
func OverlayFromState(state *domain.State) *GraphOverlay {
	if state == nil {
		return nil
	}
	o := &GraphOverlay{Current: state.Phase}
	for _, step := range state.History {
		if p, ok := PhaseOfStep(step); ok {
			o.Visited = append(o.Visited, p)
		}
	}
	return o
}

// PhaseOfStep maps a history entry such as "ProcessEq2Guesses" back to its phase.
func PhaseOfStep(step string) (domain.Phase, bool) {
	switch {
	case strings.HasPrefix(step, "AwaitGuessesEq"):
		return domain.PhaseAwaitGuesses, true
	case strings.HasPrefix(step, "ProcessEq"):
		return domain.PhaseProcessGuesses, true
	case strings.HasPrefix(step, "AwaitConfirmation"):
		return domain.PhaseAwaitConfirmation, true
	case strings.HasPrefix(step, "AwaitReplacement"):
		return domain.PhaseAwaitReplacement, true
	case strings.HasPrefix(step, "AwaitIntersection"):
		return domain.PhaseAwaitIntersection, true
	case step == "Done":
		return domain.PhaseDone, true
	}
	return "", false
}

// GenerateMermaid produces a Mermaid flowchart of the refinement loop.
// It applies semantic styling:
// - Entry phase: ((Circle))
// - Searching phase: [[Subroutine]]
// - Phases reading input: [/Parallelogram/]
// - Sink: (((Double circle)))
// It also applies overlay styles (Visited/Current) if provided.
func GenerateMermaid(transitions []domain.Transition, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, phase := range phasesOf(transitions) {
		opener, closer := "[/", "/]"
		switch phase {
		case domain.PhaseAwaitGuesses:
			opener, closer = "((", "))"
		case domain.PhaseProcessGuesses:
			opener, closer = "[[", "]]"
		case domain.PhaseDone:
			opener, closer = "(((", ")))"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", sanitizeMermaidID(string(phase)), opener, phase, closer)
	}

	for _, t := range transitions {
		arrow := "-->"
		if t.Label != "" {
			arrow = fmt.Sprintf("-- \"%s\" -->", strings.ReplaceAll(t.Label, "\"", "'"))
		}
		fmt.Fprintf(&sb, "    %s %s %s\n", sanitizeMermaidID(string(t.From)), arrow, sanitizeMermaidID(string(t.To)))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for contrast on both light and dark themes
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[domain.Phase]bool)
		for _, p := range overlay.Visited {
			if !seen[p] && p != "" {
				seen[p] = true
				fmt.Fprintf(&sb, "    class %s visited;\n", sanitizeMermaidID(string(p)))
			}
		}
		if overlay.Current != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(string(overlay.Current)))
		}
	}

	return sb.String()
}

// phasesOf lists the phases touched by transitions in domain.Phases order.
func phasesOf(transitions []domain.Transition) []domain.Phase {
	used := make(map[domain.Phase]bool)
	for _, t := range transitions {
		used[t.From] = true
		used[t.To] = true
	}
	var out []domain.Phase
	for _, p := range domain.Phases {
		if used[p] {
			out = append(out, p)
		}
	}
	return out
}

func sanitizeMermaidID(id string) string {
	r := strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_")
	return r.Replace(id)
}
