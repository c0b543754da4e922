package runtime

import "github.com/aretw0/rootseek/pkg/domain"

// Transitions describes every edge Navigate can take.
func Transitions() []domain.Transition {
	return []domain.Transition{
		{From: domain.PhaseAwaitGuesses, To: domain.PhaseAwaitGuesses, Label: "next equation"},
		{From: domain.PhaseAwaitGuesses, To: domain.PhaseProcessGuesses, Label: "last equation"},
		{From: domain.PhaseProcessGuesses, To: domain.PhaseProcessGuesses, Label: "found"},
		{From: domain.PhaseProcessGuesses, To: domain.PhaseAwaitConfirmation, Label: "not found"},
		{From: domain.PhaseProcessGuesses, To: domain.PhaseAwaitIntersection, Label: "guesses exhausted"},
		{From: domain.PhaseAwaitConfirmation, To: domain.PhaseAwaitConfirmation, Label: "invalid response"},
		{From: domain.PhaseAwaitConfirmation, To: domain.PhaseAwaitReplacement, Label: "y"},
		{From: domain.PhaseAwaitConfirmation, To: domain.PhaseProcessGuesses, Label: "n"},
		{From: domain.PhaseAwaitReplacement, To: domain.PhaseProcessGuesses, Label: "searched"},
		{From: domain.PhaseAwaitIntersection, To: domain.PhaseAwaitIntersection, Label: "invalid number"},
		{From: domain.PhaseAwaitIntersection, To: domain.PhaseDone, Label: "reported"},
	}
}
