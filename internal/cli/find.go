package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/rootseek/internal/runtime"
	"github.com/aretw0/rootseek/pkg/domain"
	"github.com/aretw0/rootseek/pkg/ports"
)

// FindRoots searches one root per guess of a comma separated list and prints
// a line per guess. It returns the number of guesses that found a root.
func FindRoots(w io.Writer, engine ports.Explorer, id domain.EquationID, guesses string) (int, error) {
	values, err := runtime.ParseGuessList(guesses)
	if err != nil {
		return 0, err
	}

	label := string(id)
	for _, eq := range engine.Equations() {
		if eq.ID == id {
			label = eq.Label
		}
	}

	found := 0
	for i, v := range values {
		out, err := engine.FindRoot(id, v)
		if err != nil {
			return found, err
		}
		if root, ok := out.Value(); ok {
			found++
			fmt.Fprintf(w, "Root near to guess #%d for %s: %s\n", i+1, label, runtime.FormatFloat(root))
			continue
		}
		fmt.Fprintf(w, "No root found near guess #%d (%s) for %s.\n", i+1, runtime.FormatFloat(v), label)
	}
	return found, nil
}

// Intersect prints where the first two equations cross near guess.
// A crossing rejected by the tolerance gate is reported, not returned as an error.
func Intersect(w io.Writer, engine ports.Explorer, guess float64) (bool, error) {
	res, err := engine.FindIntersection(guess)
	if errors.Is(err, domain.ErrToleranceRejected) {
		fmt.Fprintf(w, "No intersection found near x = %s.\n", runtime.FormatFloat(guess))
		return false, nil
	}
	if err != nil {
		return false, err
	}
	fmt.Fprintf(w, "The equations intersect at the point: (%s, %s)\n", runtime.FormatFloat(res.X), runtime.FormatFloat(res.Y))
	return true, nil
}
