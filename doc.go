/*
Package rootseek is an interactive explorer for the roots of nonlinear scalar equations
and the intersection of two of them.

It drives the user through a guess, search, report loop. Each guess is handed to a
guarded root search that only accepts a candidate whose residual is within tolerance.
A failed guess offers exactly one retry. Once every guess has been processed, a single
intersection guess locates a point where the two equations coincide.

# Concept

The refinement loop is a deterministic state machine. The engine never performs IO:
Render describes what to show and what to ask, Navigate computes the next state from a
line of input. The host ("Runner", HTTP server, MCP server) owns the IO, the plots and
persistence, which keeps sessions resumable and the engine testable without a console.

# Usage

	eng, err := rootseek.New()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	state, err := eng.Start(ctx, "session-1")
	if err != nil {
		log.Fatal(err)
	}

	for {
		actions, terminal, err := eng.Render(ctx, state)
		if err != nil {
			log.Fatal(err)
		}
		for _, act := range actions {
			log.Println("Action:", act)
		}
		if terminal {
			break
		}

		// In a real app the input comes from the user.
		state, err = eng.Navigate(ctx, state, "1.0")
		if err != nil {
			log.Fatal(err)
		}
	}

One-shot searches skip the loop entirely:

	out, err := eng.FindRoot("f1", 1.0)
	if root, ok := out.Value(); ok {
		fmt.Println(root)
	}
*/
package rootseek
