/*
Package domain contains the core domain models of the equation explorer.

It defines the entities of the refinement loop, such as Equations, Guesses,
RootOutcomes and the Execution State. This package is kept pure and free of
external dependencies like I/O or persistence.

# Key Entities

  - Equation: A named scalar function of one real variable.
  - Guess: A user supplied starting point, indexed by its position in the input line.
  - RootOutcome: Either Found(root) or NotFound; the only result of a guarded search.
  - State: Captures the runtime snapshot of a run (Phase, Cursor, accepted roots, Outbox).
  - ActionRequest: A structural representation of what the host should render, plot or ask.
*/
package domain
