/*
Package ports defines the driven ports (interfaces) for the rootseek engine.

These interfaces decouple the core logic from external implementations, allowing
the explorer to work with various storage backends and display sinks.

# Key Interfaces

  - StatelessEngine: The Start/Render/Navigate core used by every host.
  - StateStore: Responsible for persisting and loading session State.
  - DistributedLocker: Provides distributed locking for handling concurrent session access.
  - PlotSink: Displays the curves and markers requested by the engine.
*/
package ports
