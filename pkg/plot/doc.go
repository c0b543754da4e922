// Package plot draws the curves and markers requested by the refinement loop.
//
// The engine never draws anything itself: it emits RENDER_PLOT actions carrying a
// domain.PlotRequest, and the host hands them to a ports.PlotSink. PNGSink renders
// them with gonum/plot; Nop and Recorder serve headless runs and tests.
package plot
