// Package viz renders a running integrator in the terminal.
//
// [Live] is a Bubble Tea model that advances a [dynamo.Stepper] a few steps
// per frame and shows the recent position, a phase portrait drawn on a
// braille [Canvas], and the energy drift.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	+/-   - More/fewer steps per frame
//	Q     - Quit
package viz
