// Package viz provides a terminal view of a falling mass, built on the
// Bubble Tea framework. The model owns one kernel session and steps it on
// every tick.
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	R     - Reset to initial state
//	+/-   - Double/halve steps per frame
//	Q     - Quit
package viz
