// Package viz draws a running simulation in the terminal using Bubble Tea.
//
// [Model] is the live view: a braille [Canvas] of the balls next to a
// stats panel with an energy chart. The canvas size defines the world
// bounds, so resizing the terminal resizes the box the balls live in.
// [RunInteractive] first shows a preset picker.
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	R     - Run setup again
//	T     - Cycle color themes
//	V     - Toggle velocity vectors
//	?     - Show help
//	Q     - Quit
package viz
