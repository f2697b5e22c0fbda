// Package viz provides terminal views of running simulations.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [Model]: live view of any sim.Engine with lattice, disk or ln g panels
//   - [NewInteractiveApp]: preset picker that edits and launches a live view
//   - [Canvas]: braille-based pixel canvas for disks and curves
//   - Theme selection with 3 built-in colour schemes
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Reset averages
//	Tab   - Cycle the plotted series
//	+/-   - Steps per frame
//	↑/↓   - Temperature of spin models
//	T     - Cycle colour themes
//	G     - Toggle GIF recording
//	?     - Show help overlay
//
// # Recording
//
// Lattice models are recorded site by site in theme colours; other engines
// record the braille canvas. The animation is written to statmech.gif when
// recording stops.
package viz
