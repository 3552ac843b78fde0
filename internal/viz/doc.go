// Package viz previews a scene in the terminal.
//
// The preview is a Bubble Tea program that owns an engine driver and ticks
// it at the scene frame rate:
//
//   - [Model]: the preview program
//   - [Canvas]: braille canvas the composed frame is sampled onto
//   - Theme selection with 3 built-in colour schemes
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Seek to the start
//	[ ]   - Seek back/forward five seconds
//	Tab   - Select the next layer
//	E     - Enable/disable the selected layer
//	1-9   - Toggle the n-th overlay or ambient effect
//	C     - Toggle colour
//	T     - Cycle themes
//	?     - Show help overlay
//
// Changes made from the keyboard go through the driver's command queue, so
// they land between ticks like any other host edit.
package viz
