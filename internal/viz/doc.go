// Package viz draws a running cloth in the terminal.
//
// A [Camera] orbits the scene and projects spring and obstacle wireframes
// onto a braille [Canvas]. [Model] is a Bubble Tea program around one
// simulator; [RunInteractive] adds a preset picker in front of it.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	.     - Single tick while paused
//	R     - Rebuild the scene
//	Tab   - Select a parameter, Up/Down to tune it
//	I     - Switch explicit / symplectic
//	G     - Toggle GIF recording
//	?     - Show help overlay
package viz
