// Package viz provides the interactive terminal viewer for the Gray-Scott
// engine.
//
// The viewer is a Bubble Tea program. The V field is drawn with upper half
// blocks so each terminal cell shows two grid samples, coloured through the
// active colormap.
//
// # Key Bindings
//
//	Space      - Pause/Resume
//	R          - Reset with 5 seeds
//	C          - Clear with 3-7 random seeds
//	M          - Next colormap
//	Up/Down    - Feed rate +/- 0.002
//	Left/Right - Kill rate -/+ 0.002
//	1-5        - Presets
//	S          - Save PNG screenshot
//	G          - Toggle GIF recording
//	?          - Help overlay
//	Q/Esc      - Quit
//
// # Mouse
//
// Left click adds V (radius 8), right click adds U (radius 12). Dragging
// paints with radius 5 and 8 respectively.
//
// # Recording
//
// Screenshots and GIF recordings are written to the output directory
// given in [Options].
package viz
