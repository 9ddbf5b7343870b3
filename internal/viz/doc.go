// Package viz is the terminal front end of the trajectory player.
//
// [Player] is a Bubble Tea model over a [session.Session]. Bodies are drawn
// on a braille [Canvas] in their mass class colors, projected through the
// session camera, with orbit trails and a bracket around the
// selected body. The sidebar shows playback state, the body list, the
// inspection panel and a speed graph of the selected body.
//
// Playback timers run as tea.Tick commands tagged with a generation, so a
// tick that was already in flight when its timer was stopped is dropped.
//
// # Key Bindings
//
//	Space - Play/Stop
//	R     - Restart from the first frame
//	< >   - Slower/faster tick interval, 0 resets it
//	[ ]   - Skip backward/forward; press again or Esc to release
//	Tab   - Move the body cursor, Enter selects, Esc clears
//	WASD  - Move the camera, E/C up and down, X/Y orbit, +/- zoom
//	M     - Bookmark the current frame
//	T     - Cycle color themes
//	?     - Show help overlay
//
// Terminals report key presses but not releases, so hold-to-skip is a
// toggle here.
package viz
