// Package ui provides the TypeTune panel's terminal interface.
//
// # Architecture Overview
//
// The UI is a Bubble Tea program. Its Update loop is the panel's single
// logical thread: host envelopes arrive as InboundMsg (forwarded by the
// session from the bridge), key presses arrive as tea.KeyMsg, and both are
// applied to a state.Panel in arrival order. Any request the panel returns
// is handed to the bridge.Sender, which never blocks.
//
// # Package Structure
//
//   - app.go: Model, Options, Update and the message types
//   - view.go: result card, apply buttons, export tabs, settings
//   - header.go: status bar and badge names
//   - clipboard.go: asynchronous copy and its feedback
//   - protocol_log.go: overlay listing recent envelopes from the log file
//   - help.go, keys.go: key bindings and the help overlay
//   - theme.go, style_helpers.go: Lipgloss palettes
//
// # Views
//
// With nothing selected the body shows "Select text layers to optimize
// line-height and letter-spacing"; with a selection that holds no text it
// shows "No text layers in selection". With results it shows the primary
// result's card, the apply buttons and the export section. Settings are
// always shown.
//
// # Timers
//
// Copy feedback resets through tea.Tick. The tick carries the generation
// returned by the panel and is ignored if a newer copy has happened since.
// The protocol log overlay refreshes every second the same way, keyed by
// the overlay's own generation.
//
// # Key Bindings
//
//   - enter / A: apply to selected / page
//   - 1-4, ←/→: export tab
//   - c: copy code
//   - a / w: auto-apply / save to variables
//   - L: protocol log
//   - T: cycle theme (saved to prefs)
//   - ?: help
//   - q or Ctrl+C: quit
package ui
