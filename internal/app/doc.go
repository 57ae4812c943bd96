// Package app provides the orchestration layer for the TypeTune panel.
//
// # Overview
//
// This package wires together configuration, logging, metrics, the host
// bridge, the panel state machine and the UI. It is the composition root
// where all dependencies are initialized and connected.
//
// # Architecture
//
//  1. Load panel configuration from ~/.config/typetune/panel.toml
//  2. Load user preferences (theme, last export tab)
//  3. Initialize zap logging to the panel log file
//  4. Serve Prometheus metrics when metrics_addr is set
//  5. Dial the host (or start the scripted demo host)
//  6. Mount a Session: register the inbound handler, send init
//  7. Start the TUI and block until the user exits or the context cancels
//  8. Stop the Session and close the bridge
//
// # Components
//
//   - app.go: Run and transport selection
//   - session.go: Session, the panel's mount/unmount lifecycle
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │ Initialize everything
//	└──────┬───────┘
//	       │
//	       ├─────> config.Load()        Read panel config
//	       ├─────> logging.Init()       JSON log file
//	       ├─────> connect()            bridge.Dial or hostsim over net.Pipe
//	       ├─────> Session.Start()      OnMessage + send init
//	       ├─────> bridge.Run()         Read loop (goroutine)
//	       └─────> tea.Program.Run()    Start TUI (blocks)
//
//	Inbound path:
//	┌─────────────────────────────────────────┐
//	│ bridge.Run() goroutine                  │
//	│  ├─> decode frame                       │
//	│  ├─> Session handler                    │
//	│  └─> program.Send(ui.InboundMsg)        │
//	│      └─> Update applies it to the Panel │
//	└─────────────────────────────────────────┘
//
// program.Send blocks until the Update loop takes the message, so envelopes
// are applied one at a time in arrival order and no handler overlaps another.
//
// # Error Handling
//
// Fatal errors (returned from Run):
//   - Configuration file invalid
//   - Log file cannot be created
//   - Metrics address cannot be bound
//   - Host cannot be dialed
//
// Recoverable errors (logged, the panel keeps running):
//   - Undecodable or unknown envelopes
//   - Write failures on the host stream
//   - Clipboard failures
//
// When the host hangs up the header shows it as disconnected; the panel
// stays open so the last results can still be read and copied.
package app
