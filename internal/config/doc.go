// Package config loads the TypeTune panel configuration file.
//
// # Configuration Discovery
//
// Load follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/typetune/panel.toml (default)
//  3. If the config file doesn't exist, fall back to Default()
//  4. If the file exists but fields are missing or blank, use defaults
//
// # TOML Format
//
//	host_addr        = "unix://~/.local/state/typetune/host.sock"
//	correlation      = "token"   # or "latest"
//	export_format    = "css"     # css, css-fluid, ios, android
//	copy_feedback_ms = 1500
//	log_file         = "~/.local/state/typetune/panel.log"
//	log_level        = "info"
//	metrics_addr     = ""        # e.g. "127.0.0.1:9464"; empty disables
//
// Every field is optional and values are trimmed. Unknown enum values and a
// non-positive copy_feedback_ms are errors. Tilde expansion applies to
// log_file; host_addr is expanded later when the bridge parses it.
//
// The export_format here is only the starting tab. A tab saved in the user
// preferences file takes precedence.
package config
