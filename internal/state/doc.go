// Package state holds the TypeTune panel's state machine.
//
// # Overview
//
// The panel keeps four pieces of state, each driven by host envelopes and
// user commands:
//
//   - Selection: NoSelection, EmptySelection or HasResults(results)
//   - Settings: the host's toggles, edited optimistically
//   - Export: the active format tab and the single most-recent code slot
//   - Feedback: short-lived copy confirmation flags
//
// Panel aggregates them. Every method returns at most one outbound request;
// the caller sends it.
//
// # Transitions
//
//	                    calculation-results (n>0)
//	   ┌──────────────┐ ───────────────────────→ ┌────────────┐
//	   │ NoSelection  │                          │ HasResults │
//	   └──────────────┘ ←─────────────────────── └────────────┘
//	          ↑   ↑          no-selection            │    ↑
//	          │   │                                  │    │ calculation-results
//	          │   └──── no-selection ────┐           │    │ (n>0)
//	          │                   ┌──────┴───────┐   │    │
//	          │                   │EmptySelection│ ←─┘    │
//	          │                   └──────────────┘ ───────┘
//	                            calculation-results (n=0)
//
// Results are replaced wholesale, never merged. Entering HasResults, or
// a change of the primary (first) result's nodeId, issues exactly one
// export-code request for the primary node in the active format.
// EmptySelection and NoSelection clear the export code.
//
// # Settings Reconciliation
//
// Toggle applies locally before the request is built, so the view reflects
// the change at once. A host broadcast replaces the entire object: if the
// host broadcasts between two quick toggles, the second toggle is not shown
// until the next broadcast.
//
// # Export Correlation
//
// With PolicyToken every export-code carries a fresh requestId and an
// export-result whose requestId is not the latest issued is dropped and
// counted in Snapshot.StaleResults. Results without a requestId fall back to
// last-arrival-wins. PolicyLatest reproduces the untagged behaviour: the
// last result to arrive is shown, even if it answers an older tab.
//
// Switching tabs never clears the displayed code; it stays until a result
// replaces it. Snapshot.ExportPending marks the wait.
//
// # Feedback Timers
//
// Feedback does not own a timer. Trigger returns a generation number; the
// UI schedules a reset carrying it and Expire ignores any generation that is
// not current. Re-triggering therefore cancels the earlier reset without
// having to stop it.
//
// # Concurrency
//
// Panel is not safe for concurrent use. It lives inside the Bubble Tea
// model and is only touched from Update, which is the panel's single
// logical thread. Snapshot returns copies so the view never aliases state.
package state
