// Package hostsim is a scripted host for demos and tests.
//
// It answers the panel the way the design tool's engine would at the
// protocol level:
//
//   - init: a settings broadcast, then the current selection (or
//     no-selection)
//   - update-settings: merge the patch and broadcast the full object
//   - apply-selected, apply-page: count, copy the optimized values into the
//     before values and push the selection again
//   - export-code: a canned snippet for the requested format, echoing
//     requestId
//
// Nothing is optimized. Callers push selections with Select, Deselect or a
// looping Play script, and can slow exports per format with
// WithExportDelay to reproduce out-of-order export results.
package hostsim
