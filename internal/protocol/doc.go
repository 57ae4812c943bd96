// Package protocol defines the envelopes exchanged between the TypeTune
// panel and the host engine.
//
// # Wire Format
//
// Each envelope is a JSON object with a "type" discriminator, wrapped in a
// frame and written as one line:
//
//	{"pluginMessage":{"type":"export-code","nodeId":"12:7","format":"css"}}
//
// Frames without a pluginMessage body, envelopes with an unknown type and
// envelopes missing required fields decode to an error wrapping
// ErrMissingEnvelope, ErrUnknownType or ErrMalformed. Callers on the panel
// side drop such frames; they are never fatal.
//
// # Directions
//
// Host to panel (Inbound):
//
//	settings             settings: Settings
//	calculation-results  results: []ResultEntry (may be empty)
//	no-selection         -
//	export-result        code: string, requestId?: string
//
// Panel to host (Outbound):
//
//	init                 -
//	update-settings      settings: SettingsPatch (changed keys only)
//	apply-selected       -
//	apply-page           -
//	export-code          nodeId, format, requestId?
//
// Both directions are closed sets: Inbound and Outbound can only be
// implemented inside this package, so a type switch over them lists every
// case a caller has to handle.
//
// # Correlation
//
// requestId is an optional extension. A panel attaches a fresh token to each
// export-code request; a host that echoes it in export-result lets the panel
// discard answers to superseded requests. Hosts that omit it still work.
//
// There is no version field on the wire.
package protocol
