// Package logtail reads the tail of the panel's own log file.
//
// # Overview
//
// The panel logs every protocol envelope at debug level as a JSON line with
// msg "envelope" and the fields dir and type. The protocol log overlay
// shows the recent ones by re-reading the end of the file; there is no
// in-memory copy and no file watching.
//
// # Reading
//
// Read uses a ring buffer of size maxLines, so memory stays O(maxLines)
// however large the log grows. ReadMatching does the same but only counts
// lines accepted by a filter. A missing file returns nil, nil.
//
//	lines, err := logtail.Read(path, 400)
//
// # Parsing
//
// ParseEnvelope accepts only JSON lines whose msg matches; console-format
// lines, other messages and partial writes are skipped. Envelopes combines
// both steps, prefiltering on the msg text before decoding:
//
//	entries, err := logtail.Envelopes(path, logging.EnvelopeMessage, 2000, 200)
//	for _, e := range entries {
//		fmt.Println(e.Format()) // 14:32:15 -> export-code format=ios nodeId=1:2
//	}
package logtail
