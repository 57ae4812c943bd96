package logtail

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Entry is one protocol trace line from the panel's JSON log.
type Entry struct {
	Time   string
	Level  string
	Dir    string
	Type   string
	Fields map[string]string
}

// ParseEnvelope decodes a JSON log line written for message msg. ok is false
// for any other line, including non-JSON text.
func ParseEnvelope(line, msg string) (Entry, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "{") {
		return Entry{}, false
	}
	var raw map[string]any
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return Entry{}, false
	}
	if m, _ := raw["msg"].(string); m != msg {
		return Entry{}, false
	}

	entry := Entry{
		Time:  stringField(raw, "ts"),
		Level: stringField(raw, "level"),
		Dir:   stringField(raw, "dir"),
		Type:  stringField(raw, "type"),
	}
	for key, value := range raw {
		switch key {
		case "ts", "level", "msg", "caller", "dir", "type", "stacktrace":
			continue
		}
		if entry.Fields == nil {
			entry.Fields = make(map[string]string)
		}
		entry.Fields[key] = fmt.Sprint(value)
	}
	return entry, true
}

// Envelopes returns the last maxEntries trace entries in the log at path,
// looking at no more than the newest maxLines candidate lines. A missing
// log yields nothing.
func Envelopes(path, msg string, maxLines, maxEntries int) ([]Entry, error) {
	marker := `"msg":"` + msg + `"`
	lines, err := ReadMatching(path, maxLines, func(line string) bool {
		return strings.Contains(line, marker)
	})
	if err != nil {
		return nil, err
	}
	var entries []Entry
	for _, line := range lines {
		if e, ok := ParseEnvelope(line, msg); ok {
			entries = append(entries, e)
		}
	}
	if maxEntries > 0 && len(entries) > maxEntries {
		entries = entries[len(entries)-maxEntries:]
	}
	return entries, nil
}

// Format renders the entry as a single line: time, direction, type, then
// the remaining fields sorted by key.
func (e Entry) Format() string {
	var b strings.Builder
	if t := shortTime(e.Time); t != "" {
		b.WriteString(t)
		b.WriteByte(' ')
	}
	b.WriteString(arrow(e.Dir))
	b.WriteByte(' ')
	b.WriteString(e.Type)

	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%s", k, e.Fields[k])
	}
	return b.String()
}

func arrow(dir string) string {
	switch dir {
	case "in":
		return "<-"
	case "out":
		return "->"
	case "drop":
		return "x "
	default:
		return "  "
	}
}

// shortTime keeps the clock part of an ISO8601 timestamp.
func shortTime(ts string) string {
	if i := strings.IndexByte(ts, 'T'); i >= 0 && len(ts) >= i+9 {
		return ts[i+1 : i+9]
	}
	return ts
}

func stringField(raw map[string]any, key string) string {
	v, ok := raw[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
