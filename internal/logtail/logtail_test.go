package logtail

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestRead(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "test.log")

	var content strings.Builder
	var expectedAll []string
	for i := 1; i <= 10; i++ {
		line := fmt.Sprintf("Line %d", i)
		content.WriteString(line + "\n")
		expectedAll = append(expectedAll, line)
	}

	if err := os.WriteFile(logPath, []byte(content.String()), 0644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{
			name:     "zero returns nothing",
			maxLines: 0,
			expected: nil,
		},
		{
			name:     "negative returns nothing",
			maxLines: -1,
			expected: nil,
		},
		{
			name:     "read partial (5)",
			maxLines: 5,
			expected: expectedAll[5:],
		},
		{
			name:     "read exactly all (10)",
			maxLines: 10,
			expected: expectedAll,
		},
		{
			name:     "read more than exists (20)",
			maxLines: 20,
			expected: expectedAll,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(logPath, tt.maxLines)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Read() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestReadMissingFile(t *testing.T) {
	got, err := Read(filepath.Join(t.TempDir(), "nope.log"), 10)
	if err != nil || got != nil {
		t.Fatalf("Read() = %v, %v; want nil, nil", got, err)
	}
}

func TestReadMatchingCountsOnlyMatches(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "panel.log")
	content := "keep 1\nskip\nkeep 2\nskip\nskip\nkeep 3\n"
	if err := os.WriteFile(logPath, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got, err := ReadMatching(logPath, 2, func(line string) bool {
		return strings.HasPrefix(line, "keep")
	})
	if err != nil {
		t.Fatalf("ReadMatching() error = %v", err)
	}
	want := []string{"keep 2", "keep 3"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ReadMatching() = %v, want %v", got, want)
	}
}

func TestParseEnvelope(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		ok    bool
		entry Entry
	}{
		{
			name: "outbound with fields",
			line: `{"level":"debug","ts":"2026-03-01T14:32:15.123Z","caller":"bridge/bridge.go:90","msg":"envelope","dir":"out","type":"export-code","nodeId":"1:2","format":"ios"}`,
			ok:   true,
			entry: Entry{
				Time:   "2026-03-01T14:32:15.123Z",
				Level:  "debug",
				Dir:    "out",
				Type:   "export-code",
				Fields: map[string]string{"nodeId": "1:2", "format": "ios"},
			},
		},
		{
			name: "numeric field",
			line: `{"level":"debug","ts":"t","msg":"envelope","dir":"drop","type":"","size":2048}`,
			ok:   true,
			entry: Entry{
				Time:   "t",
				Level:  "debug",
				Dir:    "drop",
				Fields: map[string]string{"size": "2048"},
			},
		},
		{name: "other message", line: `{"level":"info","msg":"panel started"}`},
		{name: "console line", line: `2026-03-01T14:32:15 DEBUG envelope dir=in`},
		{name: "truncated json", line: `{"level":"debug","msg":"envel`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseEnvelope(tt.line, "envelope")
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && !reflect.DeepEqual(got, tt.entry) {
				t.Fatalf("entry = %+v, want %+v", got, tt.entry)
			}
		})
	}
}

func TestEnvelopesKeepsNewest(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "panel.log")
	var b strings.Builder
	for i := 0; i < 5; i++ {
		fmt.Fprintf(&b, `{"level":"debug","ts":"2026-03-01T10:00:0%dZ","msg":"envelope","dir":"in","type":"t%d"}`+"\n", i, i)
		b.WriteString(`{"level":"info","msg":"unrelated"}` + "\n")
	}
	if err := os.WriteFile(logPath, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	entries, err := Envelopes(logPath, "envelope", 100, 2)
	if err != nil {
		t.Fatalf("Envelopes() error = %v", err)
	}
	if len(entries) != 2 || entries[0].Type != "t3" || entries[1].Type != "t4" {
		t.Fatalf("entries = %+v", entries)
	}
}

func TestEntryFormat(t *testing.T) {
	e := Entry{
		Time:   "2026-03-01T14:32:15.123Z",
		Dir:    "out",
		Type:   "export-code",
		Fields: map[string]string{"nodeId": "1:2", "format": "ios"},
	}
	want := "14:32:15 -> export-code format=ios nodeId=1:2"
	if got := e.Format(); got != want {
		t.Fatalf("Format() = %q, want %q", got, want)
	}

	in := Entry{Dir: "in", Type: "no-selection"}
	if got := in.Format(); got != "<- no-selection" {
		t.Fatalf("Format() = %q", got)
	}
}
