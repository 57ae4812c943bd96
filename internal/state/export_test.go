package state

import (
	"testing"

	"github.com/five82/typetune/internal/protocol"
)

func TestParseCorrelationPolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    CorrelationPolicy
		wantErr bool
	}{
		{"", PolicyToken, false},
		{"token", PolicyToken, false},
		{" Latest ", PolicyLatest, false},
		{"first", "", true},
	}
	for _, tt := range tests {
		got, err := ParseCorrelationPolicy(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseCorrelationPolicy(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Fatalf("ParseCorrelationPolicy(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewExportCorrelatorDefaults(t *testing.T) {
	e := NewExportCorrelator("bogus", "", nil)
	if e.Format() != protocol.FormatCSS {
		t.Fatalf("format = %q, want css", e.Format())
	}
	if e.Policy() != PolicyToken {
		t.Fatalf("policy = %q, want token", e.Policy())
	}

	req := e.Request("1:1")
	if req.RequestID == "" {
		t.Fatal("expected generated request id")
	}
	if other := e.Request("1:1"); other.RequestID == req.RequestID {
		t.Fatal("request ids must be unique")
	}
}

func TestExportCorrelatorAcceptClearsPending(t *testing.T) {
	e := NewExportCorrelator(protocol.FormatIOS, PolicyToken, func() string { return "tok" })
	req := e.Request("n")
	if !e.Pending() {
		t.Fatal("expected pending after request")
	}
	if !e.Accept(protocol.ExportResult{Code: "let x = 1", RequestID: req.RequestID}) {
		t.Fatal("expected result to be accepted")
	}
	if e.Pending() || e.Code() != "let x = 1" {
		t.Fatalf("pending=%v code=%q", e.Pending(), e.Code())
	}
}

func TestExportCorrelatorKeepsCodeAcrossTabs(t *testing.T) {
	e := NewExportCorrelator(protocol.FormatCSS, PolicyLatest, nil)
	e.Request("n")
	e.Accept(protocol.ExportResult{Code: "css"})

	if _, ok := e.SelectFormat(protocol.FormatAndroid, "n"); !ok {
		t.Fatal("expected a request for the new tab")
	}
	if e.Code() != "css" {
		t.Fatalf("code = %q, want previous code kept", e.Code())
	}
	if !e.Pending() {
		t.Fatal("expected pending after tab switch")
	}
}

func TestSelectionKindString(t *testing.T) {
	for kind, want := range map[SelectionKind]string{
		NoSelection:    "none",
		EmptySelection: "empty",
		HasResults:     "results",
	} {
		if got := kind.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", kind, got, want)
		}
	}
}

func TestFeedbackExpireWhenInactive(t *testing.T) {
	var f Feedback
	if f.Expire(0) {
		t.Fatal("inactive feedback must not expire")
	}
	gen := f.Trigger()
	if !f.Active() || !f.Expire(gen) || f.Active() {
		t.Fatal("expected trigger then expire to round trip")
	}
	if f.Expire(gen) {
		t.Fatal("second expire must be a no-op")
	}
}
