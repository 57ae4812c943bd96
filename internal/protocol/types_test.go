package protocol

import "testing"

func TestParseExportFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    ExportFormat
		wantErr bool
	}{
		{"css", FormatCSS, false},
		{" CSS-Fluid ", FormatCSSFluid, false},
		{"ios", FormatIOS, false},
		{"android", FormatAndroid, false},
		{"swift", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseExportFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseExportFormat(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Fatalf("ParseExportFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatsOrderAndLabels(t *testing.T) {
	want := []string{"CSS", "Fluid", "iOS", "Android"}
	formats := Formats()
	if len(formats) != len(want) {
		t.Fatalf("Formats() len = %d, want %d", len(formats), len(want))
	}
	for i, f := range formats {
		if f.Label() != want[i] {
			t.Fatalf("Formats()[%d].Label() = %q, want %q", i, f.Label(), want[i])
		}
	}

	// Returned slice must not alias the package order.
	formats[0] = FormatAndroid
	if Formats()[0] != FormatCSS {
		t.Fatalf("Formats() returned shared slice")
	}
}

func TestSettingsWithAndPatch(t *testing.T) {
	s := Settings{}.With(SettingAutoApply, true)
	if !s.Get(SettingAutoApply) || s.Get(SettingWriteVariables) {
		t.Fatalf("With(autoApply) = %#v", s)
	}

	p := PatchFor(SettingAutoApply, false)
	if p.WriteVariables != nil || p.AutoApply == nil || *p.AutoApply {
		t.Fatalf("PatchFor(autoApply,false) = %#v", p)
	}
	if got := p.Apply(s); got.AutoApply {
		t.Fatalf("Apply = %#v, want autoApply false", got)
	}
	if keys := (SettingsPatch{}).Keys(); len(keys) != 0 {
		t.Fatalf("empty patch keys = %v", keys)
	}
}
