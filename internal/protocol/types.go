package protocol

import (
	"fmt"
	"strings"
)

// ExportFormat names one of the host's code generators.
type ExportFormat string

const (
	FormatCSS      ExportFormat = "css"
	FormatCSSFluid ExportFormat = "css-fluid"
	FormatIOS      ExportFormat = "ios"
	FormatAndroid  ExportFormat = "android"
)

var formatOrder = []ExportFormat{FormatCSS, FormatCSSFluid, FormatIOS, FormatAndroid}

// Formats returns every export format in tab order.
func Formats() []ExportFormat {
	out := make([]ExportFormat, len(formatOrder))
	copy(out, formatOrder)
	return out
}

// Label returns the tab caption for the format.
func (f ExportFormat) Label() string {
	switch f {
	case FormatCSS:
		return "CSS"
	case FormatCSSFluid:
		return "Fluid"
	case FormatIOS:
		return "iOS"
	case FormatAndroid:
		return "Android"
	default:
		return string(f)
	}
}

// Valid reports whether f is one of the known formats.
func (f ExportFormat) Valid() bool {
	for _, known := range formatOrder {
		if f == known {
			return true
		}
	}
	return false
}

// ParseExportFormat accepts a wire value, ignoring case and surrounding space.
func ParseExportFormat(value string) (ExportFormat, error) {
	f := ExportFormat(strings.ToLower(strings.TrimSpace(value)))
	if !f.Valid() {
		return "", fmt.Errorf("unknown export format %q", value)
	}
	return f, nil
}

// Settings mirrors the host's persisted toggles.
type Settings struct {
	AutoApply      bool `json:"autoApply"`
	WriteVariables bool `json:"writeVariables"`
}

// SettingKey identifies a single toggle within Settings.
type SettingKey string

const (
	SettingAutoApply      SettingKey = "autoApply"
	SettingWriteVariables SettingKey = "writeVariables"
)

// Get returns the value of the named toggle.
func (s Settings) Get(key SettingKey) bool {
	switch key {
	case SettingAutoApply:
		return s.AutoApply
	case SettingWriteVariables:
		return s.WriteVariables
	default:
		return false
	}
}

// With returns a copy of s with one toggle changed.
func (s Settings) With(key SettingKey, value bool) Settings {
	switch key {
	case SettingAutoApply:
		s.AutoApply = value
	case SettingWriteVariables:
		s.WriteVariables = value
	}
	return s
}

// SettingsPatch carries only the toggles a request wants to change.
type SettingsPatch struct {
	AutoApply      *bool `json:"autoApply,omitempty"`
	WriteVariables *bool `json:"writeVariables,omitempty"`
}

// PatchFor builds a patch that changes exactly one key.
func PatchFor(key SettingKey, value bool) SettingsPatch {
	v := value
	switch key {
	case SettingAutoApply:
		return SettingsPatch{AutoApply: &v}
	case SettingWriteVariables:
		return SettingsPatch{WriteVariables: &v}
	default:
		return SettingsPatch{}
	}
}

// Apply merges the patch onto s.
func (p SettingsPatch) Apply(s Settings) Settings {
	if p.AutoApply != nil {
		s.AutoApply = *p.AutoApply
	}
	if p.WriteVariables != nil {
		s.WriteVariables = *p.WriteVariables
	}
	return s
}

// Keys lists the toggles present in the patch.
func (p SettingsPatch) Keys() []SettingKey {
	var keys []SettingKey
	if p.AutoApply != nil {
		keys = append(keys, SettingAutoApply)
	}
	if p.WriteVariables != nil {
		keys = append(keys, SettingWriteVariables)
	}
	return keys
}

// ResultEntry is the optimizer's output for one text layer.
type ResultEntry struct {
	NodeID        string       `json:"nodeId"`
	FontInfo      string       `json:"fontInfo"`
	IsApproximate bool         `json:"isApproximate"`
	Before        BeforeValues `json:"before"`
	After         AfterValues  `json:"after"`
	FontSize      float64      `json:"fontSize"`
}

// BeforeValues are the layer's prior values, preformatted by the host.
type BeforeValues struct {
	LineHeight    string `json:"lineHeight"`
	LetterSpacing string `json:"letterSpacing"`
}

// AfterValues are the optimized values.
type AfterValues struct {
	LineHeight           float64 `json:"lineHeight"`        // px
	LineHeightPercent    float64 `json:"lineHeightPercent"` // of font size
	LineHeightRaw        float64 `json:"lineHeightRaw"`     // unrounded px
	LetterSpacing        float64 `json:"letterSpacing"`     // px
	LetterSpacingEm      float64 `json:"letterSpacingEm"`
	LetterSpacingPercent float64 `json:"letterSpacingPercent"`
}
