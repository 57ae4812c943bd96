package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrMissingEnvelope is returned for frames without a pluginMessage body.
	ErrMissingEnvelope = errors.New("frame has no pluginMessage")
	// ErrUnknownType is returned for envelopes whose type is not part of
	// this protocol revision.
	ErrUnknownType = errors.New("unknown envelope type")
	// ErrMalformed is returned when a known envelope is missing required
	// fields or has fields of the wrong shape.
	ErrMalformed = errors.New("malformed envelope")
)

// frame is the outer wrapper every envelope travels in.
type frame struct {
	PluginMessage json.RawMessage `json:"pluginMessage"`
}

type discriminator struct {
	Type string `json:"type"`
}

// EncodeOutbound renders a panel-to-host envelope as one wire frame
// (without a trailing newline).
func EncodeOutbound(msg Outbound) ([]byte, error) {
	var body any
	switch v := msg.(type) {
	case Init:
		body = struct {
			Type string `json:"type"`
		}{TypeInit}
	case UpdateSettings:
		body = struct {
			Type string `json:"type"`
			UpdateSettings
		}{TypeUpdateSettings, v}
	case ApplySelected:
		body = struct {
			Type string `json:"type"`
		}{TypeApplySelected}
	case ApplyPage:
		body = struct {
			Type string `json:"type"`
		}{TypeApplyPage}
	case ExportCode:
		if v.NodeID == "" {
			return nil, fmt.Errorf("%w: export-code without nodeId", ErrMalformed)
		}
		if !v.Format.Valid() {
			return nil, fmt.Errorf("%w: export-code format %q", ErrMalformed, v.Format)
		}
		body = struct {
			Type string `json:"type"`
			ExportCode
		}{TypeExportCode, v}
	case nil:
		return nil, fmt.Errorf("%w: nil envelope", ErrMalformed)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownType, msg)
	}
	return wrap(body)
}

// EncodeInbound renders a host-to-panel envelope as one wire frame.
func EncodeInbound(msg Inbound) ([]byte, error) {
	var body any
	switch v := msg.(type) {
	case SettingsMessage:
		body = struct {
			Type string `json:"type"`
			SettingsMessage
		}{TypeSettings, v}
	case CalculationResults:
		if v.Results == nil {
			v.Results = []ResultEntry{}
		}
		body = struct {
			Type string `json:"type"`
			CalculationResults
		}{TypeCalculationResults, v}
	case NoSelection:
		body = struct {
			Type string `json:"type"`
		}{TypeNoSelection}
	case ExportResult:
		body = struct {
			Type string `json:"type"`
			ExportResult
		}{TypeExportResult, v}
	case nil:
		return nil, fmt.Errorf("%w: nil envelope", ErrMalformed)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownType, msg)
	}
	return wrap(body)
}

// DecodeInbound parses one wire frame sent by the host. Unknown fields are
// ignored so that newer hosts stay readable.
func DecodeInbound(data []byte) (Inbound, error) {
	typ, body, err := unwrap(data)
	if err != nil {
		return nil, err
	}
	switch typ {
	case TypeSettings:
		var raw struct {
			Settings *Settings `json:"settings"`
		}
		if err := json.Unmarshal(body, &raw); err != nil {
			return nil, malformed(typ, err)
		}
		if raw.Settings == nil {
			return nil, fmt.Errorf("%w: %s without settings", ErrMalformed, typ)
		}
		return SettingsMessage{Settings: *raw.Settings}, nil
	case TypeCalculationResults:
		var raw struct {
			Results *[]ResultEntry `json:"results"`
		}
		if err := json.Unmarshal(body, &raw); err != nil {
			return nil, malformed(typ, err)
		}
		if raw.Results == nil {
			return nil, fmt.Errorf("%w: %s without results", ErrMalformed, typ)
		}
		for i, entry := range *raw.Results {
			if entry.NodeID == "" {
				return nil, fmt.Errorf("%w: %s entry %d has no nodeId", ErrMalformed, typ, i)
			}
		}
		results := *raw.Results
		if results == nil {
			results = []ResultEntry{}
		}
		return CalculationResults{Results: results}, nil
	case TypeNoSelection:
		return NoSelection{}, nil
	case TypeExportResult:
		var raw struct {
			Code      *string `json:"code"`
			RequestID string  `json:"requestId"`
		}
		if err := json.Unmarshal(body, &raw); err != nil {
			return nil, malformed(typ, err)
		}
		if raw.Code == nil {
			return nil, fmt.Errorf("%w: %s without code", ErrMalformed, typ)
		}
		return ExportResult{Code: *raw.Code, RequestID: raw.RequestID}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, typ)
	}
}

// DecodeOutbound parses one wire frame sent by the panel. It is the host
// side of the protocol.
func DecodeOutbound(data []byte) (Outbound, error) {
	typ, body, err := unwrap(data)
	if err != nil {
		return nil, err
	}
	switch typ {
	case TypeInit:
		return Init{}, nil
	case TypeUpdateSettings:
		var raw struct {
			Settings *SettingsPatch `json:"settings"`
		}
		if err := json.Unmarshal(body, &raw); err != nil {
			return nil, malformed(typ, err)
		}
		if raw.Settings == nil {
			return nil, fmt.Errorf("%w: %s without settings", ErrMalformed, typ)
		}
		return UpdateSettings{Settings: *raw.Settings}, nil
	case TypeApplySelected:
		return ApplySelected{}, nil
	case TypeApplyPage:
		return ApplyPage{}, nil
	case TypeExportCode:
		var raw ExportCode
		if err := json.Unmarshal(body, &raw); err != nil {
			return nil, malformed(typ, err)
		}
		if raw.NodeID == "" {
			return nil, fmt.Errorf("%w: %s without nodeId", ErrMalformed, typ)
		}
		if !raw.Format.Valid() {
			return nil, fmt.Errorf("%w: %s format %q", ErrMalformed, typ, raw.Format)
		}
		return raw, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, typ)
	}
}

func wrap(body any) ([]byte, error) {
	inner, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode envelope: %w", err)
	}
	out, err := json.Marshal(frame{PluginMessage: inner})
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	return out, nil
}

func unwrap(data []byte) (string, json.RawMessage, error) {
	var f frame
	if err := json.Unmarshal(data, &f); err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	body := bytes.TrimSpace(f.PluginMessage)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return "", nil, ErrMissingEnvelope
	}
	var d discriminator
	if err := json.Unmarshal(body, &d); err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if d.Type == "" {
		return "", nil, fmt.Errorf("%w: envelope without type", ErrMalformed)
	}
	return d.Type, body, nil
}

func malformed(typ string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrMalformed, typ, err)
}
