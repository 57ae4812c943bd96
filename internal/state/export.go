package state

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/five82/typetune/internal/protocol"
)

// CorrelationPolicy decides which export-result is displayed.
type CorrelationPolicy string

const (
	// PolicyToken attaches a fresh token to every export-code request and
	// drops results that answer a superseded request. Results without a
	// token (hosts that do not echo it) fall back to last-arrival-wins.
	PolicyToken CorrelationPolicy = "token"
	// PolicyLatest shows whatever result arrived last.
	PolicyLatest CorrelationPolicy = "latest"
)

// ParseCorrelationPolicy accepts "token" or "latest"; empty means token.
func ParseCorrelationPolicy(value string) (CorrelationPolicy, error) {
	switch CorrelationPolicy(strings.ToLower(strings.TrimSpace(value))) {
	case "", PolicyToken:
		return PolicyToken, nil
	case PolicyLatest:
		return PolicyLatest, nil
	default:
		return "", fmt.Errorf("unknown correlation policy %q", value)
	}
}

// ExportCorrelator holds the single most-recent export slot: the active
// format, the last displayed code and the latest outstanding request.
type ExportCorrelator struct {
	policy   CorrelationPolicy
	format   protocol.ExportFormat
	code     string
	latest   string
	pending  bool
	newToken func() string
}

// NewExportCorrelator returns a correlator starting on format. An invalid
// format falls back to CSS.
func NewExportCorrelator(format protocol.ExportFormat, policy CorrelationPolicy, newToken func() string) ExportCorrelator {
	if !format.Valid() {
		format = protocol.FormatCSS
	}
	if policy == "" {
		policy = PolicyToken
	}
	if newToken == nil {
		newToken = uuid.NewString
	}
	return ExportCorrelator{policy: policy, format: format, newToken: newToken}
}

// Format returns the active export tab.
func (e ExportCorrelator) Format() protocol.ExportFormat { return e.format }

// Code returns the code currently displayed.
func (e ExportCorrelator) Code() string { return e.code }

// Pending reports whether a request is outstanding.
func (e ExportCorrelator) Pending() bool { return e.pending }

// Policy returns the active correlation policy.
func (e ExportCorrelator) Policy() CorrelationPolicy { return e.policy }

// Request records a new outstanding request for nodeID in the active format.
func (e *ExportCorrelator) Request(nodeID string) protocol.ExportCode {
	req := protocol.ExportCode{NodeID: nodeID, Format: e.format}
	e.latest = e.newToken()
	if e.policy == PolicyToken {
		req.RequestID = e.latest
	}
	e.pending = true
	return req
}

// SelectFormat switches the active tab. Selecting the active tab does
// nothing. Otherwise one request is issued for primaryID, if there is one.
// The displayed code stays until a new result replaces it.
func (e *ExportCorrelator) SelectFormat(format protocol.ExportFormat, primaryID string) (protocol.ExportCode, bool) {
	if !format.Valid() || format == e.format {
		return protocol.ExportCode{}, false
	}
	e.format = format
	if primaryID == "" {
		return protocol.ExportCode{}, false
	}
	return e.Request(primaryID), true
}

// Accept applies an export-result under the active policy and reports
// whether it is now displayed.
func (e *ExportCorrelator) Accept(res protocol.ExportResult) bool {
	if e.policy == PolicyToken {
		switch {
		case res.RequestID != "" && res.RequestID != e.latest:
			return false
		case res.RequestID == "" && e.latest == "":
			return false
		}
	}
	e.code = res.Code
	e.pending = false
	return true
}

// Clear drops the displayed code and forgets the outstanding request.
func (e *ExportCorrelator) Clear() {
	e.code = ""
	e.latest = ""
	e.pending = false
}
