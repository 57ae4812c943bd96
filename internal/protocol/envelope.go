package protocol

// Wire discriminators.
const (
	TypeSettings           = "settings"
	TypeCalculationResults = "calculation-results"
	TypeNoSelection        = "no-selection"
	TypeExportResult       = "export-result"

	TypeInit           = "init"
	TypeUpdateSettings = "update-settings"
	TypeApplySelected  = "apply-selected"
	TypeApplyPage      = "apply-page"
	TypeExportCode     = "export-code"
)

// Inbound is an envelope sent by the host to the panel. The set of
// implementations is closed to this package.
type Inbound interface {
	Type() string
	inbound()
}

// Outbound is an envelope sent by the panel to the host. The set of
// implementations is closed to this package.
type Outbound interface {
	Type() string
	outbound()
}

// SettingsMessage is the host's authoritative settings snapshot.
type SettingsMessage struct {
	Settings Settings `json:"settings"`
}

// CalculationResults replaces the panel's result set. Results may be empty.
type CalculationResults struct {
	Results []ResultEntry `json:"results"`
}

// NoSelection reports that nothing eligible is selected.
type NoSelection struct{}

// ExportResult answers an ExportCode request. RequestID is empty when the
// host does not echo correlation tokens.
type ExportResult struct {
	Code      string `json:"code"`
	RequestID string `json:"requestId,omitempty"`
}

func (SettingsMessage) Type() string    { return TypeSettings }
func (CalculationResults) Type() string { return TypeCalculationResults }
func (NoSelection) Type() string        { return TypeNoSelection }
func (ExportResult) Type() string       { return TypeExportResult }

func (SettingsMessage) inbound()    {}
func (CalculationResults) inbound() {}
func (NoSelection) inbound()        {}
func (ExportResult) inbound()       {}

// Init asks the host for its current state.
type Init struct{}

// UpdateSettings asks the host to persist the given toggles.
type UpdateSettings struct {
	Settings SettingsPatch `json:"settings"`
}

// ApplySelected asks the host to apply optimized values to the selection.
type ApplySelected struct{}

// ApplyPage asks the host to apply optimized values to the whole page.
type ApplyPage struct{}

// ExportCode asks the host to generate code for one node in one format.
type ExportCode struct {
	NodeID    string       `json:"nodeId"`
	Format    ExportFormat `json:"format"`
	RequestID string       `json:"requestId,omitempty"`
}

func (Init) Type() string           { return TypeInit }
func (UpdateSettings) Type() string { return TypeUpdateSettings }
func (ApplySelected) Type() string  { return TypeApplySelected }
func (ApplyPage) Type() string      { return TypeApplyPage }
func (ExportCode) Type() string     { return TypeExportCode }

func (Init) outbound()           {}
func (UpdateSettings) outbound() {}
func (ApplySelected) outbound()  {}
func (ApplyPage) outbound()      {}
func (ExportCode) outbound()     {}
