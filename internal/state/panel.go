package state

import (
	"time"

	"github.com/five82/typetune/internal/protocol"
)

// FeedbackKind names one of the panel's transient flags.
type FeedbackKind int

const (
	FeedbackCopied FeedbackKind = iota
	FeedbackCopyFailed
)

// Options configure a Panel.
type Options struct {
	Format   protocol.ExportFormat
	Policy   CorrelationPolicy
	NewToken func() string    // nil uses uuid.NewString
	Now      func() time.Time // nil uses time.Now
}

// Panel is the panel's state machine. It is not safe for concurrent use:
// every method runs on the UI event loop.
type Panel struct {
	selection  Selection
	settings   SettingsState
	export     ExportCorrelator
	copied     Feedback
	copyFailed Feedback

	staleResults int
	lastUpdated  time.Time
	now          func() time.Time
}

// New returns a panel in the NoSelection state.
func New(opts Options) *Panel {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Panel{
		export: NewExportCorrelator(opts.Format, opts.Policy, opts.NewToken),
		now:    now,
	}
}

// Init returns the panel-ready request sent once at mount.
func (p *Panel) Init() protocol.Outbound {
	return protocol.Init{}
}

// Handle applies one inbound envelope and returns the request it triggers,
// or nil.
func (p *Panel) Handle(msg protocol.Inbound) protocol.Outbound {
	p.lastUpdated = p.now()
	switch m := msg.(type) {
	case protocol.SettingsMessage:
		p.settings.Replace(m.Settings)
		return nil
	case protocol.CalculationResults:
		return p.applyResults(m.Results)
	case protocol.NoSelection:
		p.selection = Selection{Kind: NoSelection}
		p.export.Clear()
		return nil
	case protocol.ExportResult:
		if !p.export.Accept(m) {
			p.staleResults++
		}
		return nil
	default:
		return nil
	}
}

// StaleResults counts export results dropped as answers to superseded
// requests.
func (p *Panel) StaleResults() int {
	return p.staleResults
}

func (p *Panel) applyResults(results []protocol.ResultEntry) protocol.Outbound {
	wasResults := p.selection.Kind == HasResults
	previous := p.selection.primaryID()

	if len(results) == 0 {
		p.selection = Selection{Kind: EmptySelection}
		p.export.Clear()
		return nil
	}

	p.selection = Selection{Kind: HasResults, Results: cloneResults(results)}
	primary := results[0].NodeID
	if wasResults && primary == previous {
		return nil
	}
	return p.export.Request(primary)
}

// ToggleSetting changes one toggle locally and returns the request for the host.
func (p *Panel) ToggleSetting(key protocol.SettingKey, value bool) protocol.Outbound {
	return p.settings.Toggle(key, value)
}

// FlipSetting inverts one toggle.
func (p *Panel) FlipSetting(key protocol.SettingKey) protocol.Outbound {
	return p.ToggleSetting(key, !p.settings.Value().Get(key))
}

// ApplySelected returns the apply-to-selection request, or nil when there
// is nothing to apply.
func (p *Panel) ApplySelected() protocol.Outbound {
	if p.selection.Kind != HasResults {
		return nil
	}
	return protocol.ApplySelected{}
}

// ApplyPage returns the apply-to-page request, or nil when there is
// nothing to apply.
func (p *Panel) ApplyPage() protocol.Outbound {
	if p.selection.Kind != HasResults {
		return nil
	}
	return protocol.ApplyPage{}
}

// SelectFormat switches the export tab and returns the export request it
// triggers, or nil.
func (p *Panel) SelectFormat(format protocol.ExportFormat) protocol.Outbound {
	req, ok := p.export.SelectFormat(format, p.selection.primaryID())
	if !ok {
		return nil
	}
	return req
}

// CopyText returns the code to put on the clipboard. ok is false when
// there is nothing to copy.
func (p *Panel) CopyText() (string, bool) {
	if p.selection.Kind != HasResults {
		return "", false
	}
	code := p.export.Code()
	if code == "" {
		return "", false
	}
	return code, true
}

// CopySucceeded raises the copied flag and returns its generation.
func (p *Panel) CopySucceeded() uint64 {
	p.copyFailed.Cancel()
	return p.copied.Trigger()
}

// CopyFailed raises the copy-failed flag and returns its generation.
func (p *Panel) CopyFailed() uint64 {
	p.copied.Cancel()
	return p.copyFailed.Trigger()
}

// ExpireFeedback resets a flag if gen is still current.
func (p *Panel) ExpireFeedback(kind FeedbackKind, gen uint64) bool {
	switch kind {
	case FeedbackCopied:
		return p.copied.Expire(gen)
	case FeedbackCopyFailed:
		return p.copyFailed.Expire(gen)
	default:
		return false
	}
}

// CancelFeedback clears every transient flag and invalidates pending resets.
func (p *Panel) CancelFeedback() {
	p.copied.Cancel()
	p.copyFailed.Cancel()
}

// Snapshot returns a copy of the state for rendering.
func (p *Panel) Snapshot() Snapshot {
	return Snapshot{
		Selection:      p.selection.Kind,
		Results:        cloneResults(p.selection.Results),
		Settings:       p.settings.Value(),
		SettingsSynced: p.settings.Synced(),
		Format:         p.export.Format(),
		Policy:         p.export.Policy(),
		Code:           p.export.Code(),
		ExportPending:  p.export.Pending(),
		Copied:         p.copied.Active(),
		CopyFailed:     p.copyFailed.Active(),
		StaleResults:   p.staleResults,
		LastUpdated:    p.lastUpdated,
	}
}

// Snapshot represents the state available to the view.
type Snapshot struct {
	Selection      SelectionKind
	Results        []protocol.ResultEntry
	Settings       protocol.Settings
	SettingsSynced bool
	Format         protocol.ExportFormat
	Policy         CorrelationPolicy
	Code           string
	ExportPending  bool
	Copied         bool
	CopyFailed     bool
	StaleResults   int // export results dropped as superseded
	LastUpdated    time.Time
}

// Primary returns the first result when there are results.
func (s Snapshot) Primary() (protocol.ResultEntry, bool) {
	return Selection{Kind: s.Selection, Results: s.Results}.Primary()
}
