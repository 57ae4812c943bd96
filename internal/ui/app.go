package ui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/typetune/internal/bridge"
	"github.com/five82/typetune/internal/logging"
	"github.com/five82/typetune/internal/metrics"
	"github.com/five82/typetune/internal/prefs"
	"github.com/five82/typetune/internal/protocol"
	"github.com/five82/typetune/internal/state"
)

const defaultCopyFeedback = 1500 * time.Millisecond

// Options configures the UI.
type Options struct {
	Panel        *state.Panel
	Sender       bridge.Sender
	Clipboard    Clipboard
	CopyFeedback time.Duration
	Prefs        prefs.Prefs
	PrefsPath    string
	LogPath      string // panel log read by the protocol log overlay
	HostLabel    string // shown in the header
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Collaborators
	panel        *state.Panel
	sender       bridge.Sender
	clipboard    Clipboard
	copyFeedback time.Duration
	prefs        prefs.Prefs
	prefsPath    string
	logPath      string
	hostLabel    string

	// UI state
	theme  Theme
	keys   keyMap
	help   help.Model
	width  int
	height int
	ready  bool

	snapshot  state.Snapshot
	hostErr   error
	hostEnded bool

	// Help overlay
	showHelp bool

	// Protocol log overlay
	showLog     bool
	logGen      uint64
	logViewport viewport.Model
	logState    protocolLogState
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	panel := opts.Panel
	if panel == nil {
		panel = state.New(state.Options{Format: opts.Prefs.ExportFormat})
	}

	clip := opts.Clipboard
	if clip == nil {
		clip = SystemClipboard{}
	}

	feedback := opts.CopyFeedback
	if feedback <= 0 {
		feedback = defaultCopyFeedback
	}

	h := help.New()
	h.ShortSeparator = " │ "

	return Model{
		panel:        panel,
		sender:       opts.Sender,
		clipboard:    clip,
		copyFeedback: feedback,
		prefs:        opts.Prefs,
		prefsPath:    opts.PrefsPath,
		logPath:      opts.LogPath,
		hostLabel:    opts.HostLabel,
		theme:        GetTheme(opts.Prefs.Theme),
		keys:         DefaultKeyMap(),
		help:         h,
		snapshot:     panel.Snapshot(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.EnterAltScreen
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		if !m.ready {
			m.initLogViewport()
		}
		m.ready = true
		m.resizeLogViewport()
		return m, nil

	case InboundMsg:
		m.handleInbound(msg.Msg)
		return m, nil

	case HostClosedMsg:
		m.hostEnded = true
		m.hostErr = msg.Err
		return m, nil

	case copyResultMsg:
		return m.handleCopyResult(msg)

	case feedbackExpiredMsg:
		m.panel.ExpireFeedback(msg.kind, msg.gen)
		m.refresh()
		return m, nil

	case protocolLogTickMsg:
		if !m.showLog || msg.gen != m.logGen {
			return m, nil
		}
		return m, tea.Batch(loadProtocolLogCmd(m.logPath, msg.gen), protocolLogTickCmd(msg.gen))

	case protocolLogMsg:
		m.handleProtocolLog(msg)
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	if m.showLog {
		return m.renderProtocolLog()
	}

	return m.renderMain()
}

// Snapshot returns the state currently rendered.
func (m Model) Snapshot() state.Snapshot {
	return m.snapshot
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	if m.showLog {
		return m.handleProtocolLogKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.prefs.Theme = m.theme.Name
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.ProtocolLog):
		return m.openProtocolLog()

	case key.Matches(msg, m.keys.ToggleAutoApply):
		m.send(m.panel.FlipSetting(protocol.SettingAutoApply))

	case key.Matches(msg, m.keys.ToggleWriteVariables):
		m.send(m.panel.FlipSetting(protocol.SettingWriteVariables))

	case key.Matches(msg, m.keys.ApplySelected):
		m.send(m.panel.ApplySelected())

	case key.Matches(msg, m.keys.ApplyPage):
		m.send(m.panel.ApplyPage())

	case key.Matches(msg, m.keys.NextTab):
		if m.tabsVisible() {
			m.selectFormat(m.shiftTab(1))
		}

	case key.Matches(msg, m.keys.PrevTab):
		if m.tabsVisible() {
			m.selectFormat(m.shiftTab(-1))
		}

	case key.Matches(msg, m.keys.Copy):
		return m, m.copyCode()

	case m.tabsVisible():
		for i, binding := range m.keys.tabKeys() {
			if key.Matches(msg, binding) {
				m.selectFormat(protocol.Formats()[i])
				break
			}
		}
	}

	m.refresh()
	return m, nil
}

func (m *Model) handleInbound(msg protocol.Inbound) {
	if res, ok := msg.(protocol.ExportResult); ok {
		before := m.panel.StaleResults()
		m.send(m.panel.Handle(res))
		metrics.RecordExportResult(m.panel.StaleResults() == before)
	} else {
		m.send(m.panel.Handle(msg))
	}
	m.refresh()
}

func (m *Model) selectFormat(format protocol.ExportFormat) {
	if format == m.snapshot.Format {
		return
	}
	m.send(m.panel.SelectFormat(format))
	m.prefs.ExportFormat = m.panel.Snapshot().Format
	m.savePrefs()
}

// tabsVisible reports whether the export tabs are on screen. Tab keys do
// nothing while they are hidden.
func (m Model) tabsVisible() bool {
	return m.snapshot.Selection == state.HasResults
}

// shiftTab returns the format delta tabs away from the active one, wrapping.
func (m Model) shiftTab(delta int) protocol.ExportFormat {
	formats := protocol.Formats()
	idx := 0
	for i, f := range formats {
		if f == m.snapshot.Format {
			idx = i
			break
		}
	}
	idx = (idx + delta + len(formats)) % len(formats)
	return formats[idx]
}

func (m Model) send(msg protocol.Outbound) {
	if msg == nil || m.sender == nil {
		return
	}
	m.sender.Send(msg)
}

func (m *Model) refresh() {
	m.snapshot = m.panel.Snapshot()
}

func (m Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	if err := prefs.Save(m.prefsPath, m.prefs); err != nil {
		logging.Warn("save prefs failed", logging.String("path", m.prefsPath), logging.Err(err))
	}
}

// Messages

// InboundMsg delivers one host envelope into the update loop.
type InboundMsg struct {
	Msg protocol.Inbound
}

// HostClosedMsg reports that the connection to the host ended.
type HostClosedMsg struct {
	Err error
}

type feedbackExpiredMsg struct {
	kind state.FeedbackKind
	gen  uint64
}

// Commands

func feedbackCmd(d time.Duration, kind state.FeedbackKind, gen uint64) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return feedbackExpiredMsg{kind: kind, gen: gen}
	})
}
