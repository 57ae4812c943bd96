package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/typetune/internal/logging"
	"github.com/five82/typetune/internal/logtail"
)

const (
	protocolLogRefresh    = time.Second
	protocolLogMaxLines   = 4000
	protocolLogMaxEntries = 500
)

// protocolLogState holds the protocol log overlay's data.
type protocolLogState struct {
	entries []logtail.Entry
	err     error
	follow  bool
	loaded  bool
}

type protocolLogMsg struct {
	gen     uint64
	entries []logtail.Entry
	err     error
}

type protocolLogTickMsg struct {
	gen uint64
}

func loadProtocolLogCmd(path string, gen uint64) tea.Cmd {
	return func() tea.Msg {
		if path == "" {
			return protocolLogMsg{gen: gen}
		}
		entries, err := logtail.Envelopes(path, logging.EnvelopeMessage, protocolLogMaxLines, protocolLogMaxEntries)
		return protocolLogMsg{gen: gen, entries: entries, err: err}
	}
}

// protocolLogTickCmd schedules a refresh. Ticks carry the overlay
// generation so that reopening the overlay does not start a second chain.
func protocolLogTickCmd(gen uint64) tea.Cmd {
	return tea.Tick(protocolLogRefresh, func(time.Time) tea.Msg {
		return protocolLogTickMsg{gen: gen}
	})
}

// initLogViewport initializes the log viewport.
func (m *Model) initLogViewport() {
	m.logViewport = viewport.New(maxInt(m.width-4, 1), maxInt(m.height-4, 1))
	m.logViewport.Style = lipgloss.NewStyle()
}

func (m *Model) resizeLogViewport() {
	m.logViewport.Width = maxInt(m.width-4, 1)
	m.logViewport.Height = maxInt(m.height-4, 1)
	if m.logState.follow {
		m.logViewport.GotoBottom()
	}
}

func (m Model) openProtocolLog() (tea.Model, tea.Cmd) {
	m.showLog = true
	m.logGen++
	m.logState.follow = true
	return m, tea.Batch(loadProtocolLogCmd(m.logPath, m.logGen), protocolLogTickCmd(m.logGen))
}

func (m *Model) handleProtocolLog(msg protocolLogMsg) {
	if msg.gen != m.logGen {
		return
	}
	m.logState.entries = msg.entries
	m.logState.err = msg.err
	m.logState.loaded = true
	if msg.err != nil {
		logging.Debug("protocol log read failed", logging.String("path", m.logPath), logging.Err(msg.err))
	}
	m.logViewport.SetContent(m.renderProtocolLogContent())
	if m.logState.follow {
		m.logViewport.GotoBottom()
	}
}

func (m Model) handleProtocolLogKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.ProtocolLog):
		m.showLog = false
		m.logGen++
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.Bottom):
		m.logViewport.GotoBottom()
		m.logState.follow = true

	case key.Matches(msg, m.keys.Down):
		m.logViewport.LineDown(1)
		m.logState.follow = m.logViewport.AtBottom()

	case key.Matches(msg, m.keys.Up):
		m.logViewport.LineUp(1)
		m.logState.follow = false

	case key.Matches(msg, m.keys.PageDown):
		m.logViewport.ViewDown()
		m.logState.follow = m.logViewport.AtBottom()

	case key.Matches(msg, m.keys.PageUp):
		m.logViewport.ViewUp()
		m.logState.follow = false
	}
	return m, nil
}

func (m Model) renderProtocolLogContent() string {
	styles := m.theme.Styles()
	switch {
	case m.logState.err != nil:
		return styles.DangerText.Render("Cannot read " + m.logPath + ": " + m.logState.err.Error())
	case m.logPath == "":
		return styles.MutedText.Render("Logging goes to the terminal; no log file to read.")
	case len(m.logState.entries) == 0:
		return styles.MutedText.Render("No envelopes logged yet.\nSet log_level = \"debug\" to trace every envelope.")
	}

	lines := make([]string, 0, len(m.logState.entries))
	for _, e := range m.logState.entries {
		lines = append(lines, m.styleEntry(styles, e))
	}
	return strings.Join(lines, "\n")
}

func (m Model) styleEntry(styles Styles, e logtail.Entry) string {
	line := e.Format()
	switch e.Dir {
	case string(logging.Inbound):
		return styles.InfoText.Render(line)
	case string(logging.Outbound):
		return styles.AccentText.Render(line)
	case string(logging.Dropped):
		return styles.WarningText.Render(line)
	default:
		return styles.Text.Render(line)
	}
}

// renderProtocolLog renders the overlay: a bordered viewport and a status line.
func (m Model) renderProtocolLog() string {
	styles := m.theme.Styles()

	title := styles.AccentText.Bold(true).Render(" Protocol log ")
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.BorderFocus)).
		Width(maxInt(m.width-2, 1)).
		Render(m.logViewport.View())

	status := fmt.Sprintf("%d envelopes", len(m.logState.entries))
	if m.logState.follow {
		status += "  following"
	}
	if !m.logState.loaded {
		status = "loading..."
	}
	footer := styles.Footer.Width(m.width).Render(
		styles.MutedText.Render(status) + "  " +
			styles.FaintText.Render("esc close  j/k scroll  G newest"))

	return lipgloss.JoinVertical(lipgloss.Left, title, box, footer)
}
