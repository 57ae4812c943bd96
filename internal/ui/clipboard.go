package ui

import (
	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/typetune/internal/logging"
	"github.com/five82/typetune/internal/metrics"
	"github.com/five82/typetune/internal/state"
)

// Clipboard writes text to the system clipboard.
type Clipboard interface {
	WriteAll(text string) error
}

// SystemClipboard uses the platform clipboard tools.
type SystemClipboard struct{}

// WriteAll implements Clipboard.
func (SystemClipboard) WriteAll(text string) error {
	return clipboard.WriteAll(text)
}

type copyResultMsg struct {
	err error
}

// copyCode starts an asynchronous clipboard write. Without code it does nothing.
func (m Model) copyCode() tea.Cmd {
	text, ok := m.panel.CopyText()
	if !ok {
		return nil
	}
	clip := m.clipboard
	return func() tea.Msg {
		return copyResultMsg{err: clip.WriteAll(text)}
	}
}

func (m Model) handleCopyResult(msg copyResultMsg) (tea.Model, tea.Cmd) {
	metrics.RecordClipboardWrite(msg.err)

	var cmd tea.Cmd
	if msg.err != nil {
		logging.Warn("clipboard write failed", logging.Err(msg.err))
		cmd = feedbackCmd(m.copyFeedback, state.FeedbackCopyFailed, m.panel.CopyFailed())
	} else {
		cmd = feedbackCmd(m.copyFeedback, state.FeedbackCopied, m.panel.CopySucceeded())
	}
	m.refresh()
	return m, cmd
}
