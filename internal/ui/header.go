package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/typetune/internal/state"
)

// Badge names, mapped to palette roles by Theme.badgeColor.
const (
	badgeNone       = "none"
	badgeEmpty      = "empty"
	badgeResults    = "results"
	badgeApprox     = "approx"
	badgePending    = "pending"
	badgeCopied     = "copied"
	badgeCopyFailed = "copy_failed"
	badgeOffline    = "offline"
	badgeSynced     = "synced"
)

// renderHeader renders the status bar.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().OnSurface()
	bg := onSurface(m.theme.Surface)

	parts := []string{bg.paint("typetune", styles.Brand)}

	if m.hostEnded {
		label := "host disconnected"
		if m.hostErr != nil {
			label = "host error"
		}
		parts = append(parts, styles.Badge(badgeOffline).Render(label))
	} else if m.hostLabel != "" {
		parts = append(parts, bg.paint("● "+truncateMiddle(m.hostLabel, 40), styles.SuccessText))
	}

	parts = append(parts, selectionBadge(styles, m.snapshot))

	if m.snapshot.SettingsSynced {
		parts = append(parts, styles.Badge(badgeSynced).Render("settings"))
	} else {
		parts = append(parts, bg.paint("waiting for settings", styles.WarningText))
	}

	if m.width >= 80 && !m.snapshot.LastUpdated.IsZero() {
		parts = append(parts, bg.paint("updated "+m.snapshot.LastUpdated.Format("15:04:05"), styles.MutedText))
	}

	return lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Surface)).
		Foreground(lipgloss.Color(m.theme.Text)).
		Padding(0, 1).
		Width(m.width).
		Render(bg.join(parts, "  "))
}

func selectionBadge(styles Styles, snap state.Snapshot) string {
	switch snap.Selection {
	case state.HasResults:
		label := "1 layer"
		if n := len(snap.Results); n > 1 {
			label = fmt.Sprintf("%d layers", n)
		}
		return styles.Badge(badgeResults).Render(label)
	case state.EmptySelection:
		return styles.Badge(badgeEmpty).Render("no text")
	default:
		return styles.Badge(badgeNone).Render("no selection")
	}
}
