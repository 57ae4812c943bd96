package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/typetune/internal/protocol"
	"github.com/five82/typetune/internal/state"
)

const (
	emptyStateNoSelection = "Select text layers to optimize\nline-height and letter-spacing"
	emptyStateNoText      = "No text layers in selection"

	hintAutoApply = "When enabled, optimized values are immediately applied to every text " +
		"layer you select, no need to press apply. Disable to preview values first."
	hintWriteVariables = "Creates a \"TypeTune\" variable collection with line-height and " +
		"letter-spacing values for each text style, with Light and Dark mode variants."
)

// renderMain renders the panel: header, body, footer.
func (m Model) renderMain() string {
	header := m.renderHeader()
	footer := m.renderFooter()

	bodyHeight := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	body := lipgloss.NewStyle().
		Width(m.width).
		Height(maxInt(bodyHeight, 0)).
		MaxHeight(maxInt(bodyHeight, 0)).
		Padding(0, 1).
		Render(m.renderBody())

	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m Model) renderBody() string {
	styles := m.theme.Styles()
	width := m.contentWidth()

	var sections []string
	switch m.snapshot.Selection {
	case state.NoSelection:
		sections = append(sections, m.renderEmptyState("Aa", emptyStateNoSelection))
	case state.EmptySelection:
		sections = append(sections, m.renderEmptyState("...", emptyStateNoText))
	case state.HasResults:
		sections = append(sections,
			m.renderResult(),
			m.renderApply(),
			divider(styles, width),
			m.renderExport(),
		)
	}
	sections = append(sections, divider(styles, width), m.renderSettings())
	return strings.Join(sections, "\n")
}

func (m Model) renderEmptyState(icon, text string) string {
	styles := m.theme.Styles()
	block := lipgloss.JoinVertical(lipgloss.Center,
		styles.FaintText.Bold(true).Render(icon),
		"",
		styles.MutedText.Align(lipgloss.Center).Render(text),
	)
	return lipgloss.NewStyle().
		Width(m.contentWidth()).
		Align(lipgloss.Center).
		Padding(1, 0).
		Render(block)
}

func (m Model) renderResult() string {
	styles := m.theme.Styles()
	primary, ok := m.snapshot.Primary()
	if !ok {
		return ""
	}

	title := "Result"
	if n := len(m.snapshot.Results); n > 1 {
		title = fmt.Sprintf("Result (%d layers)", n)
	}

	font := styles.Text.Bold(true).Render(primary.FontInfo)
	if primary.IsApproximate {
		font += " " + styles.Badge(badgeApprox).Render("approx")
	}

	after := primary.After
	rows := []string{
		font,
		resultRow(styles, "Line-height",
			number(after.LineHeight)+"px",
			fmt.Sprintf("(%s%%)", number(after.LineHeightPercent)),
			primary.Before.LineHeight),
		resultRow(styles, "Letter-spacing",
			number(after.LetterSpacing)+"px",
			fmt.Sprintf("(%s%%)", number(after.LetterSpacingPercent)),
			primary.Before.LetterSpacing),
	}

	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Border)).
		Padding(0, 1).
		Width(maxInt(m.contentWidth()-2, 20)).
		Render(strings.Join(rows, "\n"))

	return sectionTitle(styles, title) + "\n" + card
}

func resultRow(styles Styles, label, value, percent, before string) string {
	row := styles.MutedText.Render(padRight(label, 16)) +
		styles.AccentText.Bold(true).Render(value) + " " +
		styles.MutedText.Render(percent)
	if strings.TrimSpace(before) != "" {
		row += "  " + styles.FaintText.Strikethrough(true).Render(before)
	}
	return row
}

func (m Model) renderApply() string {
	primary := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.theme.Background)).
		Background(lipgloss.Color(m.theme.Accent)).
		Bold(true).
		Padding(0, 1)
	secondary := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.theme.Text)).
		Background(lipgloss.Color(m.theme.SurfaceAlt)).
		Padding(0, 1)

	return primary.Render("enter  Apply to selected") + "  " +
		secondary.Render("A  Apply to page")
}

func (m Model) renderExport() string {
	styles := m.theme.Styles()

	var tabs []string
	for i, f := range protocol.Formats() {
		label := fmt.Sprintf("%d %s", i+1, f.Label())
		if f == m.snapshot.Format {
			tabs = append(tabs, styles.ActiveTab.Bold(true).Padding(0, 1).Render(label))
		} else {
			tabs = append(tabs, styles.MutedText.Padding(0, 1).Render(label))
		}
	}
	tabRow := strings.Join(tabs, " ")
	if m.snapshot.ExportPending {
		tabRow += "  " + styles.Badge(badgePending).Render("updating")
	}

	lines := []string{sectionTitle(styles, "Export"), tabRow}

	if m.snapshot.Code == "" {
		if m.snapshot.ExportPending {
			lines = append(lines, styles.FaintText.Render("Waiting for code..."))
		}
		return strings.Join(lines, "\n")
	}

	code := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(m.theme.BorderMuted)).
		Foreground(lipgloss.Color(m.theme.Text)).
		Padding(0, 1).
		Width(maxInt(m.contentWidth()-2, 20)).
		Render(m.snapshot.Code)
	lines = append(lines, code, m.renderCopyStatus())
	return strings.Join(lines, "\n")
}

func (m Model) renderCopyStatus() string {
	styles := m.theme.Styles()
	switch {
	case m.snapshot.Copied:
		return styles.Badge(badgeCopied).Render("Copied!")
	case m.snapshot.CopyFailed:
		return styles.Badge(badgeCopyFailed).Render("Copy failed")
	default:
		return styles.FaintText.Render("c  Copy")
	}
}

func (m Model) renderSettings() string {
	styles := m.theme.Styles()
	settings := m.snapshot.Settings
	hintStyle := styles.FaintText.Width(maxInt(m.contentWidth()-4, 20)).PaddingLeft(4)

	lines := []string{
		sectionTitle(styles, "Settings"),
		checkbox(styles, "a", settings.AutoApply, "Auto-apply on selection change"),
		hintStyle.Render(hintAutoApply),
		checkbox(styles, "w", settings.WriteVariables, "Save to Figma Variables"),
		hintStyle.Render(hintWriteVariables),
	}
	return strings.Join(lines, "\n")
}

func checkbox(styles Styles, keyLabel string, checked bool, label string) string {
	rendered := styles.MutedText.Render("[ ]")
	if checked {
		rendered = styles.SuccessText.Render("[x]")
	}
	return styles.WarningText.Render(keyLabel) + " " + rendered + " " + styles.Text.Render(label)
}

func sectionTitle(styles Styles, title string) string {
	return styles.AccentText.Bold(true).Render(title)
}

func divider(styles Styles, width int) string {
	return styles.FaintText.Render(strings.Repeat("─", maxInt(width, 1)))
}

func (m Model) renderFooter() string {
	styles := m.theme.Styles()
	return styles.Footer.Width(m.width).Render(m.help.View(m.keys))
}

func (m Model) contentWidth() int {
	return maxInt(m.width-2, 20)
}

// maxInt returns the larger of two integers.
func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
