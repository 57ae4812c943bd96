package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// surface paints text on one background color. Lipgloss resets attributes
// after every styled segment, so plain spaces between segments would show
// the terminal background instead.
type surface struct {
	bg lipgloss.Color
}

func onSurface(color string) surface {
	return surface{bg: lipgloss.Color(color)}
}

// paint renders text with style, spaces included, on the surface color.
func (s surface) paint(text string, style lipgloss.Style) string {
	if text == "" {
		return ""
	}
	style = style.Background(s.bg)
	space := lipgloss.NewStyle().Background(s.bg).Render(" ")

	var b strings.Builder
	for i, word := range strings.Split(text, " ") {
		if i > 0 {
			b.WriteString(space)
		}
		if word != "" {
			b.WriteString(style.Render(word))
		}
	}
	return b.String()
}

// join joins already rendered parts with a painted separator.
func (s surface) join(parts []string, sep string) string {
	return strings.Join(parts, s.paint(sep, lipgloss.NewStyle()))
}
