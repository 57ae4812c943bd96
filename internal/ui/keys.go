package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the panel.
type keyMap struct {
	// Global
	Quit        key.Binding
	Help        key.Binding
	CycleTheme  key.Binding
	ProtocolLog key.Binding
	Escape      key.Binding

	// Settings
	ToggleAutoApply      key.Binding
	ToggleWriteVariables key.Binding

	// Results
	ApplySelected key.Binding
	ApplyPage     key.Binding

	// Export
	TabCSS     key.Binding
	TabFluid   key.Binding
	TabIOS     key.Binding
	TabAndroid key.Binding
	NextTab    key.Binding
	PrevTab    key.Binding
	Copy       key.Binding

	// Protocol log navigation
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Bottom   key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		ProtocolLog: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "Protocol log"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Close overlay"),
		),

		ToggleAutoApply: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "Auto-apply"),
		),
		ToggleWriteVariables: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "Save to variables"),
		),

		ApplySelected: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Apply to selected"),
		),
		ApplyPage: key.NewBinding(
			key.WithKeys("A"),
			key.WithHelp("A", "Apply to page"),
		),

		TabCSS: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "CSS"),
		),
		TabFluid: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "Fluid"),
		),
		TabIOS: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "iOS"),
		),
		TabAndroid: key.NewBinding(
			key.WithKeys("4"),
			key.WithHelp("4", "Android"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→", "Next tab"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←", "Previous tab"),
		),
		Copy: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "Copy code"),
		),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Scroll down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("pgup", "Page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("pgdown", "Page down"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Newest"),
		),
	}
}

// ShortHelp returns key bindings for the footer.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.ApplySelected, k.Copy, k.ToggleAutoApply, k.ProtocolLog, k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.ApplySelected, k.ApplyPage},
		{k.TabCSS, k.TabFluid, k.TabIOS, k.TabAndroid, k.PrevTab, k.NextTab, k.Copy},
		{k.ToggleAutoApply, k.ToggleWriteVariables},
		{k.ProtocolLog, k.Up, k.Down, k.PageUp, k.PageDown, k.Bottom},
		{k.CycleTheme, k.Help, k.Escape, k.Quit},
	}
}

// tabKeys maps the numbered bindings to tab positions.
func (k keyMap) tabKeys() []key.Binding {
	return []key.Binding{k.TabCSS, k.TabFluid, k.TabIOS, k.TabAndroid}
}
