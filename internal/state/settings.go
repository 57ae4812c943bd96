package state

import "github.com/five82/typetune/internal/protocol"

// SettingsState reconciles two writers: local optimistic toggles and the
// host's full broadcasts. The host always wins; a broadcast replaces the
// whole object even if it predates a local toggle.
type SettingsState struct {
	value  protocol.Settings
	synced bool
}

// Value returns the settings currently shown.
func (s SettingsState) Value() protocol.Settings {
	return s.value
}

// Synced reports whether at least one host broadcast has arrived.
func (s SettingsState) Synced() bool {
	return s.synced
}

// Toggle applies the change locally and returns the request that carries
// only the changed key.
func (s *SettingsState) Toggle(key protocol.SettingKey, value bool) protocol.UpdateSettings {
	s.value = s.value.With(key, value)
	return protocol.UpdateSettings{Settings: protocol.PatchFor(key, value)}
}

// Replace overwrites the local settings with a host broadcast.
func (s *SettingsState) Replace(v protocol.Settings) {
	s.value = v
	s.synced = true
}
