package domain

// Persisted dark-mode values.
const (
	DarkModeOn  = "on"
	DarkModeOff = "off"
)

// Preferences are per-visitor display settings.
type Preferences struct {
	DarkMode bool
}

// DarkModeValue is the persisted form of the dark-mode flag.
func (p Preferences) DarkModeValue() string {
	if p.DarkMode {
		return DarkModeOn
	}
	return DarkModeOff
}

// ParseDarkMode reads a persisted value. Only "on" enables dark mode.
func ParseDarkMode(v string) bool {
	return v == DarkModeOn
}
