package client

import (
	"fmt"
	"strings"
)

type ThemePreference string

const (
	ThemeLight  ThemePreference = "light"
	ThemeDark   ThemePreference = "dark"
	ThemeSystem ThemePreference = "system"
)

func ParseTheme(s string) (ThemePreference, error) {
	switch t := ThemePreference(strings.ToLower(strings.TrimSpace(s))); t {
	case ThemeLight, ThemeDark, ThemeSystem:
		return t, nil
	default:
		return "", fmt.Errorf("unknown theme %q (want light, dark or system)", s)
	}
}

// LoadTheme returns the stored preference, or ThemeSystem when nothing
// valid is stored.
func LoadTheme(store Store) (ThemePreference, error) {
	raw, ok, err := store.Get(KeyTheme)
	if err != nil || !ok {
		return ThemeSystem, err
	}
	theme, err := ParseTheme(raw)
	if err != nil {
		return ThemeSystem, nil
	}
	return theme, nil
}

func SaveTheme(store Store, theme ThemePreference) error {
	if _, err := ParseTheme(string(theme)); err != nil {
		return err
	}
	return store.Set(KeyTheme, string(theme))
}
