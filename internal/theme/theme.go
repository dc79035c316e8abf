// internal/theme/theme.go

// Package theme reads and toggles the persisted dark/light theme.
package theme

import (
	"context"
	"fmt"

	"adminsync/internal/prefs"
)

// Key is the preference key holding the theme.
const Key = "theme"

type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

// Opposite returns the other theme.
func (t Theme) Opposite() Theme {
	if t == Dark {
		return Light
	}
	return Dark
}

// Load returns the stored theme. Only "dark" selects the dark theme; a
// missing or unrecognized value is light.
func Load(ctx context.Context, store prefs.Store) (Theme, error) {
	v, ok, err := store.Get(ctx, Key)
	if err != nil {
		return Light, fmt.Errorf("load theme: %w", err)
	}
	if ok && Theme(v) == Dark {
		return Dark, nil
	}
	return Light, nil
}

// Toggle switches away from current and persists the result. On a write
// failure the returned theme is still the switched one so the screen can
// follow the user's choice.
func Toggle(ctx context.Context, store prefs.Store, current Theme) (Theme, error) {
	next := current.Opposite()
	if err := store.Set(ctx, Key, string(next)); err != nil {
		return next, fmt.Errorf("save theme: %w", err)
	}
	return next, nil
}
