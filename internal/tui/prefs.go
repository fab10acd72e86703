package tui

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/redactyl/piiscan/internal/config"
)

// Prefs holds viewer preferences that persist across sessions.
type Prefs struct {
	// ViolationsOnly starts the viewer filtered to policy violations.
	ViolationsOnly bool `json:"violations_only"`
}

// DefaultPrefs returns the default preferences.
func DefaultPrefs() Prefs {
	return Prefs{}
}

// prefsPath returns the preferences file, next to the global config.
func prefsPath() (string, error) {
	p, err := config.GlobalPath()
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(p), "tui_prefs.json"), nil
}

// LoadPrefs loads user preferences from disk, returning defaults if not found.
func LoadPrefs() Prefs {
	prefs := DefaultPrefs()
	path, err := prefsPath()
	if err != nil {
		return prefs
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return prefs
	}
	_ = json.Unmarshal(data, &prefs) //nolint:errcheck // fall back to defaults
	return prefs
}

// SavePrefs persists user preferences to disk.
func SavePrefs(prefs Prefs) error {
	path, err := prefsPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
