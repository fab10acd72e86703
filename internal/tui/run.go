package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/redactyl/piiscan/internal/types"
)

// Run opens the interactive viewer for res and blocks until the user quits.
func Run(res types.ScanResult, root string) error {
	m := NewModel(res, root)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
