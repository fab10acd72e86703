package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

type statusMsg string

// toggleViolationsOnly flips the violations filter and persists it.
func (m *Model) toggleViolationsOnly() tea.Cmd {
	m.prefs.ViolationsOnly = !m.prefs.ViolationsOnly
	m.table.SetCursor(0)
	m.rebuildRows()
	prefs, save, shown := m.prefs, m.savePrefsFn, len(m.display)
	return func() tea.Msg {
		if save != nil {
			if err := save(prefs); err != nil {
				return statusMsg(fmt.Sprintf("Could not save preferences: %v", err))
			}
		}
		if prefs.ViolationsOnly {
			return statusMsg(fmt.Sprintf("Showing %d violations | %s", shown, helpLine))
		}
		return statusMsg(helpLine)
	}
}

// copyMatch copies the selected finding's match to the clipboard.
func (m Model) copyMatch() tea.Cmd {
	f, ok := m.selected()
	if !ok {
		return func() tea.Msg { return statusMsg("No finding selected") }
	}
	if err := m.copyFn(f.Match); err != nil {
		return func() tea.Msg { return statusMsg(fmt.Sprintf("Clipboard error: %v", err)) }
	}
	return func() tea.Msg { return statusMsg(fmt.Sprintf("Copied %s match", f.Label)) }
}
