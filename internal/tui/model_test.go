package tui

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redactyl/piiscan/internal/types"
)

func sampleResult() types.ScanResult {
	ssn := types.Finding{Label: types.SSN, Match: "123-45-6789", Score: 0.95, Path: "a.txt", Line: 1, Column: 5, Offset: 4}
	email := types.Finding{Label: types.Email, Match: "alice@example.com", Score: 0.85, Path: "record.piidata", Line: 2, Column: 7, Offset: 20}
	phone := types.Finding{Label: types.Phone, Match: "555-123-4567", Score: 0.6, Path: "b.txt", Line: 3, Column: 1, Offset: 40}
	return types.ScanResult{
		Findings:   []types.Finding{ssn, email, phone},
		Violations: []types.Finding{ssn},
		Decision:   types.Reject,
	}
}

func newTestModel(t *testing.T, res types.ScanResult, root string) Model {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	m := NewModel(res, root)
	m.savePrefsFn = func(Prefs) error { return nil }
	return m
}

func press(t *testing.T, m Model, msg tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	tm, cmd := m.Update(msg)
	out, ok := tm.(Model)
	require.True(t, ok)
	return out, cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestView_NotEmpty(t *testing.T) {
	m := newTestModel(t, sampleResult(), "")
	m.ready = true
	m.width, m.height = 120, 40

	view := m.View()
	assert.NotEmpty(t, view)
	assert.Contains(t, view, "findings: 3")
	assert.Contains(t, view, "violations: 1")
	assert.Contains(t, view, "Reject")
}

func TestView_NoFindings(t *testing.T) {
	m := newTestModel(t, types.ScanResult{Decision: types.Accept}, "")
	view := m.View()
	assert.Contains(t, view, "No findings.")
	assert.Contains(t, view, "Accept")
}

func TestToggleViolationsOnly(t *testing.T) {
	m := newTestModel(t, sampleResult(), "")
	var saved []Prefs
	m.savePrefsFn = func(p Prefs) error { saved = append(saved, p); return nil }
	require.Len(t, m.display, 3)

	m, cmd := press(t, m, runes("v"))
	require.NotNil(t, cmd)
	assert.Equal(t, statusMsg("Showing 1 violations | "+helpLine), cmd())
	assert.True(t, m.prefs.ViolationsOnly)
	assert.Equal(t, []int{0}, m.display)
	assert.Contains(t, m.View(), "[violations only]")

	m, cmd = press(t, m, runes("v"))
	assert.Equal(t, statusMsg(helpLine), cmd())
	assert.False(t, m.prefs.ViolationsOnly)
	assert.Len(t, m.display, 3)
	assert.Equal(t, []Prefs{{ViolationsOnly: true}, {ViolationsOnly: false}}, saved)
}

func TestViolationsOnly_RestoredFromPrefs(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	require.NoError(t, SavePrefs(Prefs{ViolationsOnly: true}))
	m := NewModel(sampleResult(), "")
	assert.Equal(t, []int{0}, m.display)
}

func TestViolationsOnly_EmptyShowsMessage(t *testing.T) {
	res := sampleResult()
	res.Violations = nil
	res.Decision = types.Accept
	m := newTestModel(t, res, "")
	m, _ = press(t, m, runes("v"))
	assert.Empty(t, m.display)
	assert.Contains(t, m.View(), "No violations.")
}

func TestCopyMatch(t *testing.T) {
	m := newTestModel(t, sampleResult(), "")
	var copied string
	m.copyFn = func(s string) error { copied = s; return nil }

	_, cmd := press(t, m, runes("c"))
	require.NotNil(t, cmd)
	msg := cmd()
	assert.Equal(t, "123-45-6789", copied)
	assert.Equal(t, statusMsg("Copied SSN match"), msg)
}

func TestCopyMatch_ClipboardError(t *testing.T) {
	m := newTestModel(t, sampleResult(), "")
	m.copyFn = func(string) error { return errors.New("no clipboard") }

	_, cmd := press(t, m, runes("c"))
	require.NotNil(t, cmd)
	assert.Equal(t, statusMsg("Clipboard error: no clipboard"), cmd())
}

func TestStatusMsgUpdatesStatusBar(t *testing.T) {
	m := newTestModel(t, sampleResult(), "")
	tm, _ := m.Update(statusMsg("hello"))
	assert.Contains(t, tm.View(), "hello")
}

func TestCursorMovesSelection(t *testing.T) {
	m := newTestModel(t, sampleResult(), "")
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	f, ok := m.selected()
	require.True(t, ok)
	assert.Equal(t, types.Email, f.Label)
}

func TestDetailShowsSourceContext(t *testing.T) {
	dir := t.TempDir()
	body := "line one\ncontact alice@example.com\nline three\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "record.piidata"), []byte(body), 0o644))

	m := newTestModel(t, sampleResult(), dir)
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, m.showDetail)

	view := m.View()
	assert.Contains(t, view, "record.piidata:2")
	assert.Contains(t, view, "line one")
	assert.Contains(t, view, "contact alice@example.com")

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.showDetail)
}

func TestQuit(t *testing.T) {
	m := newTestModel(t, sampleResult(), "")
	m, cmd := press(t, m, runes("q"))
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
	assert.Empty(t, m.View())
}

func TestReadFileContext(t *testing.T) {
	p := filepath.Join(t.TempDir(), "f.txt")
	require.NoError(t, os.WriteFile(p, []byte("1\n2\n3\n4\n5\n6\n7\n8\n"), 0o644))

	lines, start, err := readFileContext(p, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, start)
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, lines)

	lines, start, err = readFileContext(p, 6, 1)
	require.NoError(t, err)
	assert.Equal(t, 5, start)
	assert.Equal(t, []string{"5", "6", "7"}, lines)
}

func TestHighlightLine_UnknownTypeUnchanged(t *testing.T) {
	assert.Equal(t, "plain text", highlightLine("plain text", "file.piidata"))
}
