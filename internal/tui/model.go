package tui

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/redactyl/piiscan/internal/report"
	"github.com/redactyl/piiscan/internal/types"
)

var (
	tableBorderStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(lipgloss.Color("240"))

	detailPaneBorderStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(lipgloss.Color("240")).
				Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true).
			Padding(0, 1)

	matchStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("7")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("7"))

	rejectStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	acceptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	lineNumStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

const helpLine = "q: quit | enter: details | v: violations only | c: copy match"

// Model is the findings viewer state.
type Model struct {
	table    table.Model
	viewport viewport.Model

	result      types.ScanResult
	isViolation func(types.Finding) bool
	// display maps table rows to indices in result.Findings
	display []int

	root          string
	showDetail    bool
	prefs         Prefs
	status        string
	width, height int
	ready         bool
	quitting      bool

	copyFn      func(string) error
	savePrefsFn func(Prefs) error
}

// NewModel builds a viewer for res. root resolves relative finding paths
// when reading source context.
func NewModel(res types.ScanResult, root string) Model {
	columns := []table.Column{
		{Title: "!", Width: 2},
		{Title: "Label", Width: 14},
		{Title: "Score", Width: 6},
		{Title: "Location", Width: 36},
		{Title: "Match", Width: 36},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	s := table.DefaultStyles()
	s.Header = lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("15")).
		Bold(true).
		Padding(0, 1).
		Align(lipgloss.Left)
	s.Selected = lipgloss.NewStyle().
		Foreground(lipgloss.Color("232")).
		Background(lipgloss.Color("208")).
		Bold(true).
		Padding(0, 1)
	s.Cell = lipgloss.NewStyle().Padding(0, 1)
	t.SetStyles(s)

	m := Model{
		table:       t,
		viewport:    viewport.New(80, 10),
		result:      res,
		isViolation: report.ViolationSet(res),
		root:        root,
		prefs:       LoadPrefs(),
		status:      helpLine,
		copyFn:      clipboard.WriteAll,
		savePrefsFn: SavePrefs,
	}
	m.rebuildRows()
	return m
}

func (m Model) Init() tea.Cmd { return nil }

func (m *Model) rebuildRows() {
	m.display = make([]int, 0, len(m.result.Findings))
	var rows []table.Row
	for i, f := range m.result.Findings {
		v := m.isViolation(f)
		if m.prefs.ViolationsOnly && !v {
			continue
		}
		mark := ""
		if v {
			mark = "x"
		}
		m.display = append(m.display, i)
		rows = append(rows, table.Row{mark, string(f.Label), fmt.Sprintf("%.2f", f.Score), locationOf(f), f.Match})
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(0)
	}
	m.updateViewportContent()
}

func (m Model) selected() (types.Finding, bool) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.display) {
		return types.Finding{}, false
	}
	return m.result.Findings[m.display[idx]], true
}

func locationOf(f types.Finding) string {
	switch {
	case f.Path == "":
		return fmt.Sprintf("offset %d", f.Offset)
	case f.Line == 0:
		return f.Path
	default:
		return fmt.Sprintf("%s:%d", f.Path, f.Line)
	}
}

func (m *Model) updateViewportContent() {
	f, ok := m.selected()
	if !ok {
		m.viewport.SetContent("No finding selected.")
		return
	}
	var b strings.Builder
	b.WriteString(keyStyle.Render("Label: ") + string(f.Label) + "\n")
	b.WriteString(keyStyle.Render("Score: ") + fmt.Sprintf("%.2f", f.Score))
	if f.Validated {
		b.WriteString(" (structurally valid)")
	}
	b.WriteString("\n")
	b.WriteString(keyStyle.Render("Where: ") + locationOf(f) + "\n")
	violation := acceptStyle.Render("no")
	if m.isViolation(f) {
		violation = rejectStyle.Render("yes")
	}
	b.WriteString(keyStyle.Render("Violation: ") + violation + "\n")
	b.WriteString(keyStyle.Render("Match: ") + matchStyle.Render(f.Match) + "\n\n")

	if f.Path != "" && f.Line > 0 {
		p := f.Path
		if !filepath.IsAbs(p) && m.root != "" {
			p = filepath.Join(m.root, p)
		}
		lines, start, err := readFileContext(p, f.Line, 3)
		if err == nil {
			hl := lipgloss.NewStyle().Background(lipgloss.Color("236"))
			for i, line := range lines {
				n := start + i
				num := lineNumStyle.Render(fmt.Sprintf("%4d ", n))
				if n == f.Line {
					b.WriteString(num + hl.Render(highlightLine(line, f.Path)) + "\n")
				} else {
					b.WriteString(num + highlightLine(line, f.Path) + "\n")
				}
			}
		}
	}
	m.viewport.SetContent(b.String())
}

func readFileContext(path string, targetLine int, contextLines int) ([]string, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	startLine := targetLine - contextLines
	if startLine < 1 {
		startLine = 1
	}
	endLine := targetLine + contextLines

	var lines []string
	sc := bufio.NewScanner(f)
	n := 0
	for sc.Scan() {
		n++
		if n >= startLine && n <= endLine {
			lines = append(lines, sc.Text())
		}
		if n > endLine {
			break
		}
	}
	return lines, startLine, sc.Err()
}

// highlightLine applies terminal syntax colouring based on the file name.
// Unknown file types are returned unchanged.
func highlightLine(line string, filename string) string {
	lexer := lexers.Match(filepath.Base(filename))
	if lexer == nil {
		return line
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get("monokai")
	if style == nil {
		style = styles.Fallback
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		return line
	}
	iterator, err := lexer.Tokenise(nil, line)
	if err != nil {
		return line
	}
	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return line
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ready = true
		h := msg.Height - 6
		if m.showDetail {
			h = msg.Height / 2
		}
		if h < 3 {
			h = 3
		}
		m.table.SetHeight(h)
		m.viewport.Width = msg.Width - 4
		m.viewport.Height = msg.Height - h - 8
		if m.viewport.Height < 3 {
			m.viewport.Height = 3
		}
		return m, nil
	case statusMsg:
		m.status = string(msg)
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "esc":
			m.showDetail = false
			return m, nil
		case "enter":
			m.showDetail = !m.showDetail
			m.updateViewportContent()
			return m, nil
		case "v":
			return m, m.toggleViolationsOnly()
		case "c":
			return m, m.copyMatch()
		}
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	m.updateViewportContent()
	return m, cmd
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder
	decision := acceptStyle.Render(string(m.result.Decision))
	if m.result.Decision != types.Accept {
		decision = rejectStyle.Render(string(m.result.Decision))
	}
	title := fmt.Sprintf("piiscan  findings: %d  violations: %d  result: %s",
		len(m.result.Findings), len(m.result.Violations), decision)
	if m.prefs.ViolationsOnly {
		title += "  [violations only]"
	}
	b.WriteString(titleStyle.Render(title) + "\n")

	if len(m.display) == 0 {
		if m.prefs.ViolationsOnly {
			b.WriteString("\n  No violations.\n\n")
		} else {
			b.WriteString("\n  No findings.\n\n")
		}
	} else {
		b.WriteString(tableBorderStyle.Render(m.table.View()) + "\n")
	}
	if m.showDetail {
		b.WriteString(detailPaneBorderStyle.Render(m.viewport.View()) + "\n")
	}
	b.WriteString(statusStyle.Render(m.status))
	return b.String()
}
