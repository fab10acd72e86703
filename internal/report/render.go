package report

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"

	"github.com/redactyl/piiscan/internal/types"
)

type palette struct {
	header, reject, accept, label, dim lipgloss.Style
}

func newPalette(noColor bool) palette {
	if noColor {
		plain := lipgloss.NewStyle()
		return palette{plain, plain, plain, plain, plain}
	}
	return palette{
		header: lipgloss.NewStyle().Bold(true),
		reject: lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		accept: lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		label:  lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
		dim:    lipgloss.NewStyle().Faint(true),
	}
}

// WriteText writes the narrative report: findings, violations, an optional
// footer with skipped files and stats, then the result line.
func WriteText(w io.Writer, res types.ScanResult, opts Options) error {
	p := newPalette(opts.NoColor)
	ew := &errWriter{w: w}

	section(ew, p, "Findings", "No findings.", res.Findings)
	section(ew, p, "Violations", "No violations.", res.Violations)
	footer(ew, p, opts)
	resultLine(ew, p, res.Decision)
	return ew.err
}

func section(ew *errWriter, p palette, title, empty string, fs []types.Finding) {
	if len(fs) == 0 {
		ew.printf("%s\n", empty)
		return
	}
	ew.printf("%s\n", p.header.Render(fmt.Sprintf("%s (%d):", title, len(fs))))
	for _, f := range fs {
		ew.printf("  - %s %q score %.2f at %s\n", p.label.Render(string(f.Label)), f.Match, f.Score, location(f))
	}
}

func footer(ew *errWriter, p palette, opts Options) {
	if len(opts.FileErrors) > 0 {
		ew.printf("%s\n", p.header.Render(fmt.Sprintf("Skipped files (%d):", len(opts.FileErrors))))
		for _, fe := range opts.FileErrors {
			ew.printf("  - %s\n", p.dim.Render(fe.Error()))
		}
	}
	if opts.FilesScanned > 0 {
		ew.printf("Files scanned: %d\n", opts.FilesScanned)
	}
	if opts.Duration > 0 {
		ew.printf("Scan duration: %.2fs\n", opts.Duration.Seconds())
	}
}

func resultLine(ew *errWriter, p palette, d types.Decision) {
	style := p.accept
	if d != types.Accept {
		style = p.reject
	}
	ew.printf("Result: %s\n", style.Render(string(d)))
}

type findingKey struct {
	path   string
	offset int
	label  types.Label
}

func keyOf(f types.Finding) findingKey {
	return findingKey{path: f.Path, offset: f.Offset, label: f.Label}
}

// ViolationSet indexes violations so callers can mark them among findings.
func ViolationSet(res types.ScanResult) func(types.Finding) bool {
	set := make(map[findingKey]bool, len(res.Violations))
	for _, v := range res.Violations {
		set[keyOf(v)] = true
	}
	return func(f types.Finding) bool { return set[keyOf(f)] }
}

// WriteTable renders findings as a table with a violation marker column,
// followed by the same footer and result line as the narrative style.
func WriteTable(w io.Writer, res types.ScanResult, opts Options) error {
	p := newPalette(opts.NoColor)
	if len(res.Findings) == 0 {
		if _, err := fmt.Fprintln(w, "No findings."); err != nil {
			return err
		}
	} else {
		isViolation := ViolationSet(res)
		table := tablewriter.NewWriter(w)
		table.Header("Label", "Score", "Violation", "Location", "Match")
		for _, f := range res.Findings {
			mark := ""
			if isViolation(f) {
				mark = "yes"
			}
			if err := table.Append([]string{string(f.Label), fmt.Sprintf("%.2f", f.Score), mark, location(f), f.Match}); err != nil {
				return err
			}
		}
		if err := table.Render(); err != nil {
			return err
		}
	}
	ew := &errWriter{w: w}
	footer(ew, p, opts)
	resultLine(ew, p, res.Decision)
	return ew.err
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
