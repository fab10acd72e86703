package report

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/redactyl/piiscan/internal/types"
)

// Format selects an output style.
type Format string

const (
	FormatText  Format = "text"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatTable Format = "table"
	FormatSARIF Format = "sarif"
)

// Formats lists the supported styles.
func Formats() []Format {
	return []Format{FormatText, FormatJSON, FormatYAML, FormatTable, FormatSARIF}
}

// ParseFormat maps a flag value to a Format.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return FormatText, nil
	}
	for _, f := range Formats() {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format %q (want one of text, json, yaml, table, sarif)", s)
}

// Structured reports whether the format is meant for machines.
func (f Format) Structured() bool {
	return f == FormatJSON || f == FormatYAML || f == FormatSARIF
}

// Options tunes human-readable output.
type Options struct {
	NoColor      bool
	Duration     time.Duration
	FilesScanned int
	FileErrors   []types.FileError
	// Version is reported as the SARIF tool version.
	Version string
}

// Write renders res to w in the given format.
func Write(w io.Writer, f Format, res types.ScanResult, opts Options) error {
	switch f {
	case FormatJSON:
		return WriteJSON(w, res)
	case FormatYAML:
		return WriteYAML(w, res)
	case FormatTable:
		return WriteTable(w, res, opts)
	case FormatSARIF:
		return WriteSARIF(w, res, opts.Version)
	case FormatText, "":
		return WriteText(w, res, opts)
	default:
		return fmt.Errorf("unknown format %q", f)
	}
}

// ExitCode maps a decision to the process exit status.
func ExitCode(d types.Decision) int {
	if d == types.Accept {
		return 0
	}
	return 1
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func location(f types.Finding) string {
	if f.Path == "" {
		return fmt.Sprintf("offset %d", f.Offset)
	}
	if f.Line == 0 {
		return f.Path
	}
	return fmt.Sprintf("%s:%d:%d", f.Path, f.Line, f.Column)
}
