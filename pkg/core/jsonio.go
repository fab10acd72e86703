package core

import (
	"encoding/json"
	"io"

	"github.com/redactyl/piiscan/internal/report"
)

// MarshalResult writes res as the structured JSON document used by
// `piiscan scan --format json`.
func MarshalResult(w io.Writer, res ScanResult) error {
	return report.WriteJSON(w, res)
}

// UnmarshalResult decodes a structured JSON document. Offsets and columns
// are not part of the document and come back as zero.
func UnmarshalResult(r io.Reader) (ScanResult, error) {
	var doc report.Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return ScanResult{}, err
	}
	conv := func(items []report.Item) []Finding {
		out := make([]Finding, 0, len(items))
		for _, it := range items {
			out = append(out, Finding{Label: it.Label, Match: it.Match, Score: it.Score, Path: it.Path, Line: it.Line})
		}
		return out
	}
	return ScanResult{
		Findings:   conv(doc.Findings),
		Violations: conv(doc.Violations),
		Decision:   doc.Result,
	}, nil
}
