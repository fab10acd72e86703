package report

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/redactyl/piiscan/internal/types"
)

// Item is one finding in the structured document.
type Item struct {
	Label types.Label `json:"label" yaml:"label"`
	Match string      `json:"match" yaml:"match"`
	Score float64     `json:"score" yaml:"score"`
	Path  string      `json:"path,omitempty" yaml:"path,omitempty"`
	Line  int         `json:"line,omitempty" yaml:"line,omitempty"`
}

// Document is the structured report. It always has exactly these three
// top-level fields.
type Document struct {
	Findings   []Item         `json:"findings" yaml:"findings"`
	Violations []Item         `json:"violations" yaml:"violations"`
	Result     types.Decision `json:"result" yaml:"result"`
}

// NewDocument converts a scan result, rounding scores to two decimals.
func NewDocument(res types.ScanResult) Document {
	return Document{
		Findings:   items(res.Findings),
		Violations: items(res.Violations),
		Result:     res.Decision,
	}
}

func items(fs []types.Finding) []Item {
	out := make([]Item, 0, len(fs))
	for _, f := range fs {
		out = append(out, Item{
			Label: f.Label,
			Match: f.Match,
			Score: round2(f.Score),
			Path:  f.Path,
			Line:  f.Line,
		})
	}
	return out
}

// WriteJSON writes the structured document as indented JSON.
func WriteJSON(w io.Writer, res types.ScanResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewDocument(res))
}

// WriteYAML writes the structured document as YAML.
func WriteYAML(w io.Writer, res types.ScanResult) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(NewDocument(res)); err != nil {
		return err
	}
	return enc.Close()
}
