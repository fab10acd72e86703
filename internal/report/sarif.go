// internal/report/sarif.go
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/redactyl/piiscan/internal/types"
)

type sarif struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version,omitempty"`
	Rules   []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string       `json:"id"`
	ShortDescription sarifMessage `json:"shortDescription"`
}

type sarifResult struct {
	RuleID     string         `json:"ruleId"`
	RuleIndex  int            `json:"ruleIndex"`
	Level      string         `json:"level"`
	Message    sarifMessage   `json:"message"`
	Locations  []sarifLoc     `json:"locations,omitempty"`
	Properties map[string]any `json:"properties,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLoc struct {
	PhysicalLocation sarifPhys `json:"physicalLocation"`
}

type sarifPhys struct {
	ArtifactLocation sarifArt    `json:"artifactLocation"`
	Region           sarifRegion `json:"region"`
}

type sarifArt struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   int `json:"startLine,omitempty"`
	StartColumn int `json:"startColumn,omitempty"`
}

const sarifSchema = "https://json.schemastore.org/sarif-2.1.0.json"

// WriteSARIF writes findings as SARIF 2.1.0. Violations are reported at
// level "error", other findings as "note".
func WriteSARIF(w io.Writer, res types.ScanResult, version string) error {
	isViolation := ViolationSet(res)
	run := sarifRun{
		Tool:    sarifTool{Driver: sarifDriver{Name: "piiscan", Version: version}},
		Results: []sarifResult{},
	}
	ruleIndex := map[types.Label]int{}
	for _, f := range res.Findings {
		if _, ok := ruleIndex[f.Label]; !ok {
			ruleIndex[f.Label] = len(run.Tool.Driver.Rules)
			run.Tool.Driver.Rules = append(run.Tool.Driver.Rules, sarifRule{
				ID:               string(f.Label),
				ShortDescription: sarifMessage{Text: string(f.Label) + " detected"},
			})
		}
		level := "note"
		if isViolation(f) {
			level = "error"
		}
		r := sarifResult{
			RuleID:     string(f.Label),
			RuleIndex:  ruleIndex[f.Label],
			Level:      level,
			Message:    sarifMessage{Text: fmt.Sprintf("%s detected (score %.2f)", f.Label, f.Score)},
			Properties: map[string]any{"score": round2(f.Score), "offset": f.Offset},
		}
		if f.Path != "" {
			r.Locations = []sarifLoc{{
				PhysicalLocation: sarifPhys{
					ArtifactLocation: sarifArt{URI: f.Path},
					Region:           sarifRegion{StartLine: f.Line, StartColumn: f.Column},
				},
			}}
		}
		run.Results = append(run.Results, r)
	}
	if run.Tool.Driver.Rules == nil {
		run.Tool.Driver.Rules = []sarifRule{}
	}
	doc := sarif{Schema: sarifSchema, Version: "2.1.0", Runs: []sarifRun{run}}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
