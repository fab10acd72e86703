package policy

import (
	"github.com/redactyl/piiscan/internal/types"
)

// DefaultThreshold is the score at or above which a finding of a label
// without its own threshold is a violation.
const DefaultThreshold = 0.5

// Profile decides which findings are violations. A finding violates when its
// label is blocked or its score reaches the label's threshold.
type Profile struct {
	BlockedLabels    map[types.Label]bool
	Thresholds       map[types.Label]float64
	DefaultThreshold float64
}

// Default returns the built-in profile: SSN and Email are always blocked,
// with stricter thresholds for both.
func Default(defaultThreshold float64) Profile {
	return Profile{
		BlockedLabels: map[types.Label]bool{
			types.SSN:   true,
			types.Email: true,
		},
		Thresholds: map[types.Label]float64{
			types.SSN:   0.8,
			types.Email: 0.9,
		},
		DefaultThreshold: defaultThreshold,
	}
}

// Threshold returns the effective threshold for label.
func (p Profile) Threshold(label types.Label) float64 {
	if th, ok := p.Thresholds[label]; ok {
		return th
	}
	return p.DefaultThreshold
}

// Violates reports whether f breaks the profile.
func (p Profile) Violates(f types.Finding) bool {
	return p.BlockedLabels[f.Label] || f.Score >= p.Threshold(f.Label)
}

// Blocked returns the blocked labels in library order.
func (p Profile) Blocked() []types.Label {
	var out []types.Label
	for _, l := range types.AllLabels() {
		if p.BlockedLabels[l] {
			out = append(out, l)
		}
	}
	return out
}

// Evaluate returns the findings that violate p, in input order, and the
// resulting decision. Any violation rejects.
func Evaluate(findings []types.Finding, p Profile) ([]types.Finding, types.Decision) {
	violations := []types.Finding{}
	for _, f := range findings {
		if p.Violates(f) {
			violations = append(violations, f)
		}
	}
	if len(violations) > 0 {
		return violations, types.Reject
	}
	return violations, types.Accept
}

// Result evaluates findings and bundles them into a ScanResult.
func Result(findings []types.Finding, p Profile) types.ScanResult {
	if findings == nil {
		findings = []types.Finding{}
	}
	v, d := Evaluate(findings, p)
	return types.ScanResult{Findings: findings, Violations: v, Decision: d}
}
