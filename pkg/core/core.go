package core

import (
	"context"

	"github.com/redactyl/piiscan/internal/engine"
	"github.com/redactyl/piiscan/internal/policy"
	"github.com/redactyl/piiscan/internal/types"
)

// Re-export selected internal types as a stable public API surface.
// These are type aliases so external consumers can depend on a stable path.
type (
	Config     = engine.Config
	Result     = engine.Result
	Finding    = types.Finding
	FileError  = types.FileError
	Label      = types.Label
	Decision   = types.Decision
	ScanResult = types.ScanResult
	Profile    = policy.Profile
)

// Decisions.
const (
	Accept = types.Accept
	Reject = types.Reject
)

// ScanText scans a string with the built-in pattern library and keeps
// findings scoring at least floor.
func ScanText(text string, floor float64) []Finding {
	return engine.ScanText(text, floor)
}

// Scan scans cfg.Root, a file or a directory tree.
func Scan(ctx context.Context, cfg Config) (Result, error) {
	return engine.ScanWithStats(ctx, cfg)
}

// Evaluate applies a policy profile to findings.
func Evaluate(findings []Finding, p Profile) ScanResult {
	return policy.Result(findings, p)
}

// DefaultProfile returns the built-in policy with the given default threshold.
func DefaultProfile(defaultThreshold float64) Profile {
	return policy.Default(defaultThreshold)
}

// LoadProfile reads a policy document and converts it to a profile.
func LoadProfile(path string, defaultThreshold float64) (Profile, error) {
	doc, err := policy.LoadFile(path)
	if err != nil {
		return Profile{}, err
	}
	return doc.Profile(defaultThreshold)
}

// Labels returns every label the built-in library can report.
func Labels() []Label { return types.AllLabels() }
