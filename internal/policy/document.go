package policy

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/blang/semver/v4"
	"gopkg.in/yaml.v3"

	"github.com/redactyl/piiscan/internal/types"
)

// ErrMalformed reports a policy document that cannot be used.
var ErrMalformed = errors.New("malformed policy")

// Document is the on-disk form of a profile. JSON documents are accepted as
// a subset of YAML.
type Document struct {
	// Requires is an optional semver range the running version must satisfy,
	// e.g. ">=0.1.0 <1.0.0".
	Requires         string             `yaml:"requires,omitempty" json:"requires,omitempty"`
	BlockedLabels    []string           `yaml:"blocked_labels" json:"blocked_labels"`
	Thresholds       map[string]float64 `yaml:"thresholds" json:"thresholds"`
	DefaultThreshold *float64           `yaml:"default_threshold,omitempty" json:"default_threshold,omitempty"`
}

// LoadFile reads and parses a policy document.
func LoadFile(path string) (Document, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	d, err := Parse(b)
	if err != nil {
		return Document{}, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// Parse decodes a policy document. Unknown keys are rejected.
func Parse(b []byte) (Document, error) {
	var d Document
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&d); err != nil {
		if errors.Is(err, io.EOF) {
			return Document{}, fmt.Errorf("%w: empty document", ErrMalformed)
		}
		return Document{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return d, nil
}

// Profile validates the document and converts it to a Profile. The
// document's default_threshold, when present, overrides defaultThreshold.
func (d Document) Profile(defaultThreshold float64) (Profile, error) {
	p := Profile{
		BlockedLabels:    map[types.Label]bool{},
		Thresholds:       map[types.Label]float64{},
		DefaultThreshold: defaultThreshold,
	}
	if d.DefaultThreshold != nil {
		p.DefaultThreshold = *d.DefaultThreshold
	}
	if err := checkThreshold("default_threshold", p.DefaultThreshold); err != nil {
		return Profile{}, err
	}
	for _, s := range d.BlockedLabels {
		l, ok := types.ParseLabel(s)
		if !ok {
			return Profile{}, fmt.Errorf("%w: blocked_labels: unknown label %q", ErrMalformed, s)
		}
		p.BlockedLabels[l] = true
	}
	for s, th := range d.Thresholds {
		l, ok := types.ParseLabel(s)
		if !ok {
			return Profile{}, fmt.Errorf("%w: thresholds: unknown label %q", ErrMalformed, s)
		}
		if err := checkThreshold("thresholds."+s, th); err != nil {
			return Profile{}, err
		}
		p.Thresholds[l] = th
	}
	return p, nil
}

func checkThreshold(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return fmt.Errorf("%w: %s: threshold %v must be a non-negative number", ErrMalformed, field, v)
	}
	return nil
}

// CheckVersion verifies that version satisfies the document's requires
// range. Versions that are not semver, such as development builds, are not
// checked.
func (d Document) CheckVersion(version string) error {
	if d.Requires == "" {
		return nil
	}
	rng, err := semver.ParseRange(d.Requires)
	if err != nil {
		return fmt.Errorf("%w: requires %q: %w", ErrMalformed, d.Requires, err)
	}
	v, err := semver.ParseTolerant(version)
	if err != nil {
		return nil
	}
	if !rng(v) {
		return fmt.Errorf("policy requires piiscan %s, running %s", d.Requires, v)
	}
	return nil
}

// DocumentFor renders p as a document, e.g. for writing a starter policy.
func DocumentFor(p Profile) Document {
	d := Document{Thresholds: map[string]float64{}}
	for _, l := range p.Blocked() {
		d.BlockedLabels = append(d.BlockedLabels, string(l))
	}
	for _, l := range types.AllLabels() {
		if th, ok := p.Thresholds[l]; ok {
			d.Thresholds[string(l)] = th
		}
	}
	th := p.DefaultThreshold
	d.DefaultThreshold = &th
	return d
}
