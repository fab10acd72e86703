package patterns

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/redactyl/piiscan/internal/types"
)

// ErrInvalidPattern is returned by New when a definition cannot be used.
var ErrInvalidPattern = errors.New("invalid pattern definition")

// Definition binds a label to its matcher and base weight.
type Definition struct {
	Label  types.Label
	Re     *regexp.Regexp
	Weight float64
}

// Library is an ordered, immutable set of definitions. The zero value is an
// empty library.
type Library struct {
	defs []Definition
}

// probes are fed to every matcher to catch patterns that can match an empty
// span, which would otherwise yield zero-length findings.
var probes = []string{"", " ", "\n", "\t", "a", "Z", "0", "abc 123", "-", "@", ".:="}

// New validates defs and returns a library preserving their order.
func New(defs []Definition) (Library, error) {
	seen := make(map[types.Label]bool, len(defs))
	out := make([]Definition, 0, len(defs))
	for i, d := range defs {
		if d.Re == nil {
			return Library{}, fmt.Errorf("%w: #%d (%s): nil matcher", ErrInvalidPattern, i, d.Label)
		}
		if _, ok := types.ParseLabel(string(d.Label)); !ok {
			return Library{}, fmt.Errorf("%w: #%d: unknown label %q", ErrInvalidPattern, i, d.Label)
		}
		if seen[d.Label] {
			return Library{}, fmt.Errorf("%w: duplicate label %s", ErrInvalidPattern, d.Label)
		}
		if d.Weight < 0 || d.Weight > 1 {
			return Library{}, fmt.Errorf("%w: %s: weight %v outside [0,1]", ErrInvalidPattern, d.Label, d.Weight)
		}
		if matchesEmpty(d.Re) {
			return Library{}, fmt.Errorf("%w: %s: pattern %q can match an empty span", ErrInvalidPattern, d.Label, d.Re.String())
		}
		seen[d.Label] = true
		out = append(out, d)
	}
	return Library{defs: out}, nil
}

// MustNew is like New but panics on error. It is meant for tables fixed at
// build time.
func MustNew(defs []Definition) Library {
	lib, err := New(defs)
	if err != nil {
		panic(err)
	}
	return lib
}

func matchesEmpty(re *regexp.Regexp) bool {
	for _, p := range probes {
		for _, loc := range re.FindAllStringIndex(p, -1) {
			if loc[0] == loc[1] {
				return true
			}
		}
	}
	return false
}

// Definitions returns a copy of the definitions in evaluation order.
func (l Library) Definitions() []Definition {
	out := make([]Definition, len(l.defs))
	copy(out, l.defs)
	return out
}

// Len returns the number of active definitions.
func (l Library) Len() int { return len(l.defs) }

// Labels returns the labels of the library in evaluation order.
func (l Library) Labels() []types.Label {
	out := make([]types.Label, 0, len(l.defs))
	for _, d := range l.defs {
		out = append(out, d.Label)
	}
	return out
}

// Lookup returns the definition for label.
func (l Library) Lookup(label types.Label) (Definition, bool) {
	for _, d := range l.defs {
		if d.Label == label {
			return d, true
		}
	}
	return Definition{}, false
}

// Filter keeps only the enabled labels (all when enable is empty) minus the
// disabled ones. Order is preserved.
func (l Library) Filter(enable, disable []types.Label) Library {
	if len(enable) == 0 && len(disable) == 0 {
		return l
	}
	en := toSet(enable)
	dis := toSet(disable)
	out := make([]Definition, 0, len(l.defs))
	for _, d := range l.defs {
		if len(en) > 0 && !en[d.Label] {
			continue
		}
		if dis[d.Label] {
			continue
		}
		out = append(out, d)
	}
	return Library{defs: out}
}

func toSet(ls []types.Label) map[types.Label]bool {
	m := make(map[types.Label]bool, len(ls))
	for _, l := range ls {
		m[l] = true
	}
	return m
}
