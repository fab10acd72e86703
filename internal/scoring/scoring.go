package scoring

import (
	"regexp"
	"unicode/utf8"

	"github.com/redactyl/piiscan/internal/patterns"
	"github.com/redactyl/piiscan/internal/types"
	"github.com/redactyl/piiscan/internal/validate"
)

const (
	// ContextWindow is the number of characters before a match searched for keywords.
	ContextWindow = 20
	// KeywordBoost is added when a keyword precedes a match.
	KeywordBoost = 0.15
	// StructuralBoost is added when a boosted label passes its validator.
	StructuralBoost = 0.2
)

var reKeyword = regexp.MustCompile(`(?i)(ssn|social security|credit card|email|phone|password)`)

// Window returns up to ContextWindow characters of text ending at start.
// start is clamped to the text bounds.
func Window(text string, start int) string {
	if start > len(text) {
		start = len(text)
	}
	if start <= 0 {
		return ""
	}
	from := start
	for n := 0; n < ContextWindow && from > 0; n++ {
		_, size := utf8.DecodeLastRuneInString(text[:from])
		from -= size
	}
	return text[from:start]
}

// ContextBoost returns KeywordBoost when a keyword occurs in the window
// before start, else 0.
func ContextBoost(text string, start int) float64 {
	if reKeyword.MatchString(Window(text, start)) {
		return KeywordBoost
	}
	return 0
}

// Scorer combines base weight, context and structural validation.
type Scorer struct {
	Validators validate.Registry
	// Boosted lists labels eligible for StructuralBoost. Validators of other
	// labels still mark findings as validated but add nothing to the score.
	Boosted map[types.Label]bool
}

// Default returns a scorer with the built-in validators, boosting only
// credit card numbers.
func Default() Scorer {
	return Scorer{
		Validators: validate.DefaultRegistry(),
		Boosted:    map[types.Label]bool{types.CreditCard: true},
	}
}

// WithBoosted returns a copy of s with extra labels added to the boosted set.
func (s Scorer) WithBoosted(labels ...types.Label) Scorer {
	b := make(map[types.Label]bool, len(s.Boosted)+len(labels))
	for l, v := range s.Boosted {
		b[l] = v
	}
	for _, l := range labels {
		b[l] = true
	}
	s.Boosted = b
	return s
}

// Structural returns the structural boost for match and whether a validator
// accepted it.
func (s Scorer) Structural(label types.Label, match string) (float64, bool) {
	ok, applicable := s.Validators.Validate(label, match)
	if !applicable || !ok {
		return 0, false
	}
	if s.Boosted[label] {
		return StructuralBoost, true
	}
	return 0, true
}

// Score computes the confidence of text[start:end] matched by def. The result
// is not clamped and may exceed 1.0.
func (s Scorer) Score(def patterns.Definition, text string, start, end int) (float64, bool) {
	boost, validated := s.Structural(def.Label, text[start:end])
	return def.Weight + ContextBoost(text, start) + boost, validated
}
