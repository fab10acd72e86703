package scoring

import (
	"strings"
	"testing"

	"github.com/redactyl/piiscan/internal/patterns"
	"github.com/redactyl/piiscan/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindow(t *testing.T) {
	assert.Equal(t, "", Window("abc", 0))
	assert.Equal(t, "ab", Window("abc", 2))
	assert.Equal(t, "abc", Window("abc", 99))

	text := strings.Repeat("x", 30) + "MATCH"
	assert.Equal(t, strings.Repeat("x", 20), Window(text, 30))

	// window counts characters, not bytes
	multi := strings.Repeat("é", 25) + "!"
	assert.Equal(t, strings.Repeat("é", 20), Window(multi, len(multi)-1))
}

func TestContextBoost(t *testing.T) {
	assert.Equal(t, KeywordBoost, ContextBoost("My SSN is 123-45-6789", 10))
	assert.Equal(t, KeywordBoost, ContextBoost("EMAIL: a@b.co", 7))
	assert.Equal(t, 0.0, ContextBoost("value 123-45-6789", 6))

	// keyword just outside the window is ignored
	far := "ssn" + strings.Repeat(" ", 20) + "123-45-6789"
	assert.Equal(t, 0.0, ContextBoost(far, 23))
	near := "ssn" + strings.Repeat(" ", 17) + "123-45-6789"
	assert.Equal(t, KeywordBoost, ContextBoost(near, 20))

	// text after the match is never inspected
	assert.Equal(t, 0.0, ContextBoost("123-45-6789 is my ssn", 0))
}

func TestScore_SSNWithContext(t *testing.T) {
	lib := patterns.Default()
	def, ok := lib.Lookup(types.SSN)
	require.True(t, ok)
	text := "My SSN is 123-45-6789"
	score, validated := Default().Score(def, text, 10, 21)
	assert.InDelta(t, 0.95, score, 1e-9)
	assert.False(t, validated)
}

func TestScore_CreditCard(t *testing.T) {
	def, _ := patterns.Default().Lookup(types.CreditCard)
	s := Default()

	valid := "Card 4539578763621486"
	score, validated := s.Score(def, valid, 5, len(valid))
	assert.InDelta(t, 0.8, score, 1e-9)
	assert.True(t, validated)

	invalid := "Card 4539578763621487"
	score, validated = s.Score(def, invalid, 5, len(invalid))
	assert.InDelta(t, 0.6, score, 1e-9)
	assert.False(t, validated)

	withContext := "credit card 4539578763621486"
	score, _ = s.Score(def, withContext, 12, len(withContext))
	assert.InDelta(t, 0.95, score, 1e-9)
}

func TestScore_NoClamp(t *testing.T) {
	def := patterns.Definition{Label: types.CreditCard, Weight: 0.9}
	text := "credit card 4539578763621486"
	score, _ := Default().Score(def, text, 12, len(text))
	assert.InDelta(t, 1.25, score, 1e-9)
}

func TestStructural_NonBoostedLabel(t *testing.T) {
	s := Default()
	boost, validated := s.Structural(types.RoutingNumber, "021000021")
	assert.Equal(t, 0.0, boost)
	assert.True(t, validated)

	boost, validated = s.WithBoosted(types.RoutingNumber).Structural(types.RoutingNumber, "021000021")
	assert.Equal(t, StructuralBoost, boost)
	assert.True(t, validated)

	assert.False(t, s.Boosted[types.RoutingNumber], "WithBoosted must not mutate the receiver")

	boost, validated = s.Structural(types.Email, "a@b.co")
	assert.Equal(t, 0.0, boost)
	assert.False(t, validated)
}
