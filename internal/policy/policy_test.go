package policy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/redactyl/piiscan/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func finding(l types.Label, score float64) types.Finding {
	return types.Finding{Label: l, Match: "x", Score: score}
}

func TestEvaluate_NoFindingsAccepts(t *testing.T) {
	v, d := Evaluate(nil, Default(DefaultThreshold))
	assert.Empty(t, v)
	assert.NotNil(t, v)
	assert.Equal(t, types.Accept, d)
}

func TestEvaluate_BlockedLabelAlwaysRejects(t *testing.T) {
	p := Default(DefaultThreshold)
	v, d := Evaluate([]types.Finding{finding(types.Email, 0.01)}, p)
	assert.Equal(t, types.Reject, d)
	require.Len(t, v, 1)
	assert.Equal(t, types.Email, v[0].Label)
}

func TestEvaluate_Thresholds(t *testing.T) {
	p := Default(DefaultThreshold)

	// card 0.8 >= default 0.5
	_, d := Evaluate([]types.Finding{finding(types.CreditCard, 0.8)}, p)
	assert.Equal(t, types.Reject, d)

	// zip 0.3 below default 0.5
	_, d = Evaluate([]types.Finding{finding(types.ZipCode, 0.3)}, p)
	assert.Equal(t, types.Accept, d)

	// threshold is inclusive
	_, d = Evaluate([]types.Finding{finding(types.Phone, 0.5)}, p)
	assert.Equal(t, types.Reject, d)

	high := Default(0.9)
	_, d = Evaluate([]types.Finding{finding(types.CreditCard, 0.8)}, high)
	assert.Equal(t, types.Accept, d)
}

func TestEvaluate_PreservesOrder(t *testing.T) {
	in := []types.Finding{
		finding(types.ZipCode, 0.3),
		finding(types.SSN, 0.95),
		finding(types.Phone, 0.2),
		finding(types.AWSAccessKey, 0.9),
	}
	v, d := Evaluate(in, Default(DefaultThreshold))
	assert.Equal(t, types.Reject, d)
	require.Len(t, v, 2)
	assert.Equal(t, types.SSN, v[0].Label)
	assert.Equal(t, types.AWSAccessKey, v[1].Label)
	assert.Len(t, in, 4, "input is not modified")
}

func TestProfile_Threshold(t *testing.T) {
	p := Default(0.5)
	assert.Equal(t, 0.8, p.Threshold(types.SSN))
	assert.Equal(t, 0.9, p.Threshold(types.Email))
	assert.Equal(t, 0.5, p.Threshold(types.Phone))
	assert.Equal(t, []types.Label{types.SSN, types.Email}, p.Blocked())
}

func TestResult(t *testing.T) {
	r := Result(nil, Default(DefaultThreshold))
	assert.Equal(t, types.Accept, r.Decision)
	assert.NotNil(t, r.Findings)
	assert.Empty(t, r.Violations)
}

func TestParse_YAMLAndJSON(t *testing.T) {
	y := []byte("requires: \">=0.1.0\"\nblocked_labels: [AWSAccessKey]\nthresholds:\n  Phone: 0.7\ndefault_threshold: 0.6\n")
	d, err := Parse(y)
	require.NoError(t, err)
	p, err := d.Profile(0.5)
	require.NoError(t, err)
	assert.True(t, p.BlockedLabels[types.AWSAccessKey])
	assert.Equal(t, 0.7, p.Threshold(types.Phone))
	assert.Equal(t, 0.6, p.Threshold(types.ZipCode))

	j := []byte(`{"blocked_labels": ["SSN"], "thresholds": {"Email": 0.95}}`)
	d, err = Parse(j)
	require.NoError(t, err)
	p, err = d.Profile(0.4)
	require.NoError(t, err)
	assert.True(t, p.BlockedLabels[types.SSN])
	assert.Equal(t, 0.95, p.Threshold(types.Email))
	assert.Equal(t, 0.4, p.DefaultThreshold)
}

func TestParse_Malformed(t *testing.T) {
	cases := map[string]string{
		"empty":          "",
		"syntax":         "blocked_labels: [SSN\n",
		"unknown key":    "blocked: [SSN]\n",
		"wrong type":     "thresholds: [1, 2]\n",
		"unknown label":  "blocked_labels: [Nickname]\n",
		"negative":       "thresholds:\n  SSN: -1\n",
		"unknown thresh": "thresholds:\n  Shoe: 0.5\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			d, err := Parse([]byte(doc))
			if err == nil {
				_, err = d.Profile(DefaultThreshold)
			}
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "policy.yml")
	require.NoError(t, os.WriteFile(p, []byte("blocked_labels: [SSN]\n"), 0o644))
	d, err := LoadFile(p)
	require.NoError(t, err)
	assert.Equal(t, []string{"SSN"}, d.BlockedLabels)

	_, err = LoadFile(filepath.Join(dir, "missing.yml"))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestCheckVersion(t *testing.T) {
	d := Document{Requires: ">=0.2.0 <1.0.0"}
	assert.NoError(t, d.CheckVersion("0.3.1"))
	assert.NoError(t, d.CheckVersion("v0.2.0"))
	assert.Error(t, d.CheckVersion("0.1.9"))
	assert.NoError(t, d.CheckVersion("dev"), "non-semver builds are not checked")
	assert.NoError(t, Document{}.CheckVersion("0.0.1"))

	bad := Document{Requires: "not a range"}
	assert.ErrorIs(t, bad.CheckVersion("1.0.0"), ErrMalformed)
}

func TestDocumentFor_RoundTrip(t *testing.T) {
	d := DocumentFor(Default(0.5))
	p, err := d.Profile(0.1)
	require.NoError(t, err)
	assert.Equal(t, Default(0.5), p)
}
