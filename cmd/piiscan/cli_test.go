package piiscan

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/redactyl/piiscan/internal/config"
	"github.com/redactyl/piiscan/internal/engine"
	"github.com/redactyl/piiscan/internal/policy"
	"github.com/redactyl/piiscan/internal/report"
	"github.com/redactyl/piiscan/internal/types"
)

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.PersistentFlags().VisitAll(reset)
	c.Flags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// runCLI executes the root command in-process with isolated config dirs.
func runCLI(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	resetFlags(rootCmd)
	var out, errOut bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(stdin))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	if err == nil {
		return 0
	}
	var ee *exitError
	require.ErrorAs(t, err, &ee)
	return ee.code
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestScan_TextJSONRejects(t *testing.T) {
	out, _, err := runCLI(t, "", "scan", "--text", "My SSN is 123-45-6789", "--json")
	assert.Equal(t, 1, exitCode(t, err))

	var doc report.Document
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	require.Len(t, doc.Findings, 1)
	assert.Equal(t, types.SSN, doc.Findings[0].Label)
	assert.InDelta(t, 0.95, doc.Findings[0].Score, 1e-9)
	assert.Equal(t, types.Reject, doc.Result)
}

func TestScan_TextNarrativeAccepts(t *testing.T) {
	out, _, err := runCLI(t, "", "scan", "--text", "hello world")
	require.NoError(t, err)
	assert.Contains(t, out, "No findings.")
	assert.Contains(t, out, "Result: Accept")
}

func TestScan_Stdin(t *testing.T) {
	out, _, err := runCLI(t, "contact: john@example.com\n", "scan", "--stdin", "--format", "yaml")
	assert.Equal(t, 1, exitCode(t, err))
	assert.Contains(t, out, "label: Email")
	assert.Contains(t, out, "result: Reject")
}

func TestScan_DirectoryTree(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "docs", "a.txt"), "nothing here\n")
	writeFile(t, filepath.Join(root, "docs", "b.txt"), "line\nMy SSN is 123-45-6789\n")
	writeFile(t, filepath.Join(root, "node_modules", "dep.txt"), "My SSN is 987-65-4321\n")

	out, errOut, err := runCLI(t, "", "scan", root, "--json")
	assert.Equal(t, 1, exitCode(t, err))
	assert.Contains(t, errOut, "scan complete")

	var doc report.Document
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	require.Len(t, doc.Findings, 1)
	assert.Equal(t, "docs/b.txt", doc.Findings[0].Path)
	assert.Equal(t, 2, doc.Findings[0].Line)
}

func TestScan_TableFormat(t *testing.T) {
	out, _, err := runCLI(t, "", "scan", "--text", "My SSN is 123-45-6789", "--format", "table")
	assert.Equal(t, 1, exitCode(t, err))
	assert.Contains(t, out, "LABEL")
	assert.Contains(t, out, "123-45-6789")
	assert.Contains(t, out, "Result: Reject")
}

func TestScan_MissingPath(t *testing.T) {
	_, _, err := runCLI(t, "", "scan", filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrInput)
}

func TestScan_SingleFileTooLarge(t *testing.T) {
	p := filepath.Join(t.TempDir(), "big.log")
	writeFile(t, p, "My SSN is 123-45-6789\n"+strings.Repeat("x", 100))

	_, _, err := runCLI(t, "", "scan", p, "--max-bytes", "50")
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrTooLarge)
}

func TestScan_HelpListsDefaultExcludeDirs(t *testing.T) {
	out, _, err := runCLI(t, "", "scan", "--help")
	require.NoError(t, err)
	for _, d := range engine.DefaultExcludeDirs() {
		assert.Contains(t, out, d)
	}
}

func TestScan_PolicyFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "policy.yml")
	writeFile(t, p, "blocked_labels: []\ndefault_threshold: 2\n")

	out, _, err := runCLI(t, "", "scan", "--text", "My SSN is 123-45-6789", "--policy", p)
	require.NoError(t, err)
	assert.Contains(t, out, "Findings (1):")
	assert.Contains(t, out, "No violations.")

	// an explicit --threshold overrides the document default
	_, _, err = runCLI(t, "", "scan", "--text", "My SSN is 123-45-6789", "--policy", p, "--threshold", "0.9")
	assert.Equal(t, 1, exitCode(t, err))
}

func TestScan_MalformedPolicy(t *testing.T) {
	p := filepath.Join(t.TempDir(), "policy.yml")
	writeFile(t, p, "blocked_labels: [NotALabel]\n")
	_, _, err := runCLI(t, "", "scan", "--text", "x", "--policy", p)
	require.Error(t, err)
	assert.ErrorIs(t, err, policy.ErrMalformed)

	writeFile(t, p, "unknown_key: 1\n")
	_, _, err = runCLI(t, "", "scan", "--text", "x", "--policy", p)
	assert.ErrorIs(t, err, policy.ErrMalformed)
}

func TestScan_BadFlags(t *testing.T) {
	_, _, err := runCLI(t, "", "scan", "--text", "x", "--enable", "Bogus")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown label Bogus")

	_, _, err = runCLI(t, "", "scan", "--text", "x", "--format", "xml")
	require.Error(t, err)

	_, _, err = runCLI(t, "", "scan", "--text", "x", "--threshold", "-1")
	assert.ErrorIs(t, err, policy.ErrMalformed)
}

func TestScan_LocalConfig(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".piiscan.yml"), "policy: rules/policy.yml\ndisable: Phone\n")
	writeFile(t, filepath.Join(root, "rules", "policy.yml"), "blocked_labels: []\ndefault_threshold: 5\n")
	writeFile(t, filepath.Join(root, "data.txt"), "My SSN is 123-45-6789, call 555-123-4567\n")

	out, _, err := runCLI(t, "", "scan", root, "--json")
	require.NoError(t, err)

	var doc report.Document
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	require.Len(t, doc.Findings, 1)
	assert.Equal(t, types.SSN, doc.Findings[0].Label)
	assert.Equal(t, types.Accept, doc.Result)
}

func TestScan_FloorAboveThresholdWarns(t *testing.T) {
	_, errOut, err := runCLI(t, "", "scan", "--text", "hello", "--floor", "0.9")
	require.NoError(t, err)
	assert.Contains(t, errOut, "floor is above")
}

func TestLabels(t *testing.T) {
	out, _, err := runCLI(t, "", "labels")
	require.NoError(t, err)
	for _, l := range types.AllLabels() {
		assert.Contains(t, out, string(l))
	}
	assert.Contains(t, out, "validated, boosted")
}

func TestTestPattern(t *testing.T) {
	out, _, err := runCLI(t, "write to bob@example.org or 123-45-6789", "test-pattern", "Email")
	require.NoError(t, err)
	assert.Contains(t, out, "bob@example.org")
	assert.NotContains(t, out, "123-45-6789")

	_, _, err = runCLI(t, "", "test-pattern", "Nope")
	require.Error(t, err)
}

func TestPolicyInitAndValidate(t *testing.T) {
	p := filepath.Join(t.TempDir(), "policy.yml")
	out, _, err := runCLI(t, "", "policy", "init", "--output", p)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote")

	b, err := os.ReadFile(p)
	require.NoError(t, err)
	var doc policy.Document
	require.NoError(t, yaml.Unmarshal(b, &doc))
	assert.ElementsMatch(t, []string{"SSN", "Email"}, doc.BlockedLabels)

	out, _, err = runCLI(t, "", "policy", "validate", p)
	require.NoError(t, err)
	assert.Contains(t, out, "ok (2 blocked labels, 2 thresholds")

	_, _, err = runCLI(t, "", "policy", "init", "--output", p)
	require.Error(t, err, "existing file needs --force")
	_, _, err = runCLI(t, "", "policy", "init", "--output", p, "--force")
	require.NoError(t, err)
}

func TestPolicyValidate_RequiresNewerVersion(t *testing.T) {
	p := filepath.Join(t.TempDir(), "policy.yml")
	writeFile(t, p, "requires: \">=99.0.0\"\nblocked_labels: [SSN]\n")
	_, _, err := runCLI(t, "", "policy", "validate", p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires piiscan >=99.0.0")
}

func TestConfigInit(t *testing.T) {
	p := filepath.Join(t.TempDir(), ".piiscan.yml")
	_, _, err := runCLI(t, "", "config", "init", "--output", p)
	require.NoError(t, err)

	fc, err := config.LoadFile(p)
	require.NoError(t, err)
	require.NotNil(t, fc.Threshold)
	assert.InDelta(t, 0.5, *fc.Threshold, 1e-9)
}

func TestCIInit(t *testing.T) {
	t.Chdir(t.TempDir())
	out, _, err := runCLI(t, "", "ci", "init", "--provider", "gitlab")
	require.NoError(t, err)
	assert.Contains(t, out, ".gitlab-ci.yml")
	b, err := os.ReadFile(".gitlab-ci.yml")
	require.NoError(t, err)
	assert.Contains(t, string(b), "piiscan scan")

	_, _, err = runCLI(t, "", "ci", "init", "--provider", "jenkins")
	require.Error(t, err)
}

func TestCompletion(t *testing.T) {
	out, _, err := runCLI(t, "", "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "piiscan")
}
