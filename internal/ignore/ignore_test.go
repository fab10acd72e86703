package ignore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestIgnoreMatch(t *testing.T) {
	dir := t.TempDir()
	ig := filepath.Join(dir, FileName)
	content := "node_modules/\n*.pem\n# comment\n\nsecret.env\n"
	if err := os.WriteFile(ig, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := Load(ig)
	if err != nil {
		t.Fatal(err)
	}
	if m.Len() != 3 {
		t.Fatalf("Len()=%d want 3", m.Len())
	}
	cases := map[string]bool{
		"node_modules/pkg/index.js": true,
		"certs/key.pem":             true,
		"secret.env":                true,
		"src/app.go":                false,
	}
	for p, want := range cases {
		if got := m.Match(p); got != want {
			t.Fatalf("Match(%q)=%v want %v", p, got, want)
		}
	}
	if !m.MatchDir("node_modules") {
		t.Fatalf("expected node_modules dir to be ignored")
	}
}

func TestLoadMissingFile(t *testing.T) {
	m, err := Load(filepath.Join(t.TempDir(), FileName))
	if err != nil {
		t.Fatalf("missing ignore file should not error: %v", err)
	}
	if m.Match("anything.txt") {
		t.Fatalf("empty matcher must not ignore anything")
	}
}

func TestParseNegation(t *testing.T) {
	m, err := Parse(strings.NewReader("*.log\n!keep.log\n"))
	if err != nil {
		t.Fatal(err)
	}
	if !m.Match("debug.log") {
		t.Fatalf("debug.log should be ignored")
	}
	if m.Match("keep.log") {
		t.Fatalf("keep.log should be re-included")
	}
}
