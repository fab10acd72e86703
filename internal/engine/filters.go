package engine

import (
	"slices"
	"strings"
)

// defaultExcludeDirs are pruned when default excludes are enabled.
var defaultExcludeDirs = map[string]bool{
	".git":          true,
	".hg":           true,
	".svn":          true,
	"node_modules":  true,
	"target":        true,
	"vendor":        true,
	"dist":          true,
	"build":         true,
	"out":           true,
	".venv":         true,
	"venv":          true,
	"__pycache__":   true,
	".mypy_cache":   true,
	".pytest_cache": true,
	".tox":          true,
	"coverage":      true,
	"bin":           true,
	"obj":           true,
}

// suffixes treated as non-text or noisy artifacts when default excludes enabled
var defaultExcludeFileSuffixes = []string{
	".min.js", ".map",
	".png", ".jpg", ".jpeg", ".gif", ".webp", ".ico",
	".pdf", ".zip", ".gz", ".tar", ".tgz", ".7z",
	".jar", ".class", ".exe", ".dll", ".so", ".dylib",
	".wasm", ".pyc",
}

// exact filenames commonly safe to exclude when default excludes enabled
var defaultExcludeFileNames = map[string]bool{
	"yarn.lock":         true,
	"package-lock.json": true,
	"pnpm-lock.yaml":    true,
	"composer.lock":     true,
	"poetry.lock":       true,
	"go.sum":            true,
	".ds_store":         true,
}

// DefaultExcludeDirs lists the directory names pruned by default, sorted.
func DefaultExcludeDirs() []string {
	out := make([]string, 0, len(defaultExcludeDirs))
	for d := range defaultExcludeDirs {
		out = append(out, d)
	}
	slices.Sort(out)
	return out
}

type dirExcluder struct {
	names    map[string]bool
	defaults bool
}

func newDirExcluder(cfg Config) dirExcluder {
	names := make(map[string]bool, len(cfg.ExcludeDirs))
	for _, n := range cfg.ExcludeDirs {
		if n = strings.Trim(strings.TrimSpace(n), "/"); n != "" {
			names[n] = true
		}
	}
	return dirExcluder{names: names, defaults: cfg.DefaultExcludes}
}

func (e dirExcluder) excluded(name string) bool {
	if e.names[name] {
		return true
	}
	return e.defaults && defaultExcludeDirs[name]
}

func isDefaultFileExcluded(lowerRel string) bool {
	if strings.HasSuffix(lowerRel, ".lock") {
		return true
	}
	for _, s := range defaultExcludeFileSuffixes {
		if strings.HasSuffix(lowerRel, s) {
			return true
		}
	}
	base := lowerRel
	if i := strings.LastIndexByte(lowerRel, '/'); i >= 0 {
		base = lowerRel[i+1:]
	}
	return defaultExcludeFileNames[base]
}
