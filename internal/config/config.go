package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned when no config file exists at the searched locations.
var ErrNotFound = errors.New("config not found")

// LocalNames lists repo-local config file names in search order.
var LocalNames = []string{".piiscan.yml", ".piiscan.yaml", "piiscan.yml", "piiscan.yaml"}

// FileConfig is the on-disk YAML configuration shape for piiscan. Every field
// is optional; nil means "not set here" so layers can be merged.
type FileConfig struct {
	Include         *string  `yaml:"include"`
	Exclude         *string  `yaml:"exclude"`
	ExcludeDirs     []string `yaml:"exclude_dirs"`
	MaxBytes        *int64   `yaml:"max_bytes"`
	Threads         *int     `yaml:"threads"`
	Floor           *float64 `yaml:"floor"`
	Threshold       *float64 `yaml:"threshold"`
	Enable          *string  `yaml:"enable"`
	Disable         *string  `yaml:"disable"`
	NoColor         *bool    `yaml:"no_color"`
	DefaultExcludes *bool    `yaml:"default_excludes"`
	// StructuralLabels adds labels whose validator grants the structural boost.
	StructuralLabels []string `yaml:"structural_labels"`
	// Policy is a path to a policy document, relative to the config file.
	Policy *string `yaml:"policy"`
}

// LoadFile reads a YAML config file from the provided path. A relative
// policy path is resolved against the file's directory.
func LoadFile(path string) (FileConfig, error) {
	var cfg FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	if cfg.Policy != nil && *cfg.Policy != "" && !filepath.IsAbs(*cfg.Policy) {
		p := filepath.Join(filepath.Dir(path), *cfg.Policy)
		cfg.Policy = &p
	}
	return cfg, nil
}

// LoadLocal searches for a repo-local config file in the given root.
func LoadLocal(repoRoot string) (FileConfig, error) {
	for _, name := range LocalNames {
		p := filepath.Join(repoRoot, name)
		if _, err := os.Stat(p); err == nil {
			return LoadFile(p)
		}
	}
	return FileConfig{}, ErrNotFound
}

// GlobalPath returns $XDG_CONFIG_HOME/piiscan/config.yml, falling back to
// ~/.config when XDG_CONFIG_HOME is unset.
func GlobalPath() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		if home != "" {
			base = filepath.Join(home, ".config")
		}
	}
	if base == "" {
		return "", errors.New("no config dir")
	}
	return filepath.Join(base, "piiscan", "config.yml"), nil
}

// LoadGlobal loads the global config file.
func LoadGlobal() (FileConfig, error) {
	p, err := GlobalPath()
	if err != nil {
		return FileConfig{}, err
	}
	if _, err := os.Stat(p); err != nil {
		return FileConfig{}, ErrNotFound
	}
	return LoadFile(p)
}

// Starter is written by `piiscan config init`.
const Starter = `# piiscan configuration
# CLI flags take precedence over this file, which takes precedence over
# $XDG_CONFIG_HOME/piiscan/config.yml.

# comma-separated globs
include: ""
exclude: ""
# directory names never descended into
exclude_dirs: [node_modules, .venv, __pycache__]
default_excludes: true
max_bytes: 1048576
threads: 0
# findings scoring below floor are dropped
floor: 0.0
# default policy threshold for labels without their own
threshold: 0.5
# comma-separated labels
enable: ""
disable: ""
no_color: false
# labels whose validator adds the structural boost (CreditCard always does)
structural_labels: []
# policy: piiscan-policy.yml
`
