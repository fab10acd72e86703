package piiscan

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var ciTemplates = map[string]struct {
	path    string
	content string
}{
	"github": {
		path: ".github/workflows/piiscan.yml",
		content: `name: piiscan
on: [push, pull_request]
jobs:
  scan:
    runs-on: ubuntu-latest
    steps:
      - uses: actions/checkout@v4
      - uses: actions/setup-go@v5
        with:
          go-version: '1.25'
      - run: go install github.com/redactyl/piiscan@latest
      - run: piiscan scan --format sarif . > piiscan.sarif
      - uses: github/codeql-action/upload-sarif@v3
        if: always()
        with:
          sarif_file: piiscan.sarif
`,
	},
	"gitlab": {
		path: ".gitlab-ci.yml",
		content: `stages: [scan]
scan:
  stage: scan
  image: golang:1.25
  script:
    - go install github.com/redactyl/piiscan@latest
    - piiscan scan --json . | tee piiscan-findings.json
  artifacts:
    when: always
    paths:
      - piiscan-findings.json
`,
	},
	"bitbucket": {
		path: "bitbucket-pipelines.yml",
		content: `pipelines:
  default:
    - step:
        name: piiscan
        image: golang:1.25
        caches:
          - go
        script:
          - go install github.com/redactyl/piiscan@latest
          - piiscan scan --json . | tee piiscan-findings.json
        artifacts:
          - piiscan-findings.json
`,
	},
	"azure": {
		path: "azure-pipelines.yml",
		content: `trigger:
- main

pool:
  vmImage: 'ubuntu-latest'

steps:
- task: GoTool@0
  inputs:
    version: '1.25.x'
- script: |
    go install github.com/redactyl/piiscan@latest
    $(go env GOPATH)/bin/piiscan scan --json . | tee piiscan-findings.json
  displayName: 'piiscan'
- publish: piiscan-findings.json
  artifact: piiscan-findings
  condition: succeededOrFailed()
`,
	},
}

func init() {
	ci := &cobra.Command{Use: "ci", Short: "CI template helpers for multiple providers"}
	rootCmd.AddCommand(ci)

	var provider string
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a CI pipeline template for your provider",
		RunE: func(cmd *cobra.Command, _ []string) error {
			tpl, ok := ciTemplates[provider]
			if !ok {
				return fmt.Errorf("unknown --provider %q. Supported: github, gitlab, bitbucket, azure", provider)
			}
			if err := mkdirFor(tpl.path); err != nil {
				return err
			}
			if err := os.WriteFile(tpl.path, []byte(tpl.content), 0o644); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Wrote", tpl.path)
			return nil
		},
	}
	initCmd.Flags().StringVar(&provider, "provider", "", "CI provider: github | gitlab | bitbucket | azure")
	if err := initCmd.MarkFlagRequired("provider"); err != nil {
		fmt.Fprintln(os.Stderr, "warning: could not mark --provider as required:", err)
	}
	ci.AddCommand(initCmd)
}

// mkdirFor ensures the parent directory of path exists.
func mkdirFor(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
