// Package report renders scan results as narrative text, tables, JSON, YAML
// or SARIF, and maps decisions to exit codes.
package report
