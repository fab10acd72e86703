// Package core provides a small, stable facade over piiscan's internal
// scanner and policy evaluator for external integrations. It re-exports a
// narrow API surface so other programs can depend on a stable import path
// without reaching into internal packages.
//
// Example:
//
//	findings := core.ScanText(input, 0)
//	res := core.Evaluate(findings, core.DefaultProfile(0.5))
//	_ = core.MarshalResult(os.Stdout, res)
package core
