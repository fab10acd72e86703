// Package policy turns findings into an Accept or Reject decision using a
// profile of blocked labels and per-label score thresholds, and loads such
// profiles from YAML or JSON documents.
package policy
