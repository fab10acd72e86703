// Package engine runs the pattern library and scorer over text, single files
// and directory trees, returning findings with their locations. Tree scans
// prune excluded directories, skip unreadable or binary files and scan the
// rest on a bounded worker pool. This package is internal; external consumers
// should use the stable facade in pkg/core.
package engine
