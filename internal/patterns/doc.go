// Package patterns holds the library of labelled matchers used by the scan
// engine. Each label has exactly one matcher and a base weight; the library is
// validated once at construction and never mutated afterwards.
package patterns
