// Package scoring assigns a confidence to each pattern match: the label's base
// weight, plus a boost when a keyword appears just before the match, plus a
// boost when a structural validator accepts the matched value.
package scoring
