package algebra

import "github.com/spella/spella/internal/spelling"

// Rule is a compiled rewrite rule. The projection only relies on this
// contract; formula syntax is the business of the compiler that produced
// the rule (see internal/calculus).
type Rule interface {
	// Apply evaluates the rule against one syllable string. When changed
	// is true, derived carries the rewritten text and the annotation the
	// rule emits for the derivation (kind, credibility penalty, tip).
	// A returned error is fatal to the enclosing projection call.
	Apply(syllable string) (derived spelling.Spelling, changed bool, err error)

	// Deletion reports whether a changed syllable's original key is
	// removed from the dictionary (the inverse of "retains original").
	Deletion() bool

	// Addition reports whether a changed syllable's derived key is
	// inserted into the dictionary.
	Addition() bool
}

// CompileFunc turns one formula string into a Rule.
// internal/calculus provides the production implementation.
type CompileFunc func(formula string) (Rule, error)
