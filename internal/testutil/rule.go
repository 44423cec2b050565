// Package testutil provides rule stubs shared by tests across packages.
package testutil

import (
	"github.com/spella/spella/internal/spelling"
)

// StaticRule rewrites syllables through a fixed mapping. It implements
// algebra.Rule with configurable policy flags, which makes the 2x2
// deletion/addition matrix trivial to exercise.
type StaticRule struct {
	// Rewrites maps input syllables to derived text. Syllables absent
	// from the map are reported unchanged.
	Rewrites map[string]string

	// Emit is the annotation attached to every derivation.
	Emit spelling.Annotation

	// Delete reports the original key removed on change.
	Delete bool

	// Add reports the derived key inserted on change.
	Add bool
}

// Apply implements algebra.Rule.
func (r *StaticRule) Apply(syllable string) (spelling.Spelling, bool, error) {
	if out, ok := r.Rewrites[syllable]; ok {
		return spelling.Spelling{Text: out, Props: r.Emit}, true, nil
	}
	return spelling.Spelling{Text: syllable}, false, nil
}

// Deletion implements algebra.Rule.
func (r *StaticRule) Deletion() bool { return r.Delete }

// Addition implements algebra.Rule.
func (r *StaticRule) Addition() bool { return r.Add }

// FailRule fails on a chosen syllable and leaves every other syllable
// unchanged. Used to exercise the fatal rule-application path.
type FailRule struct {
	On  string // syllable that triggers the failure
	Err error
}

// Apply implements algebra.Rule.
func (r *FailRule) Apply(syllable string) (spelling.Spelling, bool, error) {
	if syllable == r.On {
		return spelling.Spelling{}, false, r.Err
	}
	return spelling.Spelling{Text: syllable}, false, nil
}

// Deletion implements algebra.Rule.
func (r *FailRule) Deletion() bool { return false }

// Addition implements algebra.Rule.
func (r *FailRule) Addition() bool { return false }
