package algebra

import "fmt"

// LoadError reports the first formula that failed to compile.
// Loading is all-or-nothing: no previously compiled rule survives.
type LoadError struct {
	Index   int    // 1-based position in the formula list
	Formula string // the failing formula text
	Err     error  // the compiler's error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading spelling algebra definition #%d %q: %v", e.Index, e.Formula, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// ApplyError reports a rule-application failure with enough context to
// diagnose a bad formula: the round number and the offending syllable.
type ApplyError struct {
	Round int    // 1-based round (rule) number
	Key   string // syllable the rule was applied to; empty on the text path
	Err   error
}

func (e *ApplyError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("round #%d: applying rule to %q: %v", e.Round, e.Key, e.Err)
	}
	return fmt.Sprintf("round #%d: applying rule: %v", e.Round, e.Err)
}

func (e *ApplyError) Unwrap() error {
	return e.Err
}
