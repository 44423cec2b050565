package algebra

import (
	"errors"
	"log/slog"
	"runtime"

	"github.com/spella/spella/internal/script"
)

// Projection is an ordered pipeline of compiled rewrite rules.
// A projection is either fully loaded or empty; Load never returns a
// partially compiled pipeline.
type Projection struct {
	rules   []Rule
	workers int
}

// Option configures a projection.
type Option func(*Projection)

// WithWorkers sets the size of the worker pool used by the parallel phases.
// Values below 1 are clamped to 1, which runs the same three-phase engine
// strictly sequentially. The default is GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(p *Projection) {
		if n < 1 {
			n = 1
		}
		p.workers = n
	}
}

// Load compiles the formulas in order. On the first failure every
// previously compiled rule is discarded and the returned *LoadError names
// the 1-based index and text of the failing formula.
func Load(formulas []string, compile CompileFunc, opts ...Option) (*Projection, error) {
	if compile == nil {
		return nil, errors.New("load projection: nil compile function")
	}

	p := &Projection{workers: runtime.GOMAXPROCS(0)}
	for _, opt := range opts {
		opt(p)
	}

	rules := make([]Rule, 0, len(formulas))
	for i, formula := range formulas {
		rule, err := compile(formula)
		if err != nil {
			return nil, &LoadError{Index: i + 1, Formula: formula, Err: err}
		}
		rules = append(rules, rule)
	}
	p.rules = rules

	slog.Debug("projection loaded", "rules", len(p.rules), "workers", p.workers)
	return p, nil
}

// Len returns the number of compiled rules.
func (p *Projection) Len() int {
	return len(p.rules)
}

// ApplyToText runs every rule, in order, against a single evolving
// candidate string. The overall changed flag is the OR across rules. On any
// rule error the whole call fails and the original text is returned; rules
// are never partially applied.
func (p *Projection) ApplyToText(text string) (string, bool, error) {
	if text == "" {
		return text, false, nil
	}
	candidate := text
	modified := false
	for i, rule := range p.rules {
		derived, changed, err := rule.Apply(candidate)
		if err != nil {
			return text, false, &ApplyError{Round: i + 1, Err: err}
		}
		if changed {
			candidate = derived.Text
			modified = true
		}
	}
	if !modified {
		return text, false, nil
	}
	return candidate, true, nil
}

// ApplyToScript runs the concurrent engine: one three-phase round per rule
// over the whole dictionary, each round feeding the next. On success with
// changed=true the script's contents are replaced by the final generation;
// with changed=false the script is left exactly as given. On any rule error
// the script is left unmodified and all intermediate generations are
// discarded.
func (p *Projection) ApplyToScript(s *script.Script) (bool, error) {
	if s == nil || s.Len() == 0 {
		return false, nil
	}

	gen := index(s)
	changed := false
	for i, rule := range p.rules {
		next, roundChanged, err := p.round(i+1, rule, gen)
		if err != nil {
			return false, err
		}
		gen = next
		changed = changed || roundChanged
	}

	if !changed {
		return false, nil
	}
	s.Replace(flatten(gen))
	slog.Debug("projection applied", "rounds", len(p.rules), "syllables", s.Len())
	return true, nil
}
