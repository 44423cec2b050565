package calculus

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/spella/spella/internal/algebra"
	"github.com/spella/spella/internal/spelling"
)

// Penalty is the credibility cost accumulated into fuzzy and abbreviated
// derivations: ln(1/2), halving the spelling's likelihood.
const Penalty = -0.6931471805599453

// ParseError reports a malformed formula.
type ParseError struct {
	Formula string
	Reason  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing formula %q: %s", e.Formula, e.Reason)
}

// calculation is one compiled formula. It implements algebra.Rule.
type calculation struct {
	op       string
	re       *regexp.Regexp // nil for xlit
	repl     string
	xlit     map[rune]rune // nil except for xlit
	deletion bool
	addition bool
	emitted  spelling.Annotation
}

// Parse compiles one formula string. It satisfies algebra.CompileFunc.
func Parse(formula string) (algebra.Rule, error) {
	op, args, err := split(formula)
	if err != nil {
		return nil, err
	}

	switch op {
	case "xlit":
		if len(args) != 2 {
			return nil, &ParseError{formula, "xlit takes exactly 2 arguments"}
		}
		mapping, err := xlitMapping(args[0], args[1])
		if err != nil {
			return nil, &ParseError{formula, err.Error()}
		}
		return &calculation{op: op, xlit: mapping, deletion: true, addition: true}, nil

	case "xform", "derive", "fuzz", "abbrev":
		if len(args) != 2 {
			return nil, &ParseError{formula, op + " takes exactly 2 arguments"}
		}
		re, err := regexp.Compile(args[0])
		if err != nil {
			return nil, &ParseError{formula, fmt.Sprintf("invalid pattern: %v", err)}
		}
		c := &calculation{op: op, re: re, repl: args[1], addition: true}
		switch op {
		case "xform":
			c.deletion = true
		case "fuzz":
			c.emitted = spelling.Annotation{Kind: spelling.KindFuzzy, Credibility: Penalty}
		case "abbrev":
			c.emitted = spelling.Annotation{Kind: spelling.KindAbbreviation, Credibility: Penalty}
		}
		return c, nil

	case "erase":
		if len(args) != 1 {
			return nil, &ParseError{formula, "erase takes exactly 1 argument"}
		}
		re, err := regexp.Compile(wholeString(args[0]))
		if err != nil {
			return nil, &ParseError{formula, fmt.Sprintf("invalid pattern: %v", err)}
		}
		return &calculation{op: op, re: re, deletion: true}, nil

	default:
		return nil, &ParseError{formula, fmt.Sprintf("unknown operator %q", op)}
	}
}

// Apply evaluates the compiled formula against one syllable string.
func (c *calculation) Apply(syllable string) (spelling.Spelling, bool, error) {
	switch c.op {
	case "xlit":
		out, changed := transliterate(syllable, c.xlit)
		return spelling.Spelling{Text: out, Props: c.emitted}, changed, nil

	case "erase":
		if c.re.MatchString(syllable) {
			return spelling.Spelling{}, true, nil
		}
		return spelling.Spelling{Text: syllable}, false, nil

	default:
		out := c.re.ReplaceAllString(syllable, c.repl)
		if out == syllable {
			return spelling.Spelling{Text: syllable, Props: c.emitted}, false, nil
		}
		return spelling.Spelling{Text: out, Props: c.emitted}, true, nil
	}
}

// Deletion reports whether the original key is removed on change.
func (c *calculation) Deletion() bool { return c.deletion }

// Addition reports whether the derived key is inserted on change.
func (c *calculation) Addition() bool { return c.addition }

// split breaks a formula into its operator and delimiter-separated
// arguments. The delimiter is the punctuation character following the
// operator name, and the formula must end with it.
func split(formula string) (op string, args []string, err error) {
	i := strings.IndexFunc(formula, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	if i <= 0 {
		return "", nil, &ParseError{formula, "missing delimiter after operator"}
	}
	delim := rune(formula[i])
	if unicode.IsDigit(delim) || unicode.IsSpace(delim) || formula[i] >= 0x80 {
		return "", nil, &ParseError{formula, fmt.Sprintf("invalid delimiter %q", delim)}
	}
	op = formula[:i]
	body := formula[i+1:]
	if !strings.HasSuffix(body, string(delim)) {
		return "", nil, &ParseError{formula, fmt.Sprintf("formula must end with its delimiter %q", delim)}
	}
	args = strings.Split(strings.TrimSuffix(body, string(delim)), string(delim))
	return op, args, nil
}

// xlitMapping pairs the runes of left and right positionally.
func xlitMapping(left, right string) (map[rune]rune, error) {
	l := []rune(left)
	r := []rune(right)
	if len(l) != len(r) {
		return nil, fmt.Errorf("alphabets differ in length: %d vs %d runes", len(l), len(r))
	}
	if len(l) == 0 {
		return nil, fmt.Errorf("empty alphabet")
	}
	mapping := make(map[rune]rune, len(l))
	for i, from := range l {
		if _, dup := mapping[from]; dup {
			return nil, fmt.Errorf("duplicate source rune %q", from)
		}
		mapping[from] = r[i]
	}
	return mapping, nil
}

// transliterate maps each rune through the alphabet; unmapped runes pass
// through unchanged.
func transliterate(s string, mapping map[rune]rune) (string, bool) {
	var b strings.Builder
	b.Grow(len(s))
	changed := false
	for _, r := range s {
		if to, ok := mapping[r]; ok && to != r {
			b.WriteRune(to)
			changed = true
			continue
		}
		b.WriteRune(r)
	}
	if !changed {
		return s, false
	}
	return b.String(), true
}

// wholeString anchors a pattern so erase only fires on full matches.
func wholeString(pattern string) string {
	return "^(?:" + pattern + ")$"
}
