package algebra_test

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spella/spella/internal/algebra"
	"github.com/spella/spella/internal/calculus"
	"github.com/spella/spella/internal/script"
	"github.com/spella/spella/internal/spelling"
	"github.com/spella/spella/internal/testutil"
)

// newScript builds a script where each syllable carries its identity
// spelling, the shape a freshly read dictionary has.
func newScript(t *testing.T, syllables ...string) *script.Script {
	t.Helper()
	s := script.New()
	for _, syl := range syllables {
		require.True(t, s.AddSyllable(syl))
		s.Merge(syl, spelling.Annotation{}, []spelling.Spelling{{Text: syl}})
	}
	return s
}

func dump(t *testing.T, s *script.Script) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, s.Dump(&buf))
	return buf.String()
}

func staticCompile(rule algebra.Rule) algebra.CompileFunc {
	return func(string) (algebra.Rule, error) { return rule, nil }
}

func TestLoad_AllOrNothing(t *testing.T) {
	compileErr := errors.New("unknown operator")
	compile := func(formula string) (algebra.Rule, error) {
		if strings.HasPrefix(formula, "bogus") {
			return nil, compileErr
		}
		return &testutil.StaticRule{}, nil
	}

	proj, err := algebra.Load([]string{"ok/a/b/", "bogus/x/", "ok/c/d/"}, compile)
	require.Error(t, err)
	assert.Nil(t, proj, "no partially compiled pipeline")

	var loadErr *algebra.LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, 2, loadErr.Index)
	assert.Equal(t, "bogus/x/", loadErr.Formula)
	assert.ErrorIs(t, err, compileErr)
	assert.Contains(t, err.Error(), `#2 "bogus/x/"`)
}

func TestLoad_NilCompile(t *testing.T) {
	_, err := algebra.Load([]string{"a"}, nil)
	require.Error(t, err)
}

func TestLoad_Empty(t *testing.T) {
	proj, err := algebra.Load(nil, staticCompile(&testutil.StaticRule{}))
	require.NoError(t, err)
	assert.Equal(t, 0, proj.Len())
}

func TestApplyToText(t *testing.T) {
	rules := []algebra.Rule{
		&testutil.StaticRule{Rewrites: map[string]string{"zhong": "zong"}},
		&testutil.StaticRule{Rewrites: map[string]string{"zong": "cong"}},
	}
	i := 0
	compile := func(string) (algebra.Rule, error) {
		r := rules[i]
		i++
		return r, nil
	}
	proj, err := algebra.Load([]string{"r1", "r2"}, compile)
	require.NoError(t, err)

	// Rule 2 operates on rule 1's output.
	out, changed, err := proj.ApplyToText("zhong")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "cong", out)

	// No rule matches: unchanged.
	out, changed, err = proj.ApplyToText("chang")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, "chang", out)

	// Empty input short-circuits.
	out, changed, err = proj.ApplyToText("")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Empty(t, out)
}

func TestApplyToText_ErrorReturnsOriginal(t *testing.T) {
	failErr := errors.New("boom")
	rules := []algebra.Rule{
		&testutil.StaticRule{Rewrites: map[string]string{"zhong": "zong"}},
		&testutil.FailRule{On: "zong", Err: failErr},
	}
	i := 0
	proj, err := algebra.Load([]string{"r1", "r2"}, func(string) (algebra.Rule, error) {
		r := rules[i]
		i++
		return r, nil
	})
	require.NoError(t, err)

	out, changed, err := proj.ApplyToText("zhong")
	require.Error(t, err)
	assert.False(t, changed)
	assert.Equal(t, "zhong", out, "original text on failure")

	var applyErr *algebra.ApplyError
	require.ErrorAs(t, err, &applyErr)
	assert.Equal(t, 2, applyErr.Round)
	assert.ErrorIs(t, err, failErr)
}

func TestApplyToScript_FlagMatrix(t *testing.T) {
	tests := []struct {
		name     string
		deletion bool
		addition bool
		want     []string
	}{
		{"substitution", true, true, []string{"zong"}},
		{"derivation", false, true, []string{"zhong", "zong"}},
		{"erasure", true, false, []string{}},
		{"no-op policy", false, false, []string{"zhong"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := &testutil.StaticRule{
				Rewrites: map[string]string{"zhong": "zong"},
				Delete:   tt.deletion,
				Add:      tt.addition,
			}
			proj, err := algebra.Load([]string{"r"}, staticCompile(rule))
			require.NoError(t, err)

			s := newScript(t, "zhong")
			changed, err := proj.ApplyToScript(s)
			require.NoError(t, err)
			assert.True(t, changed, "the rule reported a change")
			assert.Equal(t, tt.want, s.Syllables())
		})
	}
}

func TestApplyToScript_DerivedKeyCarriesEmittedAnnotation(t *testing.T) {
	rule := &testutil.StaticRule{
		Rewrites: map[string]string{"zhong": "zong"},
		Emit:     spelling.Annotation{Kind: spelling.KindFuzzy, Credibility: -0.5, Tip: "fuzzy zh/z"},
		Add:      true,
	}
	proj, err := algebra.Load([]string{"r"}, staticCompile(rule))
	require.NoError(t, err)

	s := newScript(t, "zhong")
	_, err = proj.ApplyToScript(s)
	require.NoError(t, err)

	got := s.Spellings("zong")
	require.Len(t, got, 1)
	assert.Equal(t, "zhong", got[0].Text, "entries carry over from the source key")
	assert.Equal(t, spelling.KindFuzzy, got[0].Props.Kind)
	assert.Equal(t, -0.5, got[0].Props.Credibility)
	assert.Equal(t, "fuzzy zh/z", got[0].Props.Tip)

	// The retained original key is untouched.
	orig := s.Spellings("zhong")
	require.Len(t, orig, 1)
	assert.Equal(t, spelling.Annotation{}, orig[0].Props)
}

func TestApplyToScript_EmptyDerivedTextNeverInserts(t *testing.T) {
	rule := &testutil.StaticRule{
		Rewrites: map[string]string{"zhong": ""},
		Delete:   true,
		Add:      true,
	}
	proj, err := algebra.Load([]string{"r"}, staticCompile(rule))
	require.NoError(t, err)

	s := newScript(t, "zhong", "chang")
	changed, err := proj.ApplyToScript(s)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []string{"chang"}, s.Syllables(), "no empty-string key, original erased")
}

func TestApplyToScript_CollisionMergesAfterAccumulation(t *testing.T) {
	// Two source syllables share an entry text and both derive onto the
	// same target key. The colliding annotations were each accumulated at
	// creation time; the collision itself resolves by max credibility,
	// never by a second accumulation.
	s := script.New()
	s.AddSyllable("zhong")
	s.Merge("zhong", spelling.Annotation{}, []spelling.Spelling{
		{Text: "中", Props: spelling.Annotation{Credibility: 1.0, Tip: "a"}},
	})
	s.AddSyllable("jong")
	s.Merge("jong", spelling.Annotation{}, []spelling.Spelling{
		{Text: "中", Props: spelling.Annotation{Credibility: 2.0, Tip: "b"}},
	})

	rule := &testutil.StaticRule{
		Rewrites: map[string]string{"zhong": "zong", "jong": "zong"},
		Emit:     spelling.Annotation{Credibility: -0.5},
		Delete:   true,
		Add:      true,
	}
	proj, err := algebra.Load([]string{"r"}, staticCompile(rule))
	require.NoError(t, err)

	_, err = proj.ApplyToScript(s)
	require.NoError(t, err)

	require.Equal(t, []string{"zong"}, s.Syllables())
	got := s.Spellings("zong")
	require.Len(t, got, 1)
	assert.Equal(t, 1.5, got[0].Props.Credibility, "max of the accumulated values, not their sum")
	assert.Empty(t, got[0].Props.Tip, "tip cleared on collision")
}

func TestApplyToScript_RoundsFeedForward(t *testing.T) {
	rules := []algebra.Rule{
		&testutil.StaticRule{Rewrites: map[string]string{"zhong": "zong"}, Delete: true, Add: true},
		&testutil.StaticRule{Rewrites: map[string]string{"zong": "cong"}, Delete: true, Add: true},
	}
	i := 0
	proj, err := algebra.Load([]string{"r1", "r2"}, func(string) (algebra.Rule, error) {
		r := rules[i]
		i++
		return r, nil
	})
	require.NoError(t, err)

	s := newScript(t, "zhong")
	changed, err := proj.ApplyToScript(s)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []string{"cong"}, s.Syllables(), "round 2 sees round 1's output")
}

func TestApplyToScript_NoChangeLeavesScriptUntouched(t *testing.T) {
	proj, err := algebra.Load([]string{"r"}, staticCompile(&testutil.StaticRule{}))
	require.NoError(t, err)

	s := newScript(t, "zhong", "chang")
	before := dump(t, s)

	changed, err := proj.ApplyToScript(s)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, before, dump(t, s))
}

func TestApplyToScript_ErrorAbortsWithoutMutation(t *testing.T) {
	failErr := errors.New("bad capture group")
	rules := []algebra.Rule{
		&testutil.StaticRule{Rewrites: map[string]string{"zhong": "zong"}, Delete: true, Add: true},
		&testutil.FailRule{On: "zong", Err: failErr},
	}
	i := 0
	proj, err := algebra.Load([]string{"r1", "r2"}, func(string) (algebra.Rule, error) {
		r := rules[i]
		i++
		return r, nil
	})
	require.NoError(t, err)

	s := newScript(t, "zhong", "chang")
	before := dump(t, s)

	changed, err := proj.ApplyToScript(s)
	require.Error(t, err)
	assert.False(t, changed)
	assert.Equal(t, before, dump(t, s), "script untouched after a mid-pipeline failure")

	var applyErr *algebra.ApplyError
	require.ErrorAs(t, err, &applyErr)
	assert.Equal(t, 2, applyErr.Round)
	assert.Equal(t, "zong", applyErr.Key)
	assert.ErrorIs(t, err, failErr)
}

func TestApplyToScript_EmptyScript(t *testing.T) {
	proj, err := algebra.Load([]string{"r"}, staticCompile(&testutil.StaticRule{}))
	require.NoError(t, err)

	changed, err := proj.ApplyToScript(script.New())
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = proj.ApplyToScript(nil)
	require.NoError(t, err)
	assert.False(t, changed)
}

// The worker count must never affect the result: a single-worker run and a
// parallel run of the same projection over the same dictionary produce
// byte-identical dumps.
func TestApplyToScript_WorkerCountInvariant(t *testing.T) {
	formulas := []string{
		"derive/^([zcs])h/$1/",
		"fuzz/^l/n/",
		"xform/ang$/an/",
		"abbrev/^(.).+$/$1/",
	}

	build := func() *script.Script {
		s := script.New()
		initials := []string{"zh", "ch", "sh", "z", "c", "s", "l", "n", "m", "b"}
		finals := []string{"a", "ang", "ong", "eng", "i", "u", "uang"}
		for _, ini := range initials {
			for _, fin := range finals {
				syl := ini + fin
				if s.AddSyllable(syl) {
					s.Merge(syl, spelling.Annotation{}, []spelling.Spelling{{Text: syl}})
				}
			}
		}
		return s
	}

	run := func(workers int) string {
		proj, err := algebra.Load(formulas, calculus.Parse, algebra.WithWorkers(workers))
		require.NoError(t, err)
		s := build()
		changed, err := proj.ApplyToScript(s)
		require.NoError(t, err)
		require.True(t, changed)
		return dump(t, s)
	}

	sequential := run(1)
	for _, workers := range []int{2, 4, 8} {
		assert.Equal(t, sequential, run(workers), "workers=%d diverged", workers)
	}
}

func TestWithWorkers_ClampsBelowOne(t *testing.T) {
	proj, err := algebra.Load(
		[]string{"r"},
		staticCompile(&testutil.StaticRule{Rewrites: map[string]string{"zhong": "zong"}, Add: true}),
		algebra.WithWorkers(-3),
	)
	require.NoError(t, err)

	s := newScript(t, "zhong")
	changed, err := proj.ApplyToScript(s)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []string{"zhong", "zong"}, s.Syllables())
}

func TestApplyError_Format(t *testing.T) {
	withKey := &algebra.ApplyError{Round: 3, Key: "zhong", Err: errors.New("boom")}
	assert.Equal(t, `round #3: applying rule to "zhong": boom`, withKey.Error())

	textPath := &algebra.ApplyError{Round: 1, Err: errors.New("boom")}
	assert.Equal(t, "round #1: applying rule: boom", textPath.Error())
}

func TestLoadError_Format(t *testing.T) {
	err := &algebra.LoadError{Index: 4, Formula: "xlit/ab/c/", Err: fmt.Errorf("rune count mismatch")}
	assert.Equal(t, `loading spelling algebra definition #4 "xlit/ab/c/": rune count mismatch`, err.Error())
}
