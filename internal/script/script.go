package script

import (
	"fmt"
	"io"
	"sort"

	"github.com/spella/spella/internal/spelling"
)

// Script is an ordered mapping syllable -> spellings.
//
// The zero value is not usable; construct with New.
type Script struct {
	syllables map[string][]spelling.Spelling
}

// New creates an empty script.
func New() *Script {
	return &Script{syllables: make(map[string][]spelling.Spelling)}
}

// Len returns the number of syllables.
func (s *Script) Len() int {
	return len(s.syllables)
}

// Syllables returns all syllable keys in byte order.
func (s *Script) Syllables() []string {
	keys := make([]string, 0, len(s.syllables))
	for k := range s.syllables {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Spellings returns the entry list for a syllable in text order.
// Returns nil if the syllable is not present.
func (s *Script) Spellings(syllable string) []spelling.Spelling {
	entries, ok := s.syllables[syllable]
	if !ok {
		return nil
	}
	out := make([]spelling.Spelling, len(entries))
	copy(out, entries)
	sort.Slice(out, func(i, j int) bool { return out[i].Text < out[j].Text })
	return out
}

// AddSyllable inserts an empty entry list for a new syllable.
// Returns false without mutating if the syllable already exists.
func (s *Script) AddSyllable(name string) bool {
	if _, ok := s.syllables[name]; ok {
		return false
	}
	s.syllables[name] = nil
	return true
}

// Merge folds incoming entries into the syllable's entry list.
//
// Each incoming entry's annotation is first combined with incoming via the
// accumulation rule, then either inserted as new or collision-merged against
// the existing entry with equal text. This is the only collision-resolution
// site on the non-concurrent path.
func (s *Script) Merge(syllable string, incoming spelling.Annotation, entries []spelling.Spelling) {
	existing := s.syllables[syllable]
	for _, e := range entries {
		acc := spelling.Accumulate(e.Props, incoming)
		idx := -1
		for i := range existing {
			if existing[i].Text == e.Text {
				idx = i
				break
			}
		}
		if idx < 0 {
			existing = append(existing, spelling.Spelling{Text: e.Text, Props: acc})
			continue
		}
		// Identical annotations are a no-op, not a collision; the tip
		// survives only on this path.
		if existing[idx].Props == acc {
			continue
		}
		existing[idx].Props = spelling.Merge(existing[idx].Props, acc)
	}
	s.syllables[syllable] = existing
}

// Replace swaps the script's contents for the given mapping.
// Used by the projection engine to commit a new generation atomically.
func (s *Script) Replace(syllables map[string][]spelling.Spelling) {
	s.syllables = syllables
}

// Dump writes one tab-separated row per (syllable, spelling) pair:
// syllable, text, kind code, credibility, tip. The syllable column is blank
// on all but the first row of a run sharing the same syllable.
func (s *Script) Dump(w io.Writer) error {
	for _, syllable := range s.Syllables() {
		first := true
		for _, sp := range s.Spellings(syllable) {
			label := ""
			if first {
				label = syllable
			}
			_, err := fmt.Fprintf(w, "%s\t%s\t%c\t%g\t%s\n",
				label, sp.Text, sp.Props.Kind.Code(), sp.Props.Credibility, sp.Props.Tip)
			if err != nil {
				return fmt.Errorf("dump syllable %q: %w", syllable, err)
			}
			first = false
		}
	}
	return nil
}
