package algebra

import (
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/spella/spella/internal/script"
	"github.com/spella/spella/internal/spelling"
)

// bucket is one syllable's entries keyed by spelling text. Keys must be
// looked up and merged by identity many times per round; a slice would
// force O(n) scans.
type bucket map[string]spelling.Annotation

// generation is the working representation of the dictionary inside a
// projection run: syllable -> (text -> annotation).
type generation map[string]bucket

// verdict records the outcome of applying the round's rule to one key.
type verdict struct {
	key     string
	derived spelling.Spelling
	changed bool
	err     error
}

// index builds the working representation from a script.
// Built once per projection run; the script itself is not touched again
// until the final generation is committed.
func index(s *script.Script) generation {
	gen := make(generation, s.Len())
	for _, syllable := range s.Syllables() {
		b := make(bucket)
		for _, sp := range s.Spellings(syllable) {
			b[sp.Text] = sp.Props
		}
		gen[syllable] = b
	}
	return gen
}

// flatten converts the final generation back to the script's entry-list
// form, syllables in key order, spellings in text order.
func flatten(gen generation) map[string][]spelling.Spelling {
	out := make(map[string][]spelling.Spelling, len(gen))
	for syllable, b := range gen {
		texts := make([]string, 0, len(b))
		for text := range b {
			texts = append(texts, text)
		}
		sort.Strings(texts)
		entries := make([]spelling.Spelling, 0, len(texts))
		for _, text := range texts {
			entries = append(entries, spelling.Spelling{Text: text, Props: b[text]})
		}
		out[syllable] = entries
	}
	return out
}

// round applies one rule to every syllable of gen and produces the next
// generation. n is the 1-based round number, used for error context.
func (p *Projection) round(n int, rule Rule, gen generation) (generation, bool, error) {
	// Phase 1 — Evaluate. The key list is frozen before any mutation
	// begins; each unit only reads its own key. Verdicts land in distinct
	// slice slots, so no synchronization is needed.
	keys := make([]string, 0, len(gen))
	for key := range gen {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	verdicts := make([]verdict, len(keys))
	var g errgroup.Group
	g.SetLimit(p.workers)
	for i, key := range keys {
		g.Go(func() error {
			derived, changed, err := rule.Apply(key)
			verdicts[i] = verdict{key: key, derived: derived, changed: changed, err: err}
			return nil
		})
	}
	// Workers never return errors directly; failures are collected in the
	// verdicts and surfaced below in key order, so the reported error does
	// not depend on scheduling.
	_ = g.Wait()

	// Phase 2 — Skeleton. Walk verdicts in original key order and
	// pre-create every output key. Map inserts rehash the container and
	// must not race with phase 3's fills.
	next := make(generation, len(gen))
	changed := false
	for i := range verdicts {
		v := &verdicts[i]
		if v.err != nil {
			return nil, false, &ApplyError{Round: n, Key: v.key, Err: v.err}
		}
		if v.changed {
			changed = true
		}
		if p.retains(rule, v) {
			if next[v.key] == nil {
				next[v.key] = make(bucket)
			}
		}
		if p.derives(rule, v) {
			if next[v.derived.Text] == nil {
				next[v.derived.Text] = make(bucket)
			}
		}
	}

	// Phase 3 — Fill. Buckets already exist; each unit merges its source
	// entries under the shard locks owning its target keys, acquired in
	// canonical order when a unit needs two shards.
	shards := newShardSet()
	var fg errgroup.Group
	fg.SetLimit(p.workers)
	for i := range verdicts {
		v := &verdicts[i]
		fg.Go(func() error {
			retain := p.retains(rule, v)
			derive := p.derives(rule, v)
			if !retain && !derive {
				return nil
			}
			targets := make([]string, 0, 2)
			if retain {
				targets = append(targets, v.key)
			}
			if derive {
				targets = append(targets, v.derived.Text)
			}
			release := shards.acquire(targets...)
			defer release()

			src := gen[v.key]
			if retain {
				fill(next[v.key], spelling.Annotation{}, src)
			}
			if derive {
				fill(next[v.derived.Text], v.derived.Props, src)
			}
			return nil
		})
	}
	_ = fg.Wait()

	slog.Debug("projection round complete",
		"round", n,
		"keys_in", len(gen),
		"keys_out", len(next),
		"changed", changed,
	)

	return next, changed, nil
}

// retains reports whether the verdict's original key survives the round.
func (p *Projection) retains(rule Rule, v *verdict) bool {
	return !v.changed || !rule.Deletion()
}

// derives reports whether the verdict inserts a derived key. A rule
// reporting changed with empty text never creates an entry.
func (p *Projection) derives(rule Rule, v *verdict) bool {
	return v.changed && rule.Addition() && v.derived.Text != ""
}

// fill merges every (text, annotation) pair from src into dst. Each source
// annotation is first combined with emitted via the accumulation rule, then
// inserted or collision-merged. Callers must hold dst's shard lock.
func fill(dst bucket, emitted spelling.Annotation, src bucket) {
	for text, props := range src {
		acc := spelling.Accumulate(props, emitted)
		cur, ok := dst[text]
		switch {
		case !ok:
			dst[text] = acc
		case cur == acc:
			// Identical provenance is a no-op; the tip survives.
		default:
			dst[text] = spelling.Merge(cur, acc)
		}
	}
}
