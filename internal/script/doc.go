// Package script provides the dictionary container: an ordered mapping from
// phonetic syllables to annotated spellings.
//
// INVARIANTS:
//   - Within one syllable's entry list, spelling texts are unique. A second
//     entry with the same text is a merge target, never a duplicate row.
//   - Iteration order is deterministic: syllables in byte order, spellings
//     in text order. Dump output therefore never depends on insertion order.
//   - Merging an entry with an identical annotation is a no-op; the tip is
//     only cleared when two distinct provenances actually collide.
//
// The container is a standalone value. internal/algebra borrows it for the
// duration of a projection and replaces its contents atomically only when a
// rule produced a change.
package script
