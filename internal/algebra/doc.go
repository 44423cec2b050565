// Package algebra implements the spelling-algebra projection: an ordered
// pipeline of rewrite rules applied to a single string or to a whole
// dictionary, round by round.
//
// ARCHITECTURE:
//
// Three-Phase Round:
// One round applies one rule to every syllable of the current generation.
//  1. Evaluate (parallel, read-only): the rule is applied to a frozen
//     snapshot of the key list; verdicts are recorded per index with no
//     shared mutation. Keys created mid-round are never evaluated in the
//     same round.
//  2. Skeleton (sequential): output keys are pre-created in original key
//     order. Inserting keys resizes the generation map and is the one
//     mutation that cannot be parallelized.
//  3. Fill (parallel, sharded locks): source entries are merged into the
//     pre-created buckets. Only values already present in the map are
//     mutated, each under its shard's mutex.
//
// Rounds are strictly sequential; the generation produced by round n is the
// input to round n+1. After the last round the generation is flattened back
// into the script in key order, text order.
//
// DETERMINISM:
// Final content is independent of scheduling because phase 1 has no shared
// mutation, phase 2 is sequential, and phase 3's only shared mutation is the
// commutative, associative collision merge applied under per-shard mutual
// exclusion. Running with 1 worker or N workers yields byte-identical dumps.
//
// LOCK DISCIPLINE:
// The key space is partitioned across a fixed number of mutexes (independent
// of worker count) by a stable hash. A unit of work that must hold two
// shards acquires them in ascending shard index; every two-shard acquisition
// site goes through the same ordering function, which precludes
// circular-wait deadlock.
//
// ERROR MODEL:
// A rule-application failure is always fatal to the enclosing call. The
// round's work and every prior round's generation are discarded and the
// caller's script is left untouched. There is no retry: a rule that fails
// once is assumed to fail deterministically on the same input.
package algebra
