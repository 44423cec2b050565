// Package store provides SQLite-backed storage for compiled dictionaries.
//
// Each projection run is persisted as one row in runs plus one row per
// (syllable, spelling) pair in spellings. Run IDs are UUIDs generated at
// compile time; the spelling rows are keyed (run_id, syllable, text), the
// same uniqueness invariant the in-memory container enforces.
//
// All reads order by syllable, text so a script read back from the store
// dumps byte-identically to the script that was written.
//
// Database configuration:
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: enforce referential integrity
package store
