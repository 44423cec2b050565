package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/spella/spella/internal/script"
)

// Run describes one persisted projection run.
type Run struct {
	ID            string // UUID
	SchemaName    string
	SchemaVersion string
	Syllables     int // syllable count at write time
	Spellings     int // total spelling rows at write time
}

// NewRun builds a Run record for a script about to be persisted.
func NewRun(schemaName, schemaVersion string, s *script.Script) Run {
	run := Run{
		ID:            uuid.NewString(),
		SchemaName:    schemaName,
		SchemaVersion: schemaVersion,
		Syllables:     s.Len(),
	}
	for _, syllable := range s.Syllables() {
		run.Spellings += len(s.Spellings(syllable))
	}
	return run
}

// WriteScript persists a compiled dictionary under the given run.
// The run row and every spelling row are written in a single transaction;
// a crash leaves either the whole run or nothing.
func (st *Store) WriteScript(ctx context.Context, run Run, s *script.Script) error {
	tx, err := st.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write script: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, schema_name, schema_version, syllables, spellings)
		VALUES (?, ?, ?, ?, ?)
	`, run.ID, run.SchemaName, run.SchemaVersion, run.Syllables, run.Spellings)
	if err != nil {
		return fmt.Errorf("write script: insert run %s: %w", run.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO spellings (run_id, syllable, text, kind, credibility, tip)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("write script: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, syllable := range s.Syllables() {
		for _, sp := range s.Spellings(syllable) {
			_, err := stmt.ExecContext(ctx,
				run.ID, syllable, sp.Text, int(sp.Props.Kind), sp.Props.Credibility, sp.Props.Tip)
			if err != nil {
				return fmt.Errorf("write script: insert spelling %s/%s: %w", syllable, sp.Text, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write script: commit: %w", err)
	}
	return nil
}
