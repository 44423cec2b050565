package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/spella/spella/internal/script"
	"github.com/spella/spella/internal/spelling"
)

// ErrRunNotFound is returned when a run ID does not exist in the store.
var ErrRunNotFound = errors.New("run not found")

// ReadRun returns the run record for an ID.
func (st *Store) ReadRun(ctx context.Context, runID string) (Run, error) {
	var run Run
	err := st.db.QueryRowContext(ctx, `
		SELECT id, schema_name, schema_version, syllables, spellings
		FROM runs WHERE id = ?
	`, runID).Scan(&run.ID, &run.SchemaName, &run.SchemaVersion, &run.Syllables, &run.Spellings)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("read run %s: %w", runID, ErrRunNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("read run %s: %w", runID, err)
	}
	return run, nil
}

// Runs returns all persisted runs ordered by ID.
func (st *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := st.db.QueryContext(ctx, `
		SELECT id, schema_name, schema_version, syllables, spellings
		FROM runs ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.SchemaName, &run.SchemaVersion, &run.Syllables, &run.Spellings); err != nil {
			return nil, fmt.Errorf("list runs: scan: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// ReadScript reconstructs the compiled dictionary for a run.
// Rows are read in syllable, text order so the result dumps byte-identically
// to the script that was written.
func (st *Store) ReadScript(ctx context.Context, runID string) (*script.Script, error) {
	if _, err := st.ReadRun(ctx, runID); err != nil {
		return nil, err
	}

	rows, err := st.db.QueryContext(ctx, `
		SELECT syllable, text, kind, credibility, tip
		FROM spellings WHERE run_id = ?
		ORDER BY syllable, text
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("read script %s: %w", runID, err)
	}
	defer rows.Close()

	s := script.New()
	for rows.Next() {
		var (
			syllable, text, tip string
			kind                int
			credibility         float64
		)
		if err := rows.Scan(&syllable, &text, &kind, &credibility, &tip); err != nil {
			return nil, fmt.Errorf("read script %s: scan: %w", runID, err)
		}
		s.AddSyllable(syllable)
		// Merging with a zero incoming annotation reconstructs the stored
		// annotation unchanged.
		s.Merge(syllable, spelling.Annotation{}, []spelling.Spelling{{
			Text: text,
			Props: spelling.Annotation{
				Kind:        spelling.Kind(kind),
				Credibility: credibility,
				Tip:         tip,
			},
		}})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read script %s: %w", runID, err)
	}
	return s, nil
}
