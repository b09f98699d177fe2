package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Checkpoint tracks which profile files have been ingested, so repeated
// runs over a data directory skip completed work. Backed by a local SQLite
// file next to the data: ingestion state is host-local and survives
// restarts without needing the main database.
type Checkpoint struct {
	db *sql.DB
}

// OpenCheckpoint opens (or creates) the checkpoint registry at path.
func OpenCheckpoint(path string) (*Checkpoint, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("ingest: open checkpoint db: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS processed_files (
			path         TEXT PRIMARY KEY,
			float_id     TEXT NOT NULL,
			measurements INTEGER NOT NULL,
			processed_at TIMESTAMP NOT NULL
		)
	`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ingest: create checkpoint table: %w", err)
	}

	return &Checkpoint{db: db}, nil
}

// Done reports whether path has already been ingested.
func (c *Checkpoint) Done(ctx context.Context, path string) (bool, error) {
	var one int
	err := c.db.QueryRowContext(ctx,
		`SELECT 1 FROM processed_files WHERE path = ?`, path).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("ingest: query checkpoint: %w", err)
	}
	return true, nil
}

// Mark records path as ingested. Re-marking an existing path updates it,
// which supports forced re-ingestion.
func (c *Checkpoint) Mark(ctx context.Context, path, floatID string, measurements int) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO processed_files (path, float_id, measurements, processed_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (path) DO UPDATE SET
			float_id = excluded.float_id,
			measurements = excluded.measurements,
			processed_at = excluded.processed_at
	`, path, floatID, measurements, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("ingest: mark checkpoint: %w", err)
	}
	return nil
}

// Clear forgets path, forcing re-ingestion on the next run.
func (c *Checkpoint) Clear(ctx context.Context, path string) error {
	if _, err := c.db.ExecContext(ctx,
		`DELETE FROM processed_files WHERE path = ?`, path); err != nil {
		return fmt.Errorf("ingest: clear checkpoint: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (c *Checkpoint) Close() error {
	return c.db.Close()
}
