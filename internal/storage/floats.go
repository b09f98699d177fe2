package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/floatchat-ai/floatchat/internal/model"
)

// UpsertFloat inserts or updates a float's metadata, keyed by float_id.
// Re-ingesting a profile file refreshes the float's latest known position.
func (db *DB) UpsertFloat(ctx context.Context, f model.FloatMeta) error {
	_, err := db.pool.Exec(ctx, `
		INSERT INTO argo_floats (float_id, project_name, latest_latitude, latest_longitude)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (float_id) DO UPDATE SET
			project_name     = EXCLUDED.project_name,
			latest_latitude  = EXCLUDED.latest_latitude,
			latest_longitude = EXCLUDED.latest_longitude
	`, f.FloatID, f.ProjectName, f.LatestLatitude, f.LatestLongitude)
	if err != nil {
		return fmt.Errorf("storage: upsert float %s: %w", f.FloatID, err)
	}
	return nil
}

// GetFloat returns the metadata for a single float, or ErrNotFound.
func (db *DB) GetFloat(ctx context.Context, floatID string) (model.FloatMeta, error) {
	var f model.FloatMeta
	err := db.pool.QueryRow(ctx, `
		SELECT float_id, project_name, latest_latitude, latest_longitude
		FROM argo_floats WHERE float_id = $1
	`, floatID).Scan(&f.FloatID, &f.ProjectName, &f.LatestLatitude, &f.LatestLongitude)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.FloatMeta{}, ErrNotFound
	}
	if err != nil {
		return model.FloatMeta{}, fmt.Errorf("storage: get float %s: %w", floatID, err)
	}
	return f, nil
}

// ListFloats returns all float metadata, ordered by float_id. Used by the
// ingestion pipeline to rebuild the semantic index.
func (db *DB) ListFloats(ctx context.Context) ([]model.FloatMeta, error) {
	rows, err := db.pool.Query(ctx, `
		SELECT float_id, project_name, latest_latitude, latest_longitude
		FROM argo_floats ORDER BY float_id
	`)
	if err != nil {
		return nil, fmt.Errorf("storage: list floats: %w", err)
	}
	defer rows.Close()

	var floats []model.FloatMeta
	for rows.Next() {
		var f model.FloatMeta
		if err := rows.Scan(&f.FloatID, &f.ProjectName, &f.LatestLatitude, &f.LatestLongitude); err != nil {
			return nil, fmt.Errorf("storage: scan float: %w", err)
		}
		floats = append(floats, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: iterate floats: %w", err)
	}
	return floats, nil
}
