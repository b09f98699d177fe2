package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/floatchat-ai/floatchat/internal/model"
)

// InsertMeasurements bulk-loads measurement rows via COPY. A single NetCDF
// profile file can carry thousands of pressure levels, so COPY beats
// per-row inserts by an order of magnitude.
func (db *DB) InsertMeasurements(ctx context.Context, measurements []model.Measurement) (int64, error) {
	if len(measurements) == 0 {
		return 0, nil
	}

	rows := make([][]any, len(measurements))
	for i, m := range measurements {
		rows[i] = []any{
			m.FloatID,
			m.Timestamp,
			m.Latitude,
			m.Longitude,
			m.Pressure,
			m.Temperature,
			m.Salinity,
		}
	}

	n, err := db.pool.CopyFrom(ctx,
		pgx.Identifier{"argo_measurements"},
		[]string{"float_id", "timestamp", "latitude", "longitude", "pressure", "temperature", "salinity"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return 0, fmt.Errorf("storage: copy %d measurements: %w", len(measurements), err)
	}
	return n, nil
}

// DeleteMeasurements removes all measurements for a float. Called before
// re-ingesting a profile file so COPY doesn't duplicate rows.
func (db *DB) DeleteMeasurements(ctx context.Context, floatID string) (int64, error) {
	tag, err := db.pool.Exec(ctx, `DELETE FROM argo_measurements WHERE float_id = $1`, floatID)
	if err != nil {
		return 0, fmt.Errorf("storage: delete measurements for %s: %w", floatID, err)
	}
	return tag.RowsAffected(), nil
}
