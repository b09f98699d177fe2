package storage

import (
	"context"
	"fmt"
	"math"
	"time"
)

// ExecuteQuery runs a generated SELECT statement and returns its result
// set as one map per row, keyed by column name. The statement has already
// been validated upstream; this layer only executes and shapes results.
//
// Values are normalized for JSON encoding: NaN and infinity become nil
// (encoding/json rejects them), and byte slices become strings.
func (db *DB) ExecuteQuery(ctx context.Context, sql string) ([]map[string]any, error) {
	rows, err := db.pool.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("storage: execute query: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, fd := range fields {
		columns[i] = fd.Name
	}

	results := make([]map[string]any, 0, 64)
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("storage: read row values: %w", err)
		}

		row := make(map[string]any, len(columns))
		for i, col := range columns {
			row[col] = normalizeValue(values[i])
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: iterate query results: %w", err)
	}

	return results, nil
}

// normalizeValue converts driver values into JSON-encodable ones.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return nil
		}
		return val
	case float32:
		f := float64(val)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
		return f
	case []byte:
		return string(val)
	case time.Time:
		return val.UTC().Format(time.RFC3339)
	default:
		return v
	}
}
