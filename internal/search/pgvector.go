package search

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"
)

// PgvectorIndex implements Index on top of the summary_embedding column in
// argo_floats. It is the fallback when no Qdrant endpoint is configured:
// one less moving part for small deployments, at the cost of sharing the
// query database's capacity.
type PgvectorIndex struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewPgvectorIndex creates an index backed by the floats table.
func NewPgvectorIndex(pool *pgxpool.Pool, logger *slog.Logger) *PgvectorIndex {
	return &PgvectorIndex{pool: pool, logger: logger}
}

// Upsert stores each document's summary and embedding on its float row.
// Rows are created by the ingestion pipeline before indexing runs, so a
// missing float is logged and skipped rather than treated as an error.
func (p *PgvectorIndex) Upsert(ctx context.Context, docs []Document) error {
	for _, d := range docs {
		tag, err := p.pool.Exec(ctx,
			`UPDATE argo_floats SET summary = $2, summary_embedding = $3 WHERE float_id = $1`,
			d.FloatID, d.Summary, pgvector.NewVector(d.Embedding),
		)
		if err != nil {
			return fmt.Errorf("search: store summary for float %s: %w", d.FloatID, err)
		}
		if tag.RowsAffected() == 0 {
			p.logger.Warn("pgvector: no float row to attach summary to", "float_id", d.FloatID)
		}
	}
	return nil
}

// Summaries returns the summaries nearest to the query embedding by cosine
// distance.
func (p *PgvectorIndex) Summaries(ctx context.Context, embedding []float32, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 5
	}

	rows, err := p.pool.Query(ctx,
		`SELECT summary FROM argo_floats
		 WHERE summary IS NOT NULL AND summary_embedding IS NOT NULL
		 ORDER BY summary_embedding <=> $1
		 LIMIT $2`,
		pgvector.NewVector(embedding), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("search: pgvector query: %w", err)
	}
	defer rows.Close()

	var summaries []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("search: scan summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search: iterate summaries: %w", err)
	}
	return summaries, nil
}

// Healthy pings the underlying database.
func (p *PgvectorIndex) Healthy(ctx context.Context) error {
	if err := p.pool.Ping(ctx); err != nil {
		return fmt.Errorf("search: pgvector health: %w", err)
	}
	return nil
}
