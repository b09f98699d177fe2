// Package search maintains the semantic-summary index of float
// descriptions used as retrieval context for query generation.
//
// The primary implementation is Qdrant; when no Qdrant endpoint is
// configured the index transparently falls back to pgvector columns in
// Postgres. Both are optional context enrichment: the chat pipeline
// proceeds with empty context when the index is unreachable.
package search

import "context"

// Document is one float summary to index, keyed by float ID.
type Document struct {
	FloatID   string
	Project   string
	Summary   string
	Latitude  float64
	Longitude float64
	Embedding []float32
}

// Index stores float summaries and retrieves the ones most relevant to a
// question embedding. Implementations must be safe for concurrent use.
type Index interface {
	// Upsert inserts or replaces documents, keyed by float ID.
	Upsert(ctx context.Context, docs []Document) error

	// Summaries returns up to limit summary texts ordered by similarity
	// to the query embedding.
	Summaries(ctx context.Context, embedding []float32, limit int) ([]string, error)

	// Healthy returns nil if the index is reachable.
	Healthy(ctx context.Context) error
}

// NoopIndex stores nothing and retrieves nothing. Used when the semantic
// index is disabled entirely.
type NoopIndex struct{}

// Upsert discards the documents.
func (NoopIndex) Upsert(context.Context, []Document) error { return nil }

// Summaries returns no context.
func (NoopIndex) Summaries(context.Context, []float32, int) ([]string, error) { return nil, nil }

// Healthy always succeeds.
func (NoopIndex) Healthy(context.Context) error { return nil }
