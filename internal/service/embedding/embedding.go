// Package embedding provides vector embedding generation for the
// semantic-summary index.
//
// Defines a Provider interface with Ollama and no-op implementations. The
// interface allows swapping embedding providers without changing consumers.
package embedding

import "context"

// Provider generates vector embeddings from text.
type Provider interface {
	// Embed generates a single embedding vector from text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding vector dimensionality.
	Dimensions() int
}

// NoopProvider returns zero vectors. Used when no embedding backend is
// configured; the index then degrades to insertion-order retrieval.
type NoopProvider struct {
	dims int
}

// NewNoopProvider creates a provider that returns zero vectors.
func NewNoopProvider(dims int) *NoopProvider {
	return &NoopProvider{dims: dims}
}

// Dimensions returns the embedding vector size.
func (p *NoopProvider) Dimensions() int {
	return p.dims
}

// Embed returns a zero vector.
func (p *NoopProvider) Embed(_ context.Context, _ string) ([]float32, error) {
	return make([]float32, p.dims), nil
}
