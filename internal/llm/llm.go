// Package llm abstracts the language-generation backend behind a small
// interface so the chat pipeline can swap providers, and tests can use a
// deterministic double.
package llm

import "context"

// Client sends one completion request to a generation backend.
// Implementations must be safe for concurrent use and must respect ctx
// cancellation; callers bound each call with a timeout.
type Client interface {
	// Complete sends a system and user prompt and returns the response text.
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// NoopClient answers every prompt with a fixed textual refusal. Used when
// no generation backend is configured (e.g. local development without
// credentials).
type NoopClient struct{}

// Complete returns a canned text-kind response.
func (NoopClient) Complete(context.Context, string, string) (string, error) {
	return `{"type": "text", "answer": "No generation backend is configured on this deployment."}`, nil
}
