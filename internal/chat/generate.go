package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/floatchat-ai/floatchat/internal/llm"
	"github.com/floatchat-ai/floatchat/internal/model"
	"github.com/floatchat-ai/floatchat/internal/schema"
)

// ErrGenerationFailed marks any failure of the generation backend: call
// error, timeout, or empty output. It never carries backend detail to the
// caller; the orchestrator maps it to the fallback answer.
var ErrGenerationFailed = errors.New("chat: generation failed")

// Generator invokes the generation backend exactly once per request with a
// constructed instruction block and returns the raw candidate text.
type Generator struct {
	client  llm.Client
	system  string
	timeout time.Duration
}

// NewGenerator builds a Generator. The system instruction is rendered once
// here; the schema and rule table are static for the process lifetime.
func NewGenerator(client llm.Client, sd schema.Descriptor, timeout time.Duration) *Generator {
	return &Generator{
		client:  client,
		system:  systemInstruction(sd),
		timeout: timeout,
	}
}

// Generate produces the raw candidate text for a question. Any backend
// failure, timeout, or empty result is reported as ErrGenerationFailed.
func (g *Generator) Generate(ctx context.Context, question string, history []model.ChatMessage, contextSummaries []string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	raw, err := g.client.Complete(ctx, g.system, userInstruction(question, history, contextSummaries))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	raw = stripCodeFences(raw)
	if strings.TrimSpace(raw) == "" {
		return "", fmt.Errorf("%w: empty output", ErrGenerationFailed)
	}
	return raw, nil
}

// stripCodeFences removes markdown code-fence markup that generation
// backends habitually wrap structured output in.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// Drop an optional language tag on the opening fence line.
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		firstLine := strings.TrimSpace(s[:idx])
		if firstLine == "json" || firstLine == "sql" || firstLine == "" {
			s = s[idx+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
