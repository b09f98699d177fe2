package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
)

// AnthropicClient implements Client using the Anthropic Messages API.
// The API key is read from the environment by the SDK (ANTHROPIC_API_KEY).
type AnthropicClient struct {
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int64
	logger    *slog.Logger
}

// NewAnthropicClient creates an Anthropic-backed generation client.
func NewAnthropicClient(model string, maxTokens int64, logger *slog.Logger) *AnthropicClient {
	return &AnthropicClient{
		client:    anthropic.NewClient(),
		model:     anthropic.Model(model),
		maxTokens: maxTokens,
		logger:    logger,
	}
}

// Complete sends one message exchange and returns the first text block.
func (c *AnthropicClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	start := time.Now()

	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System: []anthropic.TextBlockParam{
			{Type: "text", Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("llm: anthropic call: %w", err)
	}

	c.logger.Debug("anthropic call completed",
		"model", c.model,
		"duration_ms", time.Since(start).Milliseconds(),
		"stop_reason", msg.StopReason,
	)

	for _, block := range msg.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("llm: anthropic response has no text content")
}
