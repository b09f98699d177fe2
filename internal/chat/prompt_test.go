package chat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floatchat-ai/floatchat/internal/model"
	"github.com/floatchat-ai/floatchat/internal/schema"
)

func TestSystemInstructionContent(t *testing.T) {
	sys := systemInstruction(schema.Default())

	// The three response categories and their JSON shapes.
	assert.Contains(t, sys, `"type": "text"`)
	assert.Contains(t, sys, `"type": "database"`)
	assert.Contains(t, sys, `"sql_query"`)

	// The rule table and the schema are rendered in.
	assert.Contains(t, sys, "map:")
	assert.Contains(t, sys, "LIMIT 1500")
	assert.Contains(t, sys, "argo_floats")
	assert.Contains(t, sys, "argo_measurements")
	assert.Contains(t, sys, "salinity")
}

func TestUserInstructionHistoryOrder(t *testing.T) {
	history := []model.ChatMessage{
		{Role: "user", Content: "first question"},
		{Role: "assistant", Content: "first reply"},
		{Role: "user", Content: "second question"},
	}

	out := userInstruction("latest question", history, nil)

	i1 := strings.Index(out, "first question")
	i2 := strings.Index(out, "first reply")
	i3 := strings.Index(out, "second question")
	i4 := strings.Index(out, "latest question")
	require.True(t, i1 >= 0 && i2 >= 0 && i3 >= 0 && i4 >= 0)
	assert.True(t, i1 < i2 && i2 < i3 && i3 < i4, "history must serialize oldest first, question last")

	assert.Contains(t, out, "User: first question")
	assert.Contains(t, out, "Assistant: first reply")
}

func TestUserInstructionCapsHistory(t *testing.T) {
	history := make([]model.ChatMessage, 0, model.MaxHistoryTurns+5)
	for i := 0; i < model.MaxHistoryTurns+5; i++ {
		history = append(history, model.ChatMessage{Role: "user", Content: "turn"})
	}

	out := userInstruction("q", history, nil)
	assert.Equal(t, model.MaxHistoryTurns, strings.Count(out, "User: turn"))
}

func TestUserInstructionContextSummaries(t *testing.T) {
	out := userInstruction("where is float 123?", nil,
		[]string{"ARGO float with ID 123 from the Argo INDIA project."})

	assert.Contains(t, out, "Relevant floats for context:")
	assert.Contains(t, out, "ARGO float with ID 123")
	assert.True(t, strings.HasSuffix(out, "Question: where is float 123?"))
}

func TestStripCodeFences(t *testing.T) {
	assert.Equal(t, `{"type": "text"}`, stripCodeFences("```json\n{\"type\": \"text\"}\n```"))
	assert.Equal(t, `{"type": "text"}`, stripCodeFences("```\n{\"type\": \"text\"}\n```"))
	assert.Equal(t, `{"type": "text"}`, stripCodeFences(`{"type": "text"}`))
}
