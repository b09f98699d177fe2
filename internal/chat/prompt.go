// Package chat implements the question-handling core: it turns a free-text
// question plus conversation history into either a direct textual answer or
// a validated SQL query with a visualization directive, then executes the
// query and shapes the result for the API contract.
package chat

import (
	"fmt"
	"strings"

	"github.com/floatchat-ai/floatchat/internal/model"
	"github.com/floatchat-ai/floatchat/internal/schema"
	"github.com/floatchat-ai/floatchat/internal/viz"
)

// systemInstruction builds the fixed part of the generation instruction:
// persona, the three permitted response categories with their output
// shapes, the visualization rule table, and the queryable schema.
func systemInstruction(sd schema.Descriptor) string {
	var b strings.Builder

	b.WriteString(`You are FloatChat, an expert oceanographic data assistant for ARGO float measurements.

Classify every user question into exactly one of three categories and respond with a single JSON object, nothing else:

1. Conversational (greetings, thanks, questions about you):
   {"type": "text", "answer": "<your reply>"}
2. General oceanography knowledge (no stored data needed):
   {"type": "text", "answer": "<your explanation>"}
3. Data retrieval (requires querying the measurement database):
   {"type": "database", "sql_query": "<a single PostgreSQL SELECT statement>", "visualization": "<kind>"}

Rules for data retrieval responses:
- Generate exactly one SELECT statement. Never generate INSERT, UPDATE, DELETE, DROP, or DDL.
- Choose the visualization kind from this closed list and obey its constraints:
`)
	b.WriteString(viz.RenderConstraints())
	b.WriteString("\nDatabase schema:\n")
	b.WriteString(sd.Render())
	b.WriteString("\nRespond with the JSON object only. No markdown, no commentary.")

	return b.String()
}

// userInstruction serializes retrieval context, conversation history
// (oldest first, as received), and the latest question into the user part
// of the generation instruction. History order matters: generation
// backends are context-order-sensitive.
func userInstruction(question string, history []model.ChatMessage, contextSummaries []string) string {
	var b strings.Builder

	if len(contextSummaries) > 0 {
		b.WriteString("Relevant floats for context:\n")
		for _, s := range contextSummaries {
			fmt.Fprintf(&b, "- %s\n", s)
		}
		b.WriteString("\n")
	}

	if len(history) > 0 {
		if len(history) > model.MaxHistoryTurns {
			history = history[len(history)-model.MaxHistoryTurns:]
		}
		b.WriteString("Conversation so far:\n")
		for _, m := range history {
			role := "User"
			if strings.EqualFold(m.Role, "assistant") {
				role = "Assistant"
			}
			fmt.Fprintf(&b, "%s: %s\n", role, m.Content)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Question: %s", question)
	return b.String()
}
