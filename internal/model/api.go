// Package model defines the domain types shared across FloatChat packages.
package model

// ChatMessage is one turn of conversation history, oldest first.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the request body for POST /api/chat.
type ChatRequest struct {
	Question    string        `json:"question"`
	ChatHistory []ChatMessage `json:"chat_history,omitempty"`
}

// ChatResponse is the success response body for POST /api/chat.
//
// For textual answers Data is a string and Visualization is "text".
// For database answers Data is the row set, SQLQuery carries the executed
// query, and Visualization names one of the chart kinds.
type ChatResponse struct {
	Data          any    `json:"data"`
	SQLQuery      string `json:"sql_query,omitempty"`
	Visualization string `json:"visualization"`
}

// ChatErrorResponse is the error body returned when a validated query fails
// at the database. The failing query is included because it is actionable
// by an operator and is not secret.
type ChatErrorResponse struct {
	Error    string `json:"error"`
	SQLQuery string `json:"sql_query,omitempty"`
	Details  string `json:"details,omitempty"`
}

// MaxQuestionLen bounds the question field. Longer input is rejected before
// it reaches the generation backend.
const MaxQuestionLen = 4096

// MaxHistoryTurns bounds how many history turns are serialized into the
// generation instruction. Older turns beyond the cap are dropped.
const MaxHistoryTurns = 20
