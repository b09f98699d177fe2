package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floatchat-ai/floatchat/internal/model"
	"github.com/floatchat-ai/floatchat/internal/testutil"
)

// fakeLLM returns a fixed response, or blocks until the context is done
// when delay exceeds the generation timeout. It records the last user
// instruction it was handed.
type fakeLLM struct {
	response string
	err      error
	delay    time.Duration
	lastUser string
}

func (f *fakeLLM) Complete(ctx context.Context, _, user string) (string, error) {
	f.lastUser = user
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.response, f.err
}

// fakeExecutor returns fixed rows or a fixed error and records the SQL it
// was asked to run.
type fakeExecutor struct {
	rows    []map[string]any
	err     error
	lastSQL string
}

func (f *fakeExecutor) ExecuteQuery(_ context.Context, sql string) ([]map[string]any, error) {
	f.lastSQL = sql
	return f.rows, f.err
}

func newTestService(client *fakeLLM, exec *fakeExecutor) *Service {
	return NewService(ServiceConfig{
		LLM:             client,
		Executor:        exec,
		GenerateTimeout: 100 * time.Millisecond,
		QueryTimeout:    100 * time.Millisecond,
		Logger:          testutil.TestLogger(),
	})
}

func TestAskTextRoundTrip(t *testing.T) {
	svc := newTestService(&fakeLLM{response: `{"type": "text", "answer": "Hello!"}`}, &fakeExecutor{})

	res, err := svc.Ask(context.Background(), "hi there", nil)
	require.NoError(t, err)
	assert.Equal(t, "Hello!", res.Text)
	assert.Equal(t, "text", res.Visualization)
	assert.Empty(t, res.SQL)
}

func TestAskMapScenario(t *testing.T) {
	exec := &fakeExecutor{
		rows: []map[string]any{
			{"float_id": "F1", "latitude": 10.0, "longitude": 20.0},
		},
	}
	svc := newTestService(&fakeLLM{
		response: `{"type": "database", "sql_query": "SELECT float_id, latitude, longitude FROM argo_floats", "visualization": "map"}`,
	}, exec)

	res, err := svc.Ask(context.Background(), "show me float locations", nil)
	require.NoError(t, err)

	assert.Equal(t, "map", res.Visualization)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "F1", res.Rows[0]["float_id"])
	assert.Equal(t, 10.0, res.Rows[0]["latitude"])
	assert.Equal(t, 20.0, res.Rows[0]["longitude"])

	// The repaired query, with the appended ceiling, is what executes.
	assert.Equal(t, "SELECT float_id, latitude, longitude FROM argo_floats LIMIT 1500", exec.lastSQL)
	assert.Equal(t, exec.lastSQL, res.SQL)
}

func TestAskSerializesHistory(t *testing.T) {
	client := &fakeLLM{response: `{"type": "text", "answer": "Still here."}`}
	svc := newTestService(client, &fakeExecutor{})

	history := []model.ChatMessage{
		{Role: "user", Content: "show floats near India"},
		{Role: "assistant", Content: "Here are 4 floats."},
	}
	_, err := svc.Ask(context.Background(), "and their temperatures?", history)
	require.NoError(t, err)

	assert.Contains(t, client.lastUser, "User: show floats near India")
	assert.Contains(t, client.lastUser, "Assistant: Here are 4 floats.")
	assert.Contains(t, client.lastUser, "Question: and their temperatures?")
}

func TestAskGenerationTimeoutFallsBack(t *testing.T) {
	svc := newTestService(&fakeLLM{delay: time.Second, response: "never delivered"}, &fakeExecutor{})

	res, err := svc.Ask(context.Background(), "slow question", nil)
	require.NoError(t, err, "generation failure must not surface as an error")
	assert.Equal(t, FallbackAnswer, res.Text)
	assert.Equal(t, "text", res.Visualization)
}

func TestAskGenerationErrorFallsBack(t *testing.T) {
	svc := newTestService(&fakeLLM{err: errors.New("backend unreachable")}, &fakeExecutor{})

	res, err := svc.Ask(context.Background(), "any question", nil)
	require.NoError(t, err)
	assert.Equal(t, FallbackAnswer, res.Text)
}

func TestAskValidationFailureFallsBack(t *testing.T) {
	exec := &fakeExecutor{}
	svc := newTestService(&fakeLLM{
		response: `{"type": "database", "sql_query": "SELECT 1", "visualization": "pie_chart"}`,
	}, exec)

	res, err := svc.Ask(context.Background(), "question", nil)
	require.NoError(t, err)
	assert.Equal(t, FallbackAnswer, res.Text)
	assert.Empty(t, exec.lastSQL, "rejected candidates must never execute")
}

func TestAskExecutionErrorSurfaces(t *testing.T) {
	storeErr := errors.New(`relation "argo_measurments" does not exist`)
	svc := newTestService(&fakeLLM{
		response: `{"type": "database", "sql_query": "SELECT temperature FROM argo_measurments", "visualization": "table"}`,
	}, &fakeExecutor{err: storeErr})

	_, err := svc.Ask(context.Background(), "avg temperature", nil)
	require.Error(t, err)

	var execErr *ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, "SELECT temperature FROM argo_measurments", execErr.SQL)
	assert.ErrorIs(t, err, storeErr)
}

func TestAskCodeFencedResponse(t *testing.T) {
	svc := newTestService(&fakeLLM{
		response: "```json\n{\"type\": \"text\", \"answer\": \"Fenced.\"}\n```",
	}, &fakeExecutor{})

	res, err := svc.Ask(context.Background(), "q", nil)
	require.NoError(t, err)
	assert.Equal(t, "Fenced.", res.Text)
}
