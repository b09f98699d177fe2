package chat

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/floatchat-ai/floatchat/internal/llm"
	"github.com/floatchat-ai/floatchat/internal/model"
	"github.com/floatchat-ai/floatchat/internal/schema"
	"github.com/floatchat-ai/floatchat/internal/search"
	"github.com/floatchat-ai/floatchat/internal/service/embedding"
	"github.com/floatchat-ai/floatchat/internal/viz"
)

// FallbackAnswer is the uniform textual reply for generation and
// validation failures. The caller never learns which stage failed.
const FallbackAnswer = "I'm sorry, I encountered an issue processing your request. Please try rephrasing."

// QueryExecutor runs a validated SELECT and returns its rows. Implemented
// by the storage layer.
type QueryExecutor interface {
	ExecuteQuery(ctx context.Context, sql string) ([]map[string]any, error)
}

// ExecutionError reports a query the store rejected. Unlike generation and
// validation failures it is surfaced to the caller with the offending SQL,
// since it is actionable by an operator and the query is not secret.
type ExecutionError struct {
	SQL string
	Err error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("chat: query execution failed: %v", e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// Result is the outcome of one question, shaped for the API contract.
// Text answers carry Text; data answers carry Rows, SQL, Visualization.
type Result struct {
	Text          string
	Rows          []map[string]any
	SQL           string
	Visualization string
}

// Service is the per-request orchestrator: retrieve context, generate,
// validate, then answer or execute. Stateless across requests; the only
// shared state is the read-only schema and rule table.
type Service struct {
	generator    *Generator
	executor     QueryExecutor
	index        search.Index
	embedder     embedding.Provider
	numSummaries int
	queryTimeout time.Duration
	logger       *slog.Logger
}

// ServiceConfig carries the dependencies and tuning for a Service.
type ServiceConfig struct {
	LLM              llm.Client
	Executor         QueryExecutor
	Index            search.Index
	Embedder         embedding.Provider
	ContextSummaries int
	GenerateTimeout  time.Duration
	QueryTimeout     time.Duration
	Logger           *slog.Logger
}

// NewService builds a Service around the given collaborators.
func NewService(cfg ServiceConfig) *Service {
	index := cfg.Index
	if index == nil {
		index = search.NoopIndex{}
	}
	embedder := cfg.Embedder
	if embedder == nil {
		embedder = embedding.NewNoopProvider(0)
	}
	return &Service{
		generator:    NewGenerator(cfg.LLM, schema.Default(), cfg.GenerateTimeout),
		executor:     cfg.Executor,
		index:        index,
		embedder:     embedder,
		numSummaries: cfg.ContextSummaries,
		queryTimeout: cfg.QueryTimeout,
		logger:       cfg.Logger,
	}
}

// Ask handles one question end to end. Generation and validation failures
// degrade to the fallback answer and a nil error; only execution failures
// return an error, always an *ExecutionError.
func (s *Service) Ask(ctx context.Context, question string, history []model.ChatMessage) (Result, error) {
	summaries := s.retrieveContext(ctx, question)

	raw, err := s.generator.Generate(ctx, question, history, summaries)
	if err != nil {
		s.logger.Warn("generation failed, returning fallback", "error", err)
		return fallbackResult(), nil
	}

	validated, err := Validate(raw)
	if err != nil {
		s.logger.Warn("validation failed, returning fallback", "error", err)
		return fallbackResult(), nil
	}

	if validated.IsText {
		return Result{Text: validated.Answer, Visualization: viz.KindText}, nil
	}

	execCtx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	rows, err := s.executor.ExecuteQuery(execCtx, validated.SQL)
	if err != nil {
		return Result{}, &ExecutionError{SQL: validated.SQL, Err: err}
	}

	return Result{
		Rows:          rows,
		SQL:           validated.SQL,
		Visualization: string(validated.Visualization),
	}, nil
}

// retrieveContext embeds the question and fetches the nearest float
// summaries. Best-effort: the semantic index is optional context
// enrichment and must never fail a request.
func (s *Service) retrieveContext(ctx context.Context, question string) []string {
	if s.numSummaries <= 0 {
		return nil
	}

	vec, err := s.embedder.Embed(ctx, question)
	if err != nil {
		s.logger.Debug("context embedding failed, proceeding without retrieval", "error", err)
		return nil
	}
	if len(vec) == 0 {
		return nil
	}

	summaries, err := s.index.Summaries(ctx, vec, s.numSummaries)
	if err != nil {
		s.logger.Debug("summary retrieval failed, proceeding without context", "error", err)
		return nil
	}
	return summaries
}

func fallbackResult() Result {
	return Result{Text: FallbackAnswer, Visualization: viz.KindText}
}
