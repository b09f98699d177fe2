package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/floatchat-ai/floatchat/internal/chat"
	"github.com/floatchat-ai/floatchat/internal/model"
	"github.com/floatchat-ai/floatchat/internal/search"
)

// Asker handles one chat question end to end. Implemented by chat.Service.
type Asker interface {
	Ask(ctx context.Context, question string, history []model.ChatMessage) (chat.Result, error)
}

// Pinger reports database connectivity for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handlers holds the HTTP handler dependencies.
type Handlers struct {
	chatSvc             Asker
	db                  Pinger
	index               search.Index
	logger              *slog.Logger
	maxRequestBodyBytes int64
}

// HandlersDeps carries the dependencies for NewHandlers.
type HandlersDeps struct {
	ChatSvc             Asker
	DB                  Pinger
	Index               search.Index
	Logger              *slog.Logger
	MaxRequestBodyBytes int64
}

// NewHandlers creates the handler set.
func NewHandlers(deps HandlersDeps) *Handlers {
	index := deps.Index
	if index == nil {
		index = search.NoopIndex{}
	}
	return &Handlers{
		chatSvc:             deps.ChatSvc,
		db:                  deps.DB,
		index:               index,
		logger:              deps.Logger,
		maxRequestBodyBytes: deps.MaxRequestBodyBytes,
	}
}

// HandleChat is POST /api/chat: decode the question, run the chat pipeline,
// and shape the outcome for the caller.
//
// Generation and validation failures inside the pipeline still return HTTP
// 200 with the fallback text; only execution failures and bad requests get
// error statuses.
func (h *Handlers) HandleChat(w http.ResponseWriter, r *http.Request) {
	if h.maxRequestBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxRequestBodyBytes)
	}

	var req model.ChatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, model.ChatErrorResponse{
			Error:   "invalid request body",
			Details: err.Error(),
		})
		return
	}

	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		writeJSON(w, http.StatusBadRequest, model.ChatErrorResponse{
			Error: "question must not be empty",
		})
		return
	}
	if len(req.Question) > model.MaxQuestionLen {
		writeJSON(w, http.StatusBadRequest, model.ChatErrorResponse{
			Error: "question too long",
		})
		return
	}

	result, err := h.chatSvc.Ask(r.Context(), req.Question, req.ChatHistory)
	if err != nil {
		var execErr *chat.ExecutionError
		if errors.As(err, &execErr) {
			writeJSON(w, http.StatusInternalServerError, model.ChatErrorResponse{
				Error:    "failed to execute database query",
				SQLQuery: execErr.SQL,
				Details:  execErr.Err.Error(),
			})
			return
		}
		h.logger.Error("chat pipeline error", "error", err, "request_id", RequestIDFromContext(r.Context()))
		writeJSON(w, http.StatusInternalServerError, model.ChatErrorResponse{
			Error: "internal server error",
		})
		return
	}

	if result.Text != "" {
		writeJSON(w, http.StatusOK, model.ChatResponse{
			Data:          result.Text,
			Visualization: result.Visualization,
		})
		return
	}

	rows := result.Rows
	if rows == nil {
		rows = []map[string]any{}
	}
	writeJSON(w, http.StatusOK, model.ChatResponse{
		Data:          rows,
		SQLQuery:      result.SQL,
		Visualization: result.Visualization,
	})
}

// HandleHealth is GET /health: reports connectivity of the database and
// the semantic index. The index is optional enrichment, so its failure
// degrades the status without failing the check.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	status := http.StatusOK
	payload := map[string]string{
		"status":   "ok",
		"database": "ok",
		"index":    "ok",
	}

	if h.db != nil {
		if err := h.db.Ping(ctx); err != nil {
			payload["status"] = "unavailable"
			payload["database"] = "unreachable"
			status = http.StatusServiceUnavailable
		}
	}
	if err := h.index.Healthy(ctx); err != nil {
		payload["index"] = "unreachable"
		if payload["status"] == "ok" {
			payload["status"] = "degraded"
		}
	}

	writeJSON(w, status, payload)
}
