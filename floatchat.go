// Package floatchat is the public API for embedding the FloatChat server:
// a natural-language question answering service over ARGO float
// oceanographic data, backed by constrained SQL generation.
//
// Consumers import this package to construct and run the server without
// forking it:
//
//	app, err := floatchat.New(
//	    floatchat.WithVersion(version),
//	    floatchat.WithLogger(logger),
//	)
//	if err != nil { ... }
//	if err := app.Run(ctx); err != nil { ... }
//
// The import graph enforces a strict no-cycle rule: floatchat (root)
// imports internal/*, but internal/* never imports the root.
package floatchat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/joho/godotenv"

	"github.com/floatchat-ai/floatchat/internal/chat"
	"github.com/floatchat-ai/floatchat/internal/config"
	"github.com/floatchat-ai/floatchat/internal/llm"
	"github.com/floatchat-ai/floatchat/internal/ratelimit"
	"github.com/floatchat-ai/floatchat/internal/search"
	"github.com/floatchat-ai/floatchat/internal/server"
	"github.com/floatchat-ai/floatchat/internal/service/embedding"
	"github.com/floatchat-ai/floatchat/internal/storage"
	"github.com/floatchat-ai/floatchat/internal/telemetry"
	"github.com/floatchat-ai/floatchat/migrations"
)

// App is the FloatChat server lifecycle. Construct with New(), run with
// Run(). App has no public fields; use New() options to configure it.
type App struct {
	cfg          config.Config
	db           *storage.DB
	srv          *server.Server
	qdrantIndex  *search.QdrantIndex // nil when Qdrant is not configured
	limiter      ratelimit.Limiter
	otelShutdown telemetry.Shutdown
	logger       *slog.Logger
	version      string
}

// New initialises the FloatChat server. It connects to the database, runs
// migrations, wires all subsystems, and returns a ready-to-run App. It
// does NOT start any goroutines or accept HTTP connections; call Run().
func New(opts ...Option) (*App, error) {
	o := resolvedOptions{}
	for _, fn := range opts {
		fn(&o)
	}

	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}

	// Load .env file if present (non-fatal; production won't have one).
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if o.port != 0 {
		cfg.Port = o.port
	}
	if o.databaseURL != "" {
		cfg.DatabaseURL = o.databaseURL
	}
	version := o.version
	if version == "" {
		version = "dev"
	}

	logger.Info("floatchat starting", "version", version, "port", cfg.Port)

	ctx := context.Background()

	otelShutdown, err := telemetry.Init(ctx, cfg.OTELEndpoint, cfg.ServiceName, version, cfg.OTELInsecure)
	if err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}

	db, err := storage.New(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		_ = otelShutdown(ctx)
		return nil, fmt.Errorf("storage: %w", err)
	}

	fail := func(err error) (*App, error) {
		db.Close()
		_ = otelShutdown(ctx)
		return nil, err
	}

	if err := db.RunMigrations(ctx, migrations.FS); err != nil {
		return fail(fmt.Errorf("migrations: %w", err))
	}
	for i, extraFS := range o.extraMigrations {
		if err := db.RunMigrations(ctx, extraFS); err != nil {
			return fail(fmt.Errorf("extra migrations[%d]: %w", i, err))
		}
	}

	embedder := o.embedder
	if embedder == nil {
		embedder = NewEmbeddingProvider(cfg, logger)
	}

	index := o.index
	var qdrantIndex *search.QdrantIndex
	if index == nil {
		index, qdrantIndex, err = NewSummaryIndex(ctx, cfg, db, logger)
		if err != nil {
			return fail(err)
		}
	}

	client := o.llmClient
	if client == nil {
		client = NewLLMClient(cfg, logger)
	}

	chatSvc := chat.NewService(chat.ServiceConfig{
		LLM:              client,
		Executor:         db,
		Index:            index,
		Embedder:         embedder,
		ContextSummaries: cfg.ContextSummaries,
		GenerateTimeout:  cfg.GenerateTimeout,
		QueryTimeout:     cfg.QueryTimeout,
		Logger:           logger,
	})

	var limiter ratelimit.Limiter
	if cfg.ChatRatePerSecond > 0 {
		limiter = ratelimit.NewMemoryLimiter(cfg.ChatRatePerSecond, cfg.ChatRateBurst)
		logger.Info("rate limiting: memory (in-process token bucket)",
			"rps", cfg.ChatRatePerSecond, "burst", cfg.ChatRateBurst)
	} else {
		limiter = ratelimit.NoopLimiter{}
		logger.Info("rate limiting: disabled")
	}

	srv := server.New(server.ServerConfig{
		ChatSvc:             chatSvc,
		DB:                  db,
		Index:               index,
		Limiter:             limiter,
		Logger:              logger,
		Port:                cfg.Port,
		ReadTimeout:         cfg.ReadTimeout,
		WriteTimeout:        cfg.WriteTimeout,
		MaxRequestBodyBytes: cfg.MaxRequestBodyBytes,
	})

	return &App{
		cfg:          cfg,
		db:           db,
		srv:          srv,
		qdrantIndex:  qdrantIndex,
		limiter:      limiter,
		otelShutdown: otelShutdown,
		logger:       logger,
		version:      version,
	}, nil
}

// Handler returns the root HTTP handler, for mounting in a larger mux or
// driving with httptest.
func (a *App) Handler() http.Handler {
	return a.srv.Handler()
}

// Run starts the HTTP server and blocks until ctx is cancelled or the
// server fails, then shuts everything down gracefully.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := a.srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		a.close()
		return err
	}

	a.logger.Info("floatchat shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http shutdown error", "error", err)
	}

	a.close()
	a.logger.Info("floatchat stopped")
	return nil
}

func (a *App) close() {
	_ = a.limiter.Close()
	if a.qdrantIndex != nil {
		_ = a.qdrantIndex.Close()
	}
	a.db.Close()
	_ = a.otelShutdown(context.Background())
}

// NewLLMClient selects the generation backend from configuration.
func NewLLMClient(cfg config.Config, logger *slog.Logger) llm.Client {
	switch cfg.LLMProvider {
	case "anthropic":
		logger.Info("llm provider: anthropic", "model", cfg.AnthropicModel)
		return llm.NewAnthropicClient(cfg.AnthropicModel, cfg.AnthropicMaxTokens, logger)
	case "ollama":
		logger.Info("llm provider: ollama", "url", cfg.OllamaURL, "model", cfg.OllamaLLMModel)
		return llm.NewOllamaClient(cfg.OllamaURL, cfg.OllamaLLMModel)
	default:
		logger.Warn("llm provider: noop (every question gets a canned answer)")
		return llm.NoopClient{}
	}
}

// NewEmbeddingProvider selects the embedding backend from configuration.
// Ollama keeps embeddings on-premises with no external API costs.
func NewEmbeddingProvider(cfg config.Config, logger *slog.Logger) embedding.Provider {
	switch cfg.EmbeddingProvider {
	case "ollama":
		logger.Info("embedding provider: ollama",
			"url", cfg.OllamaURL, "model", cfg.EmbeddingModel, "dimensions", cfg.EmbeddingDimensions)
		return embedding.NewOllamaProvider(cfg.OllamaURL, cfg.EmbeddingModel, cfg.EmbeddingDimensions)
	default:
		logger.Info("embedding provider: noop (retrieval context disabled)")
		return embedding.NewNoopProvider(cfg.EmbeddingDimensions)
	}
}

// pgvectorDims is the width of the summary_embedding column created by
// the migrations. The pgvector fallback index can only store vectors of
// exactly this size.
const pgvectorDims = 768

// NewSummaryIndex selects the semantic-summary index: Qdrant when
// configured, otherwise the pgvector columns in Postgres. The second
// return value is non-nil only for Qdrant, so callers can Close it.
func NewSummaryIndex(ctx context.Context, cfg config.Config, db *storage.DB, logger *slog.Logger) (search.Index, *search.QdrantIndex, error) {
	if cfg.QdrantURL == "" {
		if cfg.EmbeddingDimensions != pgvectorDims {
			return nil, nil, fmt.Errorf(
				"pgvector index stores %d-dimension embeddings but FLOATCHAT_EMBEDDING_DIMENSIONS is %d; set QDRANT_URL to use a different embedding size",
				pgvectorDims, cfg.EmbeddingDimensions)
		}
		logger.Info("summary index: pgvector (no QDRANT_URL)")
		return search.NewPgvectorIndex(db.Pool(), logger), nil, nil
	}

	idx, err := search.NewQdrantIndex(search.QdrantConfig{
		URL:        cfg.QdrantURL,
		APIKey:     cfg.QdrantAPIKey,
		Collection: cfg.QdrantCollection,
		Dims:       uint64(cfg.EmbeddingDimensions), //nolint:gosec // validated positive in config.Validate
	}, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("qdrant: %w", err)
	}
	if err := idx.EnsureCollection(ctx); err != nil {
		_ = idx.Close()
		return nil, nil, fmt.Errorf("qdrant ensure collection: %w", err)
	}
	logger.Info("summary index: qdrant", "collection", cfg.QdrantCollection)
	return idx, idx, nil
}
