package floatchat

import (
	"io/fs"
	"log/slog"

	"github.com/floatchat-ai/floatchat/internal/llm"
	"github.com/floatchat-ai/floatchat/internal/search"
	"github.com/floatchat-ai/floatchat/internal/service/embedding"
)

// Option configures an App.
type Option func(*resolvedOptions)

// resolvedOptions holds all extension points after applying defaults.
// Unexported; callers use the With* functions.
type resolvedOptions struct {
	port            int
	databaseURL     string
	logger          *slog.Logger
	version         string
	llmClient       llm.Client
	embedder        embedding.Provider
	index           search.Index
	extraMigrations []fs.FS
}

// WithPort overrides the TCP port from config (FLOATCHAT_PORT env var).
func WithPort(port int) Option {
	return func(o *resolvedOptions) { o.port = port }
}

// WithDatabaseURL overrides the database connection string from config
// (DATABASE_URL env var).
func WithDatabaseURL(url string) Option {
	return func(o *resolvedOptions) { o.databaseURL = url }
}

// WithLogger sets the structured logger for the App.
// If not set, the default slog logger is used.
func WithLogger(logger *slog.Logger) Option {
	return func(o *resolvedOptions) { o.logger = logger }
}

// WithVersion sets the version string reported in logs.
func WithVersion(version string) Option {
	return func(o *resolvedOptions) { o.version = version }
}

// WithLLMClient replaces the config-selected generation backend. Useful
// for embedding the server with a custom provider, or a deterministic
// double in tests.
func WithLLMClient(c llm.Client) Option {
	return func(o *resolvedOptions) { o.llmClient = c }
}

// WithEmbeddingProvider replaces the config-selected embedding provider.
func WithEmbeddingProvider(p embedding.Provider) Option {
	return func(o *resolvedOptions) { o.embedder = p }
}

// WithIndex replaces the config-selected semantic-summary index.
func WithIndex(idx search.Index) Option {
	return func(o *resolvedOptions) { o.index = idx }
}

// WithExtraMigrations adds an additional SQL migration filesystem to run
// after the embedded migrations. Multiple filesystems may be registered;
// they are applied in registration order.
func WithExtraMigrations(dir fs.FS) Option {
	return func(o *resolvedOptions) { o.extraMigrations = append(o.extraMigrations, dir) }
}
