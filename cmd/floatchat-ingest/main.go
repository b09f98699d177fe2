// Command floatchat-ingest loads ARGO NetCDF profile files into Postgres
// and refreshes the semantic summary index.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	floatchat "github.com/floatchat-ai/floatchat"
	"github.com/floatchat-ai/floatchat/internal/config"
	"github.com/floatchat-ai/floatchat/internal/ingest"
	"github.com/floatchat-ai/floatchat/internal/storage"
	"github.com/floatchat-ai/floatchat/migrations"
)

func main() {
	os.Exit(run0())
}

func run0() int {
	dataDir := flag.String("data", "./data", "directory of .nc profile files to ingest")
	checkpointPath := flag.String("checkpoint", "./floatchat-ingest.db", "SQLite checkpoint file; empty disables skip tracking")
	reindex := flag.Bool("reindex", false, "rebuild the summary index from floats already in Postgres, then exit")
	flag.Parse()

	level := slog.LevelInfo
	if os.Getenv("FLOATCHAT_LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, logger, *dataDir, *checkpointPath, *reindex); err != nil {
		slog.Error("fatal error", "error", err)
		return 1
	}
	return 0
}

func run(ctx context.Context, logger *slog.Logger, dataDir, checkpointPath string, reindex bool) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := storage.New(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	defer db.Close()

	if err := db.RunMigrations(ctx, migrations.FS); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	embedder := floatchat.NewEmbeddingProvider(cfg, logger)
	index, qdrantIndex, err := floatchat.NewSummaryIndex(ctx, cfg, db, logger)
	if err != nil {
		return err
	}
	if qdrantIndex != nil {
		defer func() { _ = qdrantIndex.Close() }()
	}

	var cp *ingest.Checkpoint
	if checkpointPath != "" {
		cp, err = ingest.OpenCheckpoint(checkpointPath)
		if err != nil {
			return err
		}
		defer func() { _ = cp.Close() }()
	}

	pipeline := ingest.NewPipeline(db, cp, embedder, index, logger)

	if reindex {
		n, err := pipeline.Reindex(ctx)
		if err != nil {
			return fmt.Errorf("reindex: %w", err)
		}
		logger.Info("reindex complete", "floats", n)
		return nil
	}

	stats, err := pipeline.Run(ctx, dataDir)
	if err != nil {
		return err
	}
	if stats.Failed > 0 {
		return fmt.Errorf("ingest: %d of %d files failed", stats.Failed, stats.Files)
	}
	return nil
}
