// Command floatchat runs the FloatChat API server: natural-language
// questions over ARGO float data, answered via constrained SQL generation.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	floatchat "github.com/floatchat-ai/floatchat"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
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

	app, err := floatchat.New(
		floatchat.WithVersion(version),
		floatchat.WithLogger(logger),
	)
	if err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}
