// Package ingest parses ARGO NetCDF profile files, loads float metadata
// and measurements into Postgres, and maintains the semantic summary
// index used as retrieval context by the chat pipeline.
package ingest

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/floatchat-ai/floatchat/internal/model"
	"github.com/floatchat-ai/floatchat/internal/search"
	"github.com/floatchat-ai/floatchat/internal/service/embedding"
	"github.com/floatchat-ai/floatchat/internal/storage"
)

// Pipeline walks a directory of .nc files and ingests each one.
type Pipeline struct {
	db         *storage.DB
	checkpoint *Checkpoint
	embedder   embedding.Provider
	index      search.Index
	logger     *slog.Logger
}

// NewPipeline assembles an ingestion pipeline. Checkpoint may be nil to
// disable skip tracking; index and embedder may be no-ops when the
// semantic index is disabled.
func NewPipeline(db *storage.DB, cp *Checkpoint, embedder embedding.Provider, index search.Index, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		db:         db,
		checkpoint: cp,
		embedder:   embedder,
		index:      index,
		logger:     logger,
	}
}

// Stats summarizes one ingestion run.
type Stats struct {
	Files        int
	Skipped      int
	Failed       int
	Floats       int
	Measurements int64
}

// Run ingests every .nc file under dataDir. A failing file is logged and
// skipped; it does not abort the run.
func (p *Pipeline) Run(ctx context.Context, dataDir string) (Stats, error) {
	var stats Stats

	err := filepath.WalkDir(dataDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".nc") {
			return nil
		}
		stats.Files++

		if p.checkpoint != nil {
			done, err := p.checkpoint.Done(ctx, path)
			if err != nil {
				return err
			}
			if done {
				stats.Skipped++
				p.logger.Debug("already ingested, skipping", "file", path)
				return nil
			}
		}

		n, floatID, err := p.ingestFile(ctx, path)
		if err != nil {
			stats.Failed++
			p.logger.Error("ingestion failed for file", "file", path, "error", err)
			return nil
		}

		stats.Floats++
		stats.Measurements += n
		if p.checkpoint != nil {
			if err := p.checkpoint.Mark(ctx, path, floatID, int(n)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return stats, fmt.Errorf("ingest: walk %s: %w", dataDir, err)
	}

	p.logger.Info("ingestion run complete",
		"files", stats.Files,
		"skipped", stats.Skipped,
		"failed", stats.Failed,
		"floats", stats.Floats,
		"measurements", stats.Measurements,
	)
	return stats, nil
}

// ingestFile parses one profile file and loads it: upsert the float,
// replace its measurements, and refresh its summary in the index.
func (p *Pipeline) ingestFile(ctx context.Context, path string) (int64, string, error) {
	f, err := OpenFile(path)
	if err != nil {
		return 0, "", err
	}

	profile, err := ExtractProfile(f)
	if err != nil {
		return 0, "", err
	}

	if err := p.db.UpsertFloat(ctx, profile.Float); err != nil {
		return 0, "", err
	}

	// Replace rather than append, so re-ingesting a file is idempotent.
	if _, err := p.db.DeleteMeasurements(ctx, profile.Float.FloatID); err != nil {
		return 0, "", err
	}
	n, err := p.db.InsertMeasurements(ctx, profile.Measurements)
	if err != nil {
		return 0, "", err
	}

	p.indexSummary(ctx, profile.Float)

	p.logger.Info("ingested profile file",
		"file", filepath.Base(path),
		"float_id", profile.Float.FloatID,
		"measurements", n,
	)
	return n, profile.Float.FloatID, nil
}

// indexSummary refreshes the float's summary document. Best-effort: the
// semantic index is optional enrichment and must not fail ingestion.
func (p *Pipeline) indexSummary(ctx context.Context, f model.FloatMeta) {
	summary := f.Summary()
	vec, err := p.embedder.Embed(ctx, summary)
	if err != nil {
		p.logger.Warn("summary embedding failed, index not updated", "float_id", f.FloatID, "error", err)
		return
	}

	err = p.index.Upsert(ctx, []search.Document{{
		FloatID:   f.FloatID,
		Project:   f.ProjectName,
		Summary:   summary,
		Latitude:  f.LatestLatitude,
		Longitude: f.LatestLongitude,
		Embedding: vec,
	}})
	if err != nil {
		p.logger.Warn("summary index upsert failed", "float_id", f.FloatID, "error", err)
	}
}

// Reindex rebuilds the semantic index from the floats already in Postgres,
// without touching measurement data. Useful after switching embedding
// models or index backends.
func (p *Pipeline) Reindex(ctx context.Context) (int, error) {
	floats, err := p.db.ListFloats(ctx)
	if err != nil {
		return 0, err
	}
	for _, f := range floats {
		p.indexSummary(ctx, f)
	}
	return len(floats), nil
}
