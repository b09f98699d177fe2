package search

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"golang.org/x/sync/singleflight"
)

// QdrantConfig holds configuration for connecting to Qdrant.
type QdrantConfig struct {
	URL        string // e.g. "https://xyz.cloud.qdrant.io:6333" or "http://localhost:6333"
	APIKey     string
	Collection string
	Dims       uint64
}

// QdrantIndex implements Index backed by a Qdrant collection.
type QdrantIndex struct {
	client     *qdrant.Client
	collection string
	dims       uint64
	logger     *slog.Logger

	healthGroup singleflight.Group
	healthErr   atomic.Value // stores *error; inner error may be nil
	healthAt    atomic.Int64 // unix nanos of last check
}

// floatNamespace seeds deterministic point IDs so re-ingesting a float
// overwrites its existing point instead of duplicating it.
var floatNamespace = uuid.MustParse("8a6e1d30-6a5f-4f6e-9d36-2b9f34b3a1c7")

// pointID derives the stable Qdrant point UUID for a float.
func pointID(floatID string) string {
	return uuid.NewSHA1(floatNamespace, []byte(floatID)).String()
}

// parseQdrantURL extracts host, port, and TLS flag from a Qdrant URL.
// Accepts forms like "https://host:6333", "http://host:6333", or "host:6334".
func parseQdrantURL(rawURL string) (host string, port int, useTLS bool, err error) {
	u, parseErr := url.Parse(rawURL)
	if parseErr != nil || u.Host == "" {
		return "", 0, false, fmt.Errorf("search: invalid qdrant URL: %q", rawURL)
	}

	useTLS = u.Scheme == "https"
	host = u.Hostname()

	if portStr := u.Port(); portStr != "" {
		p, err := strconv.Atoi(portStr)
		if err != nil {
			return "", 0, false, fmt.Errorf("search: invalid port in qdrant URL: %q", portStr)
		}
		// If the user specified the REST port (6333), use the gRPC port (6334).
		if p == 6333 {
			port = 6334
		} else {
			port = p
		}
	} else {
		port = 6334
	}

	return host, port, useTLS, nil
}

// NewQdrantIndex creates a QdrantIndex and connects via gRPC.
func NewQdrantIndex(cfg QdrantConfig, logger *slog.Logger) (*QdrantIndex, error) {
	host, port, useTLS, err := parseQdrantURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: cfg.APIKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("search: connect to qdrant at %s:%d: %w", host, port, err)
	}

	return &QdrantIndex{
		client:     client,
		collection: cfg.Collection,
		dims:       cfg.Dims,
		logger:     logger,
	}, nil
}

// EnsureCollection creates the collection if it doesn't already exist and
// ensures the float_id payload index is present. CreateFieldIndex is
// idempotent on Qdrant, so it safely backfills on restart.
func (q *QdrantIndex) EnsureCollection(ctx context.Context) error {
	exists, err := q.client.CollectionExists(ctx, q.collection)
	if err != nil {
		return fmt.Errorf("search: check collection exists: %w", err)
	}

	if !exists {
		if err := q.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: q.collection,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     q.dims,
				Distance: qdrant.Distance_Cosine,
			}),
		}); err != nil {
			return fmt.Errorf("search: create collection %q: %w", q.collection, err)
		}
		q.logger.Info("qdrant: created collection", "collection", q.collection, "dims", q.dims)
	}

	keywordType := qdrant.FieldType_FieldTypeKeyword
	if _, err := q.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: q.collection,
		FieldName:      "float_id",
		FieldType:      &keywordType,
	}); err != nil {
		return fmt.Errorf("search: ensure index on float_id: %w", err)
	}

	return nil
}

// Upsert inserts or replaces float summary points.
func (q *QdrantIndex) Upsert(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, len(docs))
	for i, d := range docs {
		payload := map[string]any{
			"float_id":  d.FloatID,
			"summary":   d.Summary,
			"latitude":  d.Latitude,
			"longitude": d.Longitude,
		}
		if d.Project != "" {
			payload["project"] = d.Project
		}
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(pointID(d.FloatID)),
			Vectors: qdrant.NewVectorsDense(d.Embedding),
			Payload: qdrant.NewValueMap(payload),
		}
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collection,
		Wait:           qdrant.PtrOf(true),
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("search: qdrant upsert %d points: %w", len(docs), err)
	}
	return nil
}

// Summaries returns the summary texts of the points nearest to the query
// embedding.
func (q *QdrantIndex) Summaries(ctx context.Context, embedding []float32, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 5
	}

	fetchLimit := uint64(limit) //nolint:gosec // limit is a small positive constant from config
	scored, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collection,
		Query:          qdrant.NewQueryDense(embedding),
		Limit:          &fetchLimit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("search: qdrant query: %w", err)
	}

	summaries := make([]string, 0, len(scored))
	for _, sp := range scored {
		v, ok := sp.Payload["summary"]
		if !ok {
			continue
		}
		if s := v.GetStringValue(); s != "" {
			summaries = append(summaries, s)
		}
	}
	return summaries, nil
}

// Healthy returns nil if Qdrant is reachable. Results are cached for 5
// seconds; concurrent checks after cache expiry are deduplicated via
// singleflight so only one gRPC call is made.
func (q *QdrantIndex) Healthy(_ context.Context) error {
	if time.Since(time.Unix(0, q.healthAt.Load())) < 5*time.Second {
		return q.loadHealthErr()
	}

	// Use context.Background() inside the group: singleflight reuses the
	// first caller's context, and a cancelled first caller would poison
	// every waiter with a stale error.
	result, _, _ := q.healthGroup.Do("health", func() (any, error) {
		checkCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()

		_, err := q.client.HealthCheck(checkCtx)
		q.healthErr.Store(&err)
		q.healthAt.Store(time.Now().UnixNano())
		return err, nil
	})

	if err, ok := result.(error); ok && err != nil {
		return fmt.Errorf("search: qdrant health: %w", err)
	}
	return nil
}

// Close releases the underlying gRPC connection.
func (q *QdrantIndex) Close() error {
	return q.client.Close()
}

func (q *QdrantIndex) loadHealthErr() error {
	if p, ok := q.healthErr.Load().(*error); ok && p != nil && *p != nil {
		return fmt.Errorf("search: qdrant health: %w", *p)
	}
	return nil
}
