package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQdrantURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		wantHost string
		wantPort int
		wantTLS  bool
		wantErr  bool
	}{
		{
			name:     "https cloud URL with REST port",
			url:      "https://xyz.cloud.qdrant.io:6333",
			wantHost: "xyz.cloud.qdrant.io",
			wantPort: 6334,
			wantTLS:  true,
		},
		{
			name:     "http localhost with REST port",
			url:      "http://localhost:6333",
			wantHost: "localhost",
			wantPort: 6334,
			wantTLS:  false,
		},
		{
			name:     "explicit grpc port preserved",
			url:      "http://localhost:6334",
			wantHost: "localhost",
			wantPort: 6334,
			wantTLS:  false,
		},
		{
			name:     "custom port preserved",
			url:      "https://qdrant.internal:7000",
			wantHost: "qdrant.internal",
			wantPort: 7000,
			wantTLS:  true,
		},
		{
			name:     "no port defaults to grpc",
			url:      "https://qdrant.internal",
			wantHost: "qdrant.internal",
			wantPort: 6334,
			wantTLS:  true,
		},
		{
			name:    "empty URL",
			url:     "",
			wantErr: true,
		},
		{
			name:    "garbage",
			url:     "://nope",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host, port, useTLS, err := parseQdrantURL(tt.url)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantHost, host)
			assert.Equal(t, tt.wantPort, port)
			assert.Equal(t, tt.wantTLS, useTLS)
		})
	}
}

func TestPointIDDeterministic(t *testing.T) {
	a := pointID("2902746")
	b := pointID("2902746")
	c := pointID("2902747")

	assert.Equal(t, a, b, "same float must map to the same point")
	assert.NotEqual(t, a, c, "different floats must map to different points")
}

func TestNoopIndex(t *testing.T) {
	var idx NoopIndex
	ctx := context.Background()

	require.NoError(t, idx.Upsert(ctx, []Document{{FloatID: "1"}}))
	require.NoError(t, idx.Healthy(ctx))

	summaries, err := idx.Summaries(ctx, []float32{0.1, 0.2}, 5)
	require.NoError(t, err)
	assert.Empty(t, summaries)
}
