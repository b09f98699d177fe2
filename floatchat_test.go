package floatchat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floatchat-ai/floatchat/internal/config"
	"github.com/floatchat-ai/floatchat/internal/testutil"
)

func TestNewSummaryIndexRejectsMismatchedPgvectorDims(t *testing.T) {
	// The fallback index writes into a fixed-width vector column; a model
	// with a different output size must be caught at wiring time, not at
	// the first upsert.
	cfg := config.Config{EmbeddingDimensions: 1024}

	_, _, err := NewSummaryIndex(context.Background(), cfg, nil, testutil.TestLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "768")
	assert.Contains(t, err.Error(), "1024")
}
