package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "anthropic", cfg.LLMProvider)
	assert.Equal(t, "argo_float_summaries", cfg.QdrantCollection)
	assert.Equal(t, 5, cfg.ContextSummaries)
	assert.Equal(t, 768, cfg.EmbeddingDimensions)
	assert.Equal(t, 45*time.Second, cfg.GenerateTimeout)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("FLOATCHAT_PORT", "9090")
	t.Setenv("FLOATCHAT_LLM_PROVIDER", "ollama")
	t.Setenv("FLOATCHAT_GENERATE_TIMEOUT", "10s")
	t.Setenv("FLOATCHAT_CHAT_RATE_PER_SECOND", "2.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "ollama", cfg.LLMProvider)
	assert.Equal(t, 10*time.Second, cfg.GenerateTimeout)
	assert.Equal(t, 2.5, cfg.ChatRatePerSecond)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("FLOATCHAT_PORT", "not-a-number")
	t.Setenv("FLOATCHAT_GENERATE_TIMEOUT", "soon")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 45*time.Second, cfg.GenerateTimeout)
}

func TestValidate(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	cfg.LLMProvider = "gemini"
	assert.Error(t, cfg.Validate())

	cfg, _ = Load()
	cfg.EmbeddingDimensions = 0
	assert.Error(t, cfg.Validate())

	cfg, _ = Load()
	cfg.DatabaseURL = ""
	assert.Error(t, cfg.Validate())
}
