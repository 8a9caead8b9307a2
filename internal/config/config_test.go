package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromEnvDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GROQ_API_KEY", "")
	t.Setenv("STEP_PARSER", "")
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("DATABASE_PATH", "")
	t.Setenv("PARSE_CACHE_TTL", "")

	cfg, err := NewFromEnv()
	require.NoError(t, err)

	assert.Equal(t, ParserHeuristic, cfg.StepParser)
	assert.Equal(t, "groq", cfg.LLMProvider)
	assert.Equal(t, "data/meal-scheduler.db", cfg.DatabasePath)
	assert.Equal(t, 24*time.Hour, cfg.ParseCacheTTL)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestNewFromEnvSemanticRequiresKey(t *testing.T) {
	t.Setenv("STEP_PARSER", "semantic")
	t.Setenv("LLM_PROVIDER", "groq")
	t.Setenv("GROQ_API_KEY", "")

	_, err := NewFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GROQ_API_KEY")

	t.Setenv("GROQ_API_KEY", "test-key")
	cfg, err := NewFromEnv()
	require.NoError(t, err)
	assert.Equal(t, ParserSemantic, cfg.StepParser)
}

func TestNewFromEnvInvalidValues(t *testing.T) {
	t.Setenv("STEP_PARSER", "telepathic")
	_, err := NewFromEnv()
	require.Error(t, err)

	t.Setenv("STEP_PARSER", "heuristic")
	t.Setenv("PARSE_CACHE_TTL", "soon")
	_, err = NewFromEnv()
	require.Error(t, err)

	t.Setenv("PARSE_CACHE_TTL", "90m")
	cfg, err := NewFromEnv()
	require.NoError(t, err)
	assert.Equal(t, 90*time.Minute, cfg.ParseCacheTTL)
}

func TestNewFromEnvAdminKeyFallback(t *testing.T) {
	t.Setenv("STEP_PARSER", "")
	t.Setenv("PARSE_CACHE_TTL", "")
	t.Setenv("FEED_CONTENT_API_KEY", "content-key")
	t.Setenv("FEED_ADMIN_API_KEY", "")

	cfg, err := NewFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "content-key", cfg.FeedAdminKey)
}
