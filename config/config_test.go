package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"CONFIG_FILE", "PORT", "DATABASE_URL", "FRONTEND_URL", "ENVIRONMENT", "LOG_LEVEL",
		"JWT_SECRET", "JWT_TTL", "AI_PROVIDER", "GEMINI_API_KEY", "GEMINI_MODEL",
		"ANTHROPIC_API_KEY", "CLAUDE_MODEL", "AI_TIMEOUT", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
		"GIN_MODE",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/trips")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "http://localhost:5173", cfg.FrontendURL)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, ProviderGemini, cfg.AI.Provider)
	assert.Equal(t, "gemini-2.5-flash", cfg.AI.GeminiModel)
	assert.Equal(t, 60*time.Second, cfg.AI.Timeout)
	assert.Equal(t, RateLimitConfig{RPS: 5, Burst: 20}, cfg.RateLimit)
	assert.False(t, cfg.IsProduction())
}

func TestLoadRequiresSecrets(t *testing.T) {
	clearEnv(t)
	_, err := Load()
	assert.ErrorContains(t, err, "DATABASE_URL")

	t.Setenv("DATABASE_URL", "postgres://localhost/trips")
	_, err = Load()
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestLoadYAMLWithEnvOverride(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "9090"
database_url: postgres://yaml/trips
jwt_secret: from-yaml
jwt_ttl: 2h
environment: production
ai:
  provider: claude
  claude_model: claude-test
  timeout: 15s
rate_limit:
  rps: 2.5
  burst: 4
`), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "7070")
	t.Setenv("ANTHROPIC_API_KEY", "key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Port)
	assert.Equal(t, "postgres://yaml/trips", cfg.DatabaseURL)
	assert.Equal(t, 2*time.Hour, cfg.JWTTTL)
	assert.Equal(t, ProviderClaude, cfg.AI.Provider)
	assert.Equal(t, "claude-test", cfg.AI.ClaudeModel)
	assert.Equal(t, "key", cfg.AI.AnthropicAPIKey)
	assert.Equal(t, 15*time.Second, cfg.AI.Timeout)
	assert.Equal(t, RateLimitConfig{RPS: 2.5, Burst: 4}, cfg.RateLimit)
	assert.True(t, cfg.IsProduction())
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := map[string]string{
		"AI_PROVIDER":    "openai",
		"AI_TIMEOUT":     "soon",
		"RATE_LIMIT_RPS": "fast",
		"JWT_TTL":        "forever",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("DATABASE_URL", "postgres://localhost/trips")
			t.Setenv("JWT_SECRET", "s3cret")
			t.Setenv(key, value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestMigrationsCoverSchema(t *testing.T) {
	assert.GreaterOrEqual(t, len(Migrations), 5)
	joined := ""
	for _, m := range Migrations {
		joined += m
	}
	for _, table := range []string{"users", "trips", "trip_participants", "trip_votes"} {
		assert.Contains(t, joined, "CREATE TABLE IF NOT EXISTS "+table)
	}
	assert.Contains(t, joined, "UNIQUE(trip_id, user_id)")
}
