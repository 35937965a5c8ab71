package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("MISTRAL_API_KEY", "")
	t.Setenv("EXA_API_KEY", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("PORT", "")

	cfg := FromEnv()
	assert.Empty(t, cfg.MistralAPIKey)
	assert.Empty(t, cfg.ExaAPIKey)
	assert.Equal(t, "nutrisense_data.db", cfg.DatabasePath)
	assert.Equal(t, "nutrisense-dev-secret", cfg.SessionSecret)
	assert.Equal(t, 8080, cfg.Port)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("MISTRAL_API_KEY", "abcdefghijklmnopqrstuvwxyz012345")
	t.Setenv("EXA_API_KEY", "exa-key")
	t.Setenv("DATABASE_URL", "/tmp/custom.db")
	t.Setenv("SESSION_SECRET", "secret")
	t.Setenv("PORT", "9191")

	cfg := FromEnv()
	assert.Equal(t, "abcdefghijklmnopqrstuvwxyz012345", cfg.MistralAPIKey)
	assert.Equal(t, "exa-key", cfg.ExaAPIKey)
	assert.Equal(t, "/tmp/custom.db", cfg.DatabasePath)
	assert.Equal(t, "secret", cfg.SessionSecret)
	assert.Equal(t, 9191, cfg.Port)
}

func TestFromEnvBadPortFallsBack(t *testing.T) {
	t.Setenv("PORT", "not-a-port")
	assert.Equal(t, 8080, FromEnv().Port)
}
