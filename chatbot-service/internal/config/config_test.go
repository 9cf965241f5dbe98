package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearDatabaseEnv(t *testing.T) {
	for _, key := range []string{"CHATBOT_DATABASE_URL", "DATABASE_URL", "POSTGRES_HOST", "POSTGRES_PORT", "POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_DB", "POSTGRES_SSLMODE", "CHATBOT_ALLOWED_ORIGINS"} {
		t.Setenv(key, "")
	}
}

func TestLoadChatbotRequiresDatabase(t *testing.T) {
	clearDatabaseEnv(t)
	_, err := LoadChatbot()
	assert.Error(t, err)
}

func TestLoadChatbotBuildsURLFromParts(t *testing.T) {
	clearDatabaseEnv(t)
	t.Setenv("POSTGRES_HOST", "db")
	t.Setenv("POSTGRES_USER", "catalog")
	t.Setenv("POSTGRES_PASSWORD", "s3cret")
	t.Setenv("POSTGRES_DB", "catalog")

	cfg, err := LoadChatbot()
	require.NoError(t, err)
	assert.Equal(t, "postgres://catalog:s3cret@db:5432/catalog?sslmode=disable", cfg.DatabaseURL)
}

func TestLoadChatbotDefaults(t *testing.T) {
	clearDatabaseEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/catalog")
	t.Setenv("PORT", "")
	t.Setenv("CHATBOT_SERVICE_ADDR", "")
	t.Setenv("MODEL_RUNNER_MODEL", "")
	t.Setenv("AI_MODEL", "")

	cfg, err := LoadChatbot()
	require.NoError(t, err)
	assert.Equal(t, ":8082", cfg.Addr)
	assert.Equal(t, "ai/llama3.2:latest", cfg.Model)
	assert.Equal(t, "postgres://localhost/catalog", cfg.DatabaseURL)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
}

func TestLoadChatbotAllowedOrigins(t *testing.T) {
	clearDatabaseEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/catalog")
	t.Setenv("CHATBOT_ALLOWED_ORIGINS", "http://localhost:5173, https://shop.example.com")

	cfg, err := LoadChatbot()
	require.NoError(t, err)
	assert.Equal(t, []string{"http://localhost:5173", "https://shop.example.com"}, cfg.AllowedOrigins)
}
