package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"SERVER_PORT", "DB_DRIVER", "JWT_EXPIRATION_MINUTES", "CHAT_PROVIDER", "ADMIN_SECRET", "CHAT_TIMEOUT_SECONDS"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, 60*time.Minute, cfg.JWT.Expiration)
	assert.Equal(t, ProviderGroq, cfg.Chat.Provider)
	assert.Equal(t, 30*time.Second, cfg.Chat.Timeout)
	assert.Equal(t, 800, cfg.Chat.MaxTokens)
	assert.Equal(t, "llama-3.3-70b-versatile", cfg.Chat.Model)
	assert.Equal(t, "gemini-2.5-flash-lite", cfg.Extractor.GeminiModel)
	assert.Empty(t, cfg.Admin.Secret)
	assert.True(t, cfg.Seed.DemoUsers)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("JWT_EXPIRATION_MINUTES", "15")
	t.Setenv("CHAT_PROVIDER", "gigachat")
	t.Setenv("SERVER_BODY_LIMIT_MB", "not-a-number")
	t.Setenv("SEED_DEMO_USERS", "false")
	t.Setenv("GIGACHAT_BASE_URL", "http://proxy.local/api/v1")
	t.Setenv("GEMINI_BASE_URL", "http://gemini.local")
	t.Setenv("GIGACHAT_OAUTH_URL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, 15*time.Minute, cfg.JWT.Expiration)
	assert.Equal(t, ProviderGigaChat, cfg.Chat.Provider)
	assert.Equal(t, 20*1024*1024, cfg.Server.BodyLimit)
	assert.False(t, cfg.Seed.DemoUsers)
	assert.Equal(t, "http://proxy.local/api/v1", cfg.GigaChat.BaseURL)
	assert.Empty(t, cfg.GigaChat.OAuthURL)
	assert.Equal(t, "http://gemini.local", cfg.Extractor.GeminiBaseURL)
}
