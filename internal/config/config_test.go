package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"ADDR", "BASE_URL", "DATABASE_PATH", "REDIS_ADDR",
		"CATALOG_PATH", "ROUND_TRANSITION_DELAY", "DEBUG",
	} {
		// t.Setenv registers the restore, then the unset makes the
		// variable truly absent rather than empty.
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "http://localhost:8080", cfg.BaseURL)
	assert.Empty(t, cfg.DatabasePath)
	assert.Empty(t, cfg.RedisAddr)
	assert.Equal(t, "data/topics.json", cfg.CatalogPath)
	assert.Equal(t, 3*time.Second, cfg.TransitionDelay)
	assert.False(t, cfg.Debug)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ADDR", ":9999")
	t.Setenv("BASE_URL", "https://party.example")
	t.Setenv("DATABASE_PATH", "/tmp/rooms.db")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("CATALOG_PATH", "/etc/game/topics.json")
	t.Setenv("ROUND_TRANSITION_DELAY", "500ms")
	t.Setenv("DEBUG", "true")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, "https://party.example", cfg.BaseURL)
	assert.Equal(t, "/tmp/rooms.db", cfg.DatabasePath)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, "/etc/game/topics.json", cfg.CatalogPath)
	assert.Equal(t, 500*time.Millisecond, cfg.TransitionDelay)
	assert.True(t, cfg.Debug)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("ROUND_TRANSITION_DELAY", "soon")

	_, err := Load()
	assert.Error(t, err)
}
