package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 10, cfg.Server.ShutdownTimeoutSeconds)
	assert.Equal(t, "nats://localhost:4222", cfg.NATS.URL)
	assert.Equal(t, "TIMELINE_EVENTS", cfg.NATS.Stream)
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("server:\n  port: \"9090\"\n  shutdown_timeout_seconds: 30\n")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := loadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 30, cfg.Server.ShutdownTimeoutSeconds)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "7070")
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "25")

	cfg, err := loadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Server.Port)
	assert.Equal(t, 25, cfg.Server.ShutdownTimeoutSeconds)
}

func TestLoadConfigIgnoresBadTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "soon")

	cfg, err := loadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Server.ShutdownTimeoutSeconds)
}
