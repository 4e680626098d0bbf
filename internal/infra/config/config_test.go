package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadAppliesFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("session:\n  ttl: 10m\nreadings:\n  windowDays: 14\n"), 0o600))

	t.Setenv("CONFIG_PATH", path)
	t.Setenv("WEBHOOK_VERIFY_TOKEN", "secret-token")
	t.Setenv("READINGS_WINDOW_DAYS", "30")
	t.Setenv("VALKEY_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 10*time.Minute, cfg.Session.TTL)
	require.Equal(t, 30, cfg.Readings.WindowDays)
	require.Equal(t, "secret-token", cfg.WhatsApp.VerifyToken)
	require.Equal(t, "v22.0", cfg.WhatsApp.APIVersion)
}

func TestValidateRejectsAsyncQueueWithoutValkey(t *testing.T) {
	cfg := defaultConfig()
	cfg.Queue.Async = true
	require.ErrorContains(t, cfg.Validate(), "queue.async requires valkey.enabled")
}

func TestValidateRejectsNonPositiveWindow(t *testing.T) {
	cfg := defaultConfig()
	cfg.Readings.WindowDays = 0
	require.Error(t, cfg.Validate())
}
