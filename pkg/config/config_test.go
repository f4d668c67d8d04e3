package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `
server:
  address: "0.0.0.0"
  port: 9001
storage:
  db_path: "/var/lib/threadsync"
remote:
  base_url: "https://chat.example.com"
  token: "tok"
  timeout_ms: 2500
  page_limit: 50
retention:
  enabled: true
  cron: "0 3 * * *"
  max_age: "720h"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0:9001", cfg.Addr())
	require.Equal(t, "https://chat.example.com", cfg.Remote.BaseURL)
	require.Equal(t, "tok", cfg.Remote.Token)
	require.Equal(t, 2500*time.Millisecond, cfg.RemoteTimeout())
	require.Equal(t, 50, cfg.PageLimit())
	maxAge, err := cfg.RetentionMaxAge()
	require.NoError(t, err)
	require.Equal(t, 720*time.Hour, maxAge)
}

func TestDefaults(t *testing.T) {
	cfg := &Config{}
	require.Equal(t, "127.0.0.1:8093", cfg.Addr())
	require.Equal(t, 10*time.Second, cfg.RemoteTimeout())
	require.Equal(t, 100, cfg.PageLimit())
	d, err := cfg.RetentionMaxAge()
	require.NoError(t, err)
	require.Zero(t, d, "empty max_age must parse as zero")
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("THREADSYNC_ADDR", "10.0.0.1:7000")
	t.Setenv("THREADSYNC_REMOTE_URL", "https://env.example.com")
	t.Setenv("THREADSYNC_PAGE_LIMIT", "25")
	t.Setenv("THREADSYNC_RETENTION_ENABLED", "true")

	cfg := &Config{}
	require.True(t, LoadEnvOverrides(cfg), "expected envUsed=true")
	require.Equal(t, "10.0.0.1", cfg.Server.Address)
	require.Equal(t, 7000, cfg.Server.Port)
	require.Equal(t, "https://env.example.com", cfg.Remote.BaseURL)
	require.Equal(t, 25, cfg.PageLimit())
	require.True(t, cfg.Retention.Enabled)
}

func TestResolveConfigPath(t *testing.T) {
	t.Setenv("THREADSYNC_CONFIG", "/etc/threadsync/config.yaml")
	require.Equal(t, "./flagged.yaml", ResolveConfigPath("./flagged.yaml", true), "flag must win")
	require.Equal(t, "/etc/threadsync/config.yaml", ResolveConfigPath("./default.yaml", false))
}
