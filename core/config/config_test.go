package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, 30, cfg.Database.TimeoutSeconds)
	assert.Equal(t, "storage", cfg.Snapshot.Backend)
	assert.Equal(t, "state/snapshot.json", cfg.Snapshot.ObjectName)
	assert.Equal(t, "travel_ops", cfg.Metrics.Namespace)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("SNAPSHOT_BACKEND", "mongo")
	t.Setenv("SERVER_PORT", "9090")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "mongo", cfg.Snapshot.Backend)
	assert.Equal(t, "9090", cfg.Server.Port)
}

func TestLoadConfig_DotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("STORAGE_BUCKET=ops-snapshots\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("STORAGE_BUCKET") })

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "ops-snapshots", cfg.Storage.Bucket)
}
