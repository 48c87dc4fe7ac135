package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("DOMSYNC_CONTENT_MODEL", "doms:ContentModel_Scape")
	t.Setenv("DOMSYNC_COLLECTIONS", "doms:Root_Collection, doms:Scape ,")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("LOG_MAX_BACKUPS", "9")

	cfg := Load()

	assert.Equal(t, "doms:ContentModel_Scape", cfg.Sync.ContentModel)
	assert.Equal(t, []string{"doms:Root_Collection", "doms:Scape"}, cfg.Sync.Collections)
	assert.Equal(t, "scape", cfg.Sync.IdentifierNamespace)
	assert.Equal(t, "DC", cfg.Sync.IdentifierDatastream)
	assert.Equal(t, []string{"fedora-system:FedoraObject-3.0"}, cfg.Sync.IgnoredContentModels)
	assert.False(t, cfg.Sync.ClearLabelOnMissingTitle)
	assert.True(t, cfg.MinIO.UseSSL)
	assert.Equal(t, 9, cfg.Log.MaxBackups)
	assert.Equal(t, "grpc", cfg.Tracing.Protocol)
	assert.Equal(t, "domsync", cfg.Tracing.ServiceName)
	assert.NoError(t, cfg.Sync.Validate())
}

func TestSyncConfig_Validate(t *testing.T) {
	err := SyncConfig{}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "content model is required")
	assert.Contains(t, err.Error(), "identifier datastream is required")
}

func TestLoadFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("DOMSYNC_TEST_FILE_MODEL=doms:FromFile\nLOG_LEVEL=debug\n"), 0o600))
	t.Setenv("LOG_LEVEL", "warn")
	t.Cleanup(func() { os.Unsetenv("DOMSYNC_TEST_FILE_MODEL") })

	cfg, err := LoadFiles(path, filepath.Join(dir, "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "doms:FromFile", os.Getenv("DOMSYNC_TEST_FILE_MODEL"))
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestGetEnv(t *testing.T) {
	key := "TEST_ENV_VAR"
	os.Setenv(key, "value")
	defer os.Unsetenv(key)

	assert.Equal(t, "value", getEnv(key, "default"))
	assert.Equal(t, "default", getEnv("NON_EXISTENT", "default"))
}

func TestGetEnvBool(t *testing.T) {
	key := "TEST_BOOL_VAR"

	os.Setenv(key, "true")
	assert.True(t, getEnvBool(key, false))

	os.Setenv(key, "invalid")
	assert.True(t, getEnvBool(key, true))

	os.Unsetenv(key)
	assert.False(t, getEnvBool(key, false))
}

func TestGetEnvInt(t *testing.T) {
	key := "TEST_INT_VAR"

	os.Setenv(key, "123")
	assert.Equal(t, 123, getEnvInt(key, 0))

	os.Setenv(key, "invalid")
	assert.Equal(t, 10, getEnvInt(key, 10))

	os.Unsetenv(key)
	assert.Equal(t, 10, getEnvInt(key, 10))
}

func TestGetEnvList(t *testing.T) {
	t.Setenv("TEST_LIST_VAR", "a,,b")
	assert.Equal(t, []string{"a", "b"}, getEnvList("TEST_LIST_VAR", nil))
	assert.Equal(t, []string{"x"}, getEnvList("TEST_LIST_MISSING", []string{"x"}))
}
