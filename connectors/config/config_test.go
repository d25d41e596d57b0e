package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.yml"))
	require.NoError(t, err)
	assert.Equal(t, "https://management.azure.com", cfg.Azure.BaseURL)
	assert.Equal(t, "2022-11-01", cfg.Azure.APIVersion)
	assert.Equal(t, time.Second, cfg.Delay())
	assert.Equal(t, time.Second, cfg.Backoff())
	assert.Equal(t, 3, cfg.Purchase.MaxAttempts)
}

func TestLoadParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
azure:
  base_url: https://example.test
  api_version: "2024-01-01"
  tenant_id: tenant-1
  client_id: client-1
  client_secret: secret-1
purchase:
  delay_seconds: 2.5
  max_attempts: 5
  backoff_seconds: 0.5
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://example.test", cfg.Azure.BaseURL)
	assert.Equal(t, "2024-01-01", cfg.Azure.APIVersion)
	assert.Equal(t, "tenant-1", cfg.Azure.TenantID)
	assert.Equal(t, 2500*time.Millisecond, cfg.Delay())
	assert.Equal(t, 500*time.Millisecond, cfg.Backoff())
	assert.Equal(t, 5, cfg.Purchase.MaxAttempts)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("azure:\n  tenant_id: from-file\n"), 0o644))

	t.Setenv("AZURE_TENANT_ID", "from-env")
	t.Setenv("AZURE_ACCESS_TOKEN", "token-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Azure.TenantID)
	assert.Equal(t, "token-env", cfg.Azure.AccessToken)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("azure: [broken"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestPath(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	assert.Equal(t, "./config.yml", Path())

	t.Setenv("CONFIG_PATH", "/etc/ri/config.yml")
	assert.Equal(t, "/etc/ri/config.yml", Path())
}
