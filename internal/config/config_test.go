package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("LEADBOARD_CRM__PROJECT_ID", "7")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.spark.re/v2", cfg.CRM.BaseURL)
	assert.Equal(t, 7, cfg.CRM.ProjectID)
	assert.Equal(t, 100, cfg.CRM.PageSize)
	assert.Equal(t, 50, cfg.CRM.MaxPages)
	assert.Equal(t, 50, cfg.CRM.DetailBatchSize)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("LEADBOARD_CRM__PROJECT_ID", "7")
	t.Setenv("LEADBOARD_CRM__API_TOKEN", "secret")
	t.Setenv("LEADBOARD_SERVER__PORT", "9000")
	t.Setenv("LEADBOARD_CACHE_TTL", "90s")
	t.Setenv("LEADBOARD_LOG__LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.CRM.APIToken)
	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, 90*time.Second, cfg.CacheTTL)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadRequiresProjectID(t *testing.T) {
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("LEADBOARD_CRM__PROJECT_ID", "7")
	t.Setenv("LEADBOARD_LOG__LEVEL", "loud")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("crm:\n  project_id: 12\n  api_token: from-file\n"), 0o600))
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.CRM.ProjectID)
	assert.Equal(t, "from-file", cfg.CRM.APIToken)
}

func TestLoadEnvBeatsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("crm:\n  project_id: 12\n  api_token: from-file\n"), 0o600))
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("LEADBOARD_CRM__API_TOKEN", "from-env")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.CRM.APIToken)
}

func TestEnvKeyMapping(t *testing.T) {
	assert.Equal(t, "crm.api_token", envKey("LEADBOARD_CRM__API_TOKEN"))
	assert.Equal(t, "cache_ttl", envKey("LEADBOARD_CACHE_TTL"))
	assert.Equal(t, "server.rate_limit", envKey("LEADBOARD_SERVER__RATE_LIMIT"))
}
