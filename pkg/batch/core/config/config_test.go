package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
surfin:
  batch:
    job_name: prepareForecastDataset
  system:
    logging:
      level: WARN
  infrastructure:
    job_repository:
      type: sql
  database:
    metadata:
      type: sqlite
      database: ${TEST_DB_FILE}
  storage:
    input:
      type: local
      base_dir: ./csv_data
application:
  regions: [ulsan, dangjin]
`

func TestLoadConfig_DefaultsAndYAML(t *testing.T) {
	t.Setenv("TEST_DB_FILE", "/tmp/history.db")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"), EmbeddedConfig(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "prepareForecastDataset", cfg.Surfin.Batch.JobName)
	assert.True(t, cfg.Surfin.Batch.StopOnStepFailure, "default survives a partial batch section")
	assert.Equal(t, "WARN", cfg.Surfin.System.Logging.Level)
	assert.Equal(t, "console", cfg.Surfin.System.Logging.Format)
	assert.Equal(t, "UTC", cfg.Surfin.System.Timezone)
	assert.Equal(t, "sql", cfg.Surfin.Infrastructure.JobRepository.Type)
	assert.Equal(t, "metadata", cfg.Surfin.Infrastructure.JobRepository.DBRef)

	db, ok := cfg.Surfin.AdaptorConfigs["metadata"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "/tmp/history.db", db["database"])

	assert.Equal(t, []interface{}{"ulsan", "dangjin"}, cfg.Application["regions"])
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("SURFIN_SYSTEM_LOGGING_LEVEL", "DEBUG")
	t.Setenv("SURFIN_METRICS_ENABLED", "true")
	t.Setenv("SURFIN_STORAGE_INPUT_BASE_DIR", "/data/raw")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"), EmbeddedConfig(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "DEBUG", cfg.Surfin.System.Logging.Level)
	assert.True(t, cfg.Surfin.Metrics.Enabled)
	input := cfg.Surfin.StorageConfigs["input"].(map[string]interface{})
	assert.Equal(t, "/data/raw", input["base_dir"])
}

func TestLoadConfig_BadEnvValue(t *testing.T) {
	t.Setenv("SURFIN_METRICS_ENABLED", "maybe")
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"), EmbeddedConfig(sampleYAML))
	assert.Error(t, err)
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"), EmbeddedConfig("surfin: [unclosed"))
	assert.Error(t, err)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "application.yaml")
	require.NoError(t, os.WriteFile(path, []byte("surfin:\n  batch:\n    job_name: fromFile\n"), 0o644))

	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("SURFIN_SYSTEM_TIMEZONE=Asia/Seoul\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("SURFIN_SYSTEM_TIMEZONE") })

	cfg, err := LoadConfigFile(envPath, path)
	require.NoError(t, err)
	assert.Equal(t, "fromFile", cfg.Surfin.Batch.JobName)
	assert.Equal(t, "Asia/Seoul", cfg.Surfin.System.Timezone)

	_, err = LoadConfigFile(envPath, filepath.Join(dir, "absent.yaml"))
	assert.Error(t, err)
}
