package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, env := range []string{
		EnvAPIKey, EnvProvider, EnvModel, EnvDBPath, EnvMetricsPath, EnvOutputPath,
		EnvBatchSize, EnvMaxTokens, EnvWorkers, EnvRequestsRate,
	} {
		t.Setenv(env, "")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "claude-3-opus-20240229", cfg.Model)
	assert.Equal(t, 4096, cfg.MaxTokens)
	assert.Equal(t, 100000, cfg.MaxTokensPerRequest)
	assert.Equal(t, 5, cfg.BatchSize)
	assert.Zero(t, cfg.Temperature)
	assert.Equal(t, "metrics-definitions.yaml", cfg.MetricsPath)
	assert.Equal(t, "output", cfg.OutputPath)
	assert.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "docaudit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
model: claude-test
batch_size: 3
temperature: 0.2
timeout: 30s
include_undocumented: true
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "claude-test", cfg.Model)
	assert.Equal(t, 3, cfg.BatchSize)
	assert.InDelta(t, 0.2, cfg.Temperature, 1e-9)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.True(t, cfg.IncludeUndocumented)
	assert.Equal(t, 100000, cfg.MaxTokensPerRequest, "unset fields keep defaults")
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().BatchSize, cfg.BatchSize)
}

func TestLoadBadYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("batch_size: [oops"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvAPIKey, "env-key")
	t.Setenv(EnvModel, "claude-env")
	t.Setenv(EnvBatchSize, "7")
	t.Setenv(EnvRequestsRate, "2.5")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.APIKey)
	assert.Equal(t, "claude-env", cfg.Model)
	assert.Equal(t, 7, cfg.BatchSize)
	assert.InDelta(t, 2.5, cfg.RequestsPerSecond, 1e-9)

	cfg = Config{APIKey: "file-key"}
	require.NoError(t, cfg.ApplyEnv())
	assert.Equal(t, "file-key", cfg.APIKey)
}

func TestApplyEnvBadNumber(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvWorkers, "many")
	_, err := Load("")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"zero batch size", func(c *Config) { c.BatchSize = 0 }, "batch_size"},
		{"negative token ceiling", func(c *Config) { c.MaxTokensPerRequest = -1 }, "max_tokens_per_request"},
		{"temperature above one", func(c *Config) { c.Temperature = 1.5 }, "temperature"},
		{"negative rate", func(c *Config) { c.RequestsPerSecond = -1 }, "requests_per_second"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSave(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "docaudit.yaml")
	cfg := Default()
	cfg.APIKey = "secret"
	cfg.BatchSize = 9
	require.NoError(t, cfg.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9, loaded.BatchSize)
}

func TestDerivedConfigs(t *testing.T) {
	cfg := Default()
	cfg.APIKey = "key"
	cfg.BatchSize = 7
	cfg.MaxTokensPerRequest = 5000
	cfg.RequestsPerSecond = 2

	ec := cfg.EvaluatorConfig(nil)
	assert.Equal(t, "anthropic", ec.Provider)
	assert.Equal(t, "key", ec.APIKey)
	assert.Equal(t, cfg.Model, ec.Model)
	assert.Equal(t, 4096, ec.MaxTokens)
	assert.Equal(t, 120*time.Second, ec.Timeout)
	assert.Equal(t, 2.0, ec.RequestsPerSecond)
	assert.Equal(t, 3, ec.MaxRetries)

	bc := cfg.BatchConfig()
	assert.Equal(t, 7, bc.MaxItems)
	assert.Equal(t, 5000, bc.MaxTokens)
	assert.Positive(t, bc.SafetyMargin)
}
