package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
env: production
llm:
  endpoint: http://llm.internal:8000/v1
  model: local-model
  temperature: 0.2
warehouse:
  server_hostname: dbc.example.com
  http_path: /sql/1.0/warehouses/abc
  max_rows: 500
paths:
  schema_csv: data/schema.csv
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "http://llm.internal:8000/v1", cfg.LLM.Endpoint)
	assert.Equal(t, "local-model", cfg.LLM.Model)
	assert.Equal(t, 0.2, cfg.LLM.Temperature)
	assert.Equal(t, 500, cfg.Warehouse.MaxRows)
	assert.Equal(t, "data/schema.csv", cfg.Paths.SchemaCSV)
}

func TestLoadEnvOverridesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm:\n  model: from-yaml\n"), 0o644))

	t.Setenv("LLM_MODEL", "from-env")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.LLM.Model)
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "https://api.openai.com/v1", cfg.LLM.Endpoint)
	assert.Equal(t, "assets/schema/clinical_schema_rag.csv", cfg.Paths.SchemaCSV)
	assert.Equal(t, 10000, cfg.Warehouse.MaxRows)
}

func TestSecretsComeFromEnvironmentOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm:\n  api_key: leaked\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, cfg.LLM.APIKey, "api key must never be read from yaml")

	t.Setenv("LLM_API_KEY", "from-env")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.LLM.APIKey)
}

func TestWarehouseIsConfigured(t *testing.T) {
	w := WarehouseConfig{}
	assert.False(t, w.IsConfigured())

	w = WarehouseConfig{
		ServerHostname: "dbc.example.com",
		HTTPPath:       "/sql/1.0/warehouses/abc",
		AccessToken:    "token",
	}
	assert.True(t, w.IsConfigured())
}
