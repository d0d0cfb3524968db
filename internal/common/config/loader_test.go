package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_Defaults(t *testing.T) {
	path := writeConfig(t, `
database:
  elasticsearch:
    addresses: ["http://localhost:9200"]
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, BackendElasticsearch, cfg.Store.Backend)
	assert.Equal(t, "universities", cfg.Store.Index)
	assert.Equal(t, "http://localhost:9200", cfg.Database.Elasticsearch.GetURL())
	assert.Equal(t, 15, cfg.Ranking.MaxResults)
	assert.Equal(t, 5, cfg.Ranking.SimilarSize)
	assert.Equal(t, 50, cfg.Ranking.MaxFetchSize)
	assert.Equal(t, 5001, cfg.Server.Port)
	assert.Equal(t, "grok-v1", cfg.APIs.XAI.Model)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFromFile_EnvExpansion(t *testing.T) {
	t.Setenv("TEST_XAI_KEY", "xai-secret")
	t.Setenv("TEST_ES_URL", "http://es:9200")

	path := writeConfig(t, `
database:
  elasticsearch:
    url: ${TEST_ES_URL}
apis:
  xai:
    api_key: ${TEST_XAI_KEY}
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "http://es:9200", cfg.Database.Elasticsearch.URL)
	assert.Equal(t, "xai-secret", cfg.APIs.XAI.APIKey)
}

func TestLoadFromFile_EnvOverride(t *testing.T) {
	t.Setenv("STORE_BACKEND", "postgres")
	t.Setenv("DATABASE_POSTGRES_HOST", "pg")
	t.Setenv("DATABASE_POSTGRES_DATABASE", "catalog")
	t.Setenv("DATABASE_POSTGRES_USER", "reader")

	path := writeConfig(t, `
store:
  backend: elasticsearch
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, BackendPostgres, cfg.Store.Backend)
	assert.Equal(t, "pg", cfg.Database.Postgres.Host)
	assert.Contains(t, cfg.Database.Postgres.GetDSN(), "dbname=catalog")
}

func TestLoadFromFile_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
		msg  string
	}{
		{
			name: "unknown backend",
			body: "store:\n  backend: mongo\n",
			msg:  "store.backend",
		},
		{
			name: "missing elasticsearch address",
			body: "store:\n  backend: elasticsearch\n",
			msg:  "database.elasticsearch",
		},
		{
			name: "cache without redis",
			body: "database:\n  elasticsearch:\n    url: http://es:9200\ncache:\n  enabled: true\n",
			msg:  "database.redis.address",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestGetWorkerConfig(t *testing.T) {
	cfg := &Config{
		Camunda: CamundaConfig{MaxJobsActive: 4, Timeout: 1000},
		Workers: map[string]WorkerConfig{"generate-advice": {Enabled: false}},
	}

	assert.False(t, GetWorkerConfig(cfg, "generate-advice").Enabled)
	def := GetWorkerConfig(cfg, "rank-universities")
	assert.True(t, def.Enabled)
	assert.Equal(t, 4, def.MaxJobsActive)
	assert.Equal(t, time.Second, GetDuration(def.Timeout))
}
