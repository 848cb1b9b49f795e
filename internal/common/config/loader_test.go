package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  postgres:
    host: localhost
    database: fractional
    user: fq
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 5432, cfg.Database.Postgres.Port)
	assert.Equal(t, SearchBackendPostgres, cfg.Search.Backend)
	assert.Equal(t, 20, cfg.Search.PageSize)
	assert.Equal(t, 400, cfg.Filters.DefaultMinRate)
	assert.Equal(t, 2000, cfg.Filters.DefaultMaxRate)
	assert.Equal(t, 50, cfg.Filters.RateStep)
	assert.Equal(t, "/fractional-jobs-uk", cfg.Filters.SearchPath)
	assert.Equal(t, "https://api.apify.com/v2", cfg.Apify.BaseURL)
	assert.Equal(t, 500, cfg.Apify.DatasetLimit)
	assert.Equal(t, 300, cfg.Cache.SearchTTL)
	assert.Equal(t, ":8080", cfg.HTTP.Address)
}

func TestLoadFromFile_ExpandsEnvPlaceholders(t *testing.T) {
	t.Setenv("FQ_TEST_PG_PASSWORD", "s3cret")
	path := writeConfig(t, `
database:
  postgres:
    host: localhost
    database: fractional
    user: fq
    password: ${FQ_TEST_PG_PASSWORD}
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.Database.Postgres.Password)
}

func TestLoadFromFile_SecretsFromEnvironment(t *testing.T) {
	t.Setenv("APIFY_WEBHOOK_SECRET", "hook")
	t.Setenv("DATABASE_URL", "postgres://fq@db/fractional")
	path := writeConfig(t, "app:\n  name: fq\n")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hook", cfg.Apify.WebhookSecret)
	assert.Equal(t, "postgres://fq@db/fractional", cfg.Database.Postgres.GetDSN())
}

func TestValidateConfig(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{}
		cfg.Database.Postgres = PostgresConfig{Host: "h", Database: "d", User: "u"}
		applyDefaults(cfg)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing host", mutate: func(c *Config) { c.Database.Postgres.Host = "" }, wantErr: "postgres.host"},
		{name: "dsn url replaces host", mutate: func(c *Config) {
			c.Database.Postgres = PostgresConfig{URL: "postgres://x"}
		}},
		{name: "elasticsearch backend without address", mutate: func(c *Config) {
			c.Search.Backend = SearchBackendElasticsearch
		}, wantErr: "elasticsearch"},
		{name: "elasticsearch backend with address", mutate: func(c *Config) {
			c.Search.Backend = SearchBackendElasticsearch
			c.Database.Elasticsearch.Addresses = []string{"http://es:9200"}
		}},
		{name: "unknown backend", mutate: func(c *Config) { c.Search.Backend = "solr" }, wantErr: "search.backend"},
		{name: "cache without redis", mutate: func(c *Config) { c.Cache.Enabled = true }, wantErr: "redis.address"},
		{name: "inverted rate bounds", mutate: func(c *Config) {
			c.Filters.DefaultMinRate, c.Filters.DefaultMaxRate = 2000, 400
		}, wantErr: "default_min_rate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := validateConfig(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateWorkers(t *testing.T) {
	cfg := &Config{}
	assert.Error(t, ValidateWorkers(cfg))

	cfg.Camunda.BrokerAddress = "localhost:26500"
	assert.NoError(t, ValidateWorkers(cfg))
}

func TestGetWorkerConfig(t *testing.T) {
	cfg := &Config{Workers: map[string]WorkerConfig{
		"sync-jobs": {Enabled: false, MaxJobsActive: 1},
	}}

	assert.False(t, IsWorkerEnabled(cfg, "sync-jobs"))
	assert.True(t, IsWorkerEnabled(cfg, "send-job-alert"))
	assert.Equal(t, 5, GetWorkerConfig(cfg, "send-job-alert").MaxJobsActive)
}
