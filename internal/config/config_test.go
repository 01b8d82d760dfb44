package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("BIGQUERY_PROJECT_ID", "")
	t.Setenv("SESSION_BACKEND", "")
	t.Setenv("QUERY_TIMEOUT", "")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "dev_dataset", cfg.BigQuery.DatasetID)
	assert.Equal(t, "go401_dev_companies_company", cfg.Tables.Companies)
	assert.Equal(t, 30*time.Second, cfg.Query.Timeout)
	assert.Equal(t, 50, cfg.Query.ListLimit)
	assert.Equal(t, SessionBackendMemory, cfg.Session.Backend)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("API_KEYS", "k1, k2,,")
	t.Setenv("QUERY_TIMEOUT", "5s")
	t.Setenv("SESSION_BACKEND", "Redis")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("CATALOG_CACHE_ENABLED", "false")
	t.Setenv("RAW_QUERY_MAX_GB", "2.5")
	t.Setenv("QUERY_LIST_LIMIT", "not-a-number")

	cfg := Load()

	assert.Equal(t, []string{"k1", "k2"}, cfg.APIKeys)
	assert.Equal(t, 5*time.Second, cfg.Query.Timeout)
	assert.Equal(t, SessionBackendRedis, cfg.Session.Backend)
	assert.Equal(t, "cache:6380", cfg.Redis.RedisAddr())
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, 2.5, cfg.Query.RawQueryMaxGB)
	assert.Equal(t, 50, cfg.Query.ListLimit)
}

func TestValidate(t *testing.T) {
	t.Setenv("BIGQUERY_PROJECT_ID", "proj")
	t.Setenv("SESSION_BACKEND", "memory")
	base := Load()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing project", mutate: func(c *Config) { c.BigQuery.ProjectID = "" }, wantErr: "BIGQUERY_PROJECT_ID"},
		{name: "zero timeout", mutate: func(c *Config) { c.Query.Timeout = 0 }, wantErr: "QUERY_TIMEOUT"},
		{name: "redis without host", mutate: func(c *Config) {
			c.Session.Backend = SessionBackendRedis
			c.Redis.Host = ""
		}, wantErr: "REDIS_HOST"},
		{name: "unknown backend", mutate: func(c *Config) { c.Session.Backend = "etcd" }, wantErr: "SESSION_BACKEND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := *base
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
