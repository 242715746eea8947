package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"HOST", "PORT", "DEBUG", "GRAPHILE_WORKER_SCHEMA", "PG_HOST", "PG_PORT", "PG_USER",
		"PG_PASSWORD", "PG_DBNAME", "PG_SSLMODE", "PG_POOL_MAX_SIZE", "PG_POOL_TIMEOUT_WAIT",
		"JWT_SECRET", "JWT_EXPIRATION_HOURS",
	} {
		t.Setenv(key, "")
	}
	// String settings keep empty values as is.
	t.Setenv("HOST", "0.0.0.0")
	t.Setenv("PORT", "80")
	t.Setenv("GRAPHILE_WORKER_SCHEMA", DefaultGraphileWorkerSchema)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:80", cfg.ServerAddr())
	assert.False(t, cfg.Debug)
	assert.Equal(t, "graphile_worker", cfg.GraphileWorkerSchema)
	assert.Equal(t, 16, cfg.PoolMaxSize)
	assert.Equal(t, 5*time.Second, cfg.PoolWaitTimeout)
	assert.Equal(t, 72*time.Hour, cfg.JWTExp)
	assert.False(t, cfg.AuthEnabled())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("PORT", "8080")
	t.Setenv("DEBUG", "true")
	t.Setenv("GRAPHILE_WORKER_SCHEMA", "jobs")
	t.Setenv("PG_HOST", "db")
	t.Setenv("PG_PORT", "6543")
	t.Setenv("PG_USER", "worker")
	t.Setenv("PG_PASSWORD", "it's secret")
	t.Setenv("PG_DBNAME", "app")
	t.Setenv("PG_SSLMODE", "require")
	t.Setenv("PG_POOL_MAX_SIZE", "0")
	t.Setenv("PG_POOL_TIMEOUT_WAIT", "2")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_EXPIRATION_HOURS", "1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8080", cfg.ServerAddr())
	assert.True(t, cfg.Debug)
	assert.Equal(t, "jobs", cfg.GraphileWorkerSchema)
	assert.Equal(t, 1, cfg.PoolMaxSize)
	assert.Equal(t, 2*time.Second, cfg.PoolWaitTimeout)
	assert.True(t, cfg.AuthEnabled())
	assert.Equal(t, time.Hour, cfg.JWTExp)
	assert.Equal(t,
		`host='db' port='6543' user='worker' password='it\'s secret' dbname='app' sslmode='require'`,
		cfg.DBConnStr)
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Setenv("PORT", "99999")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("PORT", "http")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoad_EmptySchema(t *testing.T) {
	t.Setenv("PORT", "80")
	t.Setenv("GRAPHILE_WORKER_SCHEMA", "")
	_, err := Load()
	assert.Error(t, err)
}

func TestServerAddr_IPv6(t *testing.T) {
	cfg := &Config{Host: "::1", Port: "80"}
	assert.Equal(t, "[::1]:80", cfg.ServerAddr())
}
