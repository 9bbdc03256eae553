package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.IngestKind)
	assert.Equal(t, 6, cfg.DefaultBusWaitTime)
	assert.Equal(t, 40.0, cfg.DefaultBusVelocity)
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.False(t, cfg.CacheEnabled)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("TRANSITCAT_INGEST_PATH", "/data/requests.json")
	t.Setenv("TRANSITCAT_HTTP_ENABLED", "true")
	t.Setenv("TRANSITCAT_HTTP_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/data/requests.json", cfg.IngestPath)
	assert.True(t, cfg.HTTPEnabled)
	assert.Equal(t, 9090, cfg.HTTPPort)
}
