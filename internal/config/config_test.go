package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.HTTPAddress)
	assert.Equal(t, "./data", cfg.DataDir)
	assert.False(t, cfg.Debug)
	assert.True(t, cfg.SeedSampleData)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("EMISSIONS_HTTP_ADDRESS", ":9090")
	t.Setenv("EMISSIONS_DATA_DIR", "/var/lib/emissions")
	t.Setenv("EMISSIONS_DEBUG", "true")
	t.Setenv("EMISSIONS_SEED_SAMPLE_DATA", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddress)
	assert.Equal(t, "/var/lib/emissions", cfg.DataDir)
	assert.True(t, cfg.Debug)
	assert.False(t, cfg.SeedSampleData)
}
