package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	v, err := New("")
	require.NoError(t, err)

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5000", cfg.APIBaseURL)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.False(t, cfg.RedisEnabled())
	assert.False(t, cfg.MongoEnabled())
	assert.Equal(t, "casesim", cfg.MongoDatabase)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CASESIM_API_BASE_URL", "http://mediqa.local/")
	t.Setenv("CASESIM_REDIS_URI", "redis://cache:6379")
	t.Setenv("CASESIM_REQUEST_TIMEOUT", "3s")

	v, err := New("")
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "http://mediqa.local", cfg.APIBaseURL)
	assert.Equal(t, "cache:6379", cfg.RedisURI)
	assert.True(t, cfg.RedisEnabled())
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "casesim.yaml")
	data := []byte("http_port: \"9090\"\nmongo_uri: mongodb://localhost:27017\nlog_format: json\n")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	v, err := New(path)
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.True(t, cfg.MongoEnabled())
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestNew_MissingConfigFile(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
