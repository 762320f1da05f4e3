package config

import (
	"os"
	"path"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createConfigFile(fpath string) error {
	contents := `---
server:
  baseurl: https://clax.example.com/api
tokens:
  accessrefreshthreshold: 2m
  refreshrefreshthreshold: 6h
storage:
  type: memory
`
	err := os.WriteFile(fpath, []byte(contents), 0666)
	return err
}

func TestReadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("CLAX_CONFIG_LOCATION", tmpDir)
	err := createConfigFile(path.Join(tmpDir, "config.yaml"))
	require.NoError(t, err)
	ch := NewConfigHandler()
	config, err := ch.Config()
	require.NoError(t, err)
	assert.NotEqual(t, config, Config{})
	assert.Equal(t, "https://clax.example.com/api", config.Server.BaseURL.String())
	assert.Equal(t, 2*time.Minute, config.Tokens.AccessRefreshThreshold)
	assert.Equal(t, 6*time.Hour, config.Tokens.RefreshRefreshThreshold)
	// Untouched values keep their defaults.
	assert.Equal(t, 5*time.Second, config.Tokens.RetryInterval)
	assert.Equal(t, StorageTypeMemory, config.Storage.Type)
}

func TestReadConfigWithEnvVars(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("CLAX_CONFIG_LOCATION", tmpDir)
	err := createConfigFile(path.Join(tmpDir, "config.yaml"))
	require.NoError(t, err)
	t.Setenv("CLAX_SERVER_BASEURL", "https://dev.clax.example.com")
	t.Setenv("CLAX_TOKENS_RETRYINTERVAL", "30s")
	t.Setenv("CLAX_STORAGE_REDIS_PASSWORD", "env-var-secret")
	ch := NewConfigHandler()
	config, err := ch.Config()
	require.NoError(t, err)
	assert.Equal(t, "https://dev.clax.example.com", config.Server.BaseURL.String())
	assert.Equal(t, 30*time.Second, config.Tokens.RetryInterval)
	assert.Equal(t, RedactedString("env-var-secret"), config.Storage.Redis.Password)
	// Values only present in the file survive the env overrides.
	assert.Equal(t, 2*time.Minute, config.Tokens.AccessRefreshThreshold)
}

func TestReadConfigWithEnvVarsNoConfigFile(t *testing.T) {
	t.Setenv("CLAX_CONFIG_LOCATION", t.TempDir())
	t.Setenv("CLAX_SERVER_BASEURL", "https://clax.example.com")
	ch := NewConfigHandler()
	config, err := ch.Config()
	require.NoError(t, err)
	assert.Equal(t, "https://clax.example.com", config.Server.BaseURL.String())
	assert.Equal(t, time.Minute, config.Tokens.AccessRefreshThreshold)
	assert.Equal(t, 12*time.Hour, config.Tokens.RefreshRefreshThreshold)
	assert.Equal(t, StorageTypeFile, config.Storage.Type)
	assert.NotEmpty(t, config.Storage.Path)
}

func TestReadConfigDefaultBaseURL(t *testing.T) {
	t.Setenv("CLAX_CONFIG_LOCATION", t.TempDir())
	ch := NewConfigHandler()
	config, err := ch.Config()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000", config.Server.BaseURL.String())
}

func TestReadConfigRedisAddressesFromEnv(t *testing.T) {
	t.Setenv("CLAX_CONFIG_LOCATION", t.TempDir())
	t.Setenv("CLAX_SERVER_BASEURL", "https://clax.example.com")
	t.Setenv("CLAX_STORAGE_TYPE", StorageTypeRedis)
	t.Setenv("CLAX_STORAGE_REDIS_ADDRESSES", "redis-1:6379,redis-2:6379")
	ch := NewConfigHandler()
	config, err := ch.Config()
	require.NoError(t, err)
	assert.Equal(t, []string{"redis-1:6379", "redis-2:6379"}, config.Storage.Redis.Addresses)
}
