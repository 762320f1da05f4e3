package expirystore

import (
	"testing"

	"github.com/clax-app/clax-client/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Check that MockRedisClient implements LimitedRedisClient.
// This test would fail to compile otherwise.
func TestMockRedisClientIsLimitedRedisClient(t *testing.T) {
	var _ LimitedRedisClient = NewMockRedisClient()
}

func TestNewRedisExpiryStoreRequiresClient(t *testing.T) {
	_, err := NewRedisExpiryStore()
	assert.Error(t, err)
}

func TestWithRedisConfigMock(t *testing.T) {
	store, err := NewRedisExpiryStore(WithRedisConfig(config.StorageConfig{Type: config.StorageTypeRedisMock}))
	require.NoError(t, err)
	assert.NotNil(t, store)
}

func TestWithRedisConfigUnknownType(t *testing.T) {
	_, err := NewRedisExpiryStore(WithRedisConfig(config.StorageConfig{Type: "unknown"}))
	assert.Error(t, err)
}
