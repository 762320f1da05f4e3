package expirystore

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// MockRedisClient implements the LimitedRedisClient interface over a map.
// Only suitable for testing. Expirations and contexts are ignored.
type MockRedisClient struct {
	lock  *sync.Mutex
	store map[string]string
}

func NewMockRedisClient() *MockRedisClient {
	return &MockRedisClient{lock: &sync.Mutex{}, store: map[string]string{}}
}

func (m *MockRedisClient) Get(_ context.Context, key string) *redis.StringCmd {
	m.lock.Lock()
	defer m.lock.Unlock()
	res := redis.StringCmd{}
	value, found := m.store[key]
	if !found {
		res.SetErr(redis.Nil)
		return &res
	}
	res.SetVal(value)
	return &res
}

func (m *MockRedisClient) Set(_ context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	m.lock.Lock()
	defer m.lock.Unlock()
	res := redis.StatusCmd{}
	strValue, ok := value.(string)
	if !ok {
		res.SetErr(redis.Nil)
		return &res
	}
	m.store[key] = strValue
	res.SetVal("OK")
	return &res
}

func (m *MockRedisClient) Del(_ context.Context, keys ...string) *redis.IntCmd {
	m.lock.Lock()
	defer m.lock.Unlock()
	res := redis.IntCmd{}
	removed := int64(0)
	for _, key := range keys {
		if _, found := m.store[key]; found {
			removed++
		}
		delete(m.store, key)
	}
	res.SetVal(removed)
	return &res
}
