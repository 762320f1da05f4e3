package expirystore

import (
	"context"
	"fmt"
	"time"

	"github.com/clax-app/clax-client/internal/claxerrors"
	"github.com/clax-app/clax-client/internal/config"
	"github.com/clax-app/clax-client/internal/models"
	"github.com/redis/go-redis/v9"
)

// LimitedRedisClient is the limited set of functionality expected from the
// redis client in this adapter. This allows for easy mocking and swapping of
// the client. The universal redis client interface is way too big.
type LimitedRedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisExpiryStore persists expiries in redis so that several client
// processes on the same host can share one token lifecycle.
type RedisExpiryStore struct {
	rdb LimitedRedisClient
}

func (r *RedisExpiryStore) GetExpiry(ctx context.Context, kind models.TokenKind) (time.Time, error) {
	value, err := r.rdb.Get(ctx, kind.ExpiryKey()).Result()
	if err != nil {
		if err == redis.Nil {
			return time.Time{}, claxerrors.ErrExpiryNotFound
		}
		return time.Time{}, err
	}
	return parseExpiry(value)
}

func (r *RedisExpiryStore) SetExpiry(ctx context.Context, kind models.TokenKind, expiresAt time.Time) error {
	return r.rdb.Set(ctx, kind.ExpiryKey(), formatExpiry(expiresAt), 0).Err()
}

func (r *RedisExpiryStore) RemoveExpiry(ctx context.Context, kind models.TokenKind) error {
	return r.rdb.Del(ctx, kind.ExpiryKey()).Err()
}

func (r *RedisExpiryStore) RemoveAll(ctx context.Context) error {
	keys := make([]string, 0, len(models.AllTokenKinds))
	for _, kind := range models.AllTokenKinds {
		keys = append(keys, kind.ExpiryKey())
	}
	return r.rdb.Del(ctx, keys...).Err()
}

type RedisExpiryStoreOption func(*RedisExpiryStore) error

func WithRedisConfig(storageConfig config.StorageConfig) RedisExpiryStoreOption {
	return func(r *RedisExpiryStore) error {
		switch storageConfig.Type {
		case config.StorageTypeRedis:
			redisConfig := storageConfig.Redis
			if redisConfig.IsSentinel {
				rdb := redis.NewFailoverClient(&redis.FailoverOptions{
					MasterName:       redisConfig.MasterName,
					SentinelAddrs:    redisConfig.Addresses,
					Password:         string(redisConfig.Password),
					DB:               redisConfig.DBIndex,
					SentinelPassword: string(redisConfig.Password),
				})
				r.rdb = rdb
				return nil
			}
			rdb := redis.NewClient(&redis.Options{
				Password: string(redisConfig.Password),
				DB:       redisConfig.DBIndex,
				Addr:     redisConfig.Addresses[0],
			})
			r.rdb = rdb
			return nil
		case config.StorageTypeRedisMock:
			r.rdb = NewMockRedisClient()
			return nil
		default:
			return fmt.Errorf("unrecognized storage type %v", storageConfig.Type)
		}
	}
}

func WithRedisClient(rdb LimitedRedisClient) RedisExpiryStoreOption {
	return func(r *RedisExpiryStore) error {
		r.rdb = rdb
		return nil
	}
}

func NewRedisExpiryStore(options ...RedisExpiryStoreOption) (*RedisExpiryStore, error) {
	db := RedisExpiryStore{}
	for _, opt := range options {
		err := opt(&db)
		if err != nil {
			return nil, err
		}
	}
	if db.rdb == nil {
		return nil, fmt.Errorf("redis client is not initialized")
	}
	return &db, nil
}
