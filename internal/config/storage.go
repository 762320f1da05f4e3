package config

import "fmt"

const StorageTypeFile string = "file"
const StorageTypeRedis string = "redis"
const StorageTypeRedisMock string = "redis-mock"
const StorageTypeMemory string = "memory"

type RedisConfig struct {
	Addresses  []string
	IsSentinel bool
	Password   RedactedString
	MasterName string
	DBIndex    int
}

// StorageConfig selects the backend that persists token expiry timestamps.
type StorageConfig struct {
	Type  string
	Path  string
	Redis RedisConfig
}

func (c *StorageConfig) Validate() error {
	switch c.Type {
	case StorageTypeFile:
		if c.Path == "" {
			return fmt.Errorf("the expiry file path is required for the %q storage type", StorageTypeFile)
		}
	case StorageTypeRedis:
		if len(c.Redis.Addresses) == 0 {
			return fmt.Errorf("at least one redis address is required for the %q storage type", StorageTypeRedis)
		}
	case StorageTypeRedisMock, StorageTypeMemory:
	default:
		return fmt.Errorf("unrecognized storage type %q", c.Type)
	}
	return nil
}
