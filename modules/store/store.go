package store

import (
	"context"
	"fmt"
	"time"

	domain "github.com/example/mini-network-chat/domain/chat"
	"github.com/redis/go-redis/v9"
)

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

// Config selects and configures a store backend.
type Config struct {
	Backend string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	KeyPrefix     string

	DBPath string
}

// DefaultConfig returns the in-memory configuration.
func DefaultConfig() Config {
	return Config{
		Backend:   BackendMemory,
		RedisAddr: "localhost:6379",
		KeyPrefix: DefaultKeyPrefix,
		DBPath:    "./chat.db",
	}
}

// Open creates the backend named by cfg.Backend.
func Open(ctx context.Context, cfg Config) (domain.Store, error) {
	switch cfg.Backend {
	case "", BackendMemory:
		return NewMemoryStore(), nil
	case BackendRedis:
		s, err := DialRedis(ctx, &redis.Options{
			Addr:         cfg.RedisAddr,
			Password:     cfg.RedisPassword,
			DB:           cfg.RedisDB,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			PoolSize:     10,
		}, cfg.KeyPrefix)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendSQLite:
		s, err := OpenSQLite(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
