// Package cache stores rendered page fragments with a time to live.
//
// Writes to posts never invalidate entries: a cached listing is served
// verbatim until it expires or someone clears it.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"yatube/internal/config"
)

// IndexPageKey prefixes the cached global listing, one entry per page number.
const IndexPageKey = "index_page"

func IndexPage(number int) string {
	return fmt.Sprintf("%s:%d", IndexPageKey, number)
}

type Store interface {
	// Get reports a miss with ok == false; err is only for backend failures.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// Clear drops every entry owned by this store.
	Clear(ctx context.Context) error
}

// New builds the configured backend. The redis client is pinged so a bad
// address fails at start-up rather than on the first request.
func New(ctx context.Context, cfg config.CacheConfig, logger *zap.Logger) (Store, error) {
	switch cfg.Backend {
	case "memory":
		store, err := NewMemory(cfg.Size)
		if err != nil {
			return nil, err
		}
		logger.Info("Using in-process page cache", zap.Int("size", cfg.Size))
		return store, nil
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr,
			DB:   cfg.RedisDB,
		})
		pong, err := rdb.Ping(ctx).Result()
		if err != nil {
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		logger.Sugar().Infof("Successfully connected to Redis: %s", pong)
		return NewRedis(rdb, cfg.Prefix), nil
	default:
		return nil, fmt.Errorf("unsupported cache backend %q", cfg.Backend)
	}
}
