package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/Arkiv-Network/inf-demo/internal/config"
)

const keyPrefix = "ethdemo:"

type Cache interface {
	// Get reports a miss with ok == false and a nil error
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}

type RedisCache struct {
	rdb *redis.Client
}

// New returns a noop cache when cfg is nil
func New(ctx context.Context, cfg *config.CacheConfig) (Cache, error) {
	if cfg == nil {
		return Noop{}, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisCache{rdb: rdb}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := c.rdb.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.rdb.Set(ctx, keyPrefix+key, value, ttl).Err()
}

func (c *RedisCache) Close() error {
	return c.rdb.Close()
}

type Noop struct{}

func (Noop) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (Noop) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (Noop) Close() error                                             { return nil }

// GetOrLoad serves key from the cache or calls load and caches its JSON
// encoding. Cache failures are logged and fall through to load.
func GetOrLoad[T any](ctx context.Context, c Cache, key string, ttl time.Duration, load func() (T, error)) (T, error) {
	if raw, ok, err := c.Get(ctx, key); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("cache read failed")
	} else if ok {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			return v, nil
		}
		log.Ctx(ctx).Warn().Str("key", key).Msg("discarding undecodable cache entry")
	}

	v, err := load()
	if err != nil {
		return v, err
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return v, nil
	}
	if err := c.Set(ctx, key, raw, ttl); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
	return v, nil
}
