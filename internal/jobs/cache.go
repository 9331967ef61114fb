package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	DefaultCacheTTL = 5 * time.Minute
	cacheKey        = "cache:trending_jobs"
)

// ErrCacheMiss is returned by Cache.Get when nothing is stored.
var ErrCacheMiss = errors.New("cache miss")

// Cache stores the last successful job board response.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type CacheConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password" json:"-"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// RedisCache implements Cache on top of a redis client.
type RedisCache struct {
	rdb *redis.Client
}

// NewRedisCache connects to redis and verifies the connection.
func NewRedisCache(ctx context.Context, cfg *CacheConfig) (*RedisCache, error) {
	addr := cfg.Addr
	if addr == "" {
		addr = "localhost:6379"
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", addr, err)
	}

	return &RedisCache{rdb: rdb}, nil
}

func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	return data, err
}

func (r *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.rdb.Set(ctx, key, value, ttl).Err()
}

func (r *RedisCache) Close() error {
	return r.rdb.Close()
}

func (c *Client) fromCache(ctx context.Context) ([]byte, bool) {
	if c.cache == nil {
		return nil, false
	}

	data, err := c.cache.Get(ctx, cacheKey)
	switch {
	case err == nil:
		c.logger.Debug("trending jobs served from cache", zap.Int("bytes", len(data)))
		return data, true
	case errors.Is(err, ErrCacheMiss):
		return nil, false
	default:
		c.logger.Warn("reading trending jobs cache", zap.Error(err))
		return nil, false
	}
}

func (c *Client) toCache(ctx context.Context, body []byte) {
	if c.cache == nil {
		return
	}

	if err := c.cache.Set(ctx, cacheKey, body, c.cacheTTL); err != nil {
		c.logger.Warn("writing trending jobs cache", zap.Error(err))
	}
}
