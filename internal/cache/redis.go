package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/youyuan/match-engine/internal/config"
)

type RedisCache struct {
	Client *redis.Client
}

// NewRedisCache initializes Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisCache(cfg *config.Config) *RedisCache {
	opts := &redis.Options{
		Addr: cfg.Redis.Addr,
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	return &RedisCache{Client: redis.NewClient(opts)}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return c.Client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	return c.Client.Get(ctx, key).Result()
}

func (c *RedisCache) Del(ctx context.Context, key string) error {
	return c.Client.Del(ctx, key).Err()
}

// KeyForMatchCount generates the Redis key for a user's mutual-match count.
func (c *RedisCache) KeyForMatchCount(userID uint64) string {
	return fmt.Sprintf("matches:count:%d", userID)
}

// IncrMatchCount bumps the cached mutual-match counter for a user,
// refreshing the TTL. A miss is left as a miss; the next read repopulates
// from the store.
func (c *RedisCache) IncrMatchCount(ctx context.Context, userID uint64) error {
	key := c.KeyForMatchCount(userID)
	exists, err := c.Client.Exists(ctx, key).Result()
	if err != nil || exists == 0 {
		return err
	}
	if err := c.Client.Incr(ctx, key).Err(); err != nil {
		return err
	}
	return c.Client.Expire(ctx, key, time.Hour).Err()
}

// SetMatchCount stores the counter with a 1h TTL.
func (c *RedisCache) SetMatchCount(ctx context.Context, userID uint64, count int64) error {
	return c.Client.Set(ctx, c.KeyForMatchCount(userID), count, time.Hour).Err()
}

// GetMatchCount reads the cached counter. Cache misses return (0, false).
func (c *RedisCache) GetMatchCount(ctx context.Context, userID uint64) (int64, bool, error) {
	val, err := c.Client.Get(ctx, c.KeyForMatchCount(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	} else if err != nil {
		return 0, false, err
	}
	// refresh TTL on access
	_ = c.Client.Expire(ctx, c.KeyForMatchCount(userID), time.Hour).Err()
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, nil
	}
	return n, true, nil
}
