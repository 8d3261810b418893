package storage

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// RedisCache adapts a go-redis client to the Cache interface.
type RedisCache struct {
	rdb *redis.Client
}

func NewRedisCache(rdb *redis.Client) *RedisCache {
	return &RedisCache{rdb: rdb}
}

func (c *RedisCache) SetAdd(ctx context.Context, key string, members ...string) error {
	args := make([]interface{}, 0, len(members))
	for _, m := range members {
		args = append(args, m)
	}
	return errors.Wrap(c.rdb.SAdd(ctx, key, args...).Err(), "sadd")
}

func (c *RedisCache) SetRemove(ctx context.Context, key string, members ...string) error {
	args := make([]interface{}, 0, len(members))
	for _, m := range members {
		args = append(args, m)
	}
	return errors.Wrap(c.rdb.SRem(ctx, key, args...).Err(), "srem")
}

func (c *RedisCache) SetMembers(ctx context.Context, key string) ([]string, error) {
	out, err := c.rdb.SMembers(ctx, key).Result()
	return out, errors.Wrap(err, "smembers")
}

func (c *RedisCache) SetContains(ctx context.Context, key, member string) (bool, error) {
	ok, err := c.rdb.SIsMember(ctx, key, member).Result()
	return ok, errors.Wrap(err, "sismember")
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return errors.Wrap(c.rdb.Set(ctx, key, value, ttl).Err(), "set")
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, errors.Wrap(err, "get")
	}
	return val, nil
}

func (c *RedisCache) Del(ctx context.Context, key string) error {
	return errors.Wrap(c.rdb.Del(ctx, key).Err(), "del")
}

func (c *RedisCache) Keys(ctx context.Context, pattern string) ([]string, error) {
	// SCAN rather than KEYS so a busy cache is not blocked.
	iter := c.rdb.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	return keys, errors.Wrap(iter.Err(), "scan")
}
