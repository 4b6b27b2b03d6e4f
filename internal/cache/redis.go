package cache

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Key(parts ...string) string
}

type redisCache struct {
	client      *redis.Client
	serviceName string
}

func NewRedisCache(addr, serviceName string) Cache {
	return &redisCache{
		client:      redis.NewClient(&redis.Options{Addr: addr}),
		serviceName: serviceName,
	}
}

// Get returns "" with no error on a cache miss.
func (r *redisCache) Get(ctx context.Context, key string) (string, error) {
	v, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

func (r *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *redisCache) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}

func (r *redisCache) Key(parts ...string) string {
	return r.serviceName + ":" + strings.Join(parts, ":")
}
