package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis backs Cache with a Redis instance.
type Redis struct {
	client *redis.Client
	ctx    context.Context
}

// NewRedis connects to the given address.
func NewRedis(addr string) *Redis {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	return &Redis{
		client: rdb,
		ctx:    context.Background(),
	}
}

func (r *Redis) Get(key string) (string, bool) {
	val, err := r.client.Get(r.ctx, key).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

func (r *Redis) Set(key, value string, ttl time.Duration) error {
	return r.client.Set(r.ctx, key, value, ttl).Err()
}

func (r *Redis) Del(key string) error {
	return r.client.Del(r.ctx, key).Err()
}
