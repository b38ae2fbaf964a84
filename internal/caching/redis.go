package caching

import (
	"context"
	"strings"

	"github.com/redis/go-redis/v9"
)

// Cache is the small slice of redis this service uses: an append-only event
// list for telemetry, plus liveness checks.
type Cache interface {
	RPush(ctx context.Context, key string, value []byte) error
	LTrim(ctx context.Context, key string, start, stop int64) error
	LLen(ctx context.Context, key string) (int64, error)
	Ping(ctx context.Context) error
	Close() error
}

type redisCache struct {
	client *redis.Client
}

// NewRedisCache builds a redis-backed Cache. The addr may carry a
// redis:// or rediss:// prefix; only host:port is passed to the client.
func NewRedisCache(addr, password string, db int) Cache {
	parsedAddr := addr
	for _, scheme := range []string{"redis://", "rediss://"} {
		parsedAddr = strings.TrimPrefix(parsedAddr, scheme)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	return &redisCache{client: client}
}

func (r *redisCache) RPush(ctx context.Context, key string, value []byte) error {
	return r.client.RPush(ctx, key, value).Err()
}

func (r *redisCache) LTrim(ctx context.Context, key string, start, stop int64) error {
	return r.client.LTrim(ctx, key, start, stop).Err()
}

func (r *redisCache) LLen(ctx context.Context, key string) (int64, error) {
	return r.client.LLen(ctx, key).Result()
}

func (r *redisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *redisCache) Close() error {
	return r.client.Close()
}
