package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis wraps a go-redis client.
type Redis struct {
	C *redis.Client
}

func New(addr string) *Redis {
	return &Redis{
		C: redis.NewClient(&redis.Options{Addr: addr}),
	}
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.C.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	return r.C.Close()
}

// MarkOnce records key and reports whether this call was the first to do so.
func (r *Redis) MarkOnce(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return r.C.SetNX(ctx, key, "1", ttl).Result()
}

// Forget removes a mark so the key can be processed again.
func (r *Redis) Forget(ctx context.Context, key string) error {
	return r.C.Del(ctx, key).Err()
}
