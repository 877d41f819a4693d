package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

type Options struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// Cache is a read-through redis cache. Concurrent misses on one key share a single load.
type Cache struct {
	RDB    *redis.Client
	prefix string
	sf     singleflight.Group
}

func New(o Options) *Cache {
	return &Cache{
		RDB:    redis.NewClient(&redis.Options{Addr: o.Addr, Password: o.Password, DB: o.DB}),
		prefix: o.Prefix,
	}
}

func (c *Cache) Ping(ctx context.Context) error { return c.RDB.Ping(ctx).Err() }

func (c *Cache) Close() error { return c.RDB.Close() }

func (c *Cache) key(k string) string { return c.prefix + k }

// GetOrLoad returns the cached bytes for key, calling load and storing its result on a miss.
// Redis failures degrade to calling load directly.
func (c *Cache) GetOrLoad(ctx context.Context, key string, ttl time.Duration, load func(context.Context) ([]byte, error)) ([]byte, error) {
	full := c.key(key)
	if b, err := c.RDB.Get(ctx, full).Bytes(); err == nil {
		return b, nil
	}
	v, err, _ := c.sf.Do(full, func() (any, error) {
		b, e := load(ctx)
		if e != nil {
			return nil, e
		}
		_ = c.RDB.Set(ctx, full, b, ttl).Err()
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Generation reads the counter stored at key. A missing counter is generation 0.
func (c *Cache) Generation(ctx context.Context, key string) (int64, error) {
	n, err := c.RDB.Get(ctx, c.key(key)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

// Bump advances the counter at key, orphaning every entry written under the previous generation.
func (c *Cache) Bump(ctx context.Context, key string) (int64, error) {
	return c.RDB.Incr(ctx, c.key(key)).Result()
}
