package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

var errNoValue = errors.New("cache: loader returned nil")

// ByteLoader is the read-through contract GetOrLoadJSON builds on; *Cache implements it.
type ByteLoader interface {
	GetOrLoad(ctx context.Context, key string, ttl time.Duration, load func(context.Context) ([]byte, error)) ([]byte, error)
}

// GetOrLoadJSON is GetOrLoad for a JSON-encoded *T. A nil result from load is passed through
// and never stored.
func GetOrLoadJSON[T any](c ByteLoader, ctx context.Context, key string, ttl time.Duration, load func(context.Context) (*T, error)) (*T, error) {
	var loaded *T
	b, err := c.GetOrLoad(ctx, key, ttl, func(ctx context.Context) ([]byte, error) {
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if v == nil {
			return nil, errNoValue
		}
		loaded = v
		return json.Marshal(v)
	})
	if errors.Is(err, errNoValue) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	// the goroutine that ran load skips the decode
	if loaded != nil {
		return loaded, nil
	}
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
