// Package cache is the shared key/value cache the feed engine reads through.
// Values are opaque bytes; callers own the encoding.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by Get when the key is absent or expired. Any other
// error means the backend itself failed.
var ErrCacheMiss = errors.New("cache: miss")

// Cache is the get/set-with-TTL/delete contract of the shared cache service.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}
