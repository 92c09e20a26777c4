// Package kv provides the key-value store backing sessions and rate limiting.
package kv

import (
	"context"
	"time"
)

// Store is the minimal key-value contract consumed by the session store and the
// rate limiter. Implementations must treat a missing key as (nil, nil), not an
// error, and rely on the backing store's TTL mechanism for expiry.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
