package storage

import (
	"context"
	"time"

	"VChat/tools/errs"
)

// ErrCacheMiss is returned by Get when the key is absent or expired.
// Absence is a normal state for TTL-bounded records, never a failure.
var ErrCacheMiss = errs.ErrNotFound

// Cache is the minimal key-value surface the gateway needs from the
// external cache: set membership for the online set, TTL-bounded string
// records for status/typing/call-room/location keys, and a pattern scan
// for typing indicators. Backed by Redis in production and by an
// in-process map when Redis is unreachable or under test.
type Cache interface {
	SetAdd(ctx context.Context, key string, members ...string) error
	SetRemove(ctx context.Context, key string, members ...string) error
	SetMembers(ctx context.Context, key string) ([]string, error)
	SetContains(ctx context.Context, key, member string) (bool, error)

	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	Del(ctx context.Context, key string) error

	Keys(ctx context.Context, pattern string) ([]string, error)
}
