package storage

import (
	"context"
	"path"
	"sync"
	"time"
)

// MemoryCache is the in-process fallback used when Redis is unreachable,
// and the fixture for tests. Expiry is checked lazily on read; Clock is
// injectable the same way the connection sweeper's is.
type MemoryCache struct {
	mu    sync.RWMutex
	sets  map[string]map[string]struct{}
	vals  map[string]memVal
	Clock func() time.Time
}

type memVal struct {
	data     []byte
	expireAt time.Time // zero means no expiry
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		sets:  make(map[string]map[string]struct{}),
		vals:  make(map[string]memVal),
		Clock: time.Now,
	}
}

func (c *MemoryCache) SetAdd(_ context.Context, key string, members ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.sets[key]
	if s == nil {
		s = make(map[string]struct{})
		c.sets[key] = s
	}
	for _, m := range members {
		s[m] = struct{}{}
	}
	return nil
}

func (c *MemoryCache) SetRemove(_ context.Context, key string, members ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.sets[key]
	if s == nil {
		return nil
	}
	for _, m := range members {
		delete(s, m)
	}
	if len(s) == 0 {
		delete(c.sets, key)
	}
	return nil
}

func (c *MemoryCache) SetMembers(_ context.Context, key string) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := c.sets[key]
	out := make([]string, 0, len(s))
	for m := range s {
		out = append(out, m)
	}
	return out, nil
}

func (c *MemoryCache) SetContains(_ context.Context, key, member string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := c.sets[key]
	if s == nil {
		return false, nil
	}
	_, ok := s[member]
	return ok, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := memVal{data: append([]byte(nil), value...)}
	if ttl > 0 {
		v.expireAt = c.Clock().Add(ttl)
	}
	c.vals[key] = v
	return nil
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.vals[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	if !v.expireAt.IsZero() && c.Clock().After(v.expireAt) {
		delete(c.vals, key)
		return nil, ErrCacheMiss
	}
	return append([]byte(nil), v.data...), nil
}

func (c *MemoryCache) Del(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.vals, key)
	return nil
}

func (c *MemoryCache) Keys(_ context.Context, pattern string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.Clock()
	var keys []string
	for k, v := range c.vals {
		if !v.expireAt.IsZero() && now.After(v.expireAt) {
			delete(c.vals, k)
			continue
		}
		if ok, _ := path.Match(pattern, k); ok {
			keys = append(keys, k)
		}
	}
	return keys, nil
}
