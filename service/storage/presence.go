package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// Key layout mirrors the cache side of the system:
//   online_users          set of user ids currently online
//   user_status:<user>    JSON status record, TTL-bounded
const onlineUsersKey = "online_users"

func statusKey(user string) string { return "user_status:" + user }

const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// StatusRecord is the per-user presence value. Absence of the record
// is equivalent to offline.
type StatusRecord struct {
	Status   string `json:"status"`
	LastSeen string `json:"last_seen"`
}

type PresenceConf struct {
	StatusTTL time.Duration    // staleness bound for status records (default 5m)
	Clock     func() time.Time // nil => time.Now
}

func (c *PresenceConf) norm() {
	if c.StatusTTL <= 0 {
		c.StatusTTL = 5 * time.Minute
	}
	if c.Clock == nil {
		c.Clock = time.Now
	}
}

// Presence mirrors connect/disconnect events into the external cache so
// other services can query who is online without touching the in-process
// registry. The cache view is eventually consistent: records expire after
// StatusTTL even without an explicit offline, and callers must tolerate
// divergence up to that window.
type Presence struct {
	cache Cache
	conf  PresenceConf
}

func NewPresence(cache Cache, conf PresenceConf) *Presence {
	conf.norm()
	return &Presence{cache: cache, conf: conf}
}

// MarkOnline is an idempotent upsert: online-set membership plus a
// TTL-bounded status record.
func (p *Presence) MarkOnline(ctx context.Context, userID string) error {
	if err := p.cache.SetAdd(ctx, onlineUsersKey, userID); err != nil {
		return err
	}
	return p.writeStatus(ctx, userID, StatusOnline)
}

// MarkOffline removes the user from the online set and writes an offline
// status record (also TTL-bounded, so stale offline entries age out too).
func (p *Presence) MarkOffline(ctx context.Context, userID string) error {
	if err := p.cache.SetRemove(ctx, onlineUsersKey, userID); err != nil {
		return err
	}
	return p.writeStatus(ctx, userID, StatusOffline)
}

func (p *Presence) writeStatus(ctx context.Context, userID, status string) error {
	rec := StatusRecord{
		Status:   status,
		LastSeen: p.conf.Clock().UTC().Format(time.RFC3339),
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return p.cache.Set(ctx, statusKey(userID), raw, p.conf.StatusTTL)
}

// IsOnline reports the cache's view, which may briefly diverge from the
// registry's (e.g. after a crash before cleanup runs).
func (p *Presence) IsOnline(ctx context.Context, userID string) (bool, error) {
	return p.cache.SetContains(ctx, onlineUsersKey, userID)
}

// ListOnline returns a full snapshot of the online set, unordered.
func (p *Presence) ListOnline(ctx context.Context) ([]string, error) {
	return p.cache.SetMembers(ctx, onlineUsersKey)
}

// Status returns the per-user record; a cache miss maps to offline.
func (p *Presence) Status(ctx context.Context, userID string) (StatusRecord, error) {
	raw, err := p.cache.Get(ctx, statusKey(userID))
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return StatusRecord{Status: StatusOffline}, nil
		}
		return StatusRecord{}, err
	}
	var rec StatusRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return StatusRecord{Status: StatusOffline}, nil
	}
	return rec, nil
}
