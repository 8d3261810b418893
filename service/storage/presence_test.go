package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPresenceMarkOnlineOffline(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache()
	p := NewPresence(cache, PresenceConf{})

	online, err := p.IsOnline(ctx, "alice")
	require.NoError(t, err)
	require.False(t, online)

	require.NoError(t, p.MarkOnline(ctx, "alice"))
	require.NoError(t, p.MarkOnline(ctx, "alice")) // idempotent
	require.NoError(t, p.MarkOnline(ctx, "bob"))

	online, err = p.IsOnline(ctx, "alice")
	require.NoError(t, err)
	require.True(t, online)

	users, err := p.ListOnline(ctx)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"alice", "bob"}, users)

	require.NoError(t, p.MarkOffline(ctx, "alice"))
	online, err = p.IsOnline(ctx, "alice")
	require.NoError(t, err)
	require.False(t, online)

	users, err = p.ListOnline(ctx)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"bob"}, users)
}

func TestPresenceStatusRecord(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache()
	now := time.Date(2026, 2, 3, 12, 0, 0, 0, time.UTC)
	p := NewPresence(cache, PresenceConf{Clock: func() time.Time { return now }})

	require.NoError(t, p.MarkOnline(ctx, "alice"))
	rec, err := p.Status(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, StatusOnline, rec.Status)
	require.Equal(t, "2026-02-03T12:00:00Z", rec.LastSeen)

	require.NoError(t, p.MarkOffline(ctx, "alice"))
	rec, err = p.Status(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, StatusOffline, rec.Status)
}

func TestPresenceStatusMissIsOffline(t *testing.T) {
	p := NewPresence(NewMemoryCache(), PresenceConf{})
	rec, err := p.Status(context.Background(), "ghost")
	require.NoError(t, err)
	require.Equal(t, StatusOffline, rec.Status)
}

func TestPresenceStatusExpires(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache()
	now := time.Now()
	cache.Clock = func() time.Time { return now }
	p := NewPresence(cache, PresenceConf{StatusTTL: time.Minute, Clock: func() time.Time { return now }})

	require.NoError(t, p.MarkOnline(ctx, "alice"))

	now = now.Add(2 * time.Minute)
	rec, err := p.Status(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, StatusOffline, rec.Status, "expired record reads as offline")
}
