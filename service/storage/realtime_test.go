package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRealtimeTyping(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache()
	r := NewRealtime(cache, RealtimeConf{})

	require.NoError(t, r.SetTyping(ctx, "conv1", "alice"))
	require.NoError(t, r.SetTyping(ctx, "conv1", "bob"))
	require.NoError(t, r.SetTyping(ctx, "conv2", "carol"))

	users, err := r.TypingUsers(ctx, "conv1")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"alice", "bob"}, users)

	require.NoError(t, r.ClearTyping(ctx, "conv1", "alice"))
	users, err = r.TypingUsers(ctx, "conv1")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"bob"}, users)
}

func TestRealtimeTypingExpires(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache()
	now := time.Now()
	cache.Clock = func() time.Time { return now }
	r := NewRealtime(cache, RealtimeConf{TypingTTL: 5 * time.Second})

	require.NoError(t, r.SetTyping(ctx, "conv1", "alice"))

	now = now.Add(10 * time.Second)
	users, err := r.TypingUsers(ctx, "conv1")
	require.NoError(t, err)
	require.Empty(t, users, "indicator must age out without an explicit clear")
}

func TestRealtimeCallRoomLifecycle(t *testing.T) {
	ctx := context.Background()
	r := NewRealtime(NewMemoryCache(), RealtimeConf{})

	require.NoError(t, r.CreateCallRoom(ctx, "call1", map[string]any{
		"caller": "alice",
		"callee": "bob",
		"state":  "ringing",
	}))

	room, err := r.GetCallRoom(ctx, "call1")
	require.NoError(t, err)
	require.Equal(t, "ringing", room["state"])

	require.NoError(t, r.UpdateCallRoom(ctx, "call1", map[string]any{"state": "active"}))
	room, err = r.GetCallRoom(ctx, "call1")
	require.NoError(t, err)
	require.Equal(t, "active", room["state"])
	require.Equal(t, "alice", room["caller"], "merge keeps untouched fields")

	require.NoError(t, r.DeleteCallRoom(ctx, "call1"))
	_, err = r.GetCallRoom(ctx, "call1")
	require.ErrorIs(t, err, ErrCacheMiss)
}

func TestRealtimeUpdateMissingCallRoom(t *testing.T) {
	r := NewRealtime(NewMemoryCache(), RealtimeConf{})
	// an expired room is not an error on the signaling path
	require.NoError(t, r.UpdateCallRoom(context.Background(), "gone", map[string]any{"state": "active"}))
	require.NoError(t, r.TouchCallRoom(context.Background(), "gone"))
}

func TestRealtimeLocation(t *testing.T) {
	ctx := context.Background()
	r := NewRealtime(NewMemoryCache(), RealtimeConf{})

	_, ok, err := r.GetLocation(ctx, "alice")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, r.SetLocation(ctx, "alice", Location{Lat: 48.85, Lng: 2.35}))
	loc, ok, err := r.GetLocation(ctx, "alice")
	require.NoError(t, err)
	require.True(t, ok)
	require.InDelta(t, 48.85, loc.Lat, 1e-9)
	require.InDelta(t, 2.35, loc.Lng, 1e-9)
}

func TestRealtimeLocationExpires(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache()
	now := time.Now()
	cache.Clock = func() time.Time { return now }
	r := NewRealtime(cache, RealtimeConf{LocationTTL: time.Hour})

	require.NoError(t, r.SetLocation(ctx, "alice", Location{Lat: 1, Lng: 2}))

	now = now.Add(2 * time.Hour)
	_, ok, err := r.GetLocation(ctx, "alice")
	require.NoError(t, err)
	require.False(t, ok)
}
