package gateway

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"VChat/service/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cache := storage.NewMemoryCache()
	presence := storage.NewPresence(cache, storage.PresenceConf{})
	realtime := storage.NewRealtime(cache, storage.RealtimeConf{})
	s := NewServer(Conf{GatewayID: "gw_test"}, presence, realtime, nil, 1, 8)
	t.Cleanup(s.Close)
	return s
}

func TestServerAttachDetach(t *testing.T) {
	s := newTestServer(t)
	ch := &fakeChannel{}

	sess := s.Attach("alice", "conn1", ch)
	require.Equal(t, "alice", sess.UserID)
	require.True(t, s.Registry().IsOnline("alice"))

	online, err := s.Presence().IsOnline(context.Background(), "alice")
	require.NoError(t, err)
	require.True(t, online, "attach must mirror into the presence cache")

	s.Rooms().Join("alice", "room1")
	s.Detach("alice", ch)

	require.False(t, s.Registry().IsOnline("alice"))
	require.True(t, ch.isClosed())
	require.Empty(t, s.Rooms().MembersOf("room1"))

	online, err = s.Presence().IsOnline(context.Background(), "alice")
	require.NoError(t, err)
	require.False(t, online)
}

func TestServerDetachUnknownUser(t *testing.T) {
	s := newTestServer(t)
	s.Detach("ghost", nil) // must not panic
}

func TestServerHandleInboundDispatches(t *testing.T) {
	s := newTestServer(t)
	ch := &fakeChannel{}
	sess := s.Attach("alice", "conn1", ch)

	h := &stubHandler{typ: MsgPing}
	s.Disp().Register(h)

	s.HandleInbound(sess, []byte(`{"type":"ping","data":{}}`))
	require.Equal(t, 1, h.called)
}

func TestServerHandleInboundUnknownType(t *testing.T) {
	s := newTestServer(t)
	ch := &fakeChannel{}
	sess := s.Attach("alice", "conn1", ch)

	s.HandleInbound(sess, []byte(`{"type":"bogus","data":{}}`))

	frames := ch.sent()
	require.Len(t, frames, 1)
	var env Envelope
	require.NoError(t, json.Unmarshal(frames[0], &env))
	require.Equal(t, MsgError, env.Type)
	require.Contains(t, env.Data["message"], "Unknown message type")
}

func TestServerHandleInboundMalformed(t *testing.T) {
	s := newTestServer(t)
	ch := &fakeChannel{}
	sess := s.Attach("alice", "conn1", ch)

	s.HandleInbound(sess, []byte(`{broken`))

	frames := ch.sent()
	require.Len(t, frames, 1)
	var env Envelope
	require.NoError(t, json.Unmarshal(frames[0], &env))
	require.Equal(t, MsgError, env.Type)
	require.Equal(t, "invalid message format", env.Data["message"])
}

func TestServerReconnectSupersedes(t *testing.T) {
	s := newTestServer(t)
	first := &fakeChannel{}
	second := &fakeChannel{}

	s.Attach("alice", "conn1", first)
	s.Attach("alice", "conn2", second)

	require.True(t, first.isClosed())
	got, ok := s.Registry().Lookup("alice")
	require.True(t, ok)
	require.Same(t, Channel(second), got)
}

func TestServerReconnectSurvivesOldCleanup(t *testing.T) {
	s := newTestServer(t)
	first := &fakeChannel{}
	second := &fakeChannel{}

	s.Attach("alice", "conn1", first)
	s.Attach("alice", "conn2", second)
	s.Rooms().Join("alice", "room1")

	// the superseded connection's read loop exits and cleans up last
	s.Detach("alice", first)

	require.True(t, s.Registry().IsOnline("alice"),
		"new connection must survive the old connection's cleanup")
	got, ok := s.Registry().Lookup("alice")
	require.True(t, ok)
	require.Same(t, Channel(second), got)
	require.False(t, second.isClosed())
	require.True(t, s.Rooms().Contains("alice", "room1"))

	online, err := s.Presence().IsOnline(context.Background(), "alice")
	require.NoError(t, err)
	require.True(t, online, "stale cleanup must not mark the user offline")

	// cleanup keyed to the live channel still tears everything down
	s.Detach("alice", second)
	require.False(t, s.Registry().IsOnline("alice"))
	require.True(t, second.isClosed())
	require.Empty(t, s.Rooms().MembersOf("room1"))
}
