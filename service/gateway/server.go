package gateway

import (
	"context"
	"errors"
	"time"

	"VChat/logger"
	"VChat/service/events"
	"VChat/service/storage"
	"VChat/tools/errs"
	"VChat/tools/safe"
)

// Conf carries the gateway-scoped tunables; storage-level TTLs live in
// the storage confs.
type Conf struct {
	GatewayID   string
	NearbyLimit int              // cap on get_nearby_users replies
	CacheWait   time.Duration    // budget for cache calls on the hot path
	Clock       func() time.Time // nil => time.Now
}

func (c *Conf) norm() {
	if c.NearbyLimit <= 0 {
		c.NearbyLimit = 50
	}
	if c.CacheWait <= 0 {
		c.CacheWait = 2 * time.Second
	}
	if c.Clock == nil {
		c.Clock = time.Now
	}
}

// Session is one authenticated connection: identity plus its channel.
// The gateway authenticates before the session exists; the core never
// sees credentials.
type Session struct {
	UserID string
	ConnID string
	Ch     Channel
}

// Context is what handlers receive; it reaches back into the server.
type Context struct {
	S *Server
}

// Server owns the shared connection state of one gateway process:
// registry, room index, delivery router, dispatcher, fanout pool, and
// the presence/realtime stores. Constructed once at startup and threaded
// through explicitly; no package-level singletons.
type Server struct {
	conf Conf

	reg      *Registry
	rooms    *RoomIndex
	router   *Router
	disp     *Dispatcher
	fan      *Fanout
	presence *storage.Presence
	realtime *storage.Realtime
	bus      *events.Bus
}

func NewServer(conf Conf, presence *storage.Presence, realtime *storage.Realtime, bus *events.Bus, fanoutWorkers, fanoutQueue int) *Server {
	conf.norm()
	safe.MustNotNil(presence, "presence")
	safe.MustNotNil(realtime, "realtime")

	s := &Server{
		conf:     conf,
		reg:      NewRegistry(),
		rooms:    NewRoomIndex(),
		disp:     NewDispatcher(),
		presence: presence,
		realtime: realtime,
		bus:      bus,
	}
	s.fan = NewFanout(fanoutWorkers, fanoutQueue, s.Detach)
	s.router = NewRouter(s.reg, s.rooms, s.fan, s.Detach)
	return s
}

func (s *Server) GatewayID() string           { return s.conf.GatewayID }
func (s *Server) NearbyLimit() int            { return s.conf.NearbyLimit }
func (s *Server) Registry() *Registry         { return s.reg }
func (s *Server) Rooms() *RoomIndex           { return s.rooms }
func (s *Server) Router() *Router             { return s.router }
func (s *Server) Disp() *Dispatcher           { return s.disp }
func (s *Server) Presence() *storage.Presence { return s.presence }
func (s *Server) Realtime() *storage.Realtime { return s.realtime }

// Timestamp is the server-side stamp handlers put on outbound envelopes.
func (s *Server) Timestamp() string {
	return s.conf.Clock().UTC().Format(time.RFC3339)
}

// CacheCtx bounds a cache call on the message path.
func (s *Server) CacheCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.conf.CacheWait)
}

// Attach registers an authenticated connection and mirrors it into the
// presence cache. Returns the session handed to the read loop.
func (s *Server) Attach(userID, connID string, ch Channel) *Session {
	s.reg.Register(userID, ch)

	ctx, cancel := s.CacheCtx()
	defer cancel()
	if err := s.presence.MarkOnline(ctx, userID); err != nil {
		// cache divergence heals via TTL; the connection stays usable
		logger.Warnf("[gateway] mark online user=%s err=%v", userID, err)
	}
	s.bus.PublishOnline(userID)

	return &Session{UserID: userID, ConnID: connID, Ch: ch}
}

// Detach is the single cleanup path for every kind of disconnect:
// graceful close, read error, or a failed write discovered mid-delivery.
// Removal is keyed by connection identity, not just user id: when the
// user reconnected and ch was superseded, the stale cleanup closes its
// own channel and stops, so the replacement's registry entry, rooms and
// cached presence survive.
func (s *Server) Detach(userID string, ch Channel) {
	if ch != nil {
		_ = ch.Close()
	}
	if !s.reg.UnregisterIf(userID, ch) {
		return
	}
	if rooms := s.rooms.LeaveAll(userID); len(rooms) > 0 {
		logger.Debugf("[gateway] user=%s left rooms=%v", userID, rooms)
	}

	ctx, cancel := s.CacheCtx()
	defer cancel()
	if err := s.presence.MarkOffline(ctx, userID); err != nil {
		logger.Warnf("[gateway] mark offline user=%s err=%v", userID, err)
	}
	s.bus.PublishOffline(userID)
}

// HandleInbound decodes one client frame and routes it through the
// dispatch table. Malformed frames and unknown types are reported to the
// sender only; nothing here is fatal to the connection.
func (s *Server) HandleInbound(sess *Session, raw []byte) {
	env, err := ParseEnvelope(raw)
	if err != nil {
		s.replyError(sess, "invalid message format")
		return
	}
	if err := s.disp.Dispatch(&Context{S: s}, sess, env); err != nil {
		logger.Infof("[gateway] dispatch user=%s type=%s err=%v", sess.UserID, env.Type, err)
		s.replyError(sess, dispatchErrMsg(env.Type, err))
	}
}

func dispatchErrMsg(t MsgType, err error) string {
	if errors.Is(err, errs.ErrUnknownType) {
		return "Unknown message type: " + string(t)
	}
	if errors.Is(err, errs.ErrBadEnvelope) {
		return "invalid payload for " + string(t)
	}
	return "failed to handle " + string(t)
}

// replyError echoes an error envelope to the sender; a failed write here
// goes through the same detach path as any other write failure.
func (s *Server) replyError(sess *Session, msg string) {
	env := ErrorEnvelope(msg)
	env.Data["timestamp"] = s.Timestamp()
	if err := sess.Ch.Send(env.Marshal()); err != nil {
		s.Detach(sess.UserID, sess.Ch)
	}
}

// Close stops the fanout pool; live connections are closed by their own
// read loops.
func (s *Server) Close() {
	s.fan.Close()
	s.bus.Close()
}
