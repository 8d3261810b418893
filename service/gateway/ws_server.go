package gateway

import (
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"VChat/logger"
	"VChat/tools/ids"
	"VChat/tools/safe"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const (
	defaultPingInterval = 25 * time.Second
	pongWait            = 60 * time.Second
	closeInvalidToken   = 4001
)

// TokenVerifier turns a handshake token into a user id. Token issuance
// lives elsewhere; the gateway only verifies.
type TokenVerifier func(token string) (string, error)

// WSOptions bundles the transport knobs for Mount. Auth, when set,
// guards the query routes; /ws does its own token check during the
// handshake and /healthz stays open for probes.
type WSOptions struct {
	Verify       TokenVerifier
	Auth         gin.HandlerFunc
	WriteWait    time.Duration
	PingInterval time.Duration
}

// Mount registers the gateway routes on a gin engine.
func (s *Server) Mount(r gin.IRoutes, opts WSOptions) {
	if opts.PingInterval <= 0 {
		opts.PingInterval = defaultPingInterval
	}
	guard := func(h gin.HandlerFunc) []gin.HandlerFunc {
		if opts.Auth == nil {
			return []gin.HandlerFunc{h}
		}
		return []gin.HandlerFunc{opts.Auth, h}
	}

	r.GET("/ws", func(c *gin.Context) { s.handleWS(c, opts) })
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"gateway": s.conf.GatewayID, "connections": s.reg.Count()})
	})
	r.GET("/online", guard(func(c *gin.Context) {
		ctx, cancel := s.CacheCtx()
		defer cancel()
		users, err := s.presence.ListOnline(ctx)
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"online": users})
	})...)
	r.GET("/typing", guard(func(c *gin.Context) {
		conv := c.Query("conversation_id")
		if conv == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing conversation_id"})
			return
		}
		ctx, cancel := s.CacheCtx()
		defer cancel()
		users, err := s.realtime.TypingUsers(ctx, conv)
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"conversation_id": conv, "typing": users})
	})...)
}

func (s *Server) handleWS(c *gin.Context, opts WSOptions) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Infof("[ws] upgrade error: %v", err)
		return
	}

	userID, err := opts.Verify(c.Query("token"))
	if err != nil || userID == "" {
		logger.Infof("[ws] token rejected: %v", err)
		_ = ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(closeInvalidToken, "invalid token"),
			time.Now().Add(time.Second))
		_ = ws.Close()
		return
	}

	ch := newWSChannel(ws, opts.WriteWait)
	connID := ids.GenerateString()
	sess := s.Attach(userID, connID, ch)
	logger.Infof("[ws] connected user=%s conn=%s remote=%s", userID, connID, ws.RemoteAddr())

	hello := NewEnvelope(MsgConnectionEstablished, map[string]any{
		"user_id":   userID,
		"timestamp": s.Timestamp(),
	})
	if err := ch.Send(hello.Marshal()); err != nil {
		s.Detach(userID, ch)
		return
	}

	stop := make(chan struct{})
	s.startKeepalive(ch, ws, opts.PingInterval, stop)

	// read loop: decode and dispatch until the peer goes away
	s.readLoop(sess, ws)

	close(stop)
	s.Detach(userID, ch)
	logger.Infof("[ws] closed user=%s conn=%s", userID, connID)
}

func (s *Server) readLoop(sess *Session, ws *websocket.Conn) {
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		mt, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Infof("[ws] peer closed user=%s err=%v", sess.UserID, err)
			} else if ne, ok := err.(net.Error); ok && ne.Timeout() {
				logger.Infof("[ws] read timeout user=%s", sess.UserID)
			} else {
				logger.Infof("[ws] read err user=%s err=%v", sess.UserID, err)
			}
			return
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}
		_ = ws.SetReadDeadline(time.Now().Add(pongWait))
		s.HandleInbound(sess, data)
	}
}

func (s *Server) startKeepalive(ch *wsChannel, ws *websocket.Conn, interval time.Duration, stop <-chan struct{}) {
	safe.SafeGo(func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if err := ch.Ping(); err != nil {
					// the read loop will observe the dead socket
					logger.Debugf("[ws] ping err remote=%s err=%v", ws.RemoteAddr(), err)
					return
				}
			}
		}
	})
}
