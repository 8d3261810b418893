package events

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"VChat/logger"
)

// Subjects for the presence event feed. Sibling services subscribe to
// these instead of polling the cache; delivery is fire-and-forget and
// never used to coordinate gateway state.
const (
	SubjectOnline  = "presence.online"
	SubjectOffline = "presence.offline"
)

type Conf struct {
	Servers       []string
	Name          string
	ReconnectWait time.Duration
	Timeout       time.Duration
}

// PresenceEvent is the wire payload on both subjects.
type PresenceEvent struct {
	UserID    string `json:"user_id"`
	GatewayID string `json:"gateway_id"`
	Ts        int64  `json:"ts"`
}

// Bus publishes gateway events to NATS. A nil *Bus is a valid no-op
// publisher, so the feed can be disabled by configuration.
type Bus struct {
	nc        *nats.Conn
	gatewayID string
}

func Dial(conf Conf, gatewayID string) (*Bus, error) {
	if conf.ReconnectWait == 0 {
		conf.ReconnectWait = 500 * time.Millisecond
	}
	if conf.Timeout == 0 {
		conf.Timeout = 3 * time.Second
	}
	opts := []nats.Option{
		nats.Name(conf.Name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(conf.ReconnectWait),
		nats.ReconnectJitter(100*time.Millisecond, 500*time.Millisecond),
		nats.Timeout(conf.Timeout),
	}
	nc, err := nats.Connect(strings.Join(conf.Servers, ","), opts...)
	if err != nil {
		return nil, err
	}
	return &Bus{nc: nc, gatewayID: gatewayID}, nil
}

func (b *Bus) Close() {
	if b == nil || b.nc == nil {
		return
	}
	if err := b.nc.Drain(); err != nil {
		logger.Warnf("[events] drain: %v", err)
	}
}

func (b *Bus) PublishOnline(userID string)  { b.publish(SubjectOnline, userID) }
func (b *Bus) PublishOffline(userID string) { b.publish(SubjectOffline, userID) }

func (b *Bus) publish(subject, userID string) {
	if b == nil || b.nc == nil {
		return
	}
	raw, err := json.Marshal(PresenceEvent{
		UserID:    userID,
		GatewayID: b.gatewayID,
		Ts:        time.Now().UnixMilli(),
	})
	if err != nil {
		return
	}
	if err := b.nc.Publish(subject, raw); err != nil {
		// best effort; a dropped event only delays observers until the
		// next cache read
		logger.Warnf("[events] publish %s user=%s err=%v", subject, userID, err)
	}
}
