package handlers

import (
	"VChat/service/gateway"
)

// PingHandler answers keep-alive pings, echoing the client timestamp so
// the client can measure round-trip time.
type PingHandler struct{}

func NewPingHandler() gateway.Handler { return &PingHandler{} }

func (h *PingHandler) Type() gateway.MsgType { return gateway.MsgPing }

func (h *PingHandler) Handle(ctx *gateway.Context, sess *gateway.Session, env *gateway.Envelope) error {
	var p gateway.PingPayload
	if err := env.Decode(&p); err != nil {
		return err
	}
	data := map[string]any{"timestamp": ctx.S.Timestamp()}
	if p.Timestamp != "" {
		data["echo"] = p.Timestamp
	}
	pong := gateway.NewEnvelope(gateway.MsgPong, data)
	ctx.S.Router().SendDirect(sess.UserID, pong.Marshal())
	return nil
}
