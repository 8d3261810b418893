package handlers

import (
	"VChat/service/gateway"
	"VChat/tools/errs"
)

// MessageHandler relays a chat message to its receiver in real time.
// Persistence is the chat service's job; absent receivers simply miss the
// live copy and read it from history later.
type MessageHandler struct{}

func NewMessageHandler() gateway.Handler { return &MessageHandler{} }

func (h *MessageHandler) Type() gateway.MsgType { return gateway.MsgMessage }

func (h *MessageHandler) Handle(ctx *gateway.Context, sess *gateway.Session, env *gateway.Envelope) error {
	var p gateway.MessagePayload
	if err := env.Decode(&p); err != nil {
		return err
	}
	if p.ReceiverID == "" || p.Content == "" {
		return errs.ErrBadEnvelope.WithDetail("message: missing receiver_id or content")
	}
	out := gateway.NewEnvelope(gateway.MsgNewMessage, map[string]any{
		"sender": map[string]any{
			"user_id": sess.UserID,
		},
		"content":   p.Content,
		"timestamp": ctx.S.Timestamp(),
	})
	ctx.S.Router().SendDirect(p.ReceiverID, out.Marshal())
	return nil
}

// PrivateMessageHandler is the point-to-point variant used by the older
// clients: the payload goes out under the same type it came in with.
type PrivateMessageHandler struct{}

func NewPrivateMessageHandler() gateway.Handler { return &PrivateMessageHandler{} }

func (h *PrivateMessageHandler) Type() gateway.MsgType { return gateway.MsgPrivateMessage }

func (h *PrivateMessageHandler) Handle(ctx *gateway.Context, sess *gateway.Session, env *gateway.Envelope) error {
	var p gateway.PrivateMessagePayload
	if err := env.Decode(&p); err != nil {
		return err
	}
	if p.TargetUserID == "" {
		return errs.ErrBadEnvelope.WithDetail("private_message: missing target_user_id")
	}
	out := gateway.NewEnvelope(gateway.MsgPrivateMessage, map[string]any{
		"from_user_id": sess.UserID,
		"message":      p.Message,
		"timestamp":    ctx.S.Timestamp(),
	})
	ctx.S.Router().SendDirect(p.TargetUserID, out.Marshal())
	return nil
}

// RoomMessageHandler broadcasts into a room the sender belongs to,
// excluding the sender so nothing echoes back.
type RoomMessageHandler struct{}

func NewRoomMessageHandler() gateway.Handler { return &RoomMessageHandler{} }

func (h *RoomMessageHandler) Type() gateway.MsgType { return gateway.MsgRoomMessage }

func (h *RoomMessageHandler) Handle(ctx *gateway.Context, sess *gateway.Session, env *gateway.Envelope) error {
	var p gateway.RoomMessagePayload
	if err := env.Decode(&p); err != nil {
		return err
	}
	if p.RoomID == "" {
		return errs.ErrBadEnvelope.WithDetail("room_message: missing room_id")
	}
	if !ctx.S.Rooms().Contains(sess.UserID, p.RoomID) {
		return errs.NewCodeError(1201, "not a room member").WithDetail(p.RoomID)
	}
	out := gateway.NewEnvelope(gateway.MsgRoomMessage, map[string]any{
		"user_id":   sess.UserID,
		"room_id":   p.RoomID,
		"message":   p.Message,
		"timestamp": ctx.S.Timestamp(),
	})
	ctx.S.Router().SendToRoom(p.RoomID, out.Marshal(), sess.UserID)
	return nil
}
