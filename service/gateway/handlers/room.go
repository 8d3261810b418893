package handlers

import (
	"VChat/service/gateway"
	"VChat/tools/errs"
)

// JoinRoomHandler adds the user to the room and tells the existing
// members; the joiner hears nothing about itself.
type JoinRoomHandler struct{}

func NewJoinRoomHandler() gateway.Handler { return &JoinRoomHandler{} }

func (h *JoinRoomHandler) Type() gateway.MsgType { return gateway.MsgJoinRoom }

func (h *JoinRoomHandler) Handle(ctx *gateway.Context, sess *gateway.Session, env *gateway.Envelope) error {
	var p gateway.RoomPayload
	if err := env.Decode(&p); err != nil {
		return err
	}
	if p.RoomID == "" {
		return errs.ErrBadEnvelope.WithDetail("join_room: missing room_id")
	}
	ctx.S.Rooms().Join(sess.UserID, p.RoomID)

	out := gateway.NewEnvelope(gateway.MsgUserJoined, map[string]any{
		"user_id":   sess.UserID,
		"room_id":   p.RoomID,
		"timestamp": ctx.S.Timestamp(),
	})
	ctx.S.Router().SendToRoom(p.RoomID, out.Marshal(), sess.UserID)
	return nil
}

// LeaveRoomHandler removes the user and notifies the remaining members.
type LeaveRoomHandler struct{}

func NewLeaveRoomHandler() gateway.Handler { return &LeaveRoomHandler{} }

func (h *LeaveRoomHandler) Type() gateway.MsgType { return gateway.MsgLeaveRoom }

func (h *LeaveRoomHandler) Handle(ctx *gateway.Context, sess *gateway.Session, env *gateway.Envelope) error {
	var p gateway.RoomPayload
	if err := env.Decode(&p); err != nil {
		return err
	}
	if p.RoomID == "" {
		return errs.ErrBadEnvelope.WithDetail("leave_room: missing room_id")
	}
	ctx.S.Rooms().Leave(sess.UserID, p.RoomID)

	out := gateway.NewEnvelope(gateway.MsgUserLeft, map[string]any{
		"user_id":   sess.UserID,
		"room_id":   p.RoomID,
		"timestamp": ctx.S.Timestamp(),
	})
	ctx.S.Router().SendToRoom(p.RoomID, out.Marshal(), "")
	return nil
}
