package handlers

import (
	"VChat/logger"
	"VChat/service/gateway"
	"VChat/tools/errs"
)

// CallSignalHandler relays WebRTC signaling point-to-point. An offer
// creates the call-room record, a hangup deletes it, and every other
// frame renews its TTL so an active call's room does not expire
// mid-conversation.
type CallSignalHandler struct{}

func NewCallSignalHandler() gateway.Handler { return &CallSignalHandler{} }

func (h *CallSignalHandler) Type() gateway.MsgType { return gateway.MsgCallSignal }

func (h *CallSignalHandler) Handle(ctx *gateway.Context, sess *gateway.Session, env *gateway.Envelope) error {
	var p gateway.CallSignalPayload
	if err := env.Decode(&p); err != nil {
		return err
	}
	if p.CallID == "" || p.TargetUserID == "" || p.SignalType == "" {
		return errs.ErrBadEnvelope.WithDetail("call_signal: missing call_id/target_user_id/signal_type")
	}

	cctx, cancel := ctx.S.CacheCtx()
	defer cancel()
	switch p.SignalType {
	case "offer":
		room := map[string]any{
			"caller":     sess.UserID,
			"callee":     p.TargetUserID,
			"created_at": ctx.S.Timestamp(),
		}
		if err := ctx.S.Realtime().CreateCallRoom(cctx, p.CallID, room); err != nil {
			logger.Warnf("[call] create room call=%s err=%v", p.CallID, err)
		}
	case "call_end", "call_rejected":
		if err := ctx.S.Realtime().DeleteCallRoom(cctx, p.CallID); err != nil {
			logger.Warnf("[call] delete room call=%s err=%v", p.CallID, err)
		}
	default:
		touchCallRoom(ctx, p.CallID)
	}

	out := gateway.NewEnvelope(gateway.MsgCallSignal, map[string]any{
		"call_id":      p.CallID,
		"from_user_id": sess.UserID,
		"signal_type":  p.SignalType,
		"signal_data":  p.SignalData,
		"timestamp":    ctx.S.Timestamp(),
	})
	ctx.S.Router().SendDirect(p.TargetUserID, out.Marshal())
	return nil
}

// ICECandidateHandler relays ICE candidates the same way.
type ICECandidateHandler struct{}

func NewICECandidateHandler() gateway.Handler { return &ICECandidateHandler{} }

func (h *ICECandidateHandler) Type() gateway.MsgType { return gateway.MsgICECandidate }

func (h *ICECandidateHandler) Handle(ctx *gateway.Context, sess *gateway.Session, env *gateway.Envelope) error {
	var p gateway.ICECandidatePayload
	if err := env.Decode(&p); err != nil {
		return err
	}
	if p.CallID == "" || p.TargetUserID == "" || p.Candidate == nil {
		return errs.ErrBadEnvelope.WithDetail("ice_candidate: missing call_id/target_user_id/candidate")
	}

	touchCallRoom(ctx, p.CallID)

	out := gateway.NewEnvelope(gateway.MsgICECandidate, map[string]any{
		"call_id":      p.CallID,
		"from_user_id": sess.UserID,
		"candidate":    p.Candidate,
		"timestamp":    ctx.S.Timestamp(),
	})
	ctx.S.Router().SendDirect(p.TargetUserID, out.Marshal())
	return nil
}

func touchCallRoom(ctx *gateway.Context, callID string) {
	cctx, cancel := ctx.S.CacheCtx()
	defer cancel()
	if err := ctx.S.Realtime().TouchCallRoom(cctx, callID); err != nil {
		// signaling still goes through; the room record just ages
		logger.Warnf("[call] touch room call=%s err=%v", callID, err)
	}
}
