package handlers

import (
	"VChat/service/gateway"
	"VChat/tools/errs"
)

// TypingHandler mirrors the indicator into the cache (short TTL, so a
// crashed client stops "typing" on its own) and forwards it to the other
// side of the conversation.
type TypingHandler struct{}

func NewTypingHandler() gateway.Handler { return &TypingHandler{} }

func (h *TypingHandler) Type() gateway.MsgType { return gateway.MsgTyping }

func (h *TypingHandler) Handle(ctx *gateway.Context, sess *gateway.Session, env *gateway.Envelope) error {
	var p gateway.TypingPayload
	if err := env.Decode(&p); err != nil {
		return err
	}
	if p.ConversationID == "" {
		return errs.ErrBadEnvelope.WithDetail("typing: missing conversation_id")
	}

	cctx, cancel := ctx.S.CacheCtx()
	defer cancel()
	if p.IsTyping {
		if err := ctx.S.Realtime().SetTyping(cctx, p.ConversationID, sess.UserID); err != nil {
			return err
		}
	} else {
		if err := ctx.S.Realtime().ClearTyping(cctx, p.ConversationID, sess.UserID); err != nil {
			return err
		}
	}

	if p.TargetUserID == "" {
		return nil
	}
	out := gateway.NewEnvelope(gateway.MsgUserTyping, map[string]any{
		"user_id":         sess.UserID,
		"conversation_id": p.ConversationID,
		"is_typing":       p.IsTyping,
		"timestamp":       ctx.S.Timestamp(),
	})
	ctx.S.Router().SendDirect(p.TargetUserID, out.Marshal())
	return nil
}
