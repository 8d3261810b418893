package handlers

import (
	"VChat/service/gateway"
	"VChat/tools/errs"
)

// PresenceQueryHandler answers "who of these is online" from the cache's
// view, which may lag the registry by up to the status TTL.
type PresenceQueryHandler struct{}

func NewPresenceQueryHandler() gateway.Handler { return &PresenceQueryHandler{} }

func (h *PresenceQueryHandler) Type() gateway.MsgType { return gateway.MsgPresenceQuery }

func (h *PresenceQueryHandler) Handle(ctx *gateway.Context, sess *gateway.Session, env *gateway.Envelope) error {
	var p gateway.PresenceQueryPayload
	if err := env.Decode(&p); err != nil {
		return err
	}
	if len(p.UserIDs) == 0 {
		return errs.ErrBadEnvelope.WithDetail("presence_query: missing user_ids")
	}

	cctx, cancel := ctx.S.CacheCtx()
	defer cancel()

	presence := make(map[string]any, len(p.UserIDs))
	for _, uid := range p.UserIDs {
		online, err := ctx.S.Presence().IsOnline(cctx, uid)
		if err != nil {
			return err
		}
		rec, err := ctx.S.Presence().Status(cctx, uid)
		if err != nil {
			return err
		}
		presence[uid] = map[string]any{
			"online":    online,
			"status":    rec.Status,
			"last_seen": rec.LastSeen,
		}
	}

	out := gateway.NewEnvelope(gateway.MsgPresenceUpdate, map[string]any{
		"presence":  presence,
		"timestamp": ctx.S.Timestamp(),
	})
	ctx.S.Router().SendDirect(sess.UserID, out.Marshal())
	return nil
}
