package gateway

import (
	"VChat/tools/errs"
)

// Handler processes one inbound message type. Adding a type means adding
// one Handler and registering it; nothing else changes.
type Handler interface {
	Type() MsgType
	Handle(ctx *Context, sess *Session, env *Envelope) error
}

// Dispatcher is the tag -> handler table.
type Dispatcher struct {
	handlers map[MsgType]Handler
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[MsgType]Handler)}
}

func (d *Dispatcher) Register(h Handler) { d.handlers[h.Type()] = h }

func (d *Dispatcher) Get(t MsgType) (Handler, bool) {
	h, ok := d.handlers[t]
	return h, ok
}

func (d *Dispatcher) Dispatch(ctx *Context, sess *Session, env *Envelope) error {
	h, ok := d.handlers[env.Type]
	if !ok {
		return errs.ErrUnknownType.WithDetail(string(env.Type))
	}
	return h.Handle(ctx, sess, env)
}
