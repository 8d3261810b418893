package gateway

import (
	"encoding/json"

	"github.com/mitchellh/mapstructure"

	"VChat/tools/errs"
)

// MsgType tags every envelope on the wire.
type MsgType string

// Inbound types.
const (
	MsgPing           MsgType = "ping"
	MsgTyping         MsgType = "typing"
	MsgMessage        MsgType = "message"
	MsgRoomMessage    MsgType = "room_message"
	MsgPrivateMessage MsgType = "private_message"
	MsgCallSignal     MsgType = "call_signal"
	MsgICECandidate   MsgType = "ice_candidate"
	MsgJoinRoom       MsgType = "join_room"
	MsgLeaveRoom      MsgType = "leave_room"
	MsgPresenceQuery  MsgType = "presence_query"
	MsgLocationUpdate MsgType = "location_update"
	MsgGetNearbyUsers MsgType = "get_nearby_users"
)

// Outbound types.
const (
	MsgPong                  MsgType = "pong"
	MsgError                 MsgType = "error"
	MsgConnectionEstablished MsgType = "connection_established"
	MsgUserJoined            MsgType = "user_joined"
	MsgUserLeft              MsgType = "user_left"
	MsgNewMessage            MsgType = "new_message"
	MsgUserTyping            MsgType = "user_typing"
	MsgPresenceUpdate        MsgType = "presence_update"
	MsgNearbyUsers           MsgType = "nearby_users"
)

// Envelope is the outer wrapper around every WebSocket message, inbound
// or outbound: a type tag plus type-specific fields. The router
// never looks inside Data; handlers decode it into typed payloads.
type Envelope struct {
	Type MsgType        `json:"type"`
	Data map[string]any `json:"data,omitempty"`
}

func NewEnvelope(t MsgType, data map[string]any) *Envelope {
	return &Envelope{Type: t, Data: data}
}

// ErrorEnvelope is echoed back to the sender only; the connection stays
// open.
func ErrorEnvelope(msg string) *Envelope {
	return &Envelope{Type: MsgError, Data: map[string]any{"message": msg}}
}

// ParseEnvelope decodes a raw client frame.
func ParseEnvelope(raw []byte) (*Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, errs.ErrBadEnvelope.WithDetail(err.Error())
	}
	if e.Type == "" {
		return nil, errs.ErrBadEnvelope.WithDetail("missing type")
	}
	return &e, nil
}

// Decode maps the loose Data object onto a typed payload struct.
func (e *Envelope) Decode(out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  out,
		TagName: "mapstructure",
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(e.Data); err != nil {
		return errs.ErrBadEnvelope.WithDetail(err.Error())
	}
	return nil
}

// Marshal renders the envelope for the wire. Marshaling a map of JSON
// scalars cannot fail; errors are swallowed into an empty frame.
func (e *Envelope) Marshal() []byte {
	raw, err := json.Marshal(e)
	if err != nil {
		return []byte(`{"type":"error"}`)
	}
	return raw
}
