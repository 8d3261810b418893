package gateway

import "VChat/service/storage"

// Typed payloads for the inbound envelope types. Field names follow the
// client wire format; handlers validate required fields after decoding.

type PingPayload struct {
	Timestamp string `mapstructure:"timestamp"`
}

type TypingPayload struct {
	ConversationID string `mapstructure:"conversation_id"`
	TargetUserID   string `mapstructure:"target_user_id"`
	IsTyping       bool   `mapstructure:"is_typing"`
}

type MessagePayload struct {
	ReceiverID string `mapstructure:"receiver_id"`
	Content    string `mapstructure:"content"`
}

type PrivateMessagePayload struct {
	TargetUserID string `mapstructure:"target_user_id"`
	Message      string `mapstructure:"message"`
}

type RoomMessagePayload struct {
	RoomID  string `mapstructure:"room_id"`
	Message string `mapstructure:"message"`
}

type RoomPayload struct {
	RoomID string `mapstructure:"room_id"`
}

type CallSignalPayload struct {
	CallID       string `mapstructure:"call_id"`
	TargetUserID string `mapstructure:"target_user_id"`
	SignalType   string `mapstructure:"signal_type"`
	SignalData   any    `mapstructure:"signal_data"`
}

type ICECandidatePayload struct {
	CallID       string `mapstructure:"call_id"`
	TargetUserID string `mapstructure:"target_user_id"`
	Candidate    any    `mapstructure:"candidate"`
}

type PresenceQueryPayload struct {
	UserIDs []string `mapstructure:"user_ids"`
}

type LocationUpdatePayload struct {
	Location storage.Location `mapstructure:"location"`
}

type NearbyUsersPayload struct {
	MaxDistance float64 `mapstructure:"max_distance"` // km
}
