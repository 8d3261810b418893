package handlers

import (
	"VChat/service/gateway"
)

// RegisterAll wires every message handler into the server's dispatch
// table; called once from main after the server is constructed.
func RegisterAll(s *gateway.Server) {
	for _, h := range []gateway.Handler{
		NewPingHandler(),
		NewTypingHandler(),
		NewMessageHandler(),
		NewPrivateMessageHandler(),
		NewRoomMessageHandler(),
		NewJoinRoomHandler(),
		NewLeaveRoomHandler(),
		NewCallSignalHandler(),
		NewICECandidateHandler(),
		NewPresenceQueryHandler(),
		NewLocationUpdateHandler(),
		NewNearbyUsersHandler(),
	} {
		s.Disp().Register(h)
	}
}
