package gateway

import (
	"VChat/logger"
)

// Router resolves a delivery target (single user, room, or everyone) to
// live channels and performs best-effort delivery: no retry, no queueing.
// A failed channel write means the peer is gone, so the router invokes
// onFailure with the user and the exact channel that failed; the detach
// path uses the channel to leave a reconnected replacement alone.
// Per-recipient failures are isolated; one broken member never aborts
// delivery to the rest.
type Router struct {
	reg       *Registry
	rooms     *RoomIndex
	fan       *Fanout
	onFailure func(userID string, ch Channel)
}

func NewRouter(reg *Registry, rooms *RoomIndex, fan *Fanout, onFailure func(userID string, ch Channel)) *Router {
	if onFailure == nil {
		onFailure = func(string, Channel) {}
	}
	return &Router{reg: reg, rooms: rooms, fan: fan, onFailure: onFailure}
}

// SendDirect delivers to a single user. Returns false when the user has
// no live channel or the write failed; an absent target is not an error,
// these are notification semantics.
func (r *Router) SendDirect(userID string, payload []byte) bool {
	ch, ok := r.reg.Lookup(userID)
	if !ok {
		return false
	}
	if err := ch.Send(payload); err != nil {
		logger.Warnf("[router] direct write failed user=%s err=%v", userID, err)
		r.onFailure(userID, ch)
		return false
	}
	return true
}

// SendToRoom delivers to every member of the room except excludeUserID.
// Membership is snapshotted before any write so no lock is held across
// the network. Returns the number of successful deliveries.
func (r *Router) SendToRoom(roomID string, payload []byte, excludeUserID string) int {
	delivered := 0
	for _, userID := range r.rooms.MembersOf(roomID) {
		if userID == excludeUserID {
			continue
		}
		ch, ok := r.reg.Lookup(userID)
		if !ok {
			continue
		}
		if err := ch.Send(payload); err != nil {
			logger.Warnf("[router] room write failed room=%s user=%s err=%v", roomID, userID, err)
			r.onFailure(userID, ch)
			continue
		}
		delivered++
	}
	return delivered
}

// Broadcast delivers to every registered connection except excludeUserID.
func (r *Router) Broadcast(payload []byte, excludeUserID string) int {
	delivered := 0
	for userID, ch := range r.reg.Snapshot() {
		if userID == excludeUserID {
			continue
		}
		if err := ch.Send(payload); err != nil {
			logger.Warnf("[router] broadcast write failed user=%s err=%v", userID, err)
			r.onFailure(userID, ch)
			continue
		}
		delivered++
	}
	return delivered
}

// BroadcastAsync hands the fanout pool a snapshot of all connections;
// used for notifications where the caller must not block on slow peers.
func (r *Router) BroadcastAsync(payload []byte, excludeUserID string) {
	snap := r.reg.Snapshot()
	targets := make([]fanoutTarget, 0, len(snap))
	for userID, ch := range snap {
		if userID == excludeUserID {
			continue
		}
		targets = append(targets, fanoutTarget{userID: userID, ch: ch})
	}
	r.fan.Enqueue(targets, payload)
}
