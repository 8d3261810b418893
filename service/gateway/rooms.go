package gateway

import (
	"sync"
)

// RoomIndex tracks ad-hoc room membership both ways: room -> members and
// user -> rooms. The two maps change together under one lock, so after
// every mutation: user in members[room] <=> room in joined[user]. A room
// with no members is deleted eagerly.
type RoomIndex struct {
	mu      sync.RWMutex
	members map[string]map[string]struct{} // room -> user set
	joined  map[string]map[string]struct{} // user -> room set
}

func NewRoomIndex() *RoomIndex {
	return &RoomIndex{
		members: make(map[string]map[string]struct{}),
		joined:  make(map[string]map[string]struct{}),
	}
}

// Join is idempotent; joining a room twice is the same as joining once.
func (x *RoomIndex) Join(userID, roomID string) {
	if userID == "" || roomID == "" {
		return
	}
	x.mu.Lock()
	defer x.mu.Unlock()

	m := x.members[roomID]
	if m == nil {
		m = make(map[string]struct{})
		x.members[roomID] = m
	}
	m[userID] = struct{}{}

	j := x.joined[userID]
	if j == nil {
		j = make(map[string]struct{})
		x.joined[userID] = j
	}
	j[roomID] = struct{}{}
}

// Leave is idempotent; the room entry is dropped when it empties.
func (x *RoomIndex) Leave(userID, roomID string) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.leaveLocked(userID, roomID)
}

func (x *RoomIndex) leaveLocked(userID, roomID string) {
	if m := x.members[roomID]; m != nil {
		delete(m, userID)
		if len(m) == 0 {
			delete(x.members, roomID)
		}
	}
	if j := x.joined[userID]; j != nil {
		delete(j, roomID)
		if len(j) == 0 {
			delete(x.joined, userID)
		}
	}
}

// LeaveAll evicts the user from every room it belongs to and returns the
// rooms that were left; called when a connection goes away.
func (x *RoomIndex) LeaveAll(userID string) []string {
	x.mu.Lock()
	defer x.mu.Unlock()

	j := x.joined[userID]
	if len(j) == 0 {
		delete(x.joined, userID)
		return nil
	}
	rooms := make([]string, 0, len(j))
	for roomID := range j {
		rooms = append(rooms, roomID)
	}
	for _, roomID := range rooms {
		x.leaveLocked(userID, roomID)
	}
	return rooms
}

// MembersOf returns a snapshot of the room's member set; an unknown room
// yields an empty slice, not an error.
func (x *RoomIndex) MembersOf(roomID string) []string {
	x.mu.RLock()
	defer x.mu.RUnlock()
	m := x.members[roomID]
	out := make([]string, 0, len(m))
	for u := range m {
		out = append(out, u)
	}
	return out
}

// RoomsOf returns a snapshot of the rooms the user belongs to.
func (x *RoomIndex) RoomsOf(userID string) []string {
	x.mu.RLock()
	defer x.mu.RUnlock()
	j := x.joined[userID]
	out := make([]string, 0, len(j))
	for r := range j {
		out = append(out, r)
	}
	return out
}

// Contains reports whether the user is currently a member of the room.
func (x *RoomIndex) Contains(userID, roomID string) bool {
	x.mu.RLock()
	defer x.mu.RUnlock()
	m := x.members[roomID]
	if m == nil {
		return false
	}
	_, ok := m[userID]
	return ok
}
