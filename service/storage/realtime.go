package storage

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// TTL-bounded realtime records living next to presence:
//   typing:<conversation>:<user>   typing indicator, short TTL
//   call_room:<call_id>            call room record for signaling
//   user_location:<user>           last reported location
func typingKey(conversationID, userID string) string {
	return "typing:" + conversationID + ":" + userID
}

func callRoomKey(callID string) string { return "call_room:" + callID }

func locationKey(userID string) string { return "user_location:" + userID }

// Location is a reported client position.
type Location struct {
	Lat float64 `json:"lat" mapstructure:"lat"`
	Lng float64 `json:"lng" mapstructure:"lng"`
}

type RealtimeConf struct {
	TypingTTL   time.Duration // default 5s
	CallRoomTTL time.Duration // default 1h
	LocationTTL time.Duration // default 1h
}

func (c *RealtimeConf) norm() {
	if c.TypingTTL <= 0 {
		c.TypingTTL = 5 * time.Second
	}
	if c.CallRoomTTL <= 0 {
		c.CallRoomTTL = time.Hour
	}
	if c.LocationTTL <= 0 {
		c.LocationTTL = time.Hour
	}
}

// Realtime owns the short-lived records that are written on the hot
// message path: typing indicators, call rooms, locations.
type Realtime struct {
	cache Cache
	conf  RealtimeConf
}

func NewRealtime(cache Cache, conf RealtimeConf) *Realtime {
	conf.norm()
	return &Realtime{cache: cache, conf: conf}
}

// ===== typing indicators =====

func (r *Realtime) SetTyping(ctx context.Context, conversationID, userID string) error {
	return r.cache.Set(ctx, typingKey(conversationID, userID), []byte("1"), r.conf.TypingTTL)
}

func (r *Realtime) ClearTyping(ctx context.Context, conversationID, userID string) error {
	return r.cache.Del(ctx, typingKey(conversationID, userID))
}

// TypingUsers lists users currently typing in the conversation; expired
// indicators drop out on their own via the TTL.
func (r *Realtime) TypingUsers(ctx context.Context, conversationID string) ([]string, error) {
	keys, err := r.cache.Keys(ctx, typingKey(conversationID, "*"))
	if err != nil {
		return nil, err
	}
	users := make([]string, 0, len(keys))
	for _, k := range keys {
		if i := strings.LastIndexByte(k, ':'); i >= 0 {
			users = append(users, k[i+1:])
		}
	}
	return users, nil
}

// ===== call rooms =====

func (r *Realtime) CreateCallRoom(ctx context.Context, callID string, room map[string]any) error {
	raw, err := json.Marshal(room)
	if err != nil {
		return err
	}
	return r.cache.Set(ctx, callRoomKey(callID), raw, r.conf.CallRoomTTL)
}

func (r *Realtime) GetCallRoom(ctx context.Context, callID string) (map[string]any, error) {
	raw, err := r.cache.Get(ctx, callRoomKey(callID))
	if err != nil {
		return nil, err
	}
	var room map[string]any
	if err := json.Unmarshal(raw, &room); err != nil {
		return nil, err
	}
	return room, nil
}

// UpdateCallRoom merges fields into the existing record and renews its
// TTL; a missing room is not an error (the record may have expired).
func (r *Realtime) UpdateCallRoom(ctx context.Context, callID string, fields map[string]any) error {
	room, err := r.GetCallRoom(ctx, callID)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil
		}
		return err
	}
	for k, v := range fields {
		room[k] = v
	}
	return r.CreateCallRoom(ctx, callID, room)
}

// TouchCallRoom renews the room TTL without changing its fields; used on
// every signaling frame so an active call never expires mid-flight.
func (r *Realtime) TouchCallRoom(ctx context.Context, callID string) error {
	return r.UpdateCallRoom(ctx, callID, nil)
}

func (r *Realtime) DeleteCallRoom(ctx context.Context, callID string) error {
	return r.cache.Del(ctx, callRoomKey(callID))
}

// ===== locations =====

func (r *Realtime) SetLocation(ctx context.Context, userID string, loc Location) error {
	raw, err := json.Marshal(loc)
	if err != nil {
		return err
	}
	return r.cache.Set(ctx, locationKey(userID), raw, r.conf.LocationTTL)
}

// GetLocation returns false when no location is known (expired or never
// reported).
func (r *Realtime) GetLocation(ctx context.Context, userID string) (Location, bool, error) {
	raw, err := r.cache.Get(ctx, locationKey(userID))
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return Location{}, false, nil
		}
		return Location{}, false, err
	}
	var loc Location
	if err := json.Unmarshal(raw, &loc); err != nil {
		return Location{}, false, err
	}
	return loc, true, nil
}
