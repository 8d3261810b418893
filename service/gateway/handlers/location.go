package handlers

import (
	"math"
	"sort"

	"VChat/service/gateway"
	"VChat/tools/errs"
)

// LocationUpdateHandler caches the reported position under a TTL so
// location data goes stale on its own when a client stops reporting.
type LocationUpdateHandler struct{}

func NewLocationUpdateHandler() gateway.Handler { return &LocationUpdateHandler{} }

func (h *LocationUpdateHandler) Type() gateway.MsgType { return gateway.MsgLocationUpdate }

func (h *LocationUpdateHandler) Handle(ctx *gateway.Context, sess *gateway.Session, env *gateway.Envelope) error {
	var p gateway.LocationUpdatePayload
	if err := env.Decode(&p); err != nil {
		return err
	}
	if p.Location.Lat == 0 && p.Location.Lng == 0 {
		return errs.ErrBadEnvelope.WithDetail("location_update: missing location")
	}
	cctx, cancel := ctx.S.CacheCtx()
	defer cancel()
	return ctx.S.Realtime().SetLocation(cctx, sess.UserID, p.Location)
}

// NearbyUsersHandler walks the online set, measures distance to every
// user with a cached location, and replies with the closest ones.
type NearbyUsersHandler struct{}

func NewNearbyUsersHandler() gateway.Handler { return &NearbyUsersHandler{} }

func (h *NearbyUsersHandler) Type() gateway.MsgType { return gateway.MsgGetNearbyUsers }

func (h *NearbyUsersHandler) Handle(ctx *gateway.Context, sess *gateway.Session, env *gateway.Envelope) error {
	var p gateway.NearbyUsersPayload
	if err := env.Decode(&p); err != nil {
		return err
	}
	maxDistance := p.MaxDistance
	if maxDistance <= 0 {
		maxDistance = 10 // km
	}

	cctx, cancel := ctx.S.CacheCtx()
	defer cancel()

	self, ok, err := ctx.S.Realtime().GetLocation(cctx, sess.UserID)
	if err != nil {
		return err
	}
	if !ok {
		return errs.NewCodeError(1202, "no known location").WithDetail(sess.UserID)
	}

	online, err := ctx.S.Presence().ListOnline(cctx)
	if err != nil {
		return err
	}

	type nearby struct {
		UserID   string  `json:"user_id"`
		Distance float64 `json:"distance"`
	}
	var found []nearby
	for _, uid := range online {
		if uid == sess.UserID {
			continue
		}
		loc, ok, err := ctx.S.Realtime().GetLocation(cctx, uid)
		if err != nil || !ok {
			continue
		}
		d := haversineKm(self.Lat, self.Lng, loc.Lat, loc.Lng)
		if d <= maxDistance {
			found = append(found, nearby{UserID: uid, Distance: d})
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].Distance < found[j].Distance })
	if limit := ctx.S.NearbyLimit(); len(found) > limit {
		found = found[:limit]
	}

	out := gateway.NewEnvelope(gateway.MsgNearbyUsers, map[string]any{
		"users":     found,
		"timestamp": ctx.S.Timestamp(),
	})
	ctx.S.Router().SendDirect(sess.UserID, out.Marshal())
	return nil
}

const earthRadiusKm = 6371

// haversineKm is the great-circle distance between two coordinates.
func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	rad := func(deg float64) float64 { return deg * math.Pi / 180 }
	lat1, lng1, lat2, lng2 = rad(lat1), rad(lng1), rad(lat2), rad(lng2)

	dlat := lat2 - lat1
	dlng := lng2 - lng1

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dlng/2)*math.Sin(dlng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}
