package converter

import (
	"fmt"
	"sort"
	"time"

	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"

	"github.com/theoremus-urban-solutions/transit-live/formatter"
)

// Arrival is one predicted arrival at a stop, in epoch seconds
type Arrival struct {
	TripID  string `json:"trip_id"`
	RouteID string `json:"route_id"`
	Arrival int64  `json:"arrival"`
}

// ArrivalsByStop groups every stop-time update by stop id. The arrival time
// is preferred; the departure time is used when arrival is absent, and
// updates with neither are skipped. Order within a stop follows the feed.
func ArrivalsByStop(feed *gtfsrtpb.FeedMessage) map[string][]Arrival {
	out := make(map[string][]Arrival)
	for _, e := range feed.GetEntity() {
		tu := e.GetTripUpdate()
		if tu == nil {
			continue
		}
		tripID := tu.GetTrip().GetTripId()
		routeID := tu.GetTrip().GetRouteId()

		for _, stu := range tu.GetStopTimeUpdate() {
			var at int64
			switch {
			case stu.Arrival != nil:
				at = stu.GetArrival().GetTime()
			case stu.Departure != nil:
				at = stu.GetDeparture().GetTime()
			default:
				continue
			}
			stopID := stu.GetStopId()
			out[stopID] = append(out[stopID], Arrival{TripID: tripID, RouteID: routeID, Arrival: at})
		}
	}
	return out
}

// MarshalArrivals encodes the artifact with two-space indentation.
// Map keys are written in sorted order, so equal input gives equal bytes.
func MarshalArrivals(byStop map[string][]Arrival) ([]byte, error) {
	if byStop == nil {
		byStop = map[string][]Arrival{}
	}
	b, err := formatter.MarshalIndent(byStop)
	if err != nil {
		return nil, fmt.Errorf("failed to encode arrivals: %w", err)
	}
	return b, nil
}

// UpcomingArrivals returns up to limit entries arriving at or after now,
// earliest first. A limit of zero or less returns all of them.
func UpcomingArrivals(entries []Arrival, now time.Time, limit int) []Arrival {
	cutoff := now.Unix()
	out := make([]Arrival, 0, len(entries))
	for _, a := range entries {
		if a.Arrival >= cutoff {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Arrival < out[j].Arrival })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
