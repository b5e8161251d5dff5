package converter

import (
	"sort"

	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
)

// RouteIDs returns the sorted, de-duplicated route ids of every active
// vehicle. The result is never nil.
func RouteIDs(feed *gtfsrtpb.FeedMessage) []string {
	seen := make(map[string]struct{})
	for _, e := range feed.GetEntity() {
		v := e.GetVehicle()
		if v == nil || v.GetTrip() == nil {
			continue
		}
		if id := v.GetTrip().GetRouteId(); id != "" {
			seen[id] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
