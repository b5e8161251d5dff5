package gtfs

import (
	"math"
	"sort"
	"strings"

	"github.com/theoremus-urban-solutions/transit-live/utils"
)

// ScheduledArrival is one timetable entry at a stop
type ScheduledArrival struct {
	ArrivalTime   string `json:"arrival_time"`
	DepartureTime string `json:"departure_time"`
	RouteID       string `json:"route_id"`
	ServiceID     string `json:"service_id"`
}

type tripInfo struct {
	routeID, serviceID string
}

// BuildStopSchedule groups stop times by stop. Rows whose arrival or
// departure is empty or has no colon are skipped. Each stop's entries are
// de-duplicated on all four fields, keeping the first, then sorted by
// arrival time.
func BuildStopSchedule(feed *Feed) (map[string][]ScheduledArrival, error) {
	trips := make(map[string]tripInfo)
	err := feed.eachRow(TripsFile, []string{"trip_id", "route_id"}, func(r row) error {
		trips[r.get("trip_id")] = tripInfo{routeID: r.get("route_id"), serviceID: r.get("service_id")}
		return nil
	})
	if err != nil {
		return nil, err
	}

	schedule := make(map[string][]ScheduledArrival)
	seen := make(map[string]map[ScheduledArrival]struct{})
	err = feed.eachRow(StopTimesFile, []string{"trip_id", "stop_id", "arrival_time", "departure_time"}, func(r row) error {
		arr, dep := r.get("arrival_time"), r.get("departure_time")
		if !strings.Contains(arr, ":") || !strings.Contains(dep, ":") {
			return nil
		}
		trip := trips[r.get("trip_id")]
		entry := ScheduledArrival{
			ArrivalTime:   arr,
			DepartureTime: dep,
			RouteID:       trip.routeID,
			ServiceID:     trip.serviceID,
		}

		stopID := r.get("stop_id")
		if seen[stopID] == nil {
			seen[stopID] = make(map[ScheduledArrival]struct{})
		}
		if _, dup := seen[stopID][entry]; dup {
			return nil
		}
		seen[stopID][entry] = struct{}{}
		schedule[stopID] = append(schedule[stopID], entry)
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, entries := range schedule {
		SortByArrival(entries)
	}
	return schedule, nil
}

// SortByArrival orders entries by arrival time as seconds since midnight.
// Unparseable times sort after every valid time; ties keep input order.
func SortByArrival(entries []ScheduledArrival) {
	key := func(s string) int {
		if secs, ok := utils.ParseClock(s); ok {
			return secs
		}
		return math.MaxInt
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return key(entries[i].ArrivalTime) < key(entries[j].ArrivalTime)
	})
}

// BuildStopsByRoute maps each route to the sorted, unique stop ids it serves
func BuildStopsByRoute(schedule map[string][]ScheduledArrival) map[string][]string {
	sets := make(map[string]map[string]struct{})
	for stopID, entries := range schedule {
		for _, e := range entries {
			if e.RouteID == "" {
				continue
			}
			if sets[e.RouteID] == nil {
				sets[e.RouteID] = make(map[string]struct{})
			}
			sets[e.RouteID][stopID] = struct{}{}
		}
	}

	out := make(map[string][]string, len(sets))
	for routeID, stops := range sets {
		ids := make([]string, 0, len(stops))
		for id := range stops {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		out[routeID] = ids
	}
	return out
}
