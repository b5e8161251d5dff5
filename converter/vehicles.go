package converter

import (
	"fmt"

	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
)

// FieldSet selects how much of each vehicle is emitted
type FieldSet int

const (
	// FieldsDetailed emits id, route, position and trip progress
	FieldsDetailed FieldSet = iota
	// FieldsBasic emits id, route_id, lat and lon only
	FieldsBasic
)

func (f FieldSet) String() string {
	if f == FieldsBasic {
		return "basic"
	}
	return "detailed"
}

// ParseFieldSet maps "basic" or "detailed" to a FieldSet
func ParseFieldSet(s string) (FieldSet, error) {
	switch s {
	case "basic":
		return FieldsBasic, nil
	case "detailed", "":
		return FieldsDetailed, nil
	}
	return FieldsDetailed, fmt.Errorf("unknown field set %q", s)
}

// MovementStatus is the vehicle's relation to its current stop
type MovementStatus string

const (
	StatusIncomingAt  MovementStatus = "INCOMING_AT"
	StatusStoppedAt   MovementStatus = "STOPPED_AT"
	StatusInTransitTo MovementStatus = "IN_TRANSIT_TO"
	StatusUnknown     MovementStatus = "UNKNOWN"
)

// StatusFor maps the protobuf enum. Absent or unrecognised values are UNKNOWN;
// the pointer is checked because the generated getter defaults to IN_TRANSIT_TO.
func StatusFor(s *gtfsrtpb.VehiclePosition_VehicleStopStatus) MovementStatus {
	if s == nil {
		return StatusUnknown
	}
	switch *s {
	case gtfsrtpb.VehiclePosition_INCOMING_AT:
		return StatusIncomingAt
	case gtfsrtpb.VehiclePosition_STOPPED_AT:
		return StatusStoppedAt
	case gtfsrtpb.VehiclePosition_IN_TRANSIT_TO:
		return StatusInTransitTo
	}
	return StatusUnknown
}

// Vehicle is one positioned vehicle. Detail is nil for FieldsBasic.
type Vehicle struct {
	ID      string  `json:"id"`
	RouteID string  `json:"route_id"`
	Lat     float32 `json:"lat"`
	Lon     float32 `json:"lon"`
	*VehicleDetail
}

// VehicleDetail holds the FieldsDetailed extras; optional values encode as null
type VehicleDetail struct {
	TripID              string         `json:"trip_id"`
	StartDate           string         `json:"start_date"`
	Timestamp           *uint64        `json:"timestamp"`
	CurrentStatus       MovementStatus `json:"current_status"`
	CurrentStopSequence *uint32        `json:"current_stop_sequence"`
	StopID              *string        `json:"stop_id"`
}

// Vehicles returns every entity carrying a usable position and identifier,
// in feed order. The identifier is the vehicle descriptor id, falling back to
// the trip id. The result is never nil.
func Vehicles(feed *gtfsrtpb.FeedMessage, fields FieldSet) []Vehicle {
	out := make([]Vehicle, 0, len(feed.GetEntity()))
	for _, e := range feed.GetEntity() {
		vp := e.GetVehicle()
		if vp == nil {
			continue
		}
		pos := vp.GetPosition()
		if pos == nil || pos.Latitude == nil || pos.Longitude == nil {
			continue
		}
		id := vehicleID(vp)
		if id == "" {
			continue
		}

		v := Vehicle{
			ID:      id,
			RouteID: vp.GetTrip().GetRouteId(),
			Lat:     pos.GetLatitude(),
			Lon:     pos.GetLongitude(),
		}
		if fields == FieldsDetailed {
			v.VehicleDetail = &VehicleDetail{
				TripID:              vp.GetTrip().GetTripId(),
				StartDate:           vp.GetTrip().GetStartDate(),
				Timestamp:           vp.Timestamp,
				CurrentStatus:       StatusFor(vp.CurrentStatus),
				CurrentStopSequence: vp.CurrentStopSequence,
				StopID:              vp.StopId,
			}
		}
		out = append(out, v)
	}
	return out
}

func vehicleID(vp *gtfsrtpb.VehiclePosition) string {
	if id := vp.GetVehicle().GetId(); id != "" {
		return id
	}
	return vp.GetTrip().GetTripId()
}
