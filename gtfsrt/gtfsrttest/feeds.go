// Package gtfsrttest builds GTFS-Realtime fixtures in code for tests.
package gtfsrttest

import (
	"net/http"
	"net/http/httptest"
	"testing"

	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"
)

// Feed returns a FeedMessage with a valid header and the given entities
func Feed(timestamp uint64, entities ...*gtfsrtpb.FeedEntity) *gtfsrtpb.FeedMessage {
	return &gtfsrtpb.FeedMessage{
		Header: &gtfsrtpb.FeedHeader{
			GtfsRealtimeVersion: proto.String("2.0"),
			Timestamp:           proto.Uint64(timestamp),
		},
		Entity: entities,
	}
}

// VehicleOpts describes one vehicle entity; zero values are left unset
type VehicleOpts struct {
	VehicleID    string
	TripID       string
	RouteID      string
	StartDate    string
	StopID       string
	Lat, Lon     float32
	NoPosition   bool
	Timestamp    uint64
	Status       *gtfsrtpb.VehiclePosition_VehicleStopStatus
	StopSequence uint32
	HasStopSeq   bool
}

// Vehicle builds a vehicle-position entity with id entityID
func Vehicle(entityID string, o VehicleOpts) *gtfsrtpb.FeedEntity {
	vp := &gtfsrtpb.VehiclePosition{CurrentStatus: o.Status}
	if o.TripID != "" || o.RouteID != "" || o.StartDate != "" {
		vp.Trip = &gtfsrtpb.TripDescriptor{}
		if o.TripID != "" {
			vp.Trip.TripId = proto.String(o.TripID)
		}
		if o.RouteID != "" {
			vp.Trip.RouteId = proto.String(o.RouteID)
		}
		if o.StartDate != "" {
			vp.Trip.StartDate = proto.String(o.StartDate)
		}
	}
	if o.VehicleID != "" {
		vp.Vehicle = &gtfsrtpb.VehicleDescriptor{Id: proto.String(o.VehicleID)}
	}
	if !o.NoPosition {
		vp.Position = &gtfsrtpb.Position{
			Latitude:  proto.Float32(o.Lat),
			Longitude: proto.Float32(o.Lon),
		}
	}
	if o.Timestamp != 0 {
		vp.Timestamp = proto.Uint64(o.Timestamp)
	}
	if o.HasStopSeq {
		vp.CurrentStopSequence = proto.Uint32(o.StopSequence)
	}
	if o.StopID != "" {
		vp.StopId = proto.String(o.StopID)
	}
	return &gtfsrtpb.FeedEntity{Id: entityIDOrNil(entityID), Vehicle: vp}
}

// entityIDOrNil leaves FeedEntity.id unset for an empty id
func entityIDOrNil(id string) *string {
	if id == "" {
		return nil
	}
	return proto.String(id)
}

// StopTime is one stop-time update; zero Arrival/Departure means absent
type StopTime struct {
	StopID    string
	Arrival   int64
	Departure int64
}

// TripUpdate builds a trip-update entity
func TripUpdate(entityID, tripID, routeID string, stops ...StopTime) *gtfsrtpb.FeedEntity {
	tu := &gtfsrtpb.TripUpdate{
		Trip: &gtfsrtpb.TripDescriptor{
			TripId:  proto.String(tripID),
			RouteId: proto.String(routeID),
		},
	}
	for _, st := range stops {
		stu := &gtfsrtpb.TripUpdate_StopTimeUpdate{StopId: proto.String(st.StopID)}
		if st.Arrival != 0 {
			stu.Arrival = &gtfsrtpb.TripUpdate_StopTimeEvent{Time: proto.Int64(st.Arrival)}
		}
		if st.Departure != 0 {
			stu.Departure = &gtfsrtpb.TripUpdate_StopTimeEvent{Time: proto.Int64(st.Departure)}
		}
		tu.StopTimeUpdate = append(tu.StopTimeUpdate, stu)
	}
	return &gtfsrtpb.FeedEntity{Id: entityIDOrNil(entityID), TripUpdate: tu}
}

// Status returns a pointer to s
func Status(s gtfsrtpb.VehiclePosition_VehicleStopStatus) *gtfsrtpb.VehiclePosition_VehicleStopStatus {
	return &s
}

// Marshal encodes fm, failing the test on error
func Marshal(t testing.TB, fm *gtfsrtpb.FeedMessage) []byte {
	t.Helper()
	b, err := proto.Marshal(fm)
	if err != nil {
		t.Fatalf("marshal feed: %v", err)
	}
	return b
}

// MarshalPartial encodes fm even when proto2 required fields are unset,
// as real producers sometimes do
func MarshalPartial(t testing.TB, fm *gtfsrtpb.FeedMessage) []byte {
	t.Helper()
	b, err := proto.MarshalOptions{AllowPartial: true}.Marshal(fm)
	if err != nil {
		t.Fatalf("marshal partial feed: %v", err)
	}
	return b
}

// Upstream serves body with status from an httptest server closed at test end
func Upstream(t testing.TB, status int, body []byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-protobuf")
		w.WriteHeader(status)
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}
