package gtfsrt

import (
	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"
)

// Required proto2 fields are not enforced; a position without a latitude or
// an entity without an id is left for the converters to filter.
var unmarshalOptions = proto.UnmarshalOptions{AllowPartial: true}

// Decode parses a GTFS-Realtime FeedMessage. It has no side effects.
func Decode(b []byte) (*gtfsrtpb.FeedMessage, error) {
	var fm gtfsrtpb.FeedMessage
	if err := unmarshalOptions.Unmarshal(b, &fm); err != nil {
		return nil, &FeedError{Kind: KindDecode, Err: err}
	}
	return &fm, nil
}

// HeaderTimestamp returns the feed header timestamp, or 0 when absent
func HeaderTimestamp(fm *gtfsrtpb.FeedMessage) int64 {
	if fm == nil || fm.Header == nil || fm.Header.Timestamp == nil {
		return 0
	}
	return int64(*fm.Header.Timestamp)
}
