package gtfs

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// BuildStopsGeoJSON emits one Point feature per stop, in table order, with
// stop_id and stop_name properties
func BuildStopsGeoJSON(feed *Feed) (*geojson.FeatureCollection, error) {
	fc := geojson.NewFeatureCollection()
	err := feed.eachRow(StopsFile, []string{"stop_id", "stop_lat", "stop_lon"}, func(r row) error {
		lat, err := r.float("stop_lat")
		if err != nil {
			return err
		}
		lon, err := r.float("stop_lon")
		if err != nil {
			return err
		}
		f := geojson.NewFeature(orb.Point{lon, lat})
		f.Properties["stop_id"] = r.get("stop_id")
		f.Properties["stop_name"] = r.get("stop_name")
		fc.Append(f)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return fc, nil
}
