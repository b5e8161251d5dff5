package gtfs

import (
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

type shapePoint struct {
	seq      int
	lat, lon float64
}

// BuildRoutesGeoJSON emits one LineString per shape, ordered by
// shape_pt_sequence, with shape_id and route_id properties. route_id is
// null when no trip references the shape. Shapes keep first-seen order.
func BuildRoutesGeoJSON(feed *Feed) (*geojson.FeatureCollection, error) {
	shapeRoute, err := shapeRoutes(feed)
	if err != nil {
		return nil, err
	}

	var order []string
	points := make(map[string][]shapePoint)
	err = feed.eachRow(ShapesFile, []string{"shape_id", "shape_pt_lat", "shape_pt_lon", "shape_pt_sequence"}, func(r row) error {
		lat, err := r.float("shape_pt_lat")
		if err != nil {
			return err
		}
		lon, err := r.float("shape_pt_lon")
		if err != nil {
			return err
		}
		seq, err := r.int("shape_pt_sequence")
		if err != nil {
			return err
		}
		id := r.get("shape_id")
		if _, ok := points[id]; !ok {
			order = append(order, id)
		}
		points[id] = append(points[id], shapePoint{seq: seq, lat: lat, lon: lon})
		return nil
	})
	if err != nil {
		return nil, err
	}

	fc := geojson.NewFeatureCollection()
	for _, id := range order {
		pts := points[id]
		sort.SliceStable(pts, func(i, j int) bool {
			a, b := pts[i], pts[j]
			if a.seq != b.seq {
				return a.seq < b.seq
			}
			if a.lat != b.lat {
				return a.lat < b.lat
			}
			return a.lon < b.lon
		})
		line := make(orb.LineString, len(pts))
		for i, p := range pts {
			line[i] = orb.Point{p.lon, p.lat}
		}

		f := geojson.NewFeature(line)
		f.Properties["shape_id"] = id
		if routeID, ok := shapeRoute[id]; ok {
			f.Properties["route_id"] = routeID
		} else {
			f.Properties["route_id"] = nil
		}
		fc.Append(f)
	}
	return fc, nil
}

// shapeRoutes maps shape_id to route_id; a later trip overrides an earlier one
func shapeRoutes(feed *Feed) (map[string]string, error) {
	out := make(map[string]string)
	if !feed.Has(TripsFile) {
		return out, nil
	}
	err := feed.eachRow(TripsFile, []string{"route_id"}, func(r row) error {
		if id := r.get("shape_id"); id != "" {
			out[id] = r.get("route_id")
		}
		return nil
	})
	return out, err
}
