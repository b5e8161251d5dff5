package gtfs

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/theoremus-urban-solutions/transit-live/formatter"
)

// Output file names
const (
	StopsGeoJSONFile  = "stops.geojson"
	RoutesGeoJSONFile = "routes.geojson"
	RoutesJSONFile    = "routes.json"
	StopScheduleFile  = "stop_schedule.json"
	StopsByRouteFile  = "stops_by_route.json"
)

// Run builds every artifact from feed and writes it into outDir, returning
// the paths written. Tables a feed lacks skip the artifacts that need them.
func Run(feed *Feed, outDir string) ([]string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", outDir, err)
	}

	var written []string
	write := func(name string, b []byte) error {
		p := filepath.Join(outDir, name)
		if err := os.WriteFile(p, b, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", p, err)
		}
		written = append(written, p)
		return nil
	}

	if feed.Has(StopsFile) {
		fc, err := BuildStopsGeoJSON(feed)
		if err != nil {
			return written, err
		}
		b, err := formatter.MarshalIndent(fc)
		if err != nil {
			return written, err
		}
		if err := write(StopsGeoJSONFile, b); err != nil {
			return written, err
		}
	}

	if feed.Has(ShapesFile) {
		fc, err := BuildRoutesGeoJSON(feed)
		if err != nil {
			return written, err
		}
		b, err := formatter.Marshal(fc)
		if err != nil {
			return written, err
		}
		if err := write(RoutesGeoJSONFile, b); err != nil {
			return written, err
		}
	}

	if feed.Has(RoutesFile) {
		routes, err := BuildRoutes(feed)
		if err != nil {
			return written, err
		}
		b, err := formatter.MarshalIndent(routes)
		if err != nil {
			return written, err
		}
		if err := write(RoutesJSONFile, b); err != nil {
			return written, err
		}
	}

	if feed.Has(TripsFile) && feed.Has(StopTimesFile) {
		schedule, err := BuildStopSchedule(feed)
		if err != nil {
			return written, err
		}
		b, err := formatter.MarshalIndent(schedule)
		if err != nil {
			return written, err
		}
		if err := write(StopScheduleFile, b); err != nil {
			return written, err
		}

		b, err = formatter.MarshalIndent(BuildStopsByRoute(schedule))
		if err != nil {
			return written, err
		}
		if err := write(StopsByRouteFile, b); err != nil {
			return written, err
		}
	}

	return written, nil
}
