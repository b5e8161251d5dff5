/*
Package gtfs converts static GTFS schedule tables into the artifacts the map
client loads: stop and route geometry as GeoJSON, route metadata, and a
per-stop timetable.

It reads from a GTFS directory or zip archive and never touches the network.

# Basic Usage

	feed, err := gtfs.Open("static/gtfs")
	if err != nil {
	    log.Fatal(err)
	}
	defer feed.Close()

	written, err := gtfs.Run(feed, "static")

Run writes stops.geojson, routes.geojson, routes.json, stop_schedule.json
and stops_by_route.json into the output directory. The individual Build
functions return the in-memory values for callers that only need one.

# Determinism

Output depends only on the input tables: features keep table order, map
keys are written sorted, and ties in sorts keep input order. Running twice
over unchanged input yields byte-identical files.

# Errors

A table with a malformed coordinate or sequence number aborts the run with
an error naming the table and line. Rows with unusable stop times are not
errors; they are skipped.
*/
package gtfs
