package gtfs

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var minimalTables = map[string]string{
	StopsFile: "\ufeffstop_id,stop_name,stop_lat,stop_lon\n" +
		"S1,King & Simcoe,43.9,-78.9\n" +
		"S2,Stop 2,43.8,-78.8\n",
	RoutesFile: "route_id,route_short_name,route_long_name,route_color,route_text_color\n" +
		"900,900,Pulse,E31837,FFFFFF\n" +
		"920,920,Crosstown,,\n",
	TripsFile: "route_id,service_id,trip_id,shape_id\n" +
		"900,WKDY,T1,SH1\n" +
		"920,WKDY,T2,\n",
	StopTimesFile: "trip_id,arrival_time,departure_time,stop_id,stop_sequence\n" +
		"T1,08:10:00,08:10:00,S1,1\n" +
		"T1,07:59:00,07:59:00,S1,2\n" +
		"T1,08:10:00,08:10:00,S1,3\n" +
		"T1,,08:20:00,S1,4\n" +
		"T1,0830,0830,S1,5\n" +
		"T2,09:00:00,09:00:00,S2,1\n" +
		"T2,25:00:00,25:00:00,S1,2\n",
	ShapesFile: "shape_id,shape_pt_lat,shape_pt_lon,shape_pt_sequence\n" +
		"SH1,43.3,-78.3,3\n" +
		"SH1,43.1,-78.1,1\n" +
		"SH2,44.0,-79.0,1\n" +
		"SH1,43.2,-78.2,2\n",
}

func writeDir(t *testing.T, tables map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range tables {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	return dir
}

func writeZip(t *testing.T, tables map[string]string) string {
	t.Helper()
	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)
	for name, body := range tables {
		f, err := w.Create("gtfs/" + name)
		require.NoError(t, err)
		_, err = f.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	p := filepath.Join(t.TempDir(), "gtfs.zip")
	require.NoError(t, os.WriteFile(p, buf.Bytes(), 0o644))
	return p
}

func openFeed(t *testing.T, p string) *Feed {
	t.Helper()
	feed, err := Open(p)
	require.NoError(t, err)
	t.Cleanup(func() { _ = feed.Close() })
	return feed
}

func TestBuildStopSchedule(t *testing.T) {
	schedule, err := BuildStopSchedule(openFeed(t, writeDir(t, minimalTables)))
	require.NoError(t, err)

	assert.Equal(t, []ScheduledArrival{
		{ArrivalTime: "07:59:00", DepartureTime: "07:59:00", RouteID: "900", ServiceID: "WKDY"},
		{ArrivalTime: "08:10:00", DepartureTime: "08:10:00", RouteID: "900", ServiceID: "WKDY"},
		{ArrivalTime: "25:00:00", DepartureTime: "25:00:00", RouteID: "920", ServiceID: "WKDY"},
	}, schedule["S1"])
	assert.Len(t, schedule["S2"], 1)
}

func TestSortByArrivalMalformedLast(t *testing.T) {
	entries := []ScheduledArrival{
		{ArrivalTime: "bad", RouteID: "a"},
		{ArrivalTime: "08:10:00", RouteID: "b"},
		{ArrivalTime: "07:59:00", RouteID: "c"},
		{ArrivalTime: "x:y", RouteID: "d"},
	}
	SortByArrival(entries)

	got := make([]string, len(entries))
	for i, e := range entries {
		got[i] = e.ArrivalTime
	}
	assert.Equal(t, []string{"07:59:00", "08:10:00", "bad", "x:y"}, got)
}

func TestBuildStopsByRoute(t *testing.T) {
	schedule, err := BuildStopSchedule(openFeed(t, writeDir(t, minimalTables)))
	require.NoError(t, err)

	assert.Equal(t, map[string][]string{
		"900": {"S1"},
		"920": {"S1", "S2"},
	}, BuildStopsByRoute(schedule))
}

func TestBuildStopsGeoJSON(t *testing.T) {
	fc, err := BuildStopsGeoJSON(openFeed(t, writeDir(t, minimalTables)))
	require.NoError(t, err)
	require.Len(t, fc.Features, 2)

	first := fc.Features[0]
	assert.Equal(t, orb.Point{-78.9, 43.9}, first.Geometry)
	assert.Equal(t, "S1", first.Properties["stop_id"])
	assert.Equal(t, "King & Simcoe", first.Properties["stop_name"])
}

func TestBuildRoutesGeoJSON(t *testing.T) {
	fc, err := BuildRoutesGeoJSON(openFeed(t, writeDir(t, minimalTables)))
	require.NoError(t, err)
	require.Len(t, fc.Features, 2)

	sh1 := fc.Features[0]
	assert.Equal(t, "SH1", sh1.Properties["shape_id"])
	assert.Equal(t, "900", sh1.Properties["route_id"])
	assert.Equal(t, orb.LineString{{-78.1, 43.1}, {-78.2, 43.2}, {-78.3, 43.3}}, sh1.Geometry)

	sh2 := fc.Features[1]
	assert.Equal(t, "SH2", sh2.Properties["shape_id"])
	v, ok := sh2.Properties["route_id"]
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestBuildRoutes(t *testing.T) {
	routes, err := BuildRoutes(openFeed(t, writeDir(t, minimalTables)))
	require.NoError(t, err)
	assert.Equal(t, []Route{
		{ID: "900", ShortName: "900", LongName: "Pulse", Color: "#E31837", TextColor: "#FFFFFF"},
		{ID: "920", ShortName: "920", LongName: "Crosstown", Color: "#", TextColor: "#"},
	}, routes)
}

func TestMalformedCoordinateAborts(t *testing.T) {
	tables := map[string]string{
		StopsFile: "stop_id,stop_name,stop_lat,stop_lon\nS1,A,43.9,-78.9\nS2,B,north,-78.9\n",
	}
	_, err := BuildStopsGeoJSON(openFeed(t, writeDir(t, tables)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stops.txt line 3")
	assert.Contains(t, err.Error(), "stop_lat")
}

func TestMissingColumn(t *testing.T) {
	tables := map[string]string{StopsFile: "stop_id,stop_name\nS1,A\n"}
	_, err := BuildStopsGeoJSON(openFeed(t, writeDir(t, tables)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stop_lat")
}

func TestRunFromZip(t *testing.T) {
	out := t.TempDir()
	written, err := Run(openFeed(t, writeZip(t, minimalTables)), out)
	require.NoError(t, err)
	assert.Len(t, written, 5)

	b, err := os.ReadFile(filepath.Join(out, StopScheduleFile))
	require.NoError(t, err)
	var schedule map[string][]ScheduledArrival
	require.NoError(t, json.Unmarshal(b, &schedule))
	for _, e := range schedule["S1"] {
		assert.NotEmpty(t, e.ArrivalTime)
		assert.NotEqual(t, "0830", e.ArrivalTime)
	}

	b, err = os.ReadFile(filepath.Join(out, RoutesGeoJSONFile))
	require.NoError(t, err)
	fc, err := geojson.UnmarshalFeatureCollection(b)
	require.NoError(t, err)
	assert.Len(t, fc.Features, 2)

	b, err = os.ReadFile(filepath.Join(out, StopsGeoJSONFile))
	require.NoError(t, err)
	assert.Contains(t, string(b), "King")
	assert.Contains(t, string(b), "\n  \"features\": [")
}

func TestRunIsByteIdentical(t *testing.T) {
	src := writeDir(t, minimalTables)
	first, second := t.TempDir(), t.TempDir()

	_, err := Run(openFeed(t, src), first)
	require.NoError(t, err)
	_, err = Run(openFeed(t, src), second)
	require.NoError(t, err)

	for _, name := range []string{StopsGeoJSONFile, RoutesGeoJSONFile, RoutesJSONFile, StopScheduleFile, StopsByRouteFile} {
		a, err := os.ReadFile(filepath.Join(first, name))
		require.NoError(t, err)
		b, err := os.ReadFile(filepath.Join(second, name))
		require.NoError(t, err)
		assert.Equal(t, a, b, name)
	}
}

func TestRunSkipsAbsentTables(t *testing.T) {
	tables := map[string]string{RoutesFile: minimalTables[RoutesFile]}
	written, err := Run(openFeed(t, writeDir(t, tables)), t.TempDir())
	require.NoError(t, err)
	require.Len(t, written, 1)
	assert.Equal(t, RoutesJSONFile, filepath.Base(written[0]))
}
