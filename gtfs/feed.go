package gtfs

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Table file names
const (
	StopsFile     = "stops.txt"
	RoutesFile    = "routes.txt"
	TripsFile     = "trips.txt"
	StopTimesFile = "stop_times.txt"
	ShapesFile    = "shapes.txt"
)

// ErrMissingTable is returned when a required table is absent
var ErrMissingTable = errors.New("gtfs: table not found")

// Feed is an opened GTFS directory or zip archive
type Feed struct {
	dir   string
	zip   *zip.ReadCloser
	files map[string]*zip.File
}

// Open opens a GTFS feed. path may be a directory or a .zip file.
func Open(p string) (*Feed, error) {
	info, err := os.Stat(p)
	if err != nil {
		return nil, fmt.Errorf("failed to open GTFS feed: %w", err)
	}
	if info.IsDir() {
		return &Feed{dir: p}, nil
	}

	zr, err := zip.OpenReader(p)
	if err != nil {
		return nil, fmt.Errorf("failed to open GTFS zip %s: %w", p, err)
	}
	f := &Feed{zip: zr, files: make(map[string]*zip.File, len(zr.File))}
	for _, zf := range zr.File {
		// Some producers nest the tables in a single folder
		f.files[strings.ToLower(path.Base(zf.Name))] = zf
	}
	return f, nil
}

// Close releases the underlying archive
func (f *Feed) Close() error {
	if f.zip != nil {
		return f.zip.Close()
	}
	return nil
}

// Has reports whether the feed contains the table
func (f *Feed) Has(name string) bool {
	if f.zip != nil {
		_, ok := f.files[name]
		return ok
	}
	_, err := os.Stat(filepath.Join(f.dir, name))
	return err == nil
}

func (f *Feed) open(name string) (io.ReadCloser, error) {
	if f.zip != nil {
		zf, ok := f.files[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingTable, name)
		}
		return zf.Open()
	}
	rc, err := os.Open(filepath.Join(f.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrMissingTable, name)
	}
	return rc, err
}
