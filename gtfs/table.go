package gtfs

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// row is one CSV record addressed by header name
type row struct {
	table  string
	line   int
	head   map[string]int
	fields []string
}

// get returns the trimmed value of col, or "" when the column is absent
func (r row) get(col string) string {
	i, ok := r.head[col]
	if !ok || i >= len(r.fields) {
		return ""
	}
	return strings.TrimSpace(r.fields[i])
}

func (r row) float(col string) (float64, error) {
	v, err := strconv.ParseFloat(r.get(col), 64)
	if err != nil {
		return 0, r.errorf("invalid %s %q", col, r.get(col))
	}
	return v, nil
}

func (r row) int(col string) (int, error) {
	v, err := strconv.Atoi(r.get(col))
	if err != nil {
		return 0, r.errorf("invalid %s %q", col, r.get(col))
	}
	return v, nil
}

func (r row) errorf(format string, args ...any) error {
	return fmt.Errorf("%s line %d: %s", r.table, r.line, fmt.Sprintf(format, args...))
}

const bom = "\ufeff"

// eachRow streams table rows to fn in file order after checking that every
// required column is present in the header
func (f *Feed) eachRow(table string, required []string, fn func(row) error) error {
	rc, err := f.open(table)
	if err != nil {
		return err
	}
	defer rc.Close()

	csvr := csv.NewReader(rc)
	csvr.FieldsPerRecord = -1
	csvr.LazyQuotes = true

	header, err := csvr.Read()
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%s: failed to read header: %w", table, err)
	}
	head := make(map[string]int, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, bom)
		}
		head[strings.ToLower(strings.TrimSpace(h))] = i
	}
	var missing []string
	for _, c := range required {
		if _, ok := head[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s: missing required columns %s", table, strings.Join(missing, ", "))
	}

	for {
		rec, err := csvr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%s: %w", table, err)
		}
		line, _ := csvr.FieldPos(0)
		if err := fn(row{table: table, line: line, head: head, fields: rec}); err != nil {
			return err
		}
	}
}
