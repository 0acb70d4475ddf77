package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"glucose-ml/internal/series"
)

// Header returns the full CSV column order: identity, features, targets,
// diagnostics.
func Header() []string {
	h := []string{"meal_event_id", "eaten_at"}
	h = append(h, FeatureColumns()...)
	h = append(h, TargetColumns()...)
	h = append(h, "egv_points_in_window")
	return h
}

// WriteCSV writes the table with its header. Unknown cells are written
// empty; known floats use the shortest exact decimal form so a round-trip
// through ReadCSV reproduces them bit for bit.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header()); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i := range rows {
		if err := cw.Write(record(&rows[i])); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func record(r *Row) []string {
	rec := make([]string, 0, len(featureCols)+len(targetCols)+3)
	rec = append(rec, strconv.FormatInt(r.MealEventID, 10))
	rec = append(rec, r.EatenAt.UTC().Format(time.RFC3339Nano))
	for i := range featureCols {
		rec = append(rec, featureCols[i].get(r).String())
	}
	for i := range targetCols {
		rec = append(rec, targetCols[i].get(r).String())
	}
	rec = append(rec, strconv.Itoa(r.EGVPointsInWindow))
	return rec
}

// ReadCSV parses a table previously written by WriteCSV. The header must
// match the fixed schema exactly; a reordered or truncated file is an
// error, not something to reindex around.
func ReadCSV(rd io.Reader) ([]Row, error) {
	cr := csv.NewReader(rd)
	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	want := Header()
	if len(header) != len(want) {
		return nil, fmt.Errorf("header has %d columns, want %d", len(header), len(want))
	}
	for i := range want {
		if header[i] != want[i] {
			return nil, fmt.Errorf("header column %d is %q, want %q", i, header[i], want[i])
		}
	}

	var rows []Row
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read line %d: %w", line, err)
		}
		row, err := parseRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseRecord(rec []string) (Row, error) {
	var r Row
	id, err := strconv.ParseInt(rec[0], 10, 64)
	if err != nil {
		return r, fmt.Errorf("bad meal_event_id %q: %w", rec[0], err)
	}
	r.MealEventID = id

	eatenAt, err := time.Parse(time.RFC3339Nano, rec[1])
	if err != nil {
		return r, fmt.Errorf("bad eaten_at %q: %w", rec[1], err)
	}
	r.EatenAt = eatenAt

	pos := 2
	for i := range featureCols {
		v, err := series.ParseValue(rec[pos])
		if err != nil {
			return r, fmt.Errorf("bad %s %q: %w", featureCols[i].name, rec[pos], err)
		}
		featureCols[i].set(&r, v)
		pos++
	}
	for i := range targetCols {
		v, err := series.ParseValue(rec[pos])
		if err != nil {
			return r, fmt.Errorf("bad %s %q: %w", targetCols[i].name, rec[pos], err)
		}
		targetCols[i].set(&r, v)
		pos++
	}

	points, err := strconv.Atoi(rec[pos])
	if err != nil {
		return r, fmt.Errorf("bad egv_points_in_window %q: %w", rec[pos], err)
	}
	r.EGVPointsInWindow = points
	return r, nil
}
