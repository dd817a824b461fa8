package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/banshee-data/strata/internal/db"
	"github.com/banshee-data/strata/internal/strata"
	"github.com/banshee-data/strata/internal/strata/geotransform"
	"github.com/banshee-data/strata/internal/strata/stratum"
)

func runImport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	dbPath := fs.String("db", defaultDBPath, "Path to the SQLite database")
	kind := fs.String("kind", "", "points, layers, events or control (required)")
	modelID := fs.String("model", "", "Model version ID for points and layers")
	projectID := fs.String("project", "", "Project ID for events and control points")
	header := fs.Bool("header", true, "Skip the first CSV row")
	fs.Parse(args)

	if fs.NArg() != 1 {
		return errors.New("usage: strata import -kind <kind> [flags] file.csv")
	}
	f, err := os.Open(fs.Arg(0))
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := readRows(f, *header)
	if err != nil {
		return err
	}

	store, err := db.NewDB(*dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer store.Close()

	switch *kind {
	case "points":
		if *modelID == "" {
			return errors.New("-model is required for points")
		}
		ps, err := parsePoints(rows)
		if err != nil {
			return err
		}
		err = store.ReplaceSurveyPoints(ctx, *modelID, ps)
		logImport(err, len(ps), "survey points", *modelID)
		return err
	case "layers":
		if *modelID == "" {
			return errors.New("-model is required for layers")
		}
		recs, err := parseLayers(rows)
		if err != nil {
			return err
		}
		err = store.ReplaceLayers(ctx, *modelID, recs)
		logImport(err, len(recs), "layers", *modelID)
		return err
	case "events":
		if *projectID == "" {
			return errors.New("-project is required for events")
		}
		evs, err := parseEvents(rows)
		if err != nil {
			return err
		}
		err = store.InsertEvents(ctx, *projectID, evs)
		logImport(err, len(evs), "events", *projectID)
		return err
	case "control":
		if *projectID == "" {
			return errors.New("-project is required for control points")
		}
		pairs, err := parseControl(rows)
		if err != nil {
			return err
		}
		err = store.ReplaceControlPairs(ctx, *projectID, pairs)
		logImport(err, len(pairs), "control points", *projectID)
		return err
	default:
		return fmt.Errorf("unknown import kind %q", *kind)
	}
}

func logImport(err error, n int, what, id string) {
	if err == nil {
		log.Printf("imported %d %s into %s", n, what, id)
	}
}

func readRows(r io.Reader, header bool) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read CSV: %w", err)
	}
	if header && len(rows) > 0 {
		rows = rows[1:]
	}
	return rows, nil
}

func floats(row []string, line, n int) ([]float64, error) {
	if len(row) < n {
		return nil, fmt.Errorf("row %d: want %d columns, got %d", line, n, len(row))
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(row[i]), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d column %d: %w", line, i+1, err)
		}
		out[i] = v
	}
	return out, nil
}

// parsePoints reads x,y,z rows.
func parsePoints(rows [][]string) (strata.PointSet, error) {
	ps := make(strata.PointSet, 0, len(rows))
	for i, row := range rows {
		v, err := floats(row, i+1, 3)
		if err != nil {
			return nil, err
		}
		ps = append(ps, strata.Point3D{X: v[0], Y: v[1], Z: v[2]})
	}
	return ps, nil
}

// parseLayers reads name,distance,depth[,type] rows.
func parseLayers(rows [][]string) ([]stratum.LayerRecord, error) {
	out := make([]stratum.LayerRecord, 0, len(rows))
	for i, row := range rows {
		if len(row) < 3 {
			return nil, fmt.Errorf("row %d: want name,distance,depth[,type]", i+1)
		}
		v, err := floats(row[1:], i+1, 2)
		if err != nil {
			return nil, err
		}
		r := stratum.LayerRecord{Name: strings.TrimSpace(row[0]), Distance: v[0], Depth: v[1]}
		if len(row) > 3 {
			r.Type = strings.TrimSpace(row[3])
		}
		out = append(out, r)
	}
	return out, nil
}

// parseEvents reads id,x,y,z[,magnitude[,occurred_at]] rows, with
// occurred_at in RFC 3339.
func parseEvents(rows [][]string) ([]strata.Event, error) {
	out := make([]strata.Event, 0, len(rows))
	for i, row := range rows {
		if len(row) < 4 {
			return nil, fmt.Errorf("row %d: want id,x,y,z[,magnitude[,occurred_at]]", i+1)
		}
		v, err := floats(row[1:], i+1, 3)
		if err != nil {
			return nil, err
		}
		e := strata.Event{ID: strings.TrimSpace(row[0]), Position: strata.Point3D{X: v[0], Y: v[1], Z: v[2]}}
		if len(row) > 4 && strings.TrimSpace(row[4]) != "" {
			if e.Magnitude, err = strconv.ParseFloat(strings.TrimSpace(row[4]), 64); err != nil {
				return nil, fmt.Errorf("row %d magnitude: %w", i+1, err)
			}
		}
		if len(row) > 5 && strings.TrimSpace(row[5]) != "" {
			if e.OccurredAt, err = time.Parse(time.RFC3339, strings.TrimSpace(row[5])); err != nil {
				return nil, fmt.Errorf("row %d occurred_at: %w", i+1, err)
			}
		}
		out = append(out, e)
	}
	return out, nil
}

// parseControl reads sys_x,sys_y,geo_x,geo_y rows.
func parseControl(rows [][]string) ([]geotransform.ControlPair, error) {
	out := make([]geotransform.ControlPair, 0, len(rows))
	for i, row := range rows {
		v, err := floats(row, i+1, 4)
		if err != nil {
			return nil, err
		}
		out = append(out, geotransform.ControlPair{
			System: strata.Point2D{X: v[0], Y: v[1]},
			Geo:    strata.Point2D{X: v[2], Y: v[3]},
		})
	}
	return out, nil
}
