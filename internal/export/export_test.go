package export

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/strata/internal/strata"
	"github.com/banshee-data/strata/internal/strata/boundary"
	"github.com/banshee-data/strata/internal/strata/geotransform"
	"github.com/banshee-data/strata/internal/strata/pipeline"
	"github.com/banshee-data/strata/internal/strata/stratum"
)

func testReport() *pipeline.Report {
	t0 := time.Date(2024, 6, 1, 8, 30, 0, 0, time.UTC)
	return &pipeline.Report{
		RunID:   "run-1",
		ModelID: "m1",
		Events: []pipeline.ClassifiedEvent{
			{
				Event:  strata.Event{ID: "e1", Position: strata.Point3D{X: 5, Y: 0, Z: 80}, Magnitude: 0.7, OccurredAt: t0},
				Result: stratum.Result{Kind: stratum.Matched, Stratum: "overburden", RelativeZ: -20},
				Geo:    strata.Point3D{X: 105, Y: 200, Z: 80},
			},
			{
				Event:  strata.Event{ID: "e2", Position: strata.Point3D{X: 500, Y: 0, Z: 0}},
				Result: stratum.Result{Kind: stratum.OutOfRange, Index: -1},
				Geo:    strata.Point3D{X: 600, Y: 200},
			},
		},
	}
}

func TestEventsGeoJSON(t *testing.T) {
	t.Parallel()

	fc := EventsGeoJSON(testReport())
	require.Len(t, fc.Features, 2)

	f := fc.Features[0]
	assert.Equal(t, orb.Point{105, 200}, f.Geometry)
	assert.Equal(t, "e1", f.ID)
	assert.Equal(t, "overburden", f.Properties["stratum"])
	assert.Equal(t, "matched", f.Properties["kind"])
	assert.Equal(t, -20.0, f.Properties["relative_z"])
	assert.Equal(t, "run-1", f.Properties["run_id"])
	assert.Equal(t, "2024-06-01T08:30:00Z", f.Properties["occurred_at"])

	out := fc.Features[1]
	assert.Equal(t, "out_of_range", out.Properties["kind"])
	assert.NotContains(t, out.Properties, "stratum")
	assert.NotContains(t, out.Properties, "relative_z")
	assert.NotContains(t, out.Properties, "occurred_at")
}

func TestRibbonGeoJSON(t *testing.T) {
	t.Parallel()

	r := boundary.Ribbon{
		Front: boundary.Front{Axis: boundary.AxisX, AxisPosition: 50},
		LeftEdges: []strata.Polyline{
			{{X: 45, Y: 0, Z: 3}, {X: 45, Y: 10, Z: 1}},
			{{X: 45, Y: 40, Z: 2}, {X: 45, Y: 50, Z: 2}, {X: 45, Y: 60, Z: 5}},
		},
		RightEdges: []strata.Polyline{
			{{X: 55, Y: 0, Z: 3}, {X: 55, Y: 10, Z: 1}},
			{{X: 55, Y: 40, Z: 2}, {X: 55, Y: 50, Z: 2}, {X: 55, Y: 60, Z: 5}},
		},
	}
	tr := geotransform.Transform{A: 1, TX: 100, TY: 200}

	fc := RibbonGeoJSON(r, tr)
	require.Len(t, fc.Features, 4)

	first := fc.Features[0]
	assert.Equal(t, orb.LineString{{145, 200}, {145, 210}}, first.Geometry)
	assert.Equal(t, "left", first.Properties["side"])
	assert.Equal(t, "x", first.Properties["axis"])
	assert.Equal(t, 1.0, first.Properties["min_z"])
	assert.Equal(t, 3.0, first.Properties["max_z"])
	assert.Equal(t, true, first.Properties["excavated"])
	assert.Equal(t, "right", fc.Features[3].Properties["side"])
	assert.Equal(t, 1, fc.Features[3].Properties["run"])
	assert.Equal(t, false, fc.Features[3].Properties["excavated"])

	r.Front.Direction = boundary.Negative
	fc = RibbonGeoJSON(r, tr)
	assert.Equal(t, false, fc.Features[0].Properties["excavated"])
	assert.Equal(t, true, fc.Features[3].Properties["excavated"])
}

func TestGridGeoJSON(t *testing.T) {
	t.Parallel()

	cells := []pipeline.GridCell{
		{X: 0, Y: 0, Z: 10, Slope: math.Pi / 4, Aspect: math.Pi / 2},
		{X: 5, Y: 0, Z: 11},
	}
	fc := GridGeoJSON(cells, geotransform.Transform{A: 1, TX: 100, TY: 200})
	require.Len(t, fc.Features, 2)
	assert.Equal(t, orb.Point{100, 200}, fc.Features[0].Geometry)
	assert.Equal(t, orb.Point{105, 200}, fc.Features[1].Geometry)
	assert.InDelta(t, 45.0, fc.Features[0].Properties["slope_deg"], 1e-9)
	assert.InDelta(t, 90.0, fc.Features[0].Properties["aspect_deg"], 1e-9)
	assert.Equal(t, 11.0, fc.Features[1].Properties["geo_z"])
}

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	view := pipeline.FrontView{
		Ribbon:    boundary.Ribbon{Mesh: strata.Mesh{Name: "ribbon"}},
		Excavated: []bool{true, false},
		Crosses:   true,
		ExtentMax: 40,
	}
	path := filepath.Join(dir, "front.json")
	require.NoError(t, WriteJSON(path, view, dir))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got pipeline.FrontView
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, []bool{true, false}, got.Excavated)
	assert.Equal(t, 40.0, got.ExtentMax)
	assert.True(t, got.Crosses)

	assert.ErrorContains(t, WriteJSON(filepath.Join(dir, "front.txt"), view, dir), "extension")
	assert.ErrorContains(t, WriteJSON(filepath.Join(dir, "..", "x.json"), view, dir), "must be within")
}

func TestProfileGeoJSON(t *testing.T) {
	t.Parallel()

	runs := []strata.Polyline{{{X: 0, Y: 50, Z: 1}, {X: 10, Y: 50, Z: 2}}}
	fc := ProfileGeoJSON(boundary.Front{Axis: boundary.AxisY, AxisPosition: 50}, runs, geotransform.Identity())
	require.Len(t, fc.Features, 1)
	assert.Equal(t, orb.LineString{{0, 50}, {10, 50}}, fc.Features[0].Geometry)
	assert.Equal(t, "y", fc.Features[0].Properties["axis"])
}

func TestWriteFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "events.geojson")
	require.NoError(t, WriteFile(path, EventsGeoJSON(testReport()), dir))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	fc, err := geojson.UnmarshalFeatureCollection(data)
	require.NoError(t, err)
	require.Len(t, fc.Features, 2)
	assert.Equal(t, "overburden", fc.Features[0].Properties["stratum"])
}

func TestWriteFileRejects(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	fc := geojson.NewFeatureCollection()

	err := WriteFile(filepath.Join(dir, "events.csv"), fc, dir)
	assert.ErrorContains(t, err, "extension")

	err = WriteFile(filepath.Join(dir, "..", "escape.geojson"), fc, dir)
	assert.ErrorContains(t, err, "must be within")

	other := t.TempDir()
	err = WriteFile(filepath.Join(other, "x.json"), fc, dir)
	assert.Error(t, err)
}
