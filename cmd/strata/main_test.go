package main

import (
	"bytes"
	"flag"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/strata/internal/config"
	"github.com/banshee-data/strata/internal/strata"
	"github.com/banshee-data/strata/internal/strata/boundary"
	"github.com/banshee-data/strata/internal/strata/pipeline"
	"github.com/banshee-data/strata/internal/strata/stratum"
	"github.com/banshee-data/strata/internal/strata/surface"
)

func TestRunTransform(t *testing.T) {
	args := []string{"-ax", "0", "-ay", "0", "-gax", "100", "-gay", "200",
		"-bx", "10", "-by", "0", "-gbx", "110", "-gby", "200", "5", "0", "7"}
	var out bytes.Buffer
	require.NoError(t, runTransform(args, &out))
	assert.Equal(t, "105.000000 200.000000 7.000000\n", out.String())

	out.Reset()
	inv := append([]string{"-inverse"}, args[:16]...)
	inv = append(inv, "105", "200", "7")
	require.NoError(t, runTransform(inv, &out))
	assert.Equal(t, "5.000000 0.000000 7.000000\n", out.String())
}

func TestRunTransformErrors(t *testing.T) {
	var out bytes.Buffer
	err := runTransform([]string{"1", "2"}, &out)
	assert.ErrorContains(t, err, "usage")

	err = runTransform([]string{"1", "2", "z"}, &out)
	assert.Error(t, err)

	err = runTransform([]string{"-gbx", "1", "1", "2", "3"}, &out)
	assert.ErrorIs(t, err, strata.ErrDegenerateReference)
}

func TestParseFront(t *testing.T) {
	f, err := parseFront(config.Empty(), "", "", 12.5)
	require.NoError(t, err)
	assert.Equal(t, boundary.Front{Axis: boundary.AxisX, AxisPosition: 12.5, Direction: boundary.Positive}, f)

	f, err = parseFront(config.Empty(), "y", "negative", -3)
	require.NoError(t, err)
	assert.Equal(t, boundary.AxisY, f.Axis)
	assert.Equal(t, boundary.Negative, f.Direction)

	_, err = parseFront(config.Empty(), "q", "", 0)
	assert.Error(t, err)
}

func TestParseCSV(t *testing.T) {
	rows, err := readRows(strings.NewReader("x,y,z\n0,0,10\n# comment\n10, 0, 10\n0,10,20\n"), true)
	require.NoError(t, err)
	ps, err := parsePoints(rows)
	require.NoError(t, err)
	assert.Equal(t, strata.PointSet{{X: 0, Y: 0, Z: 10}, {X: 10, Y: 0, Z: 10}, {X: 0, Y: 10, Z: 20}}, ps)

	rows, err = readRows(strings.NewReader("overburden,0,40,analysis\nseam,-40,100\n"), false)
	require.NoError(t, err)
	layers, err := parseLayers(rows)
	require.NoError(t, err)
	assert.Equal(t, []stratum.LayerRecord{
		{Name: "overburden", Distance: 0, Depth: 40, Type: "analysis"},
		{Name: "seam", Distance: -40, Depth: 100},
	}, layers)

	rows, err = readRows(strings.NewReader("e1,5,0,80,0.7,2024-06-01T08:30:00Z\ne2,1,1,1\n"), false)
	require.NoError(t, err)
	events, err := parseEvents(rows)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, 0.7, events[0].Magnitude)
	assert.True(t, events[0].OccurredAt.Equal(time.Date(2024, 6, 1, 8, 30, 0, 0, time.UTC)))
	assert.True(t, events[1].OccurredAt.IsZero())

	rows, err = readRows(strings.NewReader("0,0,100,200\n10,0,110,200\n"), false)
	require.NoError(t, err)
	pairs, err := parseControl(rows)
	require.NoError(t, err)
	assert.Equal(t, 110.0, pairs[1].Geo.X)

	_, err = parsePoints([][]string{{"1", "2"}})
	assert.ErrorContains(t, err, "want 3 columns")
	_, err = parsePoints([][]string{{"1", "two", "3"}})
	assert.ErrorContains(t, err, "column 2")
}

func TestPrintTally(t *testing.T) {
	r := &pipeline.Report{
		RunID:  "run-1",
		Strata: []stratum.Definition{{Name: "overburden"}, {Name: "seam"}},
		Tally:  stratum.Tally{Total: 4, Unmatched: 1, OutOfRange: 1, ByStratum: map[string]int{"seam": 2}},
	}
	var out bytes.Buffer
	printTally(&out, r)
	s := out.String()
	assert.Contains(t, s, "run run-1")
	assert.Regexp(t, `seam\s+2`, s)
	assert.Regexp(t, `overburden\s+0`, s)
	assert.Regexp(t, `total\s+4`, s)
}

func TestPrintFront(t *testing.T) {
	view := &pipeline.FrontView{
		Ribbon: boundary.Ribbon{
			Front:     boundary.Front{Axis: boundary.AxisY, AxisPosition: 40, Direction: boundary.Negative},
			Segments:  make([]boundary.Segment, 3),
			LeftEdges: make([]strata.Polyline, 1),
		},
		Crosses:   true,
		ExtentMin: 0,
		ExtentMax: 75,
	}
	var out bytes.Buffer
	printFront(&out, view)
	assert.Contains(t, out.String(), "front y=40.000 (negative): 3 segments, 1 runs")
	assert.Contains(t, out.String(), "spans 0.000 to 75.000")

	out.Reset()
	view.Crosses = false
	printFront(&out, view)
	assert.Contains(t, out.String(), "does not cross")
}

func TestPrintModelsAndStats(t *testing.T) {
	var out bytes.Buffer
	printModels(&out, nil)
	assert.Equal(t, "no models\n", out.String())

	out.Reset()
	printModels(&out, []string{"m1", "m2"})
	assert.Equal(t, "m1\nm2\n", out.String())

	out.Reset()
	printStats(&out, surface.Stats{Points: 121, Triangles: 200, MinZ: 1, MaxZ: 3, MeanZ: 2, PlanArea: 10000})
	assert.Contains(t, out.String(), "points 121  triangles 200  plan area 10000.0")
	assert.Contains(t, out.String(), "z min 1.000  max 3.000")
}

func TestFlagSet(t *testing.T) {
	fs := flag.NewFlagSet("mesh", flag.ContinueOnError)
	fs.Float64("position", 0, "")
	fs.String("axis", "", "")
	require.NoError(t, fs.Parse([]string{"-position", "0"}))
	assert.True(t, flagSet(fs, "position"), "explicit zero still counts")
	assert.False(t, flagSet(fs, "axis"))
}
