package stratum

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/strata/internal/monitoring"
	"github.com/banshee-data/strata/internal/strata"
	"github.com/banshee-data/strata/internal/strata/surface"
	"github.com/banshee-data/strata/internal/strata/tin"
)

func init() {
	monitoring.SetLogger(nil)
}

// flatSurface is a level reference at Z over [0, Size] x [0, Size].
type flatSurface struct {
	Z, Size float64
}

func (f flatSurface) InterpolateZ(x, y float64) (float64, bool) {
	if x >= 0 && x <= f.Size && y >= 0 && y <= f.Size {
		return f.Z, true
	}
	return 0, false
}

var base = flatSurface{Z: 100, Size: 50}

func shallowFirst() []Definition {
	return []Definition{
		{Name: "overburden", DepthFromReference: 0, Thickness: 40, Order: 0},
		{Name: "seam", DepthFromReference: 40, Thickness: 100, Order: 1},
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		point strata.Point3D
		want  Result
	}{
		{"overlap resolves to first listed", strata.Point3D{X: 10, Y: 10, Z: 80}, Result{Kind: Matched, Stratum: "overburden", Index: 0, RelativeZ: -20}},
		{"top bound inclusive", strata.Point3D{X: 10, Y: 10, Z: 100}, Result{Kind: Matched, Stratum: "overburden", Index: 0, RelativeZ: 0}},
		{"bottom bound inclusive", strata.Point3D{X: 10, Y: 10, Z: 60}, Result{Kind: Matched, Stratum: "overburden", Index: 0, RelativeZ: -40}},
		{"only second band", strata.Point3D{X: 10, Y: 10, Z: 120}, Result{Kind: Matched, Stratum: "seam", Index: 1, RelativeZ: 20}},
		{"below every band", strata.Point3D{X: 10, Y: 10, Z: -100}, Result{Kind: Unmatched, Index: -1, RelativeZ: -200}},
		{"outside hull", strata.Point3D{X: 60, Y: 10, Z: 80}, Result{Kind: OutOfRange, Index: -1}},
		{"malformed coordinates", strata.Point3D{X: math.NaN(), Y: 10, Z: 80}, Result{Kind: OutOfRange, Index: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Classify(tt.point, base, shallowFirst())
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Classify mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestClassifyOrderIsCallerControlled(t *testing.T) {
	t.Parallel()

	defs := shallowFirst()
	reversed := []Definition{defs[1], defs[0]}
	p := strata.Point3D{X: 1, Y: 1, Z: 80}

	assert.Equal(t, "overburden", Classify(p, base, defs).Stratum)
	assert.Equal(t, "seam", Classify(p, base, reversed).Stratum)
}

func TestClassifyIsIdempotent(t *testing.T) {
	t.Parallel()

	p := strata.Point3D{X: 25, Y: 25, Z: 90}
	first := Classify(p, base, shallowFirst())
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Classify(p, base, shallowFirst()))
	}
}

func TestClassifyNoStrata(t *testing.T) {
	t.Parallel()

	got := Classify(strata.Point3D{X: 1, Y: 1, Z: 1}, base, nil)
	assert.Equal(t, Unmatched, got.Kind)
}

func TestClassifyMany(t *testing.T) {
	t.Parallel()

	points := []strata.Point3D{
		{X: 10, Y: 10, Z: 80},
		{X: 99, Y: 10, Z: 80},
		{X: 10, Y: 10, Z: 120},
		{X: 10, Y: 10, Z: -500},
		{X: math.Inf(1), Y: 0, Z: 0},
	}
	for i := 0; i < 40; i++ {
		points = append(points, strata.Point3D{X: float64(i), Y: 5, Z: 100 - float64(i)})
	}

	serial, err := ClassifyMany(points, base, shallowFirst(), 1)
	require.NoError(t, err)
	require.Len(t, serial, len(points))

	parallel, err := ClassifyMany(points, base, shallowFirst(), 4)
	require.NoError(t, err)
	if diff := cmp.Diff(serial, parallel); diff != "" {
		t.Fatalf("parallel results differ (-serial +parallel):\n%s", diff)
	}

	assert.Equal(t, "overburden", serial[0].Stratum)
	assert.Equal(t, OutOfRange, serial[1].Kind)
	assert.Equal(t, "seam", serial[2].Stratum)
	assert.Equal(t, Unmatched, serial[3].Kind)
	assert.Equal(t, OutOfRange, serial[4].Kind)

	defaultWorkers, err := ClassifyMany(points, base, shallowFirst(), 0)
	require.NoError(t, err)
	assert.Equal(t, serial, defaultWorkers)
}

func TestClassifyManyAllFailedIsWarning(t *testing.T) {
	t.Parallel()

	points := []strata.Point3D{{X: -1, Y: 0, Z: 0}, {X: 0, Y: 500, Z: 0}}
	results, err := ClassifyMany(points, base, shallowFirst(), 2)
	require.ErrorIs(t, err, strata.ErrNoPointsProcessed)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, OutOfRange, r.Kind)
	}
}

func TestClassifyManyEmpty(t *testing.T) {
	t.Parallel()

	results, err := ClassifyMany(nil, base, shallowFirst(), 2)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestClassifierCounters(t *testing.T) {
	t.Parallel()

	defs := shallowFirst()
	c := NewClassifier(base, defs)
	defs[0].Name = "mutated"
	assert.Equal(t, "overburden", c.Strata()[0].Name)

	c.Workers = 3
	_, err := c.ClassifyMany([]strata.Point3D{
		{X: 1, Y: 1, Z: 90}, {X: 1, Y: 1, Z: 130}, {X: 1, Y: 1, Z: -900}, {X: -5, Y: 1, Z: 0},
	})
	require.NoError(t, err)

	assert.Equal(t, Counts{Processed: 4, Matched: 2, Unmatched: 1, OutOfRange: 1}, c.Stats())
	c.ResetStats()
	assert.Equal(t, Counts{}, c.Stats())
}

func TestFromRecords(t *testing.T) {
	t.Parallel()

	defs := FromRecords([]LayerRecord{
		{Name: "topsoil", Distance: 0, Depth: 5, Type: "display"},
		{Name: "coal", Distance: -5, Depth: 12, Type: "Analysis"},
		{Name: "shale", Distance: -17, Depth: 30},
	}, "analysis")

	require.Len(t, defs, 3)
	assert.Equal(t, Definition{Name: "coal", DepthFromReference: -5, Thickness: 12, Order: 1, Kind: KindAnalysis}, defs[1])
	assert.Equal(t, KindDisplay, defs[0].Kind)
	assert.Equal(t, KindAnalysis, defs[2].Kind)

	analysis := AnalysisLayers(defs)
	require.Len(t, analysis, 2)
	assert.Equal(t, "coal", analysis[0].Name)
	assert.Equal(t, "shale", analysis[1].Name)
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	tally := Summarize([]Result{
		{Kind: Matched, Stratum: "seam"},
		{Kind: Matched, Stratum: "seam"},
		{Kind: Matched, Stratum: "overburden"},
		{Kind: Unmatched, Index: -1},
		{Kind: OutOfRange, Index: -1},
	})
	assert.Equal(t, 5, tally.Total)
	assert.Equal(t, 3, tally.Matched())
	assert.Equal(t, 1, tally.Unmatched)
	assert.Equal(t, 1, tally.OutOfRange)
	assert.Equal(t, map[string]int{"seam": 2, "overburden": 1}, tally.ByStratum)
	assert.Equal(t, []string{"overburden", "seam"}, tally.Names())
}

func TestResultString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "matched(seam)", Result{Kind: Matched, Stratum: "seam"}.String())
	assert.Equal(t, "out_of_range", outOfRange().String())
	assert.Equal(t, "unmatched", Unmatched.String())
	assert.Equal(t, "ResultKind(9)", ResultKind(9).String())
}

func TestClassifyAgainstSurfaceModel(t *testing.T) {
	t.Parallel()

	m, err := surface.New(strata.PointSet{{X: 0, Y: 0, Z: 10}, {X: 10, Y: 0, Z: 10}, {X: 0, Y: 10, Z: 20}}, tin.DefaultOptions())
	require.NoError(t, err)

	// Surface is at 12 under (2, 2).
	got := Classify(strata.Point3D{X: 2, Y: 2, Z: 2}, m, shallowFirst())
	assert.Equal(t, "overburden", got.Stratum)
	assert.InDelta(t, -10.0, got.RelativeZ, 1e-9)

	got = Classify(strata.Point3D{X: 9, Y: 9, Z: 0}, m, shallowFirst())
	assert.Equal(t, OutOfRange, got.Kind)
}

func TestSolid(t *testing.T) {
	t.Parallel()

	m, err := surface.New(strata.PointSet{
		{X: 0, Y: 0, Z: 0}, {X: 10, Y: 0, Z: 0}, {X: 10, Y: 10, Z: 1}, {X: 0, Y: 10, Z: 1},
	}, tin.DefaultOptions())
	require.NoError(t, err)

	d := Definition{Name: "seam", DepthFromReference: -2, Thickness: 3}
	mesh := Solid(m, d)

	assert.Equal(t, "seam", mesh.Name)
	assert.Equal(t, 8, mesh.VertexCount())
	// 2 top + 2 bottom + 2 per hull edge.
	assert.Equal(t, 12, mesh.TriangleCount())
	assert.InDelta(t, -2.0, mesh.Vertex(0).Z, 1e-6)
	assert.InDelta(t, -5.0, mesh.Vertex(4).Z, 1e-6)
	assert.Len(t, mesh.Normals, 24)

	// Closed and consistently wound: every directed edge appears once and
	// its reverse appears once.
	directed := make(map[[2]uint32]int)
	for i := 0; i < mesh.TriangleCount(); i++ {
		tri := mesh.Indices[3*i : 3*i+3]
		for k := 0; k < 3; k++ {
			directed[[2]uint32{tri[k], tri[(k+1)%3]}]++
		}
	}
	for e, n := range directed {
		assert.Equal(t, 1, n, "edge %v", e)
		assert.Equal(t, 1, directed[[2]uint32{e[1], e[0]}], "reverse of %v", e)
	}
}
