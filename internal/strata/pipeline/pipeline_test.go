package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/strata/internal/db"
	"github.com/banshee-data/strata/internal/monitoring"
	"github.com/banshee-data/strata/internal/strata"
	"github.com/banshee-data/strata/internal/strata/geotransform"
	"github.com/banshee-data/strata/internal/strata/stratum"
	"github.com/banshee-data/strata/internal/testutil"
)

func init() {
	monitoring.SetLogger(nil)
}

// memStore is an in-memory PointStore, EventStore and ReferenceStore.
type memStore struct {
	points map[string]strata.PointSet
	layers map[string][]stratum.LayerRecord
	events map[string][]strata.Event
	pairs  map[string][]geotransform.ControlPair
	err    error
}

func (s *memStore) SurveyPoints(ctx context.Context, modelID string) (strata.PointSet, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.points[modelID], ctx.Err()
}

func (s *memStore) Layers(ctx context.Context, modelID string) ([]stratum.LayerRecord, error) {
	return s.layers[modelID], ctx.Err()
}

func (s *memStore) Events(ctx context.Context, projectID string) ([]strata.Event, error) {
	return s.events[projectID], ctx.Err()
}

func (s *memStore) ControlPairs(ctx context.Context, projectID string) ([]geotransform.ControlPair, error) {
	return s.pairs[projectID], ctx.Err()
}

var (
	testLayers = []stratum.LayerRecord{
		{Name: "overburden", Distance: 0, Depth: 40, Type: "analysis"},
		{Name: "marker", Distance: 0, Depth: 1000, Type: "display"},
		{Name: "seam", Distance: -40, Depth: 100},
	}
	testEvents = []strata.Event{
		{ID: "e1", Position: strata.Point3D{X: 5, Y: 0, Z: 80}},    // 20 below ground
		{ID: "e2", Position: strata.Point3D{X: 50, Y: 50, Z: 30}},  // 70 below ground
		{ID: "e3", Position: strata.Point3D{X: 50, Y: 50, Z: 150}}, // above ground
		{ID: "e4", Position: strata.Point3D{X: 500, Y: 50, Z: 50}}, // off the survey
		{ID: "e5", Position: strata.Point3D{X: 20, Y: 20, Z: 60}},  // on the shared boundary
	}
	testPairs = []geotransform.ControlPair{
		{System: strata.Point2D{X: 0, Y: 0}, Geo: strata.Point2D{X: 100, Y: 200}},
		{System: strata.Point2D{X: 10, Y: 0}, Geo: strata.Point2D{X: 110, Y: 200}},
	}
)

func newMemStore() *memStore {
	return &memStore{
		points: map[string]strata.PointSet{"m1": testutil.Grid(10, 10, 10, testutil.Flat(100))},
		layers: map[string][]stratum.LayerRecord{"m1": testLayers},
		events: map[string][]strata.Event{"p1": testEvents},
		pairs:  map[string][]geotransform.ControlPair{"p1": testPairs},
	}
}

func TestClassifyEvents(t *testing.T) {
	t.Parallel()

	s := newMemStore()
	report, err := ClassifyEvents(context.Background(), s, s, s, "m1", "p1", DefaultOptions())
	require.NoError(t, err)

	_, err = uuid.Parse(report.RunID)
	assert.NoError(t, err)
	assert.Equal(t, "m1", report.ModelID)
	assert.Equal(t, "p1", report.ProjectID)

	require.Len(t, report.Strata, 2, "display layers are not classified")
	assert.Equal(t, "seam", report.Strata[1].Name)

	require.Len(t, report.Events, len(testEvents))
	kinds := make([]string, len(report.Events))
	for i, e := range report.Events {
		kinds[i] = e.Result.String()
	}
	assert.Equal(t, []string{"matched(overburden)", "matched(seam)", "unmatched", "out_of_range", "matched(overburden)"}, kinds)

	e1 := report.Events[0]
	assert.Equal(t, "e1", e1.Event.ID)
	assert.InDelta(t, -20.0, e1.Result.RelativeZ, 1e-9)
	testutil.AssertPointNear(t, strata.Point3D{X: 105, Y: 200, Z: 80}, e1.Geo, 1e-9)

	assert.Equal(t, 5, report.Tally.Total)
	assert.Equal(t, 2, report.Tally.ByStratum["overburden"])
	assert.Equal(t, 1, report.Tally.ByStratum["seam"])
	assert.Equal(t, 1, report.Tally.Unmatched)
	assert.Equal(t, 1, report.Tally.OutOfRange)
	assert.Equal(t, int64(5), report.Counts.Processed)
	assert.Equal(t, geotransform.QualityUnknown, report.Quality)
}

func TestClassifyEventsRunIDsAreUnique(t *testing.T) {
	t.Parallel()

	s := newMemStore()
	a, err := ClassifyEvents(context.Background(), s, s, s, "m1", "p1", DefaultOptions())
	require.NoError(t, err)
	b, err := ClassifyEvents(context.Background(), s, s, s, "m1", "p1", DefaultOptions())
	require.NoError(t, err)
	assert.NotEqual(t, a.RunID, b.RunID)
	assert.Equal(t, a.Tally, b.Tally)
}

func TestClassifyEventsWithoutReferences(t *testing.T) {
	t.Parallel()

	s := newMemStore()
	report, err := ClassifyEvents(context.Background(), s, s, nil, "m1", "p1", DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, geotransform.Identity(), report.Transform)
	assert.Equal(t, report.Events[0].Event.Position, report.Events[0].Geo)
}

func TestClassifyEventsNothingResolved(t *testing.T) {
	t.Parallel()

	s := newMemStore()
	s.events["far"] = []strata.Event{
		{ID: "x1", Position: strata.Point3D{X: -50, Y: 0, Z: 0}},
		{ID: "x2", Position: strata.Point3D{X: 500, Y: 500, Z: 0}},
	}

	report, err := ClassifyEvents(context.Background(), s, s, s, "m1", "far", DefaultOptions())
	assert.ErrorIs(t, err, strata.ErrNoPointsProcessed)
	require.NotNil(t, report, "the report still comes back with the warning")
	assert.Equal(t, 2, report.Tally.OutOfRange)
}

func TestClassifyEventsErrors(t *testing.T) {
	t.Parallel()

	boom := errors.New("store offline")
	s := newMemStore()
	s.err = boom
	_, err := ClassifyEvents(context.Background(), s, s, s, "m1", "p1", DefaultOptions())
	assert.ErrorIs(t, err, boom)

	s = newMemStore()
	s.points["tiny"] = strata.PointSet{{X: 0, Y: 0}, {X: 1, Y: 0}}
	_, err = ClassifyEvents(context.Background(), s, s, s, "tiny", "p1", DefaultOptions())
	assert.ErrorIs(t, err, strata.ErrInsufficientPoints)

	s = newMemStore()
	s.pairs["p1"] = []geotransform.ControlPair{testPairs[0], testPairs[0]}
	_, err = ClassifyEvents(context.Background(), s, s, s, "m1", "p1", DefaultOptions())
	assert.ErrorIs(t, err, strata.ErrDegenerateReference)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = ClassifyEvents(ctx, newMemStore(), s, s, "m1", "p1", DefaultOptions())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuildSurfaceUsesModelID(t *testing.T) {
	t.Parallel()

	m, err := BuildSurface(context.Background(), newMemStore(), "m1", DefaultOptions().Triangulation)
	require.NoError(t, err)
	assert.Equal(t, "m1", m.ID)
	z, ok := m.InterpolateZ(33, 47)
	require.True(t, ok)
	assert.InDelta(t, 100.0, z, 1e-9)
}

func TestClassifyEventsFromSQLite(t *testing.T) {
	t.Parallel()

	store, err := db.NewDB(filepath.Join(t.TempDir(), "strata.db"))
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.ReplaceSurveyPoints(ctx, "m1", testutil.Grid(10, 10, 10, testutil.Flat(100))))
	require.NoError(t, store.ReplaceLayers(ctx, "m1", testLayers))
	events := make([]strata.Event, len(testEvents))
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, e := range testEvents {
		e.OccurredAt = t0.Add(time.Duration(i) * time.Second)
		events[i] = e
	}
	require.NoError(t, store.InsertEvents(ctx, "p1", events))
	require.NoError(t, store.ReplaceControlPairs(ctx, "p1", testPairs))

	report, err := ClassifyEvents(ctx, store, store, store, "m1", "p1", DefaultOptions())
	require.NoError(t, err)
	require.Len(t, report.Events, len(testEvents))
	assert.Equal(t, "e1", report.Events[0].Event.ID)
	assert.Equal(t, "overburden", report.Events[0].Result.Stratum)
	assert.Equal(t, 1, report.Tally.ByStratum["seam"])
	testutil.AssertPointNear(t, strata.Point3D{X: 105, Y: 200, Z: 80}, report.Events[0].Geo, 1e-9)
}
