package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/strata/internal/config"
	"github.com/banshee-data/strata/internal/monitoring"
	"github.com/banshee-data/strata/internal/strata"
	"github.com/banshee-data/strata/internal/strata/geotransform"
	"github.com/banshee-data/strata/internal/strata/stratum"
	"github.com/banshee-data/strata/internal/strata/surface"
	"github.com/banshee-data/strata/internal/strata/tin"
)

// Options carries the tunables a run needs.
type Options struct {
	Triangulation     tin.Options
	AnalysisLayerType string
	ReferenceEpsilon  float64
	Workers           int
}

// DefaultOptions mirrors the built-in config defaults.
func DefaultOptions() Options {
	return OptionsFromConfig(config.Empty())
}

// OptionsFromConfig maps a loaded config onto run options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Triangulation: tin.Options{
			DuplicateEpsilon: cfg.GetDuplicateEpsilon(),
			CellFactor:       cfg.GetLocateCellFactor(),
		},
		AnalysisLayerType: cfg.GetAnalysisLayerType(),
		ReferenceEpsilon:  cfg.GetReferenceEpsilon(),
		Workers:           cfg.GetWorkers(),
	}
}

// BuildSurface fetches a model version's point set and triangulates it.
// The returned model carries modelID as its ID.
func BuildSurface(ctx context.Context, store PointStore, modelID string, opts tin.Options) (*surface.Model, error) {
	points, err := store.SurveyPoints(ctx, modelID)
	if err != nil {
		return nil, fmt.Errorf("fetch survey points for model %s: %w", modelID, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m, err := surface.New(points, opts)
	if err != nil {
		return nil, fmt.Errorf("build surface for model %s: %w", modelID, err)
	}
	m.ID = modelID
	return m, nil
}

// LoadStrata fetches a model version's layers and keeps the
// classification layers in stored order.
func LoadStrata(ctx context.Context, store PointStore, modelID, analysisType string) ([]stratum.Definition, error) {
	records, err := store.Layers(ctx, modelID)
	if err != nil {
		return nil, fmt.Errorf("fetch layers for model %s: %w", modelID, err)
	}
	return stratum.AnalysisLayers(stratum.FromRecords(records, analysisType)), nil
}

// LoadTransform fits the project's control points. A nil store or a
// project with no control points yields the identity transform and
// QualityUnknown.
func LoadTransform(ctx context.Context, refs ReferenceStore, projectID string, epsilon float64) (geotransform.FitResult, error) {
	identity := geotransform.FitResult{Transform: geotransform.Identity(), Quality: geotransform.QualityUnknown}
	if refs == nil {
		return identity, nil
	}
	pairs, err := refs.ControlPairs(ctx, projectID)
	if err != nil {
		return geotransform.FitResult{}, fmt.Errorf("fetch control points for project %s: %w", projectID, err)
	}
	if len(pairs) == 0 {
		return identity, nil
	}
	return geotransform.Fit(pairs, epsilon)
}

// ClassifiedEvent is one event with its stratum and geodetic position.
type ClassifiedEvent struct {
	Event  strata.Event   `json:"event"`
	Result stratum.Result `json:"result"`
	Geo    strata.Point3D `json:"geo"`
}

// Report is the outcome of one classification run.
type Report struct {
	RunID     string    `json:"run_id"`
	ModelID   string    `json:"model_id"`
	ProjectID string    `json:"project_id"`
	CreatedAt time.Time `json:"created_at"`

	Strata    []stratum.Definition   `json:"strata"`
	Events    []ClassifiedEvent      `json:"events"`
	Tally     stratum.Tally          `json:"tally"`
	Counts    stratum.Counts         `json:"counts"`
	Transform geotransform.Transform `json:"transform"`
	Quality   geotransform.Quality   `json:"transform_quality"`
}

// ClassifyEvents runs one classification pass: build the model version's
// surface, load its classification layers, fetch the project's events and
// classify them, then map every event to geodetic coordinates.
//
// When no event resolves, the full report is returned together with an
// error wrapping strata.ErrNoPointsProcessed; callers treat it as a
// warning.
func ClassifyEvents(ctx context.Context, points PointStore, events EventStore, refs ReferenceStore,
	modelID, projectID string, opts Options) (*Report, error) {
	model, err := BuildSurface(ctx, points, modelID, opts.Triangulation)
	if err != nil {
		return nil, err
	}
	defs, err := LoadStrata(ctx, points, modelID, opts.AnalysisLayerType)
	if err != nil {
		return nil, err
	}
	evs, err := events.Events(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("fetch events for project %s: %w", projectID, err)
	}
	fit, err := LoadTransform(ctx, refs, projectID, opts.ReferenceEpsilon)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	positions := make([]strata.Point3D, len(evs))
	for i, e := range evs {
		positions[i] = e.Position
	}

	classifier := stratum.NewClassifier(model, defs)
	classifier.Workers = opts.Workers
	results, classifyErr := classifier.ClassifyMany(positions)
	if classifyErr != nil && !errors.Is(classifyErr, strata.ErrNoPointsProcessed) {
		return nil, classifyErr
	}

	report := &Report{
		RunID:     uuid.NewString(),
		ModelID:   modelID,
		ProjectID: projectID,
		CreatedAt: time.Now().UTC(),
		Strata:    defs,
		Events:    make([]ClassifiedEvent, len(evs)),
		Tally:     stratum.Summarize(results),
		Counts:    classifier.Stats(),
		Transform: fit.Transform,
		Quality:   fit.Quality,
	}
	for i, e := range evs {
		report.Events[i] = ClassifiedEvent{
			Event:  e,
			Result: results[i],
			Geo:    fit.Transform.ApplyPoint(e.Position),
		}
	}

	monitoring.Logf("pipeline: run %s model=%s project=%s events=%d matched=%d unmatched=%d out_of_range=%d",
		report.RunID, modelID, projectID, report.Tally.Total, report.Tally.Matched(),
		report.Tally.Unmatched, report.Tally.OutOfRange)
	return report, classifyErr
}
