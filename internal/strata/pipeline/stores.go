package pipeline

import (
	"context"

	"github.com/banshee-data/strata/internal/strata"
	"github.com/banshee-data/strata/internal/strata/geotransform"
	"github.com/banshee-data/strata/internal/strata/stratum"
)

// PointStore supplies survey points and layer records per model version,
// in caller order.
type PointStore interface {
	SurveyPoints(ctx context.Context, modelID string) (strata.PointSet, error)
	Layers(ctx context.Context, modelID string) ([]stratum.LayerRecord, error)
}

// EventStore supplies located events per project.
type EventStore interface {
	Events(ctx context.Context, projectID string) ([]strata.Event, error)
}

// ReferenceStore supplies transform control points per project.
type ReferenceStore interface {
	ControlPairs(ctx context.Context, projectID string) ([]geotransform.ControlPair, error)
}
