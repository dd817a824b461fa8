package pipeline

import (
	"context"
	"fmt"
	"math"

	"github.com/banshee-data/strata/internal/monitoring"
	"github.com/banshee-data/strata/internal/strata"
	"github.com/banshee-data/strata/internal/strata/boundary"
	"github.com/banshee-data/strata/internal/strata/stratum"
	"github.com/banshee-data/strata/internal/strata/surface"
)

// LayerMesh is one render mesh. Excavated holds the front predicate per
// vertex when a front was given.
type LayerMesh struct {
	Name      string            `json:"name"`
	Kind      stratum.LayerKind `json:"kind,omitempty"`
	Mesh      strata.Mesh       `json:"mesh"`
	Excavated []bool            `json:"excavated,omitempty"`
}

// Scene is the render output for one model version: the base surface and
// a closed solid per layer, display layers included.
type Scene struct {
	ModelID string          `json:"model_id"`
	Front   *boundary.Front `json:"front,omitempty"`
	Stats   surface.Stats   `json:"stats"`
	Surface LayerMesh       `json:"surface"`
	Layers  []LayerMesh     `json:"layers"`
}

// BuildScene builds the surface and layer solids of a model version. With
// a non-nil front every mesh carries its excavated mask.
func BuildScene(ctx context.Context, store PointStore, modelID string, front *boundary.Front, opts Options) (*Scene, error) {
	model, err := BuildSurface(ctx, store, modelID, opts.Triangulation)
	if err != nil {
		return nil, err
	}
	records, err := store.Layers(ctx, modelID)
	if err != nil {
		return nil, fmt.Errorf("fetch layers for model %s: %w", modelID, err)
	}
	defs := stratum.FromRecords(records, opts.AnalysisLayerType)

	scene := &Scene{
		ModelID: modelID,
		Front:   front,
		Stats:   model.Stats(),
		Surface: layerMesh(model.Mesh(0), "", front),
		Layers:  make([]LayerMesh, 0, len(defs)),
	}
	for _, d := range defs {
		scene.Layers = append(scene.Layers, layerMesh(stratum.Solid(model, d), d.Kind, front))
	}

	monitoring.Logf("pipeline: scene model=%s surface_triangles=%d layers=%d",
		modelID, scene.Surface.Mesh.TriangleCount(), len(scene.Layers))
	return scene, nil
}

func layerMesh(m strata.Mesh, kind stratum.LayerKind, front *boundary.Front) LayerMesh {
	lm := LayerMesh{Name: m.Name, Kind: kind, Mesh: m}
	if front != nil {
		lm.Excavated = boundary.ExcavatedMask(*front, &m)
	}
	return lm
}

// FrontView is the projected geometry of one front position.
type FrontView struct {
	Ribbon boundary.Ribbon `json:"ribbon"`
	// Excavated is the front predicate per ribbon mesh vertex.
	Excavated []bool `json:"excavated"`
	// Profile holds the centre-line runs across the surface.
	Profile []strata.Polyline `json:"profile"`
	// ExtentMin and ExtentMax bound the sampled positions where the front
	// line meets the surface; Crosses is false when it never does.
	ExtentMin float64 `json:"extent_min"`
	ExtentMax float64 `json:"extent_max"`
	Crosses   bool    `json:"crosses"`
}

// ViewFront builds a model version's surface once and projects the
// ribbon, centre-line profile and excavated mask for p.Front. When p.Min
// and p.Max are both zero the walk spans the surface's extent along the
// front line.
func ViewFront(ctx context.Context, store PointStore, modelID string, p boundary.RibbonParams, opts Options) (*FrontView, error) {
	model, err := BuildSurface(ctx, store, modelID, opts.Triangulation)
	if err != nil {
		return nil, err
	}
	p = spanSurface(model, p)

	r, err := boundary.ProjectRibbon(model, p)
	if err != nil {
		return nil, err
	}
	profile, err := boundary.Profile(model, p.Front, p.Min, p.Max, p.Step, p.Lift)
	if err != nil {
		return nil, err
	}
	view := &FrontView{
		Ribbon:    r,
		Excavated: boundary.ExcavatedMask(p.Front, &r.Mesh),
		Profile:   profile,
	}
	view.ExtentMin, view.ExtentMax, view.Crosses = boundary.Extent(model, p.Front, p.Min, p.Max, p.Step)
	if !view.Crosses {
		monitoring.Logf("pipeline: front %s=%.3f does not cross model %s", p.Front.Axis, p.Front.AxisPosition, modelID)
	}
	return view, nil
}

// spanSurface fills an unset walk range with the surface's extent along
// the front line.
func spanSurface(model *surface.Model, p boundary.RibbonParams) boundary.RibbonParams {
	if p.Min != 0 || p.Max != 0 {
		return p
	}
	b := model.Bounds()
	p.Min, p.Max = b.MinY, b.MaxY
	if p.Front.Axis == boundary.AxisY {
		p.Min, p.Max = b.MinX, b.MaxX
	}
	return p
}

// GridCell is one regular surface sample. Slope and Aspect are radians.
type GridCell struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Z      float64 `json:"z"`
	Slope  float64 `json:"slope"`
	Aspect float64 `json:"aspect"`
}

// SampleGrid samples the surface every step units over its plan extent,
// keeping cells inside the hull, rows along y from the minimum corner.
func SampleGrid(model *surface.Model, step float64) ([]GridCell, error) {
	b := model.Bounds()
	grid, err := model.ElevationGrid(b.MinX, b.MinY, b.MaxX, b.MaxY, step, step)
	if err != nil {
		return nil, err
	}

	var cells []GridCell
	for j, row := range grid {
		y := b.MinY + float64(j)*step
		for i, z := range row {
			if math.IsNaN(z) {
				continue
			}
			x := b.MinX + float64(i)*step
			slope, aspect, ok := model.SlopeAspect(x, y, step/2)
			if !ok {
				continue
			}
			cells = append(cells, GridCell{X: x, Y: y, Z: z, Slope: slope, Aspect: aspect})
		}
	}
	return cells, nil
}
