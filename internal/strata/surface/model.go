package surface

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/banshee-data/strata/internal/strata"
	"github.com/banshee-data/strata/internal/strata/tin"
)

// DegenerateDeterminant is the barycentric determinant magnitude below
// which a triangle is treated as a sliver and interpolation falls back to
// the mean of its vertex elevations.
const DegenerateDeterminant = 1e-10

// Model is an immutable triangulated surface.
type Model struct {
	// ID distinguishes model versions; a rebuilt model gets a new ID.
	ID string

	tin *tin.Triangulation
}

// New triangulates points and wraps them as a surface model.
func New(points strata.PointSet, opts tin.Options) (*Model, error) {
	t, err := tin.Build(points, opts)
	if err != nil {
		return nil, fmt.Errorf("build surface: %w", err)
	}
	return &Model{ID: uuid.NewString(), tin: t}, nil
}

// FromTriangulation wraps an existing triangulation.
func FromTriangulation(t *tin.Triangulation) *Model {
	return &Model{ID: uuid.NewString(), tin: t}
}

// Triangulation returns the underlying triangulation.
func (m *Model) Triangulation() *tin.Triangulation { return m.tin }

// Bounds returns the plan-view extent of the survey points.
func (m *Model) Bounds() strata.Bounds { return m.tin.Bounds() }

// Points returns a copy of the survey points in their original order.
func (m *Model) Points() strata.PointSet {
	out := make(strata.PointSet, m.tin.NumPoints())
	for i := range out {
		out[i] = m.tin.Point(i)
	}
	return out
}

// Locate returns the triangle containing (x, y).
func (m *Model) Locate(x, y float64) (tin.TriangleRef, bool) {
	return m.tin.Locate(x, y)
}

// InterpolateZ returns the surface elevation at (x, y), or ok=false when
// the point is outside the convex hull.
func (m *Model) InterpolateZ(x, y float64) (z float64, ok bool) {
	ref, ok := m.tin.Locate(x, y)
	if !ok {
		return 0, false
	}
	a, b, c := m.tin.Vertices(ref.Index)
	return InterpolateTriangle(a, b, c, x, y), true
}

// Barycentric returns the weights of (x, y) against triangle abc. ok is
// false for a degenerate (near-collinear) triangle.
func Barycentric(a, b, c strata.Point3D, x, y float64) (l1, l2, l3 float64, ok bool) {
	det := (b.Y-c.Y)*(a.X-c.X) + (c.X-b.X)*(a.Y-c.Y)
	if math.Abs(det) < DegenerateDeterminant {
		return 0, 0, 0, false
	}
	l1 = ((b.Y-c.Y)*(x-c.X) + (c.X-b.X)*(y-c.Y)) / det
	l2 = ((c.Y-a.Y)*(x-c.X) + (a.X-c.X)*(y-c.Y)) / det
	l3 = 1 - l1 - l2
	return l1, l2, l3, true
}

// InterpolateTriangle weights the vertex elevations of abc at (x, y).
// Sliver triangles return the mean vertex elevation.
func InterpolateTriangle(a, b, c strata.Point3D, x, y float64) float64 {
	l1, l2, l3, ok := Barycentric(a, b, c, x, y)
	if !ok {
		return (a.Z + b.Z + c.Z) / 3
	}
	return l1*a.Z + l2*b.Z + l3*c.Z
}

// Height is one batch interpolation result.
type Height struct {
	Z  float64
	OK bool
}

// InterpolateMany interpolates each point independently.
func (m *Model) InterpolateMany(points []strata.Point2D) []Height {
	out := make([]Height, len(points))
	for i, p := range points {
		out[i].Z, out[i].OK = m.InterpolateZ(p.X, p.Y)
	}
	return out
}
