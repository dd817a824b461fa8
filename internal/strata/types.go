package strata

import (
	"fmt"
	"math"
	"time"
)

// Point3D is a survey coordinate. Values are copied, never shared.
type Point3D struct {
	X, Y, Z float64
}

// Point2D is a plan-view coordinate.
type Point2D struct {
	X, Y float64
}

// XY drops the elevation.
func (p Point3D) XY() Point2D {
	return Point2D{X: p.X, Y: p.Y}
}

// Finite reports whether every component is a finite number.
func (p Point3D) Finite() bool {
	return finite(p.X) && finite(p.Y) && finite(p.Z)
}

// Finite reports whether both components are finite numbers.
func (p Point2D) Finite() bool {
	return finite(p.X) && finite(p.Y)
}

func (p Point3D) String() string {
	return fmt.Sprintf("(%.3f, %.3f, %.3f)", p.X, p.Y, p.Z)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// PointSet is an ordered collection of survey points. Order is preserved
// through triangulation so triangle indices refer back into the caller's
// slice.
type PointSet []Point3D

// Clone returns an independent copy of the set.
func (ps PointSet) Clone() PointSet {
	if ps == nil {
		return nil
	}
	out := make(PointSet, len(ps))
	copy(out, ps)
	return out
}

// Bounds is an axis-aligned plan-view rectangle.
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
}

// Bounds returns the plan-view extent of the set. The zero Bounds is
// returned for an empty set.
func (ps PointSet) Bounds() Bounds {
	if len(ps) == 0 {
		return Bounds{}
	}
	b := Bounds{MinX: ps[0].X, MinY: ps[0].Y, MaxX: ps[0].X, MaxY: ps[0].Y}
	for _, p := range ps[1:] {
		b.MinX = math.Min(b.MinX, p.X)
		b.MinY = math.Min(b.MinY, p.Y)
		b.MaxX = math.Max(b.MaxX, p.X)
		b.MaxY = math.Max(b.MaxY, p.Y)
	}
	return b
}

// Width is the x extent.
func (b Bounds) Width() float64 { return b.MaxX - b.MinX }

// Height is the y extent.
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

// Contains reports whether (x, y) is inside or on the rectangle.
func (b Bounds) Contains(x, y float64) bool {
	return x >= b.MinX && x <= b.MaxX && y >= b.MinY && y <= b.MaxY
}

// Event is a located occurrence, such as a microseismic event, to be
// classified against the strata. Only Position is used by the geometry.
type Event struct {
	ID         string    `json:"event_id"`
	Position   Point3D   `json:"position"`
	Magnitude  float64   `json:"magnitude"`
	OccurredAt time.Time `json:"occurred_at"`
}
