package geotransform

import (
	"fmt"
	"math"

	"github.com/banshee-data/strata/internal/strata"
)

// DefaultEpsilon is the squared plan distance below which two reference
// points are considered coincident.
const DefaultEpsilon = 1e-12

// Transform is a similarity transform
//
//	X = A·x - B·y + TX
//	Y = B·x + A·y + TY
//
// It is a value: once built it never changes.
type Transform struct {
	A  float64 `json:"a"`
	B  float64 `json:"b"`
	TX float64 `json:"tx"`
	TY float64 `json:"ty"`
}

// Identity maps every point to itself.
func Identity() Transform {
	return Transform{A: 1}
}

// Build solves the transform from two reference pairs, each a local system
// point and its known geodetic position. It fails with
// strata.ErrDegenerateReference when the two system points are closer
// than sqrt(epsilon). A non-positive epsilon selects DefaultEpsilon.
func Build(sysA, geoA, sysB, geoB strata.Point2D, epsilon float64) (Transform, error) {
	if epsilon <= 0 {
		epsilon = DefaultEpsilon
	}
	for _, p := range []strata.Point2D{sysA, geoA, sysB, geoB} {
		if !p.Finite() {
			return Transform{}, fmt.Errorf("reference point %v is not finite: %w", p, strata.ErrInvalidParameter)
		}
	}

	dx, dy := sysB.X-sysA.X, sysB.Y-sysA.Y
	dX, dY := geoB.X-geoA.X, geoB.Y-geoA.Y
	norm2 := dx*dx + dy*dy
	if norm2 < epsilon {
		return Transform{}, fmt.Errorf("system points %v and %v coincide (|d|²=%g): %w",
			sysA, sysB, norm2, strata.ErrDegenerateReference)
	}

	a := (dx*dX + dy*dY) / norm2
	b := (dx*dY - dy*dX) / norm2
	return Transform{
		A:  a,
		B:  b,
		TX: geoA.X - a*sysA.X + b*sysA.Y,
		TY: geoA.Y - b*sysA.X - a*sysA.Y,
	}, nil
}

// Apply maps a system point to geodetic coordinates.
func (t Transform) Apply(x, y, z float64) (geoX, geoY, geoZ float64) {
	return t.A*x - t.B*y + t.TX, t.B*x + t.A*y + t.TY, z
}

// ApplyPoint is Apply over a Point3D.
func (t Transform) ApplyPoint(p strata.Point3D) strata.Point3D {
	x, y, z := t.Apply(p.X, p.Y, p.Z)
	return strata.Point3D{X: x, Y: y, Z: z}
}

// ApplyAll maps every point, preserving order.
func (t Transform) ApplyAll(points []strata.Point3D) []strata.Point3D {
	out := make([]strata.Point3D, len(points))
	for i, p := range points {
		out[i] = t.ApplyPoint(p)
	}
	return out
}

// Inverse maps geodetic coordinates back to the system. A zero-scale
// transform has no inverse and yields NaN.
func (t Transform) Inverse(geoX, geoY, geoZ float64) (x, y, z float64) {
	det := t.A*t.A + t.B*t.B
	if det == 0 {
		return math.NaN(), math.NaN(), geoZ
	}
	u, v := geoX-t.TX, geoY-t.TY
	return (t.A*u + t.B*v) / det, (-t.B*u + t.A*v) / det, geoZ
}

// Scale is the uniform scale factor.
func (t Transform) Scale() float64 {
	return math.Hypot(t.A, t.B)
}

// Rotation is the counter-clockwise rotation in radians.
func (t Transform) Rotation() float64 {
	return math.Atan2(t.B, t.A)
}

func (t Transform) String() string {
	return fmt.Sprintf("scale=%.6f rot=%.4f° t=(%.3f, %.3f)",
		t.Scale(), t.Rotation()*180/math.Pi, t.TX, t.TY)
}
