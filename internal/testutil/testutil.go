// Package testutil provides shared test utilities and survey fixtures.
package testutil

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/banshee-data/strata/internal/strata"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t testing.TB, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// AssertPointNear fails the test if any component of got differs from
// want by more than tol.
func AssertPointNear(t testing.TB, want, got strata.Point3D, tol float64) {
	t.Helper()
	if math.Abs(want.X-got.X) > tol || math.Abs(want.Y-got.Y) > tol || math.Abs(want.Z-got.Z) > tol {
		t.Errorf("point = %v, want %v (tol %g)", got, want, tol)
	}
}

// Grid samples height over an (nx+1) x (ny+1) lattice with the given
// spacing, starting at the origin, row by row.
func Grid(nx, ny int, spacing float64, height func(x, y float64) float64) strata.PointSet {
	ps := make(strata.PointSet, 0, (nx+1)*(ny+1))
	for j := 0; j <= ny; j++ {
		for i := 0; i <= nx; i++ {
			x, y := float64(i)*spacing, float64(j)*spacing
			ps = append(ps, strata.Point3D{X: x, Y: y, Z: height(x, y)})
		}
	}
	return ps
}

// Plane returns a height function for z = z0 + gx·x + gy·y.
func Plane(z0, gx, gy float64) func(x, y float64) float64 {
	return func(x, y float64) float64 { return z0 + gx*x + gy*y }
}

// Flat returns a constant height function.
func Flat(z float64) func(x, y float64) float64 {
	return func(float64, float64) float64 { return z }
}

// Scatter returns n pseudo-random points in [0, size)^2 with heights in
// [0, relief), reproducible for a given seed.
func Scatter(seed uint64, n int, size, relief float64) strata.PointSet {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	ps := make(strata.PointSet, n)
	for i := range ps {
		ps[i] = strata.Point3D{X: r.Float64() * size, Y: r.Float64() * size, Z: r.Float64() * relief}
	}
	return ps
}
