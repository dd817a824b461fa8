package surface

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/strata/internal/strata"
)

// MaxGridCells bounds the size of one ElevationGrid call.
const MaxGridCells = 1 << 24

// ElevationGrid samples the surface on a regular grid. Rows run along y
// from minY, columns along x from minX. Cells outside the hull are NaN.
func (m *Model) ElevationGrid(minX, minY, maxX, maxY, stepX, stepY float64) ([][]float64, error) {
	if stepX <= 0 || stepY <= 0 {
		return nil, fmt.Errorf("grid steps must be positive, got %g x %g: %w", stepX, stepY, strata.ErrInvalidParameter)
	}
	if maxX < minX || maxY < minY {
		return nil, fmt.Errorf("grid bounds are inverted: %w", strata.ErrInvalidParameter)
	}

	fx := math.Floor((maxX-minX)/stepX) + 1
	fy := math.Floor((maxY-minY)/stepY) + 1
	if math.IsNaN(fx*fy) || fx*fy > MaxGridCells {
		return nil, fmt.Errorf("grid of %g x %g cells exceeds %d: %w", fx, fy, MaxGridCells, strata.ErrInvalidParameter)
	}
	nx, ny := int(fx), int(fy)

	grid := make([][]float64, ny)
	for j := range grid {
		row := make([]float64, nx)
		y := minY + float64(j)*stepY
		for i := range row {
			z, ok := m.InterpolateZ(minX+float64(i)*stepX, y)
			if !ok {
				z = math.NaN()
			}
			row[i] = z
		}
		grid[j] = row
	}
	return grid, nil
}

// SlopeAspect estimates slope (radians from horizontal) and aspect (radians
// clockwise from north, +y) at (x, y) by central differences over delta.
// Samples that fall off the hull reuse the centre elevation. ok is false
// when (x, y) itself is outside the hull.
func (m *Model) SlopeAspect(x, y, delta float64) (slope, aspect float64, ok bool) {
	if delta <= 0 {
		delta = 0.1
	}
	z0, ok := m.InterpolateZ(x, y)
	if !ok {
		return 0, 0, false
	}
	sample := func(sx, sy float64) float64 {
		if z, ok := m.InterpolateZ(sx, sy); ok {
			return z
		}
		return z0
	}
	dzdx := (sample(x+delta, y) - sample(x-delta, y)) / (2 * delta)
	dzdy := (sample(x, y+delta) - sample(x, y-delta)) / (2 * delta)

	slope = math.Atan(math.Hypot(dzdx, dzdy))
	if dzdx == 0 && dzdy == 0 {
		return slope, 0, true
	}
	aspect = math.Atan2(dzdx, dzdy)
	if aspect < 0 {
		aspect += 2 * math.Pi
	}
	return slope, aspect, true
}

// Stats summarises survey elevations.
type Stats struct {
	Points    int
	Triangles int
	MinZ      float64
	MaxZ      float64
	MeanZ     float64
	StdDevZ   float64
	// PlanArea is the summed plan-view area of all triangles.
	PlanArea float64
}

// Stats computes elevation statistics over the survey points.
func (m *Model) Stats() Stats {
	n := m.tin.NumPoints()
	zs := make([]float64, n)
	for i := range zs {
		zs[i] = m.tin.Point(i).Z
	}
	mean, std := stat.MeanStdDev(zs, nil)

	var area float64
	for i := 0; i < m.tin.Len(); i++ {
		a, b, c := m.tin.Vertices(i)
		area += math.Abs((b.X-a.X)*(c.Y-a.Y)-(c.X-a.X)*(b.Y-a.Y)) / 2
	}

	return Stats{
		Points:    n,
		Triangles: m.tin.Len(),
		MinZ:      floats.Min(zs),
		MaxZ:      floats.Max(zs),
		MeanZ:     mean,
		StdDevZ:   std,
		PlanArea:  area,
	}
}
