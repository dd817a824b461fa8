package tin

import (
	"math"

	"github.com/banshee-data/strata/internal/strata"
)

// locateGrid buckets triangles by bounding box. Each cell lists triangle
// indices in ascending order, so the first containing candidate is the
// lowest-index triangle containing the query point.
type locateGrid struct {
	bounds       strata.Bounds
	nx, ny       int
	cellW, cellH float64
	cells        [][]int32
}

func newLocateGrid(t *Triangulation, cellFactor float64) *locateGrid {
	if cellFactor <= 0 {
		cellFactor = 1
	}
	b := t.points.Bounds()
	g := &locateGrid{bounds: b}

	target := math.Max(1, cellFactor*float64(len(t.triangles)))
	w, h := b.Width(), b.Height()
	switch {
	case w > 0 && h > 0:
		g.nx = int(math.Ceil(math.Sqrt(target * w / h)))
	case w > 0:
		g.nx = int(target)
	default:
		g.nx = 1
	}
	g.nx = max(1, g.nx)
	g.ny = max(1, int(math.Ceil(target/float64(g.nx))))
	if h == 0 {
		g.ny = 1
	}
	g.cellW = w / float64(g.nx)
	g.cellH = h / float64(g.ny)

	g.cells = make([][]int32, g.nx*g.ny)
	for ti := range t.triangles {
		a, bb, c := t.Vertices(ti)
		x0, y0 := g.cell(math.Min(a.X, math.Min(bb.X, c.X)), math.Min(a.Y, math.Min(bb.Y, c.Y)))
		x1, y1 := g.cell(math.Max(a.X, math.Max(bb.X, c.X)), math.Max(a.Y, math.Max(bb.Y, c.Y)))
		for cy := y0; cy <= y1; cy++ {
			for cx := x0; cx <= x1; cx++ {
				idx := cy*g.nx + cx
				g.cells[idx] = append(g.cells[idx], int32(ti))
			}
		}
	}
	return g
}

func (g *locateGrid) cell(x, y float64) (int, int) {
	cx, cy := 0, 0
	if g.cellW > 0 {
		cx = int((x - g.bounds.MinX) / g.cellW)
	}
	if g.cellH > 0 {
		cy = int((y - g.bounds.MinY) / g.cellH)
	}
	return min(max(cx, 0), g.nx-1), min(max(cy, 0), g.ny-1)
}

// candidates returns the triangles whose bounding boxes may contain (x, y).
func (g *locateGrid) candidates(x, y float64) []int32 {
	if !g.bounds.Contains(x, y) {
		return nil
	}
	cx, cy := g.cell(x, y)
	return g.cells[cy*g.nx+cx]
}
