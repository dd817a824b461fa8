package tin

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/kdtree"

	"github.com/banshee-data/strata/internal/monitoring"
	"github.com/banshee-data/strata/internal/strata"
)

// NoNeighbor marks a hull edge in adjacency lists.
const NoNeighbor = -1

// Triangle is an index triple into the triangulated point set, always
// counter-clockwise in plan view.
type Triangle [3]int

// TriangleRef identifies a located triangle.
type TriangleRef struct {
	Index    int
	Vertices Triangle
}

// Options tunes triangulation construction.
type Options struct {
	// DuplicateEpsilon is the plan-view distance at or below which two
	// survey points are treated as coincident and rejected.
	DuplicateEpsilon float64

	// CellFactor sets the density of the point-location grid as cells per
	// triangle. Values <= 0 fall back to 1.
	CellFactor float64
}

// DefaultOptions returns the production defaults.
func DefaultOptions() Options {
	return Options{
		DuplicateEpsilon: 1e-9,
		CellFactor:       1,
	}
}

// Triangulation is an immutable Delaunay triangulation. All methods are
// safe for concurrent use.
type Triangulation struct {
	points    strata.PointSet
	triangles []Triangle
	neighbors [][3]int
	hull      [][2]int
	grid      *locateGrid
}

// Build triangulates the plan-view projection of points. The point set is
// copied; later changes to the caller's slice do not affect the result.
func Build(points strata.PointSet, opts Options) (*Triangulation, error) {
	if len(points) < 3 {
		return nil, fmt.Errorf("triangulation needs at least 3 points, got %d: %w",
			len(points), strata.ErrInsufficientPoints)
	}
	for i, p := range points {
		if !p.Finite() {
			return nil, fmt.Errorf("point %d %v is not finite: %w", i, p, strata.ErrDegenerateInput)
		}
	}
	if err := rejectDuplicates(points, opts.DuplicateEpsilon); err != nil {
		return nil, err
	}

	pts := points.Clone()
	tris := bowyerWatson(pts)
	if len(tris) == 0 {
		return nil, fmt.Errorf("all %d points are collinear in plan view: %w",
			len(pts), strata.ErrDegenerateInput)
	}

	t := &Triangulation{
		points:    pts,
		triangles: tris,
	}
	t.neighbors = buildAdjacency(tris)
	t.hull = t.buildHull()
	t.grid = newLocateGrid(t, opts.CellFactor)

	monitoring.Logf("tin: %d points, %d triangles, %d hull edges", len(pts), len(tris), len(t.hull))
	return t, nil
}

// rejectDuplicates finds any pair of points closer than eps in plan view.
// Each point's two nearest neighbours are queried; the first is the point
// itself, so a second hit inside eps is a duplicate.
func rejectDuplicates(points strata.PointSet, eps float64) error {
	if eps < 0 {
		eps = 0
	}
	eps2 := eps * eps

	kp := make(kdtree.Points, len(points))
	for i, p := range points {
		kp[i] = kdtree.Point{p.X, p.Y}
	}
	tree := kdtree.New(kp, false)

	for i, p := range points {
		keeper := kdtree.NewNKeeper(2)
		tree.NearestSet(keeper, kdtree.Point{p.X, p.Y})
		within := 0
		for _, c := range keeper.Heap {
			if c.Comparable != nil && c.Dist <= eps2 {
				within++
			}
		}
		if within >= 2 {
			return fmt.Errorf("point %d %v has a neighbour within %g in plan view: %w",
				i, p, eps, strata.ErrDegenerateInput)
		}
	}
	return nil
}

// NumPoints returns the number of triangulated points.
func (t *Triangulation) NumPoints() int { return len(t.points) }

// Point returns survey point i.
func (t *Triangulation) Point(i int) strata.Point3D { return t.points[i] }

// Len returns the number of triangles.
func (t *Triangulation) Len() int { return len(t.triangles) }

// Triangle returns triangle i.
func (t *Triangulation) Triangle(i int) Triangle { return t.triangles[i] }

// Triangles returns a copy of all triangles.
func (t *Triangulation) Triangles() []Triangle {
	out := make([]Triangle, len(t.triangles))
	copy(out, t.triangles)
	return out
}

// Vertices returns the three corner points of triangle i.
func (t *Triangulation) Vertices(i int) (a, b, c strata.Point3D) {
	tri := t.triangles[i]
	return t.points[tri[0]], t.points[tri[1]], t.points[tri[2]]
}

// Neighbors returns the triangles across each edge of triangle i. Entry k
// is across the edge opposite vertex k, or NoNeighbor on the hull.
func (t *Triangulation) Neighbors(i int) [3]int { return t.neighbors[i] }

// Hull returns the convex hull as directed point-index edges in
// counter-clockwise order.
func (t *Triangulation) Hull() [][2]int {
	out := make([][2]int, len(t.hull))
	copy(out, t.hull)
	return out
}

// Bounds returns the plan-view extent of the triangulated points.
func (t *Triangulation) Bounds() strata.Bounds { return t.grid.bounds }

// Contains reports whether (x, y) lies inside or on triangle i. The test
// accepts either winding: the three edge areas must not have mixed signs.
func (t *Triangulation) Contains(i int, x, y float64) bool {
	a, b, c := t.Vertices(i)
	return containsXY(a, b, c, x, y)
}

// Locate returns the triangle whose plan-view projection contains (x, y).
// It reports false outside the convex hull. When several triangles contain
// the point (shared edges and vertices) the lowest index wins, so repeated
// calls always agree.
func (t *Triangulation) Locate(x, y float64) (TriangleRef, bool) {
	if math.IsNaN(x) || math.IsNaN(y) {
		return TriangleRef{}, false
	}
	for _, ti := range t.grid.candidates(x, y) {
		if t.Contains(int(ti), x, y) {
			return TriangleRef{Index: int(ti), Vertices: t.triangles[ti]}, true
		}
	}
	return TriangleRef{}, false
}

func containsXY(a, b, c strata.Point3D, x, y float64) bool {
	d1 := edgeSide(a, b, x, y)
	d2 := edgeSide(b, c, x, y)
	d3 := edgeSide(c, a, x, y)
	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}

func edgeSide(a, b strata.Point3D, x, y float64) float64 {
	return (b.X-a.X)*(y-a.Y) - (b.Y-a.Y)*(x-a.X)
}

func buildAdjacency(tris []Triangle) [][3]int {
	type slot struct{ tri, k int }
	edges := make(map[[2]int]slot, 3*len(tris))
	for ti, tri := range tris {
		for k := 0; k < 3; k++ {
			edges[[2]int{tri[(k+1)%3], tri[(k+2)%3]}] = slot{ti, k}
		}
	}

	nb := make([][3]int, len(tris))
	for ti, tri := range tris {
		for k := 0; k < 3; k++ {
			nb[ti][k] = NoNeighbor
			if s, ok := edges[[2]int{tri[(k+2)%3], tri[(k+1)%3]}]; ok {
				nb[ti][k] = s.tri
			}
		}
	}
	return nb
}

func (t *Triangulation) buildHull() [][2]int {
	next := make(map[int]int)
	start := -1
	for ti, tri := range t.triangles {
		for k := 0; k < 3; k++ {
			if t.neighbors[ti][k] != NoNeighbor {
				continue
			}
			from, to := tri[(k+1)%3], tri[(k+2)%3]
			next[from] = to
			if start == -1 || from < start {
				start = from
			}
		}
	}
	if start == -1 {
		return nil
	}

	hull := make([][2]int, 0, len(next))
	for v := start; len(hull) < len(next); {
		to, ok := next[v]
		if !ok {
			break
		}
		hull = append(hull, [2]int{v, to})
		if to == start {
			break
		}
		v = to
	}
	return hull
}
