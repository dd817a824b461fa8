package tin

import (
	"math"

	"github.com/banshee-data/strata/internal/strata"
)

// superScale places the enclosing super triangle's vertices this many plan
// extents away from the data. Hull triangles lost to the super fan are
// restored afterwards by closeHull.
const superScale = 100

// bowyerWatson inserts points one by one into a super triangle, carving
// out every triangle whose circumcircle contains the new point and
// re-fanning the cavity. Triangles touching the super vertices are dropped
// at the end, then the hull is closed again and the result legalised. Work
// happens in coordinates shifted to the data centre so projected survey
// coordinates keep their precision.
func bowyerWatson(points strata.PointSet) []Triangle {
	n := len(points)
	b := points.Bounds()
	midX := (b.MinX + b.MaxX) / 2
	midY := (b.MinY + b.MaxY) / 2
	extent := math.Max(b.Width(), b.Height())
	if extent == 0 {
		return nil
	}

	local := make([]strata.Point2D, n, n+3)
	for i, p := range points {
		local[i] = strata.Point2D{X: p.X - midX, Y: p.Y - midY}
	}
	m := superScale * extent
	local = append(local,
		strata.Point2D{X: -m, Y: -m},
		strata.Point2D{X: m, Y: -m},
		strata.Point2D{X: 0, Y: m},
	)

	tris := []Triangle{{n, n + 1, n + 2}}
	var bad []int
	var boundary [][2]int
	isBad := make(map[int]bool)
	directed := make(map[[2]int]bool)

	for i := 0; i < n; i++ {
		p := local[i]

		bad = bad[:0]
		for ti, tri := range tris {
			if inCircumcircle(local[tri[0]], local[tri[1]], local[tri[2]], p) {
				bad = append(bad, ti)
			}
		}
		if len(bad) == 0 {
			continue
		}

		clear(directed)
		clear(isBad)
		for _, ti := range bad {
			isBad[ti] = true
			tri := tris[ti]
			for k := 0; k < 3; k++ {
				directed[[2]int{tri[k], tri[(k+1)%3]}] = true
			}
		}

		// The cavity boundary is every bad edge whose reverse is not also
		// a bad edge. Collected in bad-triangle order to stay deterministic.
		boundary = boundary[:0]
		for _, ti := range bad {
			tri := tris[ti]
			for k := 0; k < 3; k++ {
				e := [2]int{tri[k], tri[(k+1)%3]}
				if !directed[[2]int{e[1], e[0]}] {
					boundary = append(boundary, e)
				}
			}
		}

		kept := tris[:0]
		for ti, tri := range tris {
			if !isBad[ti] {
				kept = append(kept, tri)
			}
		}
		tris = kept
		for _, e := range boundary {
			tris = append(tris, Triangle{e[0], e[1], i})
		}
	}

	out := make([]Triangle, 0, len(tris))
	for _, tri := range tris {
		if tri[0] >= n || tri[1] >= n || tri[2] >= n {
			continue
		}
		if orient(local[tri[0]], local[tri[1]], local[tri[2]]) == 0 {
			continue
		}
		out = append(out, tri)
	}
	if len(out) == 0 {
		return nil
	}
	out = closeHull(local[:n], out)
	legalize(local[:n], out)
	return out
}

// orient is twice the signed area of abc; positive when counter-clockwise.
func orient(a, b, c strata.Point2D) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (c.X-a.X)*(b.Y-a.Y)
}

// inCircumcircle reports whether d lies strictly inside the circumcircle of
// the counter-clockwise triangle abc. Degenerate triangles have no circle.
func inCircumcircle(a, b, c, d strata.Point2D) bool {
	if orient(a, b, c) <= 0 {
		return false
	}
	det, _ := inCircleDet(a, b, c, d)
	return det > 0
}

// inCircleDet returns the in-circle determinant of d against abc together
// with a bound on its rounding magnitude.
func inCircleDet(a, b, c, d strata.Point2D) (det, perm float64) {
	adx, ady := a.X-d.X, a.Y-d.Y
	bdx, bdy := b.X-d.X, b.Y-d.Y
	cdx, cdy := c.X-d.X, c.Y-d.Y

	ad := adx*adx + ady*ady
	bd := bdx*bdx + bdy*bdy
	cd := cdx*cdx + cdy*cdy

	det = adx*(bdy*cd-bd*cdy) - ady*(bdx*cd-bd*cdx) + ad*(bdx*cdy-bdy*cdx)
	perm = (math.Abs(bdx*cdy)+math.Abs(bdy*cdx))*ad +
		(math.Abs(cdx*ady)+math.Abs(cdy*adx))*bd +
		(math.Abs(adx*bdy)+math.Abs(ady*bdx))*cd
	return det, perm
}
