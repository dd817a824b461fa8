package tin

import (
	"github.com/banshee-data/strata/internal/strata"
)

// flipTolerance is the relative in-circle margin below which an edge is
// left alone during legalisation. It stops co-circular quads flipping back
// and forth on rounding noise.
const flipTolerance = 1e-10

// closeHull fills the concave pockets left where super-triangle fans were
// removed, so the triangles cover the convex hull of pts. Points that ended
// up with no triangle at all are attached to the boundary edges they see.
func closeHull(pts []strata.Point2D, tris []Triangle) []Triangle {
	loop := boundaryLoop(tris)
	if len(loop) < 3 {
		return tris
	}

	used := make([]bool, len(pts))
	for _, tri := range tris {
		used[tri[0]], used[tri[1]], used[tri[2]] = true, true, true
	}
	var loose []int
	for i, u := range used {
		if !u {
			loose = append(loose, i)
		}
	}

	for round := 0; round <= len(pts); round++ {
		var filled bool
		tris, loop, filled = fillPockets(pts, tris, loop, loose)

		attached := false
		rest := make([]int, 0, len(loose))
		for _, p := range loose {
			var ok bool
			if tris, loop, ok = attachPoint(pts, tris, loop, loose, p); ok {
				attached = true
				continue
			}
			rest = append(rest, p)
		}
		loose = rest

		if !filled && !attached {
			break
		}
	}
	return tris
}

// boundaryLoop walks the directed edges that have no twin, starting from
// the lowest vertex index, and returns the counter-clockwise vertex ring.
func boundaryLoop(tris []Triangle) []int {
	directed := make(map[[2]int]bool, 3*len(tris))
	for _, tri := range tris {
		for k := 0; k < 3; k++ {
			directed[[2]int{tri[k], tri[(k+1)%3]}] = true
		}
	}
	next := make(map[int]int)
	start := -1
	for _, tri := range tris {
		for k := 0; k < 3; k++ {
			a, b := tri[k], tri[(k+1)%3]
			if directed[[2]int{b, a}] {
				continue
			}
			next[a] = b
			if start == -1 || a < start {
				start = a
			}
		}
	}
	if start == -1 {
		return nil
	}

	loop := make([]int, 0, len(next))
	for v := start; len(loop) < len(next); {
		loop = append(loop, v)
		to, ok := next[v]
		if !ok || to == start {
			break
		}
		v = to
	}
	return loop
}

// fillPockets adds the triangle (prev, next, v) at every reflex boundary
// vertex whose pocket holds no other point, until the ring turns left
// everywhere.
func fillPockets(pts []strata.Point2D, tris []Triangle, loop, loose []int) ([]Triangle, []int, bool) {
	filled := false
	for changed := true; changed && len(loop) > 3; {
		changed = false
		for i := 0; i < len(loop) && len(loop) > 3; {
			prev := loop[(i+len(loop)-1)%len(loop)]
			v := loop[i]
			next := loop[(i+1)%len(loop)]
			if orient(pts[prev], pts[v], pts[next]) >= 0 ||
				occupied(pts, prev, next, v, loop, loose) {
				i++
				continue
			}
			tris = append(tris, Triangle{prev, next, v})
			loop = append(loop[:i], loop[i+1:]...)
			changed, filled = true, true
			if i > 0 {
				i--
			}
		}
	}
	return tris, loop, filled
}

// attachPoint connects an untriangulated point outside the ring to the
// contiguous run of boundary edges facing it.
func attachPoint(pts []strata.Point2D, tris []Triangle, loop, loose []int, p int) ([]Triangle, []int, bool) {
	n := len(loop)
	visible := make([]bool, n)
	count := 0
	for j := 0; j < n; j++ {
		if orient(pts[loop[j]], pts[loop[(j+1)%n]], pts[p]) < 0 {
			visible[j] = true
			count++
		}
	}
	if count == 0 || count == n {
		return tris, loop, false
	}

	s := -1
	for j := 0; j < n; j++ {
		if visible[j] && !visible[(j+n-1)%n] {
			s = j
			break
		}
	}
	run := 0
	for visible[(s+run)%n] {
		run++
	}
	if run != count {
		return tris, loop, false
	}

	added := make([]Triangle, 0, run)
	for j := 0; j < run; j++ {
		a, b := loop[(s+j)%n], loop[(s+j+1)%n]
		if occupied(pts, a, p, b, loop, loose) {
			return tris, loop, false
		}
		added = append(added, Triangle{a, p, b})
	}

	ring := make([]int, 0, n-run+2)
	for j := 0; j <= n-run; j++ {
		ring = append(ring, loop[(s+run+j)%n])
	}
	ring = append(ring, p)
	return append(tris, added...), ring, true
}

// occupied reports whether any ring or loose point other than the corners
// lies inside or on the counter-clockwise triangle abc.
func occupied(pts []strata.Point2D, a, b, c int, loop, loose []int) bool {
	hit := func(w int) bool {
		if w == a || w == b || w == c {
			return false
		}
		return orient(pts[a], pts[b], pts[w]) >= 0 &&
			orient(pts[b], pts[c], pts[w]) >= 0 &&
			orient(pts[c], pts[a], pts[w]) >= 0
	}
	for _, w := range loop {
		if hit(w) {
			return true
		}
	}
	for _, w := range loose {
		if hit(w) {
			return true
		}
	}
	return false
}

// legalize runs Lawson edge flips until every interior edge is locally
// Delaunay. Triangles are rewritten in place so indices stay stable.
func legalize(pts []strata.Point2D, tris []Triangle) {
	edges := make(map[[2]int]int, 3*len(tris))
	stack := make([][2]int, 0, 3*len(tris))
	for ti, tri := range tris {
		for k := 0; k < 3; k++ {
			e := [2]int{tri[k], tri[(k+1)%3]}
			edges[e] = ti
			if e[0] < e[1] {
				stack = append(stack, e)
			}
		}
	}

	for budget := 64*len(tris) + 1024; len(stack) > 0 && budget > 0; {
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		a, b := e[0], e[1]
		t1, ok1 := edges[[2]int{a, b}]
		t2, ok2 := edges[[2]int{b, a}]
		if !ok1 || !ok2 {
			continue
		}
		c := opposite(tris[t1], a, b)
		d := opposite(tris[t2], a, b)

		det, perm := inCircleDet(pts[a], pts[b], pts[c], pts[d])
		if det <= flipTolerance*perm {
			continue
		}
		if orient(pts[a], pts[d], pts[c]) <= 0 || orient(pts[d], pts[b], pts[c]) <= 0 {
			continue
		}

		tris[t1] = Triangle{a, d, c}
		tris[t2] = Triangle{d, b, c}
		delete(edges, [2]int{a, b})
		delete(edges, [2]int{b, a})
		edges[[2]int{a, d}], edges[[2]int{d, c}], edges[[2]int{c, a}] = t1, t1, t1
		edges[[2]int{d, b}], edges[[2]int{b, c}], edges[[2]int{c, d}] = t2, t2, t2
		stack = append(stack, [2]int{a, d}, [2]int{d, b}, [2]int{b, c}, [2]int{c, a})
		budget--
	}
}

func opposite(tri Triangle, a, b int) int {
	for _, v := range tri {
		if v != a && v != b {
			return v
		}
	}
	return -1
}
