package stratum

import (
	"github.com/banshee-data/strata/internal/strata"
	"github.com/banshee-data/strata/internal/strata/surface"
)

// Solid extrudes a stratum over base into a closed render mesh: the top
// and bottom offset surfaces plus vertical walls along the hull.
func Solid(base *surface.Model, d Definition) strata.Mesh {
	t := base.Triangulation()
	n := t.NumPoints()
	mesh := strata.Mesh{Name: d.Name}

	for i := 0; i < n; i++ {
		p := t.Point(i)
		p.Z += d.Top()
		mesh.AddVertex(p)
	}
	for i := 0; i < n; i++ {
		p := t.Point(i)
		p.Z += d.Bottom()
		mesh.AddVertex(p)
	}

	top := func(i int) uint32 { return uint32(i) }
	bottom := func(i int) uint32 { return uint32(n + i) }

	for i := 0; i < t.Len(); i++ {
		tri := t.Triangle(i)
		mesh.AddTriangle(top(tri[0]), top(tri[1]), top(tri[2]))
		mesh.AddTriangle(bottom(tri[0]), bottom(tri[2]), bottom(tri[1]))
	}

	// Hull edges run counter-clockwise, so outward is to the right.
	for _, e := range t.Hull() {
		i, j := e[0], e[1]
		mesh.AddTriangle(bottom(i), bottom(j), top(j))
		mesh.AddTriangle(bottom(i), top(j), top(i))
	}

	mesh.Normals = surface.VertexNormals(&mesh)
	return mesh
}
