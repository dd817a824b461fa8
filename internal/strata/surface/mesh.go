package surface

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/strata/internal/strata"
)

// Mesh returns the surface as render buffers. Vertex i is survey point i,
// optionally shifted by zOffset, and normals are area-weighted vertex
// normals pointing up.
func (m *Model) Mesh(zOffset float64) strata.Mesh {
	mesh := strata.Mesh{Name: m.ID}
	n := m.tin.NumPoints()
	for i := 0; i < n; i++ {
		p := m.tin.Point(i)
		p.Z += zOffset
		mesh.AddVertex(p)
	}
	for i := 0; i < m.tin.Len(); i++ {
		tri := m.tin.Triangle(i)
		mesh.AddTriangle(uint32(tri[0]), uint32(tri[1]), uint32(tri[2]))
	}
	mesh.Normals = VertexNormals(&mesh)
	return mesh
}

// VertexNormals computes area-weighted unit normals for each vertex of
// mesh. Isolated vertices get a zero normal.
func VertexNormals(mesh *strata.Mesh) []float32 {
	acc := make([]r3.Vec, mesh.VertexCount())
	for t := 0; t < mesh.TriangleCount(); t++ {
		ia, ib, ic := mesh.Indices[3*t], mesh.Indices[3*t+1], mesh.Indices[3*t+2]
		a, b, c := vec(mesh.Vertex(int(ia))), vec(mesh.Vertex(int(ib))), vec(mesh.Vertex(int(ic)))
		face := r3.Cross(r3.Sub(b, a), r3.Sub(c, a))
		acc[ia] = r3.Add(acc[ia], face)
		acc[ib] = r3.Add(acc[ib], face)
		acc[ic] = r3.Add(acc[ic], face)
	}

	normals := make([]float32, 0, 3*len(acc))
	for _, v := range acc {
		if r3.Norm(v) > 0 {
			v = r3.Unit(v)
		}
		normals = append(normals, float32(v.X), float32(v.Y), float32(v.Z))
	}
	return normals
}

func vec(p strata.Point3D) r3.Vec {
	return r3.Vec{X: p.X, Y: p.Y, Z: p.Z}
}
