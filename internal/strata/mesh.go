package strata

// Mesh is a triangle mesh in the flat buffer layout the rendering surface
// consumes. Vertices and Normals hold 3 floats per vertex, Indices 3 per
// triangle.
type Mesh struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals,omitempty"`
	Indices  []uint32  `json:"indices"`
	Name     string    `json:"name,omitempty"`
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty reports whether the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Indices) == 0
}

// AddVertex appends a vertex and returns its index.
func (m *Mesh) AddVertex(p Point3D) uint32 {
	idx := uint32(m.VertexCount())
	m.Vertices = append(m.Vertices, float32(p.X), float32(p.Y), float32(p.Z))
	return idx
}

// AddTriangle appends one triangle by vertex index.
func (m *Mesh) AddTriangle(a, b, c uint32) {
	m.Indices = append(m.Indices, a, b, c)
}

// Vertex returns vertex i as a point.
func (m *Mesh) Vertex(i int) Point3D {
	return Point3D{
		X: float64(m.Vertices[3*i]),
		Y: float64(m.Vertices[3*i+1]),
		Z: float64(m.Vertices[3*i+2]),
	}
}

// Polyline is an ordered run of points with no gaps.
type Polyline []Point3D

// Len returns the number of points in the polyline.
func (p Polyline) Len() int { return len(p) }
