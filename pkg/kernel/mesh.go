package kernel

import v3 "github.com/deadsy/sdfx/vec/v3"

// Mesh is a triangle mesh suitable for rendering.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, indices has 3 uint32s per triangle.
type Mesh struct {
	Vertices  []float32 `json:"vertices"`            // [x0,y0,z0, x1,y1,z1, ...]
	Normals   []float32 `json:"normals"`             // [nx0,ny0,nz0, ...]
	Indices   []uint32  `json:"indices"`             // [i0,i1,i2, ...] triangles
	PartName  string    `json:"partName"`            // which brush of the design this came from
	Operation string    `json:"operation,omitempty"` // CSG role of that brush
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// AddVertex appends a vertex with its normal and returns its index.
func (m *Mesh) AddVertex(p, n v3.Vec) uint32 {
	i := uint32(m.VertexCount())
	m.Vertices = append(m.Vertices, float32(p.X), float32(p.Y), float32(p.Z))
	m.Normals = append(m.Normals, float32(n.X), float32(n.Y), float32(n.Z))
	return i
}

// AddTriangle appends one triangle by vertex index.
func (m *Mesh) AddTriangle(a, b, c uint32) {
	m.Indices = append(m.Indices, a, b, c)
}

// Vertex returns vertex i as a vector.
func (m *Mesh) Vertex(i int) v3.Vec {
	return v3.Vec{X: float64(m.Vertices[3*i]), Y: float64(m.Vertices[3*i+1]), Z: float64(m.Vertices[3*i+2])}
}
