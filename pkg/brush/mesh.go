// Package brush implements the half-edge boundary representation used for
// convex and near-convex CSG brushes.
//
// A Mesh stores its topology as flat index arrays. Every polygon owns a
// contiguous range of half-edges listed in winding order, and half-edge i
// runs from the destination vertex of its twin to its own destination
// vertex. Polygons wind counter-clockwise when seen from outside, so the
// Newell normal of a loop points out of the solid.
//
// Mutations (SplitHalfEdge, SplitPolygon, RemoveEdge, RemoveVertex) rebuild
// the arrays atomically and return a Remap describing how every old index
// moved, so that selection state held elsewhere can be repaired. A mutation
// that would break a structural invariant leaves the mesh untouched.
//
// A Mesh is not safe for concurrent mutation; independent meshes may be
// built and edited in parallel.
package brush

import (
	"github.com/chazu/brushkit/pkg/geom"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// HalfEdge is one directed side of an undirected mesh edge.
type HalfEdge struct {
	VertexIndex int `json:"vertex"` // destination vertex
	TwinIndex   int `json:"twin"`   // opposing half-edge
}

// Surface describes how a polygon is rendered. The mesh only copies it
// around; builders check that enough of them were supplied.
type Surface struct {
	ID             int    `json:"id"`
	Material       string `json:"material,omitempty"`
	SmoothingGroup uint32 `json:"smoothingGroup,omitempty"`
}

// Polygon is a face of the mesh occupying half-edges
// [FirstEdge, FirstEdge+EdgeCount).
type Polygon struct {
	FirstEdge int     `json:"firstEdge"`
	EdgeCount int     `json:"edgeCount"`
	Surface   Surface `json:"surface"`
}

// Mesh is a half-edge brush mesh.
type Mesh struct {
	Vertices               []v3.Vec     `json:"vertices"`
	HalfEdges              []HalfEdge   `json:"halfEdges"`
	HalfEdgePolygonIndices []int        `json:"halfEdgePolygonIndices"`
	Polygons               []Polygon    `json:"polygons"`
	Planes                 []geom.Plane `json:"planes"`
	Bounds                 sdf.Box3     `json:"bounds"`
}

// New returns an empty mesh.
func New() *Mesh {
	return &Mesh{}
}

// IsEmpty reports whether the mesh has no polygons.
func (m *Mesh) IsEmpty() bool {
	return m == nil || len(m.Polygons) == 0
}

// Clear resets the mesh to the empty, structurally valid state.
func (m *Mesh) Clear() {
	m.Vertices = nil
	m.HalfEdges = nil
	m.HalfEdgePolygonIndices = nil
	m.Polygons = nil
	m.Planes = nil
	m.Bounds = sdf.Box3{}
}

// Clone returns a deep copy of the mesh.
func (m *Mesh) Clone() *Mesh {
	if m == nil {
		return nil
	}
	return &Mesh{
		Vertices:               append([]v3.Vec(nil), m.Vertices...),
		HalfEdges:              append([]HalfEdge(nil), m.HalfEdges...),
		HalfEdgePolygonIndices: append([]int(nil), m.HalfEdgePolygonIndices...),
		Polygons:               append([]Polygon(nil), m.Polygons...),
		Planes:                 append([]geom.Plane(nil), m.Planes...),
		Bounds:                 m.Bounds,
	}
}

// AddVertex appends a vertex and returns its index. The vertex is not part
// of any polygon until an edge is split at it.
func (m *Mesh) AddVertex(p v3.Vec) int {
	m.Vertices = append(m.Vertices, p)
	m.CalculateBounds()
	return len(m.Vertices) - 1
}

// FindOrAddVertex returns the index of a vertex coincident with p, adding
// one when none exists.
func (m *Mesh) FindOrAddVertex(p v3.Vec) int {
	if i := m.FindVertexIndexOfVertex(p); i >= 0 {
		return i
	}
	return m.AddVertex(p)
}

// Translate moves every vertex by offset and refreshes planes and bounds.
func (m *Mesh) Translate(offset v3.Vec) {
	for i := range m.Vertices {
		m.Vertices[i] = m.Vertices[i].Add(offset)
	}
	m.CalculatePlanes()
	m.CalculateBounds()
}

// EdgeDestination returns the vertex edge points to, or -1.
func (m *Mesh) EdgeDestination(edge int) int {
	if edge < 0 || edge >= len(m.HalfEdges) {
		return -1
	}
	return m.HalfEdges[edge].VertexIndex
}

// EdgeSource returns the vertex edge starts from, or -1.
func (m *Mesh) EdgeSource(edge int) int {
	if edge < 0 || edge >= len(m.HalfEdges) {
		return -1
	}
	return m.EdgeDestination(m.HalfEdges[edge].TwinIndex)
}

// EdgePolygon returns the polygon owning edge, or -1.
func (m *Mesh) EdgePolygon(edge int) int {
	if edge < 0 || edge >= len(m.HalfEdgePolygonIndices) {
		return -1
	}
	return m.HalfEdgePolygonIndices[edge]
}

// NextEdge returns the edge following edge in its polygon loop, or -1.
func (m *Mesh) NextEdge(edge int) int {
	p := m.EdgePolygon(edge)
	if p < 0 || p >= len(m.Polygons) {
		return -1
	}
	poly := m.Polygons[p]
	if poly.EdgeCount <= 0 {
		return -1
	}
	return poly.FirstEdge + (edge-poly.FirstEdge+1)%poly.EdgeCount
}

// PrevEdge returns the edge preceding edge in its polygon loop, or -1.
func (m *Mesh) PrevEdge(edge int) int {
	p := m.EdgePolygon(edge)
	if p < 0 || p >= len(m.Polygons) {
		return -1
	}
	poly := m.Polygons[p]
	if poly.EdgeCount <= 0 {
		return -1
	}
	return poly.FirstEdge + (edge-poly.FirstEdge+poly.EdgeCount-1)%poly.EdgeCount
}

// PolygonVertexIndices returns the destination vertices of a polygon's
// edges in winding order, or nil for an invalid index.
func (m *Mesh) PolygonVertexIndices(polygon int) []int {
	if polygon < 0 || polygon >= len(m.Polygons) {
		return nil
	}
	poly := m.Polygons[polygon]
	if poly.FirstEdge < 0 || poly.EdgeCount < 0 || poly.FirstEdge+poly.EdgeCount > len(m.HalfEdges) {
		return nil
	}
	out := make([]int, 0, poly.EdgeCount)
	for e := poly.FirstEdge; e < poly.FirstEdge+poly.EdgeCount; e++ {
		out = append(out, m.HalfEdges[e].VertexIndex)
	}
	return out
}

// PolygonVertices returns the positions of a polygon's loop.
func (m *Mesh) PolygonVertices(polygon int) []v3.Vec {
	idx := m.PolygonVertexIndices(polygon)
	if idx == nil {
		return nil
	}
	out := make([]v3.Vec, 0, len(idx))
	for _, v := range idx {
		if v < 0 || v >= len(m.Vertices) {
			return nil
		}
		out = append(out, m.Vertices[v])
	}
	return out
}

// Centroid returns the average vertex position.
func (m *Mesh) Centroid() v3.Vec {
	return geom.Centroid(m.Vertices)
}
