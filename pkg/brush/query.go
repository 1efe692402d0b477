package brush

import (
	"github.com/chazu/brushkit/pkg/geom"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// FindEdgeByVertexIndices returns the half-edge running from v1 to v2, or -1.
// Direction matters: the opposite half-edge is found by swapping the
// arguments.
func (m *Mesh) FindEdgeByVertexIndices(v1, v2 int) int {
	for e, he := range m.HalfEdges {
		if he.VertexIndex != v2 {
			continue
		}
		if m.EdgeSource(e) == v1 {
			return e
		}
	}
	return -1
}

// FindPolygonEdgeByVertexIndex returns the edge of polygon whose destination
// is vertex, or -1.
func (m *Mesh) FindPolygonEdgeByVertexIndex(polygon, vertex int) int {
	if polygon < 0 || polygon >= len(m.Polygons) {
		return -1
	}
	poly := m.Polygons[polygon]
	for e := poly.FirstEdge; e < poly.FirstEdge+poly.EdgeCount; e++ {
		if m.HalfEdges[e].VertexIndex == vertex {
			return e
		}
	}
	return -1
}

// FindVertexIndexOfVertex returns the first vertex coincident with p within
// geom.EqualitySqEpsilon, or -1.
func (m *Mesh) FindVertexIndexOfVertex(p v3.Vec) int {
	for i, v := range m.Vertices {
		if geom.Coincident(v, p) {
			return i
		}
	}
	return -1
}

// IsVertexIndexPartOfPolygon reports whether vertex lies on polygon's loop.
func (m *Mesh) IsVertexIndexPartOfPolygon(polygon, vertex int) bool {
	return m.FindPolygonEdgeByVertexIndex(polygon, vertex) != -1
}

// IsEdgeIndexPartOfPolygon reports whether edge lies in polygon's edge range.
func (m *Mesh) IsEdgeIndexPartOfPolygon(polygon, edge int) bool {
	if polygon < 0 || polygon >= len(m.Polygons) {
		return false
	}
	poly := m.Polygons[polygon]
	return edge >= poly.FirstEdge && edge < poly.FirstEdge+poly.EdgeCount
}

// PolygonsOfVertex returns every polygon whose loop passes through vertex.
func (m *Mesh) PolygonsOfVertex(vertex int) []int {
	var out []int
	for p := range m.Polygons {
		if m.IsVertexIndexPartOfPolygon(p, vertex) {
			out = append(out, p)
		}
	}
	return out
}
