package brush

import "github.com/chazu/brushkit/pkg/geom"

// CalculatePlanes refits one plane per polygon from its vertex loop.
// The Newell normal through the loop centroid is used, so a polygon whose
// vertices drifted out of plane gets an averaged plane instead of one biased
// toward three arbitrary vertices. Degenerate loops get the zero plane.
func (m *Mesh) CalculatePlanes() {
	if cap(m.Planes) >= len(m.Polygons) {
		m.Planes = m.Planes[:len(m.Polygons)]
	} else {
		m.Planes = make([]geom.Plane, len(m.Polygons))
	}
	for p := range m.Polygons {
		plane, ok := geom.PlaneFromPoints(m.PolygonVertices(p))
		if !ok {
			plane = geom.Plane{}
		}
		m.Planes[p] = plane
	}
}

// CalculateBounds refreshes the mesh bounding box from its vertices.
func (m *Mesh) CalculateBounds() {
	m.Bounds = geom.BoundsOf(m.Vertices)
}

// IsConvex reports whether every vertex lies on or behind every polygon
// plane within eps. Empty meshes are not convex.
func (m *Mesh) IsConvex(eps float64) bool {
	if m.IsEmpty() || len(m.Planes) != len(m.Polygons) {
		return false
	}
	used := m.usedVertices()
	for _, plane := range m.Planes {
		for v, p := range m.Vertices {
			if used[v] && plane.Distance(p) > eps {
				return false
			}
		}
	}
	return true
}

// PolygonDeviation returns how far polygon's vertices stray from its plane.
func (m *Mesh) PolygonDeviation(polygon int) float64 {
	if polygon < 0 || polygon >= len(m.Planes) {
		return 0
	}
	return geom.MaxDeviation(m.Planes[polygon], m.PolygonVertices(polygon))
}

func (m *Mesh) usedVertices() []bool {
	used := make([]bool, len(m.Vertices))
	for _, he := range m.HalfEdges {
		if he.VertexIndex >= 0 && he.VertexIndex < len(used) {
			used[he.VertexIndex] = true
		}
	}
	return used
}
