package brush

import (
	"github.com/chazu/brushkit/internal/logger"
	"go.uber.org/zap"
)

// SplitNonPlanarPolygons fan-triangulates every polygon whose vertices stray
// more than eps from its plane. The first triangle keeps the polygon index
// and the rest are appended with the same surface. It returns the remap and
// the number of polygons split.
func (m *Mesh) SplitNonPlanarPolygons(eps float64) (Remap, int) {
	loops := m.loops()
	var extra []loop
	split := 0
	for p := range m.Polygons {
		n := len(loops[p].edges)
		if n <= 3 || m.PolygonDeviation(p) <= eps {
			continue
		}
		tris := fanTriangles(loops[p])
		loops[p] = tris[0]
		extra = append(extra, tris[1:]...)
		split++
	}
	if split == 0 {
		return IdentityRemap(len(m.Vertices), len(m.HalfEdges), len(m.Polygons)), 0
	}
	remap, ok := m.apply("split-non-planar", append(loops, extra...), false)
	if !ok {
		return Remap{}, 0
	}
	logger.Debug("split non-planar polygons", zap.Int("count", split))
	return remap, split
}

// fanTriangles splits a loop into triangles around the source vertex of its
// first edge, keeping original edges where they survive.
func fanTriangles(l loop) []loop {
	n := len(l.edges)
	apex := l.edges[n-1].vertex
	tris := make([]loop, 0, n-2)
	for k := 0; k <= n-3; k++ {
		in := loopEdge{vertex: l.edges[k].vertex, origin: -1}
		if k == 0 {
			in = l.edges[0]
		}
		out := loopEdge{vertex: apex, origin: -1}
		if k+1 == n-2 {
			out = l.edges[n-1]
		}
		origin := -1
		if k == 0 {
			origin = l.origin
		}
		tris = append(tris, loop{
			edges:   []loopEdge{in, l.edges[k+1], out},
			surface: l.surface,
			origin:  origin,
		})
	}
	return tris
}

// MergeCoplanarPolygons removes edges between neighbouring polygons that
// share a surface and whose planes match within eps. It returns the combined
// remap and the number of edges removed.
func (m *Mesh) MergeCoplanarPolygons(eps float64) (Remap, int) {
	total := IdentityRemap(len(m.Vertices), len(m.HalfEdges), len(m.Polygons))
	merged := 0
	rejected := make(map[int]bool)
	for {
		e := m.mergeCandidate(eps, rejected)
		if e < 0 {
			break
		}
		r, ok := m.RemoveEdge(e)
		if !ok {
			rejected[e] = true
			continue
		}
		total = total.Then(r)
		merged++
		clear(rejected)
	}
	return total, merged
}

func (m *Mesh) mergeCandidate(eps float64, rejected map[int]bool) int {
	if len(m.Planes) != len(m.Polygons) {
		return -1
	}
	for e, he := range m.HalfEdges {
		if rejected[e] || rejected[he.TwinIndex] {
			continue
		}
		p, q := m.EdgePolygon(e), m.EdgePolygon(he.TwinIndex)
		if p < 0 || q < 0 || p == q {
			continue
		}
		if m.Polygons[p].Surface != m.Polygons[q].Surface {
			continue
		}
		if m.Planes[p].Equals(m.Planes[q], eps) {
			return e
		}
	}
	return -1
}

// SoftEdgeCount returns how many edges the optimized brush has beyond the
// authored one. A positive count means faces of the authored brush were
// triangulated behind the user's back.
func SoftEdgeCount(authored, optimized *Mesh) int {
	if authored == nil || optimized == nil {
		return 0
	}
	diff := len(optimized.HalfEdges) - len(authored.HalfEdges)
	if diff <= 0 {
		return 0
	}
	return diff / 2
}

// Optimized returns a copy with non-planar polygons triangulated.
func (m *Mesh) Optimized(eps float64) *Mesh {
	out := m.Clone()
	out.SplitNonPlanarPolygons(eps)
	return out
}
