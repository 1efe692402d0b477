package brush

import (
	"github.com/chazu/brushkit/internal/logger"
	"go.uber.org/zap"
)

// loopPosition returns the position of half-edge origin within l, or -1.
func loopPosition(l loop, origin int) int {
	for k, le := range l.edges {
		if le.origin == origin {
			return k
		}
	}
	return -1
}

func insertLoopEdge(edges []loopEdge, at int, le loopEdge) []loopEdge {
	edges = append(edges, loopEdge{})
	copy(edges[at+1:], edges[at:])
	edges[at] = le
	return edges
}

// SplitHalfEdge inserts vertex into edge and its twin. The edge from the old
// source to vertex is new and its index is returned; the old half-edge now
// starts at vertex. Both adjacent polygons gain one edge and every edge index
// after the insertion point shifts, so cached indices must be re-resolved
// through the returned Remap. Invalid input returns -1 and leaves the mesh
// unchanged.
func (m *Mesh) SplitHalfEdge(edge, vertex int) (int, Remap) {
	if edge < 0 || edge >= len(m.HalfEdges) || vertex < 0 || vertex >= len(m.Vertices) {
		return -1, Remap{}
	}
	src, dst := m.EdgeSource(edge), m.EdgeDestination(edge)
	if src < 0 || vertex == src || vertex == dst {
		return -1, Remap{}
	}
	twin := m.HalfEdges[edge].TwinIndex

	loops := m.loops()
	for _, he := range []int{edge, twin} {
		p := m.EdgePolygon(he)
		if p < 0 || p >= len(loops) {
			return -1, Remap{}
		}
		at := loopPosition(loops[p], he)
		loops[p].edges = insertLoopEdge(loops[p].edges, at, loopEdge{vertex: vertex, origin: -1})
	}

	remap, ok := m.apply("split-half-edge", loops, false)
	if !ok {
		return -1, Remap{}
	}
	return m.FindEdgeByVertexIndices(src, vertex), remap
}

// SplitPolygon divides polygon with a new edge pair joining the destination
// vertices of edgeOut and edgeIn. The polygon keeps the part that follows
// edgeOut up to edgeIn; the other part is appended as a new polygon with the
// same surface. It returns the new half-edge that stays in polygon, or -1
// when the edges do not belong to polygon or are adjacent.
func (m *Mesh) SplitPolygon(polygon, edgeOut, edgeIn int) (int, Remap) {
	if !m.IsEdgeIndexPartOfPolygon(polygon, edgeOut) || !m.IsEdgeIndexPartOfPolygon(polygon, edgeIn) {
		logger.Warn("split polygon: edges do not lie on polygon",
			zap.Int("polygon", polygon), zap.Int("edgeOut", edgeOut), zap.Int("edgeIn", edgeIn))
		return -1, Remap{}
	}
	poly := m.Polygons[polygon]
	n := poly.EdgeCount
	iOut, iIn := edgeOut-poly.FirstEdge, edgeIn-poly.FirstEdge
	if (iIn-iOut+n)%n < 2 || (iOut-iIn+n)%n < 2 {
		return -1, Remap{}
	}
	a, b := m.EdgeDestination(edgeOut), m.EdgeDestination(edgeIn)

	loops := m.loops()
	src := loops[polygon].edges

	var kept, split []loopEdge
	for k := iOut + 1; ; k++ {
		kept = append(kept, src[k%n])
		if k%n == iIn {
			break
		}
	}
	kept = append(kept, loopEdge{vertex: a, origin: -1})
	for k := iIn + 1; ; k++ {
		split = append(split, src[k%n])
		if k%n == iOut {
			break
		}
	}
	split = append(split, loopEdge{vertex: b, origin: -1})

	loops[polygon].edges = kept
	loops = append(loops, loop{edges: split, surface: poly.Surface, origin: -1})

	remap, ok := m.apply("split-polygon", loops, false)
	if !ok {
		return -1, Remap{}
	}
	return m.FindEdgeByVertexIndices(b, a), remap
}

// RemoveEdge deletes edge and its twin, merging the two adjacent polygons
// into the one that owned edge. Vertices left without edges are dropped.
func (m *Mesh) RemoveEdge(edge int) (Remap, bool) {
	if edge < 0 || edge >= len(m.HalfEdges) {
		return Remap{}, false
	}
	twin := m.HalfEdges[edge].TwinIndex
	p, q := m.EdgePolygon(edge), m.EdgePolygon(twin)
	if p < 0 || q < 0 || p == q {
		return Remap{}, false
	}

	loops := m.loops()
	merged := make([]loopEdge, 0, len(loops[p].edges)+len(loops[q].edges)-2)
	for _, side := range []struct{ poly, he int }{{p, edge}, {q, twin}} {
		edges := loops[side.poly].edges
		at := loopPosition(loops[side.poly], side.he)
		for k := 1; k < len(edges); k++ {
			merged = append(merged, edges[(at+k)%len(edges)])
		}
	}
	loops[p].edges = simplifyLoop(merged)
	loops = append(loops[:q], loops[q+1:]...)

	return m.apply("remove-edge", loops, true)
}

// RemoveEdges removes several edges. Each edge is resolved to its endpoint
// vertices before anything is removed and re-resolved after every removal,
// since indices shift in between. Edges already merged away are skipped.
// The batch is all-or-nothing.
func (m *Mesh) RemoveEdges(edges []int) (Remap, bool) {
	type pair struct{ from, to int }
	var pairs []pair
	for _, e := range edges {
		if src, dst := m.EdgeSource(e), m.EdgeDestination(e); src >= 0 && dst >= 0 {
			pairs = append(pairs, pair{src, dst})
		}
	}

	saved := m.Clone()
	total := IdentityRemap(len(m.Vertices), len(m.HalfEdges), len(m.Polygons))
	for i, pr := range pairs {
		if pr.from < 0 || pr.to < 0 {
			continue
		}
		e := m.FindEdgeByVertexIndices(pr.from, pr.to)
		if e < 0 {
			e = m.FindEdgeByVertexIndices(pr.to, pr.from)
		}
		if e < 0 {
			continue
		}
		r, ok := m.RemoveEdge(e)
		if !ok {
			*m = *saved
			return Remap{}, false
		}
		total = total.Then(r)
		for j := i + 1; j < len(pairs); j++ {
			pairs[j] = pair{r.Vertex(pairs[j].from), r.Vertex(pairs[j].to)}
		}
	}
	return total, true
}

// RemoveVertex removes vertex from every polygon loop. Loops that fall below
// three vertices disappear; if that opens a single boundary cycle it is
// capped with a new polygon. Removing a vertex shared by exactly two
// polygons is the inverse of SplitHalfEdge. The mesh is unchanged when the
// result would not be a closed, valid mesh.
func (m *Mesh) RemoveVertex(vertex int) (Remap, bool) {
	if vertex < 0 || vertex >= len(m.Vertices) {
		return Remap{}, false
	}

	var (
		kept       []loop
		capSurface Surface
		touched    bool
	)
	for _, l := range m.loops() {
		filtered := make([]loopEdge, 0, len(l.edges))
		for _, le := range l.edges {
			if le.vertex != vertex {
				filtered = append(filtered, le)
			}
		}
		if len(filtered) == len(l.edges) {
			kept = append(kept, l)
			continue
		}
		if !touched {
			capSurface = l.surface
			touched = true
		}
		filtered = simplifyLoop(filtered)
		if len(filtered) >= 3 {
			l.edges = filtered
			kept = append(kept, l)
		}
	}

	if touched {
		capLoop, ok := capBoundary(kept)
		if !ok {
			logger.Debug("remove vertex: boundary cannot be capped", zap.Int("vertex", vertex))
			return Remap{}, false
		}
		if capLoop != nil {
			kept = append(kept, loop{edges: capLoop, surface: capSurface, origin: -1})
		}
	}
	if len(kept) == 0 {
		return Remap{}, false
	}
	return m.apply("remove-vertex", kept, true)
}

// capBoundary returns a loop closing the open edges of loops, nil when there
// are none, or false when they do not form exactly one simple cycle.
func capBoundary(loops []loop) ([]loopEdge, bool) {
	present := make(map[directedEdge]bool)
	var order []directedEdge
	for _, l := range loops {
		n := len(l.edges)
		for k, le := range l.edges {
			d := directedEdge{l.edges[(k+n-1)%n].vertex, le.vertex}
			present[d] = true
			order = append(order, d)
		}
	}

	var open []directedEdge
	byTo := make(map[int]directedEdge)
	for _, d := range order {
		if present[directedEdge{d.to, d.from}] {
			continue
		}
		if _, dup := byTo[d.to]; dup {
			return nil, false
		}
		byTo[d.to] = d
		open = append(open, d)
	}
	if len(open) == 0 {
		return nil, true
	}
	if len(open) < 3 {
		return nil, false
	}

	// Cap edges run opposite to the open edges: for open a->b the cap has b->a.
	start := open[0].from
	cur := start
	var closing []loopEdge
	for range open {
		closing = append(closing, loopEdge{vertex: cur, origin: -1})
		d, ok := byTo[cur]
		if !ok {
			return nil, false
		}
		cur = d.from
		if cur == start {
			break
		}
	}
	if cur != start || len(closing) != len(open) {
		return nil, false
	}
	return closing, true
}
