package brush

import (
	"fmt"

	"github.com/chazu/brushkit/internal/logger"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"go.uber.org/zap"
)

// loopEdge is one entry of a polygon loop: the destination vertex of an edge
// and the half-edge it came from before the mutation (-1 for new edges).
type loopEdge struct {
	vertex int
	origin int
}

// loop is the editable form of a polygon used while mutating.
type loop struct {
	edges   []loopEdge
	surface Surface
	origin  int
}

// loops returns the mesh as vertex loops that mutations can edit freely.
func (m *Mesh) loops() []loop {
	out := make([]loop, len(m.Polygons))
	for p, poly := range m.Polygons {
		edges := make([]loopEdge, poly.EdgeCount)
		for k := range edges {
			e := poly.FirstEdge + k
			edges[k] = loopEdge{vertex: m.HalfEdges[e].VertexIndex, origin: e}
		}
		out[p] = loop{edges: edges, surface: poly.Surface, origin: p}
	}
	return out
}

type directedEdge struct {
	from, to int
}

// rebuild replaces the topology with loops, linking twins by vertex pair.
// With compact set, vertices no loop references are dropped. The mesh is
// only modified when rebuild succeeds.
func (m *Mesh) rebuild(loops []loop, compact bool) (Remap, error) {
	oldV, oldE, oldP := len(m.Vertices), len(m.HalfEdges), len(m.Polygons)

	vertexMap := identity(oldV)
	vertices := m.Vertices
	if compact {
		used := make([]bool, oldV)
		for _, l := range loops {
			for _, le := range l.edges {
				if le.vertex >= 0 && le.vertex < oldV {
					used[le.vertex] = true
				}
			}
		}
		vertices = make([]v3.Vec, 0, oldV)
		for i := range vertexMap {
			if !used[i] {
				vertexMap[i] = -1
				continue
			}
			vertexMap[i] = len(vertices)
			vertices = append(vertices, m.Vertices[i])
		}
	}

	edgeMap := filled(oldE, -1)
	polygonMap := filled(oldP, -1)

	var (
		halfEdges []HalfEdge
		owners    []int
		sources   []int
		polygons  []Polygon
	)
	byPair := make(map[directedEdge]int)

	for p, l := range loops {
		n := len(l.edges)
		if n < 3 {
			return Remap{}, fmt.Errorf("polygon %d has %d edges", p, n)
		}
		first := len(halfEdges)
		for k, le := range l.edges {
			prev := l.edges[(k+n-1)%n].vertex
			if le.vertex < 0 || le.vertex >= oldV || prev < 0 || prev >= oldV {
				return Remap{}, fmt.Errorf("polygon %d references vertex outside [0,%d)", p, oldV)
			}
			from, to := vertexMap[prev], vertexMap[le.vertex]
			if from == to {
				return Remap{}, fmt.Errorf("polygon %d repeats vertex %d", p, to)
			}
			key := directedEdge{from, to}
			if _, dup := byPair[key]; dup {
				return Remap{}, fmt.Errorf("edge %d->%d used twice", from, to)
			}
			byPair[key] = len(halfEdges)
			if le.origin >= 0 && le.origin < oldE {
				edgeMap[le.origin] = len(halfEdges)
			}
			halfEdges = append(halfEdges, HalfEdge{VertexIndex: to, TwinIndex: -1})
			owners = append(owners, p)
			sources = append(sources, from)
		}
		polygons = append(polygons, Polygon{FirstEdge: first, EdgeCount: n, Surface: l.surface})
		if l.origin >= 0 && l.origin < oldP {
			polygonMap[l.origin] = p
		}
	}

	for e := range halfEdges {
		twin, ok := byPair[directedEdge{halfEdges[e].VertexIndex, sources[e]}]
		if !ok {
			return Remap{}, fmt.Errorf("edge %d->%d has no twin", sources[e], halfEdges[e].VertexIndex)
		}
		halfEdges[e].TwinIndex = twin
	}

	m.Vertices = vertices
	m.HalfEdges = halfEdges
	m.HalfEdgePolygonIndices = owners
	m.Polygons = polygons
	m.Planes = nil
	m.CalculatePlanes()
	m.CalculateBounds()

	return Remap{Vertices: vertexMap, Edges: edgeMap, Polygons: polygonMap}, nil
}

// apply rebuilds from loops and rolls back when the result is malformed.
// A mesh that was valid before must still be valid afterwards.
func (m *Mesh) apply(op string, loops []loop, compact bool) (Remap, bool) {
	wasValid := len(m.Problems()) == 0
	saved := m.Clone()

	remap, err := m.rebuild(loops, compact)
	if err != nil {
		logger.Debug("brush mutation rejected", zap.String("op", op), zap.Error(err))
		return Remap{}, false
	}
	if wasValid {
		if problems := m.Problems(); len(problems) > 0 {
			*m = *saved
			logger.Debug("brush mutation rolled back", zap.String("op", op), zap.Error(problems[0]))
			return Remap{}, false
		}
	}
	return remap, true
}

// simplifyLoop drops repeated vertices and x->v->x spikes left behind when
// loops are merged or shortened.
func simplifyLoop(edges []loopEdge) []loopEdge {
	for changed := true; changed && len(edges) >= 3; {
		changed = false
		n := len(edges)
		for i := 0; i < n; i++ {
			prev := edges[(i+n-1)%n]
			if edges[i].vertex == prev.vertex {
				edges = append(edges[:i:i], edges[i+1:]...)
				changed = true
				break
			}
			next := edges[(i+1)%n]
			if prev.vertex == next.vertex {
				edges = removeCyclicPair(edges, i)
				changed = true
				break
			}
		}
	}
	return edges
}

// removeCyclicPair removes entries i and i+1 (mod len).
func removeCyclicPair(edges []loopEdge, i int) []loopEdge {
	n := len(edges)
	j := (i + 1) % n
	out := make([]loopEdge, 0, n-2)
	for k, le := range edges {
		if k != i && k != j {
			out = append(out, le)
		}
	}
	return out
}

// NewFromLoops builds a mesh from per-polygon vertex loops listed in outward
// counter-clockwise order. Loop entries are destination vertices, so edge k
// of a loop runs from loop[k-1] to loop[k]. It returns nil when fewer
// surfaces than loops are supplied or the loops do not close into a valid
// half-edge mesh.
func NewFromLoops(vertices []v3.Vec, polygonLoops [][]int, surfaces []Surface) *Mesh {
	if len(polygonLoops) == 0 || len(surfaces) < len(polygonLoops) {
		return nil
	}
	loops := make([]loop, len(polygonLoops))
	for p, vs := range polygonLoops {
		edges := make([]loopEdge, len(vs))
		for k, v := range vs {
			edges[k] = loopEdge{vertex: v, origin: -1}
		}
		loops[p] = loop{edges: edges, surface: surfaces[p], origin: -1}
	}

	m := &Mesh{Vertices: append([]v3.Vec(nil), vertices...)}
	if _, err := m.rebuild(loops, false); err != nil {
		logger.Debug("brush loops rejected", zap.Error(err))
		return nil
	}
	if !m.Validate(true) {
		return nil
	}
	return m
}
