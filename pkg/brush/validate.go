package brush

import (
	"fmt"

	"github.com/chazu/brushkit/internal/logger"
	"github.com/chazu/brushkit/pkg/geom"
	"go.uber.org/zap"
)

// ProblemKind classifies a structural or geometric defect of a mesh.
type ProblemKind int

const (
	ProblemArrayLength    ProblemKind = iota // parallel arrays disagree in length
	ProblemPolygonRange                      // edge range out of bounds or too short
	ProblemEdgeOwnership                     // edge not owned by exactly one polygon
	ProblemVertexRange                       // edge points at a missing vertex
	ProblemTwinRange                         // twin index out of bounds
	ProblemTwinMutual                        // twin(twin(e)) != e
	ProblemLoopBroken                        // consecutive edges do not share a vertex
	ProblemDegenerateEdge                    // zero-length edge
	ProblemZeroArea                          // polygon without area
)

func (k ProblemKind) String() string {
	switch k {
	case ProblemArrayLength:
		return "array-length"
	case ProblemPolygonRange:
		return "polygon-range"
	case ProblemEdgeOwnership:
		return "edge-ownership"
	case ProblemVertexRange:
		return "vertex-range"
	case ProblemTwinRange:
		return "twin-range"
	case ProblemTwinMutual:
		return "twin-mutual"
	case ProblemLoopBroken:
		return "loop-broken"
	case ProblemDegenerateEdge:
		return "degenerate-edge"
	case ProblemZeroArea:
		return "zero-area"
	default:
		return fmt.Sprintf("ProblemKind(%d)", int(k))
	}
}

// Problem is a single validation finding. Index fields are -1 when they do
// not apply.
type Problem struct {
	Kind    ProblemKind
	Polygon int
	Edge    int
	Vertex  int
	Message string
}

func (p Problem) Error() string {
	return fmt.Sprintf("%s: %s", p.Kind, p.Message)
}

// zero-length and zero-area thresholds, well below geom.EqualitySqEpsilon so
// that small but legitimate features survive.
const (
	degenerateEdgeSqEpsilon = 1e-12
	zeroAreaEpsilon         = 1e-12
)

func problem(kind ProblemKind, polygon, edge, vertex int, format string, args ...any) Problem {
	return Problem{
		Kind:    kind,
		Polygon: polygon,
		Edge:    edge,
		Vertex:  vertex,
		Message: fmt.Sprintf(format, args...),
	}
}

// Problems returns every invariant violation found in the mesh. Geometric
// checks only run once the index structure is sound. An empty mesh has no
// problems.
func (m *Mesh) Problems() []Problem {
	var out []Problem

	if len(m.HalfEdgePolygonIndices) != len(m.HalfEdges) {
		out = append(out, problem(ProblemArrayLength, -1, -1, -1,
			"%d half-edges but %d polygon indices", len(m.HalfEdges), len(m.HalfEdgePolygonIndices)))
	}
	if len(m.Planes) != len(m.Polygons) {
		out = append(out, problem(ProblemArrayLength, -1, -1, -1,
			"%d polygons but %d planes", len(m.Polygons), len(m.Planes)))
	}

	owners := make([]int, len(m.HalfEdges))
	for p, poly := range m.Polygons {
		if poly.EdgeCount < 3 || poly.FirstEdge < 0 || poly.FirstEdge+poly.EdgeCount > len(m.HalfEdges) {
			out = append(out, problem(ProblemPolygonRange, p, -1, -1,
				"edge range [%d,+%d) invalid for %d half-edges", poly.FirstEdge, poly.EdgeCount, len(m.HalfEdges)))
			continue
		}
		for e := poly.FirstEdge; e < poly.FirstEdge+poly.EdgeCount; e++ {
			owners[e]++
			if e < len(m.HalfEdgePolygonIndices) && m.HalfEdgePolygonIndices[e] != p {
				out = append(out, problem(ProblemEdgeOwnership, p, e, -1,
					"edge lies in polygon %d but is indexed to %d", p, m.HalfEdgePolygonIndices[e]))
			}
		}
	}
	for e, n := range owners {
		if n != 1 {
			out = append(out, problem(ProblemEdgeOwnership, -1, e, -1, "edge owned by %d polygons", n))
		}
	}

	for e, he := range m.HalfEdges {
		if he.VertexIndex < 0 || he.VertexIndex >= len(m.Vertices) {
			out = append(out, problem(ProblemVertexRange, -1, e, he.VertexIndex,
				"vertex %d out of range [0,%d)", he.VertexIndex, len(m.Vertices)))
		}
		if he.TwinIndex < 0 || he.TwinIndex >= len(m.HalfEdges) {
			out = append(out, problem(ProblemTwinRange, -1, e, -1,
				"twin %d out of range [0,%d)", he.TwinIndex, len(m.HalfEdges)))
			continue
		}
		if he.TwinIndex == e || m.HalfEdges[he.TwinIndex].TwinIndex != e {
			out = append(out, problem(ProblemTwinMutual, -1, e, -1,
				"twin %d does not point back", he.TwinIndex))
		}
	}

	if len(out) > 0 {
		return out
	}

	for p, poly := range m.Polygons {
		for k := 0; k < poly.EdgeCount; k++ {
			e := poly.FirstEdge + k
			next := poly.FirstEdge + (k+1)%poly.EdgeCount
			src, dst := m.EdgeSource(e), m.HalfEdges[e].VertexIndex
			if m.EdgeSource(next) != dst {
				out = append(out, problem(ProblemLoopBroken, p, next, dst,
					"edge %d ends at %d but edge %d starts at %d", e, dst, next, m.EdgeSource(next)))
			}
			if src == dst || geom.SqDistance(m.Vertices[src], m.Vertices[dst]) < degenerateEdgeSqEpsilon {
				out = append(out, problem(ProblemDegenerateEdge, p, e, dst,
					"edge %d->%d has zero length", src, dst))
			}
		}
		if geom.NewellNormal(m.PolygonVertices(p)).Length() < zeroAreaEpsilon {
			out = append(out, problem(ProblemZeroArea, p, -1, -1, "polygon has no area"))
		}
	}
	return out
}

// Validate reports whether the mesh satisfies all half-edge invariants.
// With logErrors set every problem is logged as a warning.
func (m *Mesh) Validate(logErrors bool) bool {
	problems := m.Problems()
	if logErrors {
		for _, p := range problems {
			logger.Warn("brush mesh invalid",
				zap.Stringer("kind", p.Kind),
				zap.Int("polygon", p.Polygon),
				zap.Int("edge", p.Edge),
				zap.Int("vertex", p.Vertex),
				zap.String("detail", p.Message))
		}
	}
	return len(problems) == 0
}
