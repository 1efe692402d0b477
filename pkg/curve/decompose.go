package curve

import (
	"math"

	"github.com/chazu/brushkit/internal/logger"
	"github.com/chazu/brushkit/pkg/geom"
	v2 "github.com/deadsy/sdfx/vec/v2"
	"go.uber.org/zap"
)

// maxDecomposeDepth bounds the recursion on outlines that never become
// convex, such as self-intersecting ones.
const maxDecomposeDepth = 256

// ConvexPartition tessellates the curve and splits the outline into convex
// polygons. It returns a flat vertex buffer and the cumulative end offset
// of each polygon: polygon i spans [boundaries[i-1], boundaries[i]) with 0
// as the first start. Every polygon winds counter-clockwise. On failure both
// buffers are nil and ok is false.
func (c *Curve2D) ConvexPartition(curveSegments int) (vertices []SegmentVertex, boundaries []int, ok bool) {
	return PartitionOutline(c.Vertices(curveSegments))
}

// PartitionOutline is ConvexPartition for an outline that was already
// tessellated, for example by FlattenedPathVertices.
func PartitionOutline(outline []SegmentVertex) (vertices []SegmentVertex, boundaries []int, ok bool) {
	outline = dedupe(outline)
	if len(outline) < 3 {
		return nil, nil, false
	}
	parts, ok := Decompose(outline)
	if !ok {
		logger.Debug("convex partition failed", zap.Int("vertices", len(outline)))
		return nil, nil, false
	}
	for _, part := range parts {
		if geom.Orientation(Points(part)) < 0 {
			geom.Reverse(part)
		}
		vertices = append(vertices, part...)
		boundaries = append(boundaries, len(vertices))
	}
	return vertices, boundaries, true
}

// Parts splits a flat buffer returned by ConvexPartition back into polygons.
func Parts(vertices []SegmentVertex, boundaries []int) [][]SegmentVertex {
	out := make([][]SegmentVertex, 0, len(boundaries))
	start := 0
	for _, end := range boundaries {
		out = append(out, vertices[start:end])
		start = end
	}
	return out
}

// dedupe drops vertices coincident with their predecessor, including the
// wrap from last to first.
func dedupe(vs []SegmentVertex) []SegmentVertex {
	out := make([]SegmentVertex, 0, len(vs))
	for _, v := range vs {
		if len(out) > 0 && sqDist(out[len(out)-1].Position, v.Position) < geom.EqualitySqEpsilon {
			continue
		}
		out = append(out, v)
	}
	for len(out) > 1 && sqDist(out[0].Position, out[len(out)-1].Position) < geom.EqualitySqEpsilon {
		out = out[:len(out)-1]
	}
	return out
}

// Decompose partitions a simple polygon into convex pieces with Bayazit's
// notch-cutting algorithm. Pieces with more than three vertices wind
// counter-clockwise; triangles are returned in the order they were cut.
//
// For each reflex vertex the partner is chosen among the visible vertices
// between the nearest hits of its two extended edges. A candidate scores
// 1/(d²+1) by squared distance plus a bonus of 3 when it is a reflex vertex
// the diagonal also resolves, 2 for any other reflex vertex and 1 for a
// convex one; the first highest score wins. When no vertex lies in that
// range a Steiner point is placed halfway between the two hits.
func Decompose(polygon []SegmentVertex) ([][]SegmentVertex, bool) {
	return decompose(append([]SegmentVertex(nil), polygon...), 0)
}

func decompose(poly []SegmentVertex, depth int) ([][]SegmentVertex, bool) {
	n := len(poly)
	if n < 3 || depth > maxDecomposeDepth {
		return nil, false
	}
	if n == 3 {
		return [][]SegmentVertex{poly}, true
	}
	if geom.Orientation(Points(poly)) < 0 {
		geom.Reverse(poly)
	}
	p := ring(poly)

	for i := range n {
		if !p.reflex(i) {
			continue
		}
		lowerIndex, upperIndex := -1, -1
		lowerDist, upperDist := math.Inf(1), math.Inf(1)
		var lowerInt, upperInt v2.Vec

		for j := range n {
			if geom.Left(p.at(i-1), p.at(i), p.at(j)) && geom.RightOn(p.at(i-1), p.at(i), p.at(j-1)) {
				if hit, ok := geom.LineIntersection(p.at(i-1), p.at(i), p.at(j), p.at(j-1)); ok &&
					geom.Right(p.at(i+1), p.at(i), hit) {
					if d := sqDist(p.at(i), hit); d < lowerDist {
						lowerDist, lowerIndex, lowerInt = d, j, hit
					}
				}
			}
			if geom.Left(p.at(i+1), p.at(i), p.at(j+1)) && geom.RightOn(p.at(i+1), p.at(i), p.at(j)) {
				if hit, ok := geom.LineIntersection(p.at(i+1), p.at(i), p.at(j), p.at(j+1)); ok &&
					geom.Left(p.at(i-1), p.at(i), hit) {
					if d := sqDist(p.at(i), hit); d < upperDist {
						upperDist, upperIndex, upperInt = d, j, hit
					}
				}
			}
		}
		if lowerIndex < 0 || upperIndex < 0 {
			return nil, false
		}

		var lower, upper []SegmentVertex
		if lowerIndex == (upperIndex+1)%n {
			steiner := SegmentVertex{
				Position:     midpoint(lowerInt, upperInt),
				SegmentIndex: poly[upperIndex].SegmentIndex,
			}
			lower = append(p.copy(i, upperIndex), steiner)
			upper = append(p.copy(lowerIndex, i), steiner)
		} else {
			best := p.bestPartner(i, lowerIndex, upperIndex)
			if best < 0 {
				return nil, false
			}
			lower = p.copy(i, best)
			upper = p.copy(best, i)
		}

		left, ok := decompose(lower, depth+1)
		if !ok {
			return nil, false
		}
		right, ok := decompose(upper, depth+1)
		if !ok {
			return nil, false
		}
		return append(left, right...), true
	}
	return [][]SegmentVertex{poly}, true
}

// bestPartner scores the vertices in [lower, upper] (cyclic) that i can see.
func (p ring) bestPartner(i, lower, upper int) int {
	n := len(p)
	for upper < lower {
		upper += n
	}
	best, bestScore := -1, 0.0
	for j := lower; j <= upper; j++ {
		if !p.canSee(i, j) {
			continue
		}
		score := 1 / (sqDist(p.at(i), p.at(j)) + 1)
		switch {
		case !p.reflex(j):
			score++
		case geom.RightOn(p.at(j-1), p.at(j), p.at(i)) && geom.LeftOn(p.at(j+1), p.at(j), p.at(i)):
			score += 3
		default:
			score += 2
		}
		if score > bestScore {
			best, bestScore = j%n, score
		}
	}
	return best
}

// ring indexes a polygon cyclically.
type ring []SegmentVertex

func (p ring) at(i int) v2.Vec {
	n := len(p)
	return p[((i%n)+n)%n].Position
}

func (p ring) reflex(i int) bool {
	return geom.Right(p.at(i-1), p.at(i), p.at(i+1))
}

// copy returns the vertices from i to j inclusive, wrapping around.
func (p ring) copy(i, j int) []SegmentVertex {
	n := len(p)
	for j < i {
		j += n
	}
	out := make([]SegmentVertex, 0, j-i+2)
	for ; i <= j; i++ {
		out = append(out, p[i%n])
	}
	return out
}

func (p ring) canSee(i, j int) bool {
	n := len(p)
	if p.reflex(i) {
		if geom.LeftOn(p.at(i), p.at(i-1), p.at(j)) && geom.RightOn(p.at(i), p.at(i+1), p.at(j)) {
			return false
		}
	} else if geom.RightOn(p.at(i), p.at(i+1), p.at(j)) || geom.LeftOn(p.at(i), p.at(i-1), p.at(j)) {
		return false
	}
	if p.reflex(j) {
		if geom.LeftOn(p.at(j), p.at(j-1), p.at(i)) && geom.RightOn(p.at(j), p.at(j+1), p.at(i)) {
			return false
		}
	} else if geom.RightOn(p.at(j), p.at(j+1), p.at(i)) || geom.LeftOn(p.at(j), p.at(j-1), p.at(i)) {
		return false
	}
	ii, jj := i%n, j%n
	for k := range n {
		k1 := (k + 1) % n
		if k == ii || k1 == ii || k == jj || k1 == jj {
			continue
		}
		if _, hit := geom.SegmentIntersection(p.at(i), p.at(j), p.at(k), p.at(k1)); hit {
			return false
		}
	}
	return true
}

func sqDist(a, b v2.Vec) float64 {
	d := a.Sub(b)
	return d.X*d.X + d.Y*d.Y
}
