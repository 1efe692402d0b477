package shapes

import (
	"github.com/chazu/brushkit/internal/logger"
	"github.com/chazu/brushkit/pkg/brush"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"go.uber.org/zap"
)

// RequiredSurfaces returns how many surfaces a template consumes.
func RequiredSurfaces(kind Kind) int {
	t, ok := TemplateFor(kind)
	if !ok {
		return 0
	}
	return len(t.Polygons)
}

// FromTemplate populates a new mesh from a fixed topology table. Polygon p
// gets surfaces[p]. It returns nil when the kind is unknown, the number of
// points does not match the template, too few surfaces are given, or the
// points are degenerate.
func FromTemplate(kind Kind, points []v3.Vec, surfaces []brush.Surface) *brush.Mesh {
	t, ok := TemplateFor(kind)
	if !ok {
		return nil
	}
	if len(points) != t.Vertices {
		logger.Debug("shape rejected: wrong point count",
			zap.Stringer("kind", kind), zap.Int("points", len(points)), zap.Int("want", t.Vertices))
		return nil
	}
	if len(surfaces) < len(t.Polygons) {
		logger.Debug("shape rejected: not enough surfaces",
			zap.Stringer("kind", kind), zap.Int("surfaces", len(surfaces)), zap.Int("want", len(t.Polygons)))
		return nil
	}

	m := &brush.Mesh{
		Vertices:               append([]v3.Vec(nil), points...),
		HalfEdges:              make([]brush.HalfEdge, len(t.HalfEdges)),
		HalfEdgePolygonIndices: make([]int, len(t.HalfEdges)),
		Polygons:               make([]brush.Polygon, len(t.Polygons)),
	}
	for e, te := range t.HalfEdges {
		m.HalfEdges[e] = brush.HalfEdge{VertexIndex: te.Vertex, TwinIndex: te.Twin}
	}
	for p, tp := range t.Polygons {
		m.Polygons[p] = brush.Polygon{FirstEdge: tp.FirstEdge, EdgeCount: tp.EdgeCount, Surface: surfaces[p]}
		for e := tp.FirstEdge; e < tp.FirstEdge+tp.EdgeCount; e++ {
			m.HalfEdgePolygonIndices[e] = p
		}
	}
	m.CalculatePlanes()
	m.CalculateBounds()
	if !m.Validate(true) {
		return nil
	}
	return m
}

// CreateBox builds a box from eight corners ordered top face first
// (x0y1z0, x1y1z0, x1y1z1, x0y1z1) and then the bottom face in the same
// order. It needs six surfaces: top, bottom, -X, +X, -Z, +Z.
func CreateBox(corners [8]v3.Vec, surfaces []brush.Surface) *brush.Mesh {
	return FromTemplate(KindBox, corners[:], surfaces)
}

// CreateInvertedBox is CreateBox with every polygon facing inwards.
func CreateInvertedBox(corners [8]v3.Vec, surfaces []brush.Surface) *brush.Mesh {
	return FromTemplate(KindInvertedBox, corners[:], surfaces)
}

// BoxCorners orders the corners of an axis-aligned box for CreateBox.
func BoxCorners(lo, hi v3.Vec) [8]v3.Vec {
	return [8]v3.Vec{
		{X: lo.X, Y: hi.Y, Z: lo.Z},
		{X: hi.X, Y: hi.Y, Z: lo.Z},
		{X: hi.X, Y: hi.Y, Z: hi.Z},
		{X: lo.X, Y: hi.Y, Z: hi.Z},
		{X: lo.X, Y: lo.Y, Z: lo.Z},
		{X: hi.X, Y: lo.Y, Z: lo.Z},
		{X: hi.X, Y: lo.Y, Z: hi.Z},
		{X: lo.X, Y: lo.Y, Z: hi.Z},
	}
}

// CreateBoxFromBounds builds an axis-aligned box. The bounds may be given in
// any order.
func CreateBoxFromBounds(a, b v3.Vec, surfaces []brush.Surface) *brush.Mesh {
	return CreateBox(BoxCorners(a.Min(b), a.Max(b)), surfaces)
}

// CreateSquarePyramid builds a pyramid from a base quad (0..3, counter
// clockwise seen from below) and an apex. It needs five surfaces: the base
// then one per side.
func CreateSquarePyramid(points [5]v3.Vec, surfaces []brush.Surface) *brush.Mesh {
	return FromTemplate(KindSquarePyramid, points[:], surfaces)
}

func CreateInvertedSquarePyramid(points [5]v3.Vec, surfaces []brush.Surface) *brush.Mesh {
	return FromTemplate(KindInvertedSquarePyramid, points[:], surfaces)
}

// CreateTriangularPyramid builds a tetrahedron from a base triangle (0..2,
// counter clockwise seen from below) and an apex. It needs four surfaces.
func CreateTriangularPyramid(points [4]v3.Vec, surfaces []brush.Surface) *brush.Mesh {
	return FromTemplate(KindTriangularPyramid, points[:], surfaces)
}

func CreateInvertedTriangularPyramid(points [4]v3.Vec, surfaces []brush.Surface) *brush.Mesh {
	return FromTemplate(KindInvertedTriangularPyramid, points[:], surfaces)
}

// CreateWedge builds a wedge from a bottom quad (0..3, counter clockwise
// seen from below) and a ridge: point 4 sits above 2 and point 5 above 3.
// It needs five surfaces: bottom, back, slope and the two ends.
func CreateWedge(points [6]v3.Vec, surfaces []brush.Surface) *brush.Mesh {
	return FromTemplate(KindWedge, points[:], surfaces)
}

func CreateInvertedWedge(points [6]v3.Vec, surfaces []brush.Surface) *brush.Mesh {
	return FromTemplate(KindInvertedWedge, points[:], surfaces)
}
