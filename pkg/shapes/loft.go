package shapes

import (
	"math"

	"github.com/chazu/brushkit/internal/logger"
	"github.com/chazu/brushkit/pkg/brush"
	"github.com/chazu/brushkit/pkg/geom"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"go.uber.org/zap"
)

// SegmentKind is the side topology chosen for one loft segment.
type SegmentKind int

const (
	// SegmentCollapsed: both rungs have zero length, no side polygon.
	SegmentCollapsed SegmentKind = iota
	// SegmentTriangle: one rung collapsed, a single triangle.
	SegmentTriangle
	// SegmentQuad: the four corners are coplanar.
	SegmentQuad
	// SegmentSplitB0T1: two triangles sharing the diagonal b0-t1.
	SegmentSplitB0T1
	// SegmentSplitB1T0: two triangles sharing the diagonal b1-t0.
	SegmentSplitB1T0
)

func (k SegmentKind) String() string {
	switch k {
	case SegmentCollapsed:
		return "collapsed"
	case SegmentTriangle:
		return "triangle"
	case SegmentQuad:
		return "quad"
	case SegmentSplitB0T1:
		return "split-b0t1"
	case SegmentSplitB1T0:
		return "split-b1t0"
	}
	return "unknown"
}

// EdgeCount returns the half-edges a segment of this kind owns.
func (k SegmentKind) EdgeCount() int {
	switch k {
	case SegmentTriangle:
		return 3
	case SegmentQuad:
		return 4
	case SegmentSplitB0T1, SegmentSplitB1T0:
		return 6
	}
	return 0
}

// Segment is the classified side between ring positions i and i+1.
type Segment struct {
	Kind SegmentKind
	// EdgeOffset is the first half-edge of the segment within the side
	// polygons.
	EdgeOffset int
}

// LoftParams describes a segmented solid between two rings of equal length.
// Ring i of the top corresponds to ring i of the bottom. Either winding is
// accepted; the result always faces outwards.
type LoftParams struct {
	Bottom []v3.Vec
	Top    []v3.Vec
	// Surfaces[0] is the top cap, Surfaces[1] the bottom cap and
	// Surfaces[2+i] the side segment starting at ring position i. Sides
	// beyond the list reuse the last surface.
	Surfaces []brush.Surface
}

func (p LoftParams) sideSurface(i int) brush.Surface {
	return p.Surfaces[min(2+i, len(p.Surfaces)-1)]
}

// ClassifySegment picks the side topology for the quad b0, b1, t1, t0.
// Coincident corners collapse the quad; otherwise the quad stays whole when
// t0 lies within geom.DistanceEpsilon of the plane through b0, b1, t1 and
// is split along the diagonal that keeps both triangles convex. sign is +1
// when the rings wind counter-clockwise around the bottom-to-top axis and
// -1 otherwise.
func ClassifySegment(b0, b1, t0, t1 v3.Vec, sign float64) SegmentKind {
	rung0 := geom.Coincident(b0, t0)
	rung1 := geom.Coincident(b1, t1)
	bottomEdge := geom.Coincident(b0, b1)
	topEdge := geom.Coincident(t0, t1)
	switch {
	case rung0 && rung1, bottomEdge && topEdge:
		return SegmentCollapsed
	case rung0 || rung1 || bottomEdge || topEdge:
		return SegmentTriangle
	}
	plane, ok := geom.PlaneFromTriangle(b0, b1, t1)
	if !ok {
		// b0, b1, t1 are collinear, so the quad is flat.
		return SegmentQuad
	}
	d := plane.Distance(t0) * sign
	switch {
	case math.Abs(d) < geom.DistanceEpsilon:
		return SegmentQuad
	case d < 0:
		return SegmentSplitB0T1
	default:
		return SegmentSplitB1T0
	}
}

// windingSign returns +1 when the rings of p wind counter-clockwise around
// the bottom-to-top axis and -1 otherwise.
func windingSign(p LoftParams) float64 {
	axis := geom.Centroid(p.Top).Sub(geom.Centroid(p.Bottom))
	if geom.NewellNormal(p.Bottom).Add(geom.NewellNormal(p.Top)).Dot(axis) < 0 {
		return -1
	}
	return 1
}

func classify(p LoftParams, sign float64) []Segment {
	n := len(p.Bottom)
	out := make([]Segment, n)
	offset := 0
	for i := range n {
		j := (i + 1) % n
		kind := ClassifySegment(p.Bottom[i], p.Bottom[j], p.Top[i], p.Top[j], sign)
		out[i] = Segment{Kind: kind, EdgeOffset: offset}
		offset += kind.EdgeCount()
	}
	return out
}

// ClassifyLoft returns the side topology BuildLoft would choose for p, or
// nil when the rings are unusable.
func ClassifyLoft(p LoftParams) []Segment {
	if len(p.Bottom) < 3 || len(p.Top) != len(p.Bottom) {
		return nil
	}
	return classify(p, windingSign(p))
}

// loftBuilder holds the per-call scratch state of BuildLoft.
type loftBuilder struct {
	vertices []v3.Vec
	loops    [][]int
	surfaces []brush.Surface
}

// vertex returns the index of a vertex coincident with p, adding it if none
// exists yet.
func (b *loftBuilder) vertex(p v3.Vec) int {
	for i, v := range b.vertices {
		if geom.Coincident(v, p) {
			return i
		}
	}
	b.vertices = append(b.vertices, p)
	return len(b.vertices) - 1
}

// polygon adds a loop after dropping repeated neighbours; loops that fall
// below three vertices are skipped.
func (b *loftBuilder) polygon(loop []int, s brush.Surface) {
	out := make([]int, 0, len(loop))
	for _, v := range loop {
		if len(out) > 0 && out[len(out)-1] == v {
			continue
		}
		out = append(out, v)
	}
	for len(out) > 1 && out[0] == out[len(out)-1] {
		out = out[:len(out)-1]
	}
	if len(out) < 3 {
		return
	}
	b.loops = append(b.loops, out)
	b.surfaces = append(b.surfaces, s)
}

// BuildLoft replaces the contents of m with the segmented solid described
// by p. It returns false without touching m when the rings hold fewer than
// three vertices, differ in length, or fewer than three surfaces are given.
// If every side collapses or the built mesh fails validation, m is cleared
// and false is returned.
func BuildLoft(m *brush.Mesh, p LoftParams) bool {
	n := len(p.Bottom)
	if n < 3 || len(p.Top) != n || len(p.Surfaces) < 3 {
		logger.Debug("loft rejected",
			zap.Int("bottom", n), zap.Int("top", len(p.Top)), zap.Int("surfaces", len(p.Surfaces)))
		return false
	}

	sign := windingSign(p)
	segments := classify(p, sign)

	b := &loftBuilder{}
	bottom := make([]int, n)
	top := make([]int, n)
	for i := range n {
		bottom[i] = b.vertex(p.Bottom[i])
	}
	for i := range n {
		top[i] = b.vertex(p.Top[i])
	}

	b.polygon(top, p.Surfaces[0])
	rev := make([]int, n)
	for i := range n {
		rev[i] = bottom[n-1-i]
	}
	b.polygon(rev, p.Surfaces[1])

	sides := 0
	for i, seg := range segments {
		j := (i + 1) % n
		s := p.sideSurface(i)
		b0, b1, t0, t1 := bottom[i], bottom[j], top[i], top[j]
		switch seg.Kind {
		case SegmentCollapsed:
			continue
		case SegmentTriangle, SegmentQuad:
			b.polygon([]int{b0, b1, t1, t0}, s)
		case SegmentSplitB0T1:
			b.polygon([]int{b0, b1, t1}, s)
			b.polygon([]int{b0, t1, t0}, s)
		case SegmentSplitB1T0:
			b.polygon([]int{b0, b1, t0}, s)
			b.polygon([]int{b1, t1, t0}, s)
		}
		sides++
	}
	if sides == 0 {
		logger.Debug("loft has no sides", zap.Int("segments", n))
		m.Clear()
		return false
	}

	if sign < 0 {
		for _, l := range b.loops {
			geom.Reverse(l)
		}
	}

	built := brush.NewFromLoops(b.vertices, b.loops, b.surfaces)
	if built == nil {
		logger.Debug("loft produced an invalid mesh", zap.Int("segments", n))
		m.Clear()
		return false
	}
	*m = *built
	return true
}

// CreateLoft builds a loft between two rings, or nil when BuildLoft fails.
func CreateLoft(bottom, top []v3.Vec, surfaces []brush.Surface) *brush.Mesh {
	m := brush.New()
	if !BuildLoft(m, LoftParams{Bottom: bottom, Top: top, Surfaces: surfaces}) {
		return nil
	}
	return m
}

// CreateCylinder builds a y-up cylinder or truncated cone with the given
// number of sides. A zero radius on one end makes a cone; zero on both ends
// fails.
func CreateCylinder(bottomCenter v3.Vec, height, bottomRadius, topRadius float64, sides int, surfaces []brush.Surface) *brush.Mesh {
	if sides < 3 || height <= 0 || bottomRadius < 0 || topRadius < 0 || (bottomRadius == 0 && topRadius == 0) {
		return nil
	}
	bottom := make([]v3.Vec, sides)
	top := make([]v3.Vec, sides)
	for i := range sides {
		a := 2 * math.Pi * float64(i) / float64(sides)
		dir := v3.Vec{X: math.Cos(a), Z: -math.Sin(a)}
		bottom[i] = bottomCenter.Add(dir.MulScalar(bottomRadius))
		top[i] = bottomCenter.Add(dir.MulScalar(topRadius)).Add(v3.Vec{Y: height})
	}
	return CreateLoft(bottom, top, surfaces)
}

// CreateExtrudedPolygon extrudes a 2D outline lying at height z in the XY
// plane by extrusion.
func CreateExtrudedPolygon(points []v2.Vec, z float64, extrusion v3.Vec, surfaces []brush.Surface) *brush.Mesh {
	if len(points) < 3 {
		return nil
	}
	bottom := make([]v3.Vec, len(points))
	top := make([]v3.Vec, len(points))
	for i, pt := range points {
		bottom[i] = v3.Vec{X: pt.X, Y: pt.Y, Z: z}
		top[i] = bottom[i].Add(extrusion)
	}
	return CreateLoft(bottom, top, surfaces)
}
