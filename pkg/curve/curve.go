// Package curve tessellates 2D Bezier outlines and partitions the result
// into convex pieces that the shape builders can extrude.
package curve

import (
	"iter"
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
)

// Constraint controls whether a tangent handle bends the curve.
type Constraint int

const (
	// Free handles shape a cubic Bezier segment.
	Free Constraint = iota
	// Straight handles collapse onto their control point.
	Straight
)

func (c Constraint) String() string {
	if c == Straight {
		return "straight"
	}
	return "free"
}

// ControlPoint is one point of a Curve2D. Tangent1 is the incoming handle
// and Tangent2 the outgoing handle, both as offsets from Position.
type ControlPoint struct {
	Position    v2.Vec
	Tangent1    v2.Vec
	Tangent2    v2.Vec
	Constraint1 Constraint
	Constraint2 Constraint
}

// Curve2D is an ordered run of control points. A closed curve connects the
// last point back to the first.
type Curve2D struct {
	ControlPoints []ControlPoint
	Closed        bool
}

// SegmentVertex is a tessellated point tagged with the index of the control
// point whose segment produced it.
type SegmentVertex struct {
	Position     v2.Vec
	SegmentIndex int
}

// PointOnBezier evaluates the cubic Bezier p0..p3 at t.
func PointOnBezier(p0, p1, p2, p3 v2.Vec, t float64) v2.Vec {
	u := 1 - t
	return p0.MulScalar(u * u * u).
		Add(p1.MulScalar(3 * t * u * u)).
		Add(p2.MulScalar(3 * t * t * u)).
		Add(p3.MulScalar(t * t * t))
}

// segmentCount returns how many control-point pairs the curve walks.
func (c *Curve2D) segmentCount() int {
	n := len(c.ControlPoints)
	if c.Closed {
		return n
	}
	return max(n-1, 0)
}

// straight reports whether segment i has no curvature.
func (c *Curve2D) straight(i int) bool {
	a := c.ControlPoints[i]
	b := c.ControlPoints[(i+1)%len(c.ControlPoints)]
	return a.Constraint2 == Straight && b.Constraint1 == Straight
}

// handles returns the Bezier control polygon of segment i. Straight handles
// collapse onto their endpoint.
func (c *Curve2D) handles(i int) (p0, p1, p2, p3 v2.Vec) {
	a := c.ControlPoints[i]
	b := c.ControlPoints[(i+1)%len(c.ControlPoints)]
	p0, p3 = a.Position, b.Position
	p1, p2 = p0, p3
	if a.Constraint2 != Straight {
		p1 = p0.Add(a.Tangent2)
	}
	if b.Constraint1 != Straight {
		p2 = p3.Add(b.Tangent1)
	}
	return p0, p1, p2, p3
}

// PathVertices walks the curve and yields its tessellated outline. Straight
// segments, or every segment when curveSegments is 0, yield only their
// start point; curved segments yield curveSegments evenly parametrized
// points. Open curves end with their last control point. The sequence can
// be iterated more than once.
func (c *Curve2D) PathVertices(curveSegments int) iter.Seq[SegmentVertex] {
	return func(yield func(SegmentVertex) bool) {
		for i := range c.segmentCount() {
			if curveSegments <= 0 || c.straight(i) {
				if !yield(SegmentVertex{Position: c.ControlPoints[i].Position, SegmentIndex: i}) {
					return
				}
				continue
			}
			p0, p1, p2, p3 := c.handles(i)
			for k := range curveSegments {
				t := float64(k) / float64(curveSegments)
				if !yield(SegmentVertex{Position: PointOnBezier(p0, p1, p2, p3, t), SegmentIndex: i}) {
					return
				}
			}
		}
		if !c.Closed && len(c.ControlPoints) > 0 {
			last := len(c.ControlPoints) - 1
			yield(SegmentVertex{Position: c.ControlPoints[last].Position, SegmentIndex: last})
		}
	}
}

// Vertices collects PathVertices into a slice.
func (c *Curve2D) Vertices(curveSegments int) []SegmentVertex {
	var out []SegmentVertex
	for v := range c.PathVertices(curveSegments) {
		out = append(out, v)
	}
	return out
}

const maxFlattenDepth = 16

// FlattenedPathVertices tessellates curved segments adaptively: each cubic
// is subdivided until its handles lie within tolerance of the chord.
// Straight segments yield their start point only.
func (c *Curve2D) FlattenedPathVertices(tolerance float64) []SegmentVertex {
	if tolerance <= 0 {
		return c.Vertices(0)
	}
	var out []SegmentVertex
	for i := range c.segmentCount() {
		if c.straight(i) {
			out = append(out, SegmentVertex{Position: c.ControlPoints[i].Position, SegmentIndex: i})
			continue
		}
		p0, p1, p2, p3 := c.handles(i)
		pts := flattenCubic(p0, p1, p2, p3, tolerance, 0)
		// The end point belongs to the next segment.
		for _, p := range pts[:len(pts)-1] {
			out = append(out, SegmentVertex{Position: p, SegmentIndex: i})
		}
	}
	if !c.Closed && len(c.ControlPoints) > 0 {
		last := len(c.ControlPoints) - 1
		out = append(out, SegmentVertex{Position: c.ControlPoints[last].Position, SegmentIndex: last})
	}
	return out
}

func flattenCubic(p0, p1, p2, p3 v2.Vec, tolerance float64, depth int) []v2.Vec {
	if depth >= maxFlattenDepth || cubicFlat(p0, p1, p2, p3, tolerance) {
		return []v2.Vec{p0, p3}
	}
	q0 := midpoint(p0, p1)
	q1 := midpoint(p1, p2)
	q2 := midpoint(p2, p3)
	r0 := midpoint(q0, q1)
	r1 := midpoint(q1, q2)
	s := midpoint(r0, r1)

	left := flattenCubic(p0, q0, r0, s, tolerance, depth+1)
	right := flattenCubic(s, r1, q2, p3, tolerance, depth+1)
	return append(left[:len(left)-1], right...)
}

func cubicFlat(p0, p1, p2, p3 v2.Vec, tolerance float64) bool {
	return max(lineDistance(p1, p0, p3), lineDistance(p2, p0, p3)) <= tolerance
}

func midpoint(a, b v2.Vec) v2.Vec {
	return a.Add(b).MulScalar(0.5)
}

// lineDistance returns the distance from p to the line through a and b,
// or to a when the line is degenerate.
func lineDistance(p, a, b v2.Vec) float64 {
	d := b.Sub(a)
	l := math.Hypot(d.X, d.Y)
	if l < 1e-12 {
		e := p.Sub(a)
		return math.Hypot(e.X, e.Y)
	}
	return math.Abs(d.X*(a.Y-p.Y)-d.Y*(a.X-p.X)) / l
}

// Points returns just the positions of vs.
func Points(vs []SegmentVertex) []v2.Vec {
	out := make([]v2.Vec, len(vs))
	for i, v := range vs {
		out[i] = v.Position
	}
	return out
}
