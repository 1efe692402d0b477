package geom

import (
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Area2 returns twice the signed area of triangle a, b, c. It is positive
// when the triangle winds counter-clockwise.
func Area2(a, b, c v2.Vec) float64 {
	return a.X*(b.Y-c.Y) + b.X*(c.Y-a.Y) + c.X*(a.Y-b.Y)
}

// Left reports whether c lies strictly left of the directed line a→b.
func Left(a, b, c v2.Vec) bool { return Area2(a, b, c) > 0 }

// LeftOn reports whether c lies left of or on the directed line a→b.
func LeftOn(a, b, c v2.Vec) bool { return Area2(a, b, c) >= 0 }

// Right reports whether c lies strictly right of the directed line a→b.
func Right(a, b, c v2.Vec) bool { return Area2(a, b, c) < 0 }

// RightOn reports whether c lies right of or on the directed line a→b.
func RightOn(a, b, c v2.Vec) bool { return Area2(a, b, c) <= 0 }

// Collinear reports whether a, b, c lie on one line within eps of area.
func Collinear(a, b, c v2.Vec, eps float64) bool {
	return math.Abs(Area2(a, b, c)) <= eps
}

// Orientation evaluates the Newell sum Σ (prev.x - cur.x)(prev.y + cur.y)
// over a closed loop. The result is twice the signed area: positive for
// counter-clockwise loops, negative for clockwise ones.
func Orientation(points []v2.Vec) float64 {
	n := len(points)
	if n < 3 {
		return 0
	}
	var sum float64
	prev := points[n-1]
	for _, cur := range points {
		sum += (prev.X - cur.X) * (prev.Y + cur.Y)
		prev = cur
	}
	return sum
}

// Reverse reverses points in place.
func Reverse[T any](points []T) {
	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}
}

// IsConvex2 reports whether a closed loop turns the same way at every vertex.
// Collinear vertices are tolerated.
func IsConvex2(points []v2.Vec) bool {
	n := len(points)
	if n < 3 {
		return false
	}
	sign := 0
	for i := range points {
		a := Area2(points[(i+n-1)%n], points[i], points[(i+1)%n])
		switch {
		case a > 0:
			if sign < 0 {
				return false
			}
			sign = 1
		case a < 0:
			if sign > 0 {
				return false
			}
			sign = -1
		}
	}
	return sign != 0
}

// LineIntersection intersects the infinite lines through p1-p2 and q1-q2.
// It fails for parallel lines.
func LineIntersection(p1, p2, q1, q2 v2.Vec) (v2.Vec, bool) {
	a1 := p2.Y - p1.Y
	b1 := p1.X - p2.X
	c1 := a1*p1.X + b1*p1.Y
	a2 := q2.Y - q1.Y
	b2 := q1.X - q2.X
	c2 := a2*q1.X + b2*q1.Y
	det := a1*b2 - a2*b1
	if math.Abs(det) < 1e-9 {
		return v2.Vec{}, false
	}
	return v2.Vec{X: (b2*c1 - b1*c2) / det, Y: (a1*c2 - a2*c1) / det}, true
}

// SegmentIntersection intersects closed segments p1-p2 and q1-q2. Segments
// that touch only because they are the same degenerate point, or that are
// parallel, do not intersect.
func SegmentIntersection(p1, p2, q1, q2 v2.Vec) (v2.Vec, bool) {
	const eps = 1e-9
	d := (q2.Y-q1.Y)*(p2.X-p1.X) - (q2.X-q1.X)*(p2.Y-p1.Y)
	if math.Abs(d) < eps {
		return v2.Vec{}, false
	}
	ua := ((q2.X-q1.X)*(p1.Y-q1.Y) - (q2.Y-q1.Y)*(p1.X-q1.X)) / d
	ub := ((p2.X-p1.X)*(p1.Y-q1.Y) - (p2.Y-p1.Y)*(p1.X-q1.X)) / d
	if ua < 0 || ua > 1 || ub < 0 || ub > 1 {
		return v2.Vec{}, false
	}
	if ua == 0 && ub == 0 {
		return v2.Vec{}, false
	}
	return v2.Vec{X: p1.X + ua*(p2.X-p1.X), Y: p1.Y + ua*(p2.Y-p1.Y)}, true
}

// PointOnSegment reports whether p lies on segment a-b within eps.
func PointOnSegment(p, a, b v2.Vec, eps float64) bool {
	ab := b.Sub(a)
	l2 := ab.X*ab.X + ab.Y*ab.Y
	if l2 == 0 {
		d := p.Sub(a)
		return d.X*d.X+d.Y*d.Y <= eps*eps
	}
	t := ((p.X-a.X)*ab.X + (p.Y-a.Y)*ab.Y) / l2
	if t < 0 || t > 1 {
		return false
	}
	c := a.Add(ab.MulScalar(t))
	d := p.Sub(c)
	return d.X*d.X+d.Y*d.Y <= eps*eps
}

// PointOnPolygon reports whether p lies on the boundary of a closed loop.
func PointOnPolygon(p v2.Vec, poly []v2.Vec, eps float64) bool {
	n := len(poly)
	for i := range poly {
		if PointOnSegment(p, poly[i], poly[(i+1)%n], eps) {
			return true
		}
	}
	return false
}

// PointInPolygon reports whether p lies strictly inside a closed loop using
// the crossing-number rule. Boundary points are undefined; test them with
// PointOnPolygon first.
func PointInPolygon(p v2.Vec, poly []v2.Vec) bool {
	inside := false
	n := len(poly)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := poly[i], poly[j]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			x := (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y) + a.X
			if p.X < x {
				inside = !inside
			}
		}
	}
	return inside
}

// ProjectToPlane2 drops the dominant axis of normal so that a planar 3D loop
// can be tested with the 2D predicates. Winding is preserved.
func ProjectToPlane2(points []v3.Vec, normal v3.Vec) []v2.Vec {
	ax, ay, az := math.Abs(normal.X), math.Abs(normal.Y), math.Abs(normal.Z)
	out := make([]v2.Vec, len(points))
	for i, p := range points {
		switch {
		case az >= ax && az >= ay:
			if normal.Z >= 0 {
				out[i] = v2.Vec{X: p.X, Y: p.Y}
			} else {
				out[i] = v2.Vec{X: p.Y, Y: p.X}
			}
		case ax >= ay:
			if normal.X >= 0 {
				out[i] = v2.Vec{X: p.Y, Y: p.Z}
			} else {
				out[i] = v2.Vec{X: p.Z, Y: p.Y}
			}
		default:
			if normal.Y >= 0 {
				out[i] = v2.Vec{X: p.Z, Y: p.X}
			} else {
				out[i] = v2.Vec{X: p.X, Y: p.Z}
			}
		}
	}
	return out
}

// PointInPolygon3 reports whether pt, assumed to lie on plane, is inside or on
// the boundary of the planar loop.
func PointInPolygon3(pt v3.Vec, loop []v3.Vec, plane Plane) bool {
	if len(loop) < 3 || math.Abs(plane.Distance(pt)) > DistanceEpsilon {
		return false
	}
	poly := ProjectToPlane2(loop, plane.Normal)
	p := ProjectToPlane2([]v3.Vec{pt}, plane.Normal)[0]
	return PointOnPolygon(p, poly, DistanceEpsilon) || PointInPolygon(p, poly)
}
