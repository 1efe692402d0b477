// Package geom holds the small geometric primitives shared by the brush
// mesh, the shape builders and the curve decomposer: planes, epsilon
// comparisons, line/plane intersection and 2D orientation predicates.
//
// Vectors are sdfx vectors so that meshes flow straight into the sdfx
// kernel without conversion.
package geom

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

const (
	// DistanceEpsilon is the point-to-plane distance under which points are
	// treated as coplanar.
	DistanceEpsilon = 0.001

	// EqualitySqEpsilon is the squared distance under which two points are
	// treated as coincident.
	EqualitySqEpsilon = 0.0001

	// normalEpsilon guards normalization of near-zero vectors.
	normalEpsilon = 1e-12
)

// Plane is the set of points p with Normal·p + D == 0. Normal is unit length
// for planes produced by this package.
type Plane struct {
	Normal v3.Vec
	D      float64
}

// Distance returns the signed distance from pt to the plane. Positive values
// lie on the side the normal points to.
func (p Plane) Distance(pt v3.Vec) float64 {
	return p.Normal.Dot(pt) + p.D
}

// Flip returns the plane facing the opposite direction.
func (p Plane) Flip() Plane {
	return Plane{Normal: p.Normal.Neg(), D: -p.D}
}

// Equals reports whether two planes match within eps on both normal and offset.
func (p Plane) Equals(q Plane, eps float64) bool {
	return math.Abs(p.Normal.X-q.Normal.X) <= eps &&
		math.Abs(p.Normal.Y-q.Normal.Y) <= eps &&
		math.Abs(p.Normal.Z-q.Normal.Z) <= eps &&
		math.Abs(p.D-q.D) <= eps
}

// Project returns the closest point on the plane to pt.
func (p Plane) Project(pt v3.Vec) v3.Vec {
	return pt.Sub(p.Normal.MulScalar(p.Distance(pt)))
}

// Normalize returns v scaled to unit length. It reports false for vectors too
// short to carry a direction.
func Normalize(v v3.Vec) (v3.Vec, bool) {
	l := v.Length()
	if l < normalEpsilon {
		return v3.Vec{}, false
	}
	return v.MulScalar(1 / l), true
}

// SqDistance returns the squared distance between a and b.
func SqDistance(a, b v3.Vec) float64 {
	d := a.Sub(b)
	return d.Dot(d)
}

// Coincident reports whether a and b are within EqualitySqEpsilon squared
// distance of each other.
func Coincident(a, b v3.Vec) bool {
	return SqDistance(a, b) < EqualitySqEpsilon
}

// PlaneFromTriangle fits a plane through a, b, c with the normal following
// the right-hand rule over a→b→c. It fails for collinear input.
func PlaneFromTriangle(a, b, c v3.Vec) (Plane, bool) {
	n, ok := Normalize(b.Sub(a).Cross(c.Sub(a)))
	if !ok {
		return Plane{}, false
	}
	return Plane{Normal: n, D: -n.Dot(a)}, true
}

// NewellNormal returns the unnormalized Newell normal of a closed loop. Its
// length is twice the loop's projected area, and it stays well defined for
// slightly non-planar and concave loops.
func NewellNormal(points []v3.Vec) v3.Vec {
	var n v3.Vec
	for i := range points {
		cur := points[i]
		next := points[(i+1)%len(points)]
		n.X += (cur.Y - next.Y) * (cur.Z + next.Z)
		n.Y += (cur.Z - next.Z) * (cur.X + next.X)
		n.Z += (cur.X - next.X) * (cur.Y + next.Y)
	}
	return n
}

// Centroid returns the average of points.
func Centroid(points []v3.Vec) v3.Vec {
	var c v3.Vec
	if len(points) == 0 {
		return c
	}
	for _, p := range points {
		c = c.Add(p)
	}
	return c.MulScalar(1 / float64(len(points)))
}

// PlaneFromPoints fits a least-squares style plane to a loop using the Newell
// normal through the loop centroid. Non-planar loops get an averaged plane.
func PlaneFromPoints(points []v3.Vec) (Plane, bool) {
	if len(points) < 3 {
		return Plane{}, false
	}
	n, ok := Normalize(NewellNormal(points))
	if !ok {
		return Plane{}, false
	}
	return Plane{Normal: n, D: -n.Dot(Centroid(points))}, true
}

// MaxDeviation returns the largest absolute distance of points from plane.
func MaxDeviation(plane Plane, points []v3.Vec) float64 {
	var worst float64
	for _, p := range points {
		worst = math.Max(worst, math.Abs(plane.Distance(p)))
	}
	return worst
}

// IntersectLinePlane intersects the infinite line origin + t*dir with plane.
// It fails when the line is parallel to the plane.
func IntersectLinePlane(origin, dir v3.Vec, plane Plane) (v3.Vec, float64, bool) {
	denom := plane.Normal.Dot(dir)
	if math.Abs(denom) < normalEpsilon {
		return v3.Vec{}, 0, false
	}
	t := -plane.Distance(origin) / denom
	return origin.Add(dir.MulScalar(t)), t, true
}

// IntersectSegmentPlane intersects segment a-b with plane. It fails when both
// endpoints lie strictly on the same side or the segment lies in the plane.
func IntersectSegmentPlane(a, b v3.Vec, plane Plane) (v3.Vec, bool) {
	da := plane.Distance(a)
	db := plane.Distance(b)
	if (da > 0 && db > 0) || (da < 0 && db < 0) {
		return v3.Vec{}, false
	}
	if da == db {
		return v3.Vec{}, false
	}
	t := da / (da - db)
	return a.Add(b.Sub(a).MulScalar(t)), true
}

// BoundsOf returns the axis-aligned box enclosing points. The zero box is
// returned for empty input.
func BoundsOf(points []v3.Vec) sdf.Box3 {
	if len(points) == 0 {
		return sdf.Box3{}
	}
	box := sdf.Box3{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		box.Min = box.Min.Min(p)
		box.Max = box.Max.Max(p)
	}
	return box
}
