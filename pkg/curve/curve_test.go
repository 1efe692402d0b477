package curve

import (
	"math"
	"testing"

	"github.com/chazu/brushkit/pkg/geom"
	v2 "github.com/deadsy/sdfx/vec/v2"
)

func near(a, b v2.Vec) bool {
	return math.Abs(a.X-b.X) < 1e-9 && math.Abs(a.Y-b.Y) < 1e-9
}

// polyline returns a closed curve with straight segments through pts.
func polyline(pts ...v2.Vec) *Curve2D {
	c := &Curve2D{Closed: true}
	for _, p := range pts {
		c.ControlPoints = append(c.ControlPoints, ControlPoint{
			Position:    p,
			Constraint1: Straight,
			Constraint2: Straight,
		})
	}
	return c
}

// roundish returns a closed curve whose handles all bend outwards.
func roundish() *Curve2D {
	return &Curve2D{
		Closed: true,
		ControlPoints: []ControlPoint{
			{Position: v2.Vec{X: 1, Y: 0}, Tangent1: v2.Vec{X: 0, Y: -0.5}, Tangent2: v2.Vec{X: 0, Y: 0.5}},
			{Position: v2.Vec{X: 0, Y: 1}, Tangent1: v2.Vec{X: 0.5, Y: 0}, Tangent2: v2.Vec{X: -0.5, Y: 0}},
			{Position: v2.Vec{X: -1, Y: 0}, Tangent1: v2.Vec{X: 0, Y: 0.5}, Tangent2: v2.Vec{X: 0, Y: -0.5}},
			{Position: v2.Vec{X: 0, Y: -1}, Tangent1: v2.Vec{X: -0.5, Y: 0}, Tangent2: v2.Vec{X: 0.5, Y: 0}},
		},
	}
}

// ---------------------------------------------------------------------------
// PointOnBezier
// ---------------------------------------------------------------------------

func TestPointOnBezierEndpoints(t *testing.T) {
	tests := []struct {
		name           string
		p0, p1, p2, p3 v2.Vec
	}{
		{"straight", v2.Vec{}, v2.Vec{}, v2.Vec{X: 1}, v2.Vec{X: 1}},
		{"s-curve", v2.Vec{X: -1, Y: 2}, v2.Vec{X: 5, Y: 7}, v2.Vec{X: -3, Y: -8}, v2.Vec{X: 4, Y: 0.5}},
		{"loop", v2.Vec{X: 0.1, Y: 0.2}, v2.Vec{X: 10, Y: 10}, v2.Vec{X: -10, Y: 10}, v2.Vec{X: 0.3, Y: 0.2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PointOnBezier(tt.p0, tt.p1, tt.p2, tt.p3, 0); got != tt.p0 {
				t.Errorf("PointOnBezier(t=0) = %v, want %v", got, tt.p0)
			}
			if got := PointOnBezier(tt.p0, tt.p1, tt.p2, tt.p3, 1); got != tt.p3 {
				t.Errorf("PointOnBezier(t=1) = %v, want %v", got, tt.p3)
			}
		})
	}
}

func TestPointOnBezierMidpoint(t *testing.T) {
	got := PointOnBezier(v2.Vec{}, v2.Vec{Y: 1}, v2.Vec{X: 1, Y: 1}, v2.Vec{X: 1}, 0.5)
	if want := (v2.Vec{X: 0.5, Y: 0.75}); !near(got, want) {
		t.Errorf("PointOnBezier(t=0.5) = %v, want %v", got, want)
	}
}

// ---------------------------------------------------------------------------
// PathVertices
// ---------------------------------------------------------------------------

func TestPathVerticesZeroSegments(t *testing.T) {
	c := roundish()
	got := c.Vertices(0)
	if len(got) != len(c.ControlPoints) {
		t.Fatalf("Vertices(0) = %d points, want %d", len(got), len(c.ControlPoints))
	}
	for i, v := range got {
		if v.Position != c.ControlPoints[i].Position || v.SegmentIndex != i {
			t.Errorf("vertex %d = %+v", i, v)
		}
	}
}

func TestPathVerticesCurved(t *testing.T) {
	c := roundish()
	got := c.Vertices(4)
	if len(got) != 16 {
		t.Fatalf("Vertices(4) = %d points, want 16", len(got))
	}
	for i, v := range got {
		if v.SegmentIndex != i/4 {
			t.Errorf("vertex %d segment = %d, want %d", i, v.SegmentIndex, i/4)
		}
	}
	// The first point of each segment is its control point.
	for s := range 4 {
		if got[s*4].Position != c.ControlPoints[s].Position {
			t.Errorf("segment %d starts at %v", s, got[s*4].Position)
		}
	}
	if geom.Orientation(Points(got)) <= 0 {
		t.Error("counter-clockwise control points should give a counter-clockwise outline")
	}
}

func TestPathVerticesStraightSegmentsSkipSubdivision(t *testing.T) {
	c := roundish()
	c.ControlPoints[0].Constraint2 = Straight
	c.ControlPoints[1].Constraint1 = Straight
	got := c.Vertices(4)
	if len(got) != 13 {
		t.Fatalf("Vertices(4) = %d points, want 13", len(got))
	}
	if got[1].SegmentIndex != 1 || got[1].Position != c.ControlPoints[1].Position {
		t.Errorf("second vertex = %+v, want control point 1", got[1])
	}
}

func TestPathVerticesOneStraightHandle(t *testing.T) {
	c := roundish()
	c.ControlPoints[0].Constraint2 = Straight
	got := c.Vertices(2)
	// Segment 0 still curves because the incoming handle of point 1 is free.
	want := PointOnBezier(
		c.ControlPoints[0].Position, c.ControlPoints[0].Position,
		c.ControlPoints[1].Position.Add(c.ControlPoints[1].Tangent1), c.ControlPoints[1].Position, 0.5)
	if !near(got[1].Position, want) {
		t.Errorf("midpoint = %v, want %v", got[1].Position, want)
	}
}

func TestPathVerticesOpenCurve(t *testing.T) {
	c := polyline(v2.Vec{}, v2.Vec{X: 1}, v2.Vec{X: 1, Y: 1})
	c.Closed = false
	got := c.Vertices(3)
	if len(got) != 3 {
		t.Fatalf("open polyline = %d points, want 3", len(got))
	}
	if got[2].SegmentIndex != 2 || got[2].Position != (v2.Vec{X: 1, Y: 1}) {
		t.Errorf("last vertex = %+v", got[2])
	}
}

func TestPathVerticesRestartable(t *testing.T) {
	c := roundish()
	seq := c.PathVertices(3)
	count := func() int {
		n := 0
		for range seq {
			n++
		}
		return n
	}
	if a, b := count(), count(); a != b || a != 12 {
		t.Errorf("iterations yielded %d and %d points, want 12 twice", a, b)
	}
	// Stopping early must not panic.
	for range seq {
		break
	}
}

func TestPathVerticesEmpty(t *testing.T) {
	if got := (&Curve2D{}).Vertices(4); len(got) != 0 {
		t.Errorf("empty curve yielded %d points", len(got))
	}
}

// ---------------------------------------------------------------------------
// FlattenedPathVertices
// ---------------------------------------------------------------------------

func TestFlattenedPathVertices(t *testing.T) {
	c := roundish()
	coarse := c.FlattenedPathVertices(0.1)
	fine := c.FlattenedPathVertices(0.001)
	if len(fine) <= len(coarse) {
		t.Errorf("finer tolerance gave %d points, coarse %d", len(fine), len(coarse))
	}
	for i := 1; i < len(fine); i++ {
		if fine[i].SegmentIndex < fine[i-1].SegmentIndex {
			t.Fatalf("segment indices not monotonic at %d", i)
		}
	}
	if fine[0].Position != c.ControlPoints[0].Position {
		t.Errorf("first point = %v", fine[0].Position)
	}
}

func TestFlattenedPathVerticesStraight(t *testing.T) {
	c := polyline(v2.Vec{}, v2.Vec{X: 1}, v2.Vec{X: 1, Y: 1}, v2.Vec{Y: 1})
	if got := c.FlattenedPathVertices(0.01); len(got) != 4 {
		t.Errorf("straight outline = %d points, want 4", len(got))
	}
}
