package sdfx

import (
	"errors"
	"math"
	"testing"

	"github.com/chazu/brushkit/pkg/brush"
	"github.com/chazu/brushkit/pkg/kernel"
	"github.com/chazu/brushkit/pkg/shapes"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

func surfaces(n int) []brush.Surface {
	out := make([]brush.Surface, n)
	for i := range out {
		out[i] = brush.Surface{ID: i + 1}
	}
	return out
}

func TestBox(t *testing.T) {
	k := New(32)
	box := shapes.CreateBoxFromBounds(v3.Vec{}, v3.Vec{X: 100, Y: 50, Z: 25}, surfaces(6))
	mesh, err := k.ToMesh(box)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("mesh is empty")
	}
	triCount := mesh.TriangleCount()
	if triCount == 0 {
		t.Fatal("expected non-zero triangle count")
	}
	t.Logf("box triangle count: %d", triCount)
	// Verify vertex and index array sizes are consistent.
	if len(mesh.Vertices) != len(mesh.Normals) {
		t.Fatalf("vertices length %d != normals length %d", len(mesh.Vertices), len(mesh.Normals))
	}
	if len(mesh.Indices) != triCount*3 {
		t.Fatalf("indices length %d != triCount*3 %d", len(mesh.Indices), triCount*3)
	}
}

func TestMeshStaysNearBrush(t *testing.T) {
	k := New(32)
	box := shapes.CreateBoxFromBounds(v3.Vec{}, v3.Vec{X: 10, Y: 10, Z: 10}, surfaces(6))
	mesh, err := k.ToMesh(box)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	// One cell is about 10.5/32 wide.
	const tol = 0.5
	for i := 0; i < mesh.VertexCount(); i++ {
		p := mesh.Vertex(i)
		for _, c := range []float64{p.X, p.Y, p.Z} {
			if c < -tol || c > 10+tol {
				t.Fatalf("vertex %v lies outside the brush", p)
			}
		}
	}
}

func TestCylinder(t *testing.T) {
	k := New(0)
	if k.Cells() != DefaultMeshCells {
		t.Errorf("Cells() = %d, want %d", k.Cells(), DefaultMeshCells)
	}
	cyl := shapes.CreateCylinder(v3.Vec{}, 50, 10, 10, 32, surfaces(3))
	mesh, err := k.ToMesh(cyl)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.TriangleCount() == 0 {
		t.Fatal("expected non-zero triangle count")
	}
	t.Logf("cylinder triangle count: %d", mesh.TriangleCount())
}

func TestResolution(t *testing.T) {
	cyl := shapes.CreateCylinder(v3.Vec{}, 10, 5, 2, 16, surfaces(3))
	coarse, err := New(16).ToMesh(cyl)
	if err != nil {
		t.Fatalf("ToMesh(coarse) failed: %v", err)
	}
	fine, err := New(48).ToMesh(cyl)
	if err != nil {
		t.Fatalf("ToMesh(fine) failed: %v", err)
	}
	if fine.TriangleCount() <= coarse.TriangleCount() {
		t.Errorf("fine mesh (%d triangles) should have more triangles than coarse (%d triangles)",
			fine.TriangleCount(), coarse.TriangleCount())
	}
}

func TestSolidEvaluate(t *testing.T) {
	box := shapes.CreateBoxFromBounds(v3.Vec{X: -1, Y: -1, Z: -1}, v3.Vec{X: 1, Y: 1, Z: 1}, surfaces(6))
	s, err := Solid(box)
	if err != nil {
		t.Fatalf("Solid() error = %v", err)
	}
	tests := []struct {
		name string
		p    v3.Vec
		want float64
	}{
		{"center", v3.Vec{}, -1},
		{"on face", v3.Vec{X: 1}, 0},
		{"outside", v3.Vec{Y: 3}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Evaluate(tt.p); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Evaluate(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}

	bb := s.BoundingBox()
	if bb.Min.X >= -1 || bb.Max.Z <= 1 {
		t.Errorf("BoundingBox() = %+v, want padding around the brush", bb)
	}
}

func TestRejectsNonConvex(t *testing.T) {
	outline := []v2.Vec{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 2}, {X: 0, Y: 2}}
	b := shapes.CreateExtrudedPolygon(outline, 0, v3.Vec{Z: 1}, surfaces(3))
	if b == nil {
		t.Fatal("CreateExtrudedPolygon() = nil")
	}
	if _, err := New(16).ToMesh(b); !errors.Is(err, kernel.ErrNotConvex) {
		t.Errorf("ToMesh() error = %v, want ErrNotConvex", err)
	}
}

func TestRejectsEmpty(t *testing.T) {
	if _, err := New(16).ToMesh(brush.New()); !errors.Is(err, kernel.ErrEmptyMesh) {
		t.Errorf("ToMesh() error = %v, want ErrEmptyMesh", err)
	}
}
