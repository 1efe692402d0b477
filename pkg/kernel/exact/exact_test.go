package exact

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

// volume sums signed tetrahedra against the origin. Outward wound closed
// meshes give their enclosed volume.
func volume(m *kernel.Mesh) float64 {
	total := 0.0
	for i := 0; i < len(m.Indices); i += 3 {
		a := m.Vertex(int(m.Indices[i]))
		b := m.Vertex(int(m.Indices[i+1]))
		c := m.Vertex(int(m.Indices[i+2]))
		total += a.Dot(b.Cross(c)) / 6
	}
	return total
}

// checkWinding verifies that every triangle faces the way its stored
// normals point.
func checkWinding(t *testing.T, m *kernel.Mesh) {
	t.Helper()
	for i := 0; i < len(m.Indices); i += 3 {
		ia := int(m.Indices[i])
		a, b, c := m.Vertex(ia), m.Vertex(int(m.Indices[i+1])), m.Vertex(int(m.Indices[i+2]))
		face := b.Sub(a).Cross(c.Sub(a))
		n := v3.Vec{X: float64(m.Normals[3*ia]), Y: float64(m.Normals[3*ia+1]), Z: float64(m.Normals[3*ia+2])}
		if face.Dot(n) <= 0 {
			t.Fatalf("triangle %d faces away from its normal", i/3)
		}
	}
}

func TestToMeshBox(t *testing.T) {
	b := shapes.CreateBoxFromBounds(v3.Vec{}, v3.Vec{X: 2, Y: 1, Z: 1}, surfaces(6))
	m, err := New().ToMesh(b)
	if err != nil {
		t.Fatalf("ToMesh() error = %v", err)
	}
	if m.TriangleCount() != 12 {
		t.Errorf("TriangleCount() = %d, want 12", m.TriangleCount())
	}
	if m.VertexCount() != 24 {
		t.Errorf("VertexCount() = %d, want 24", m.VertexCount())
	}
	if len(m.Normals) != len(m.Vertices) {
		t.Fatalf("normals length %d != vertices length %d", len(m.Normals), len(m.Vertices))
	}
	checkWinding(t, m)
	if v := volume(m); math.Abs(v-2) > 1e-5 {
		t.Errorf("volume = %v, want 2", v)
	}
}

func TestToMeshConcaveCap(t *testing.T) {
	outline := []v2.Vec{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 2}, {X: 0, Y: 2}}
	b := shapes.CreateExtrudedPolygon(outline, 0, v3.Vec{Z: 1}, surfaces(3))
	if b == nil {
		t.Fatal("CreateExtrudedPolygon() = nil")
	}
	m, err := New().ToMesh(b)
	if err != nil {
		t.Fatalf("ToMesh() error = %v", err)
	}
	// Two caps of four triangles plus six quads.
	if m.TriangleCount() != 20 {
		t.Errorf("TriangleCount() = %d, want 20", m.TriangleCount())
	}
	checkWinding(t, m)
	if v := volume(m); math.Abs(v-3) > 1e-5 {
		t.Errorf("volume = %v, want 3", v)
	}
}

func TestToMeshSmoothingGroups(t *testing.T) {
	s := surfaces(3)
	s[2].SmoothingGroup = 1
	b := shapes.CreateCylinder(v3.Vec{}, 1, 1, 1, 8, s)
	if b == nil {
		t.Fatal("CreateCylinder() = nil")
	}
	m, err := New().ToMesh(b)
	if err != nil {
		t.Fatalf("ToMesh() error = %v", err)
	}
	checkWinding(t, m)

	radial := 0
	for i := 0; i < m.VertexCount(); i++ {
		p := m.Vertex(i)
		n := v3.Vec{X: float64(m.Normals[3*i]), Y: float64(m.Normals[3*i+1]), Z: float64(m.Normals[3*i+2])}
		if math.Abs(n.Y) > 1e-6 {
			continue // cap vertex
		}
		radial++
		want := v3.Vec{X: p.X, Z: p.Z}
		if n.Sub(want).Length() > 1e-5 {
			t.Errorf("side vertex %v normal = %v, want %v", p, n, want)
		}
	}
	if radial != 8*4 {
		t.Errorf("smoothed side vertices = %d, want 32", radial)
	}
}

func TestToMeshEmpty(t *testing.T) {
	tests := []struct {
		name string
		b    *brush.Mesh
	}{
		{"nil", nil},
		{"empty", brush.New()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New().ToMesh(tt.b); !errors.Is(err, kernel.ErrEmptyMesh) {
				t.Errorf("ToMesh() error = %v, want ErrEmptyMesh", err)
			}
		})
	}
}

func TestToMeshLeavesBrush(t *testing.T) {
	b := shapes.CreateBoxFromBounds(v3.Vec{}, v3.Vec{X: 1, Y: 1, Z: 1}, surfaces(6))
	before := b.Clone()
	if _, err := New().ToMesh(b); err != nil {
		t.Fatalf("ToMesh() error = %v", err)
	}
	if len(b.Vertices) != len(before.Vertices) || len(b.HalfEdges) != len(before.HalfEdges) {
		t.Error("ToMesh() modified the brush")
	}
}

func TestTriangulateFan(t *testing.T) {
	got := fan(5)
	want := [][3]int{{0, 1, 2}, {0, 2, 3}, {0, 3, 4}}
	if len(got) != len(want) {
		t.Fatalf("fan(5) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("fan(5)[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
