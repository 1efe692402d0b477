package kernel

import (
	"errors"
	"testing"

	"github.com/chazu/brushkit/pkg/brush"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// --- Mesh helper method tests ---

func TestMeshVertexCount(t *testing.T) {
	tests := []struct {
		name     string
		vertices []float32
		want     int
	}{
		{"empty", nil, 0},
		{"one vertex", []float32{1, 2, 3}, 1},
		{"four vertices", []float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Vertices: tt.vertices}
			if got := m.VertexCount(); got != tt.want {
				t.Errorf("VertexCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshTriangleCount(t *testing.T) {
	tests := []struct {
		name    string
		indices []uint32
		want    int
	}{
		{"empty", nil, 0},
		{"one triangle", []uint32{0, 1, 2}, 1},
		{"two triangles", []uint32{0, 1, 2, 2, 3, 0}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Indices: tt.indices}
			if got := m.TriangleCount(); got != tt.want {
				t.Errorf("TriangleCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshIsEmpty(t *testing.T) {
	t.Run("empty mesh", func(t *testing.T) {
		m := &Mesh{}
		if !m.IsEmpty() {
			t.Error("IsEmpty() = false for empty mesh, want true")
		}
	})
	t.Run("non-empty mesh", func(t *testing.T) {
		m := &Mesh{Vertices: []float32{1, 2, 3}}
		if m.IsEmpty() {
			t.Error("IsEmpty() = true for non-empty mesh, want false")
		}
	})
}

func TestMeshAddVertexAndTriangle(t *testing.T) {
	m := &Mesh{}
	up := v3.Vec{Z: 1}
	a := m.AddVertex(v3.Vec{}, up)
	b := m.AddVertex(v3.Vec{X: 1}, up)
	c := m.AddVertex(v3.Vec{X: 1, Y: 2}, up)
	m.AddTriangle(a, b, c)

	if a != 0 || b != 1 || c != 2 {
		t.Errorf("AddVertex() indices = %d %d %d, want 0 1 2", a, b, c)
	}
	if m.VertexCount() != 3 || m.TriangleCount() != 1 {
		t.Errorf("counts = %d/%d, want 3/1", m.VertexCount(), m.TriangleCount())
	}
	if len(m.Normals) != len(m.Vertices) {
		t.Errorf("normals length %d != vertices length %d", len(m.Normals), len(m.Vertices))
	}
	if got := m.Vertex(2); got != (v3.Vec{X: 1, Y: 2}) {
		t.Errorf("Vertex(2) = %v, want (1, 2, 0)", got)
	}
}

// --- Compile-time interface check with a stub kernel ---

// stubKernel is a minimal Kernel implementation that proves the interface
// is satisfiable.
type stubKernel struct{}

func (k *stubKernel) Name() string { return "stub" }

func (k *stubKernel) ToMesh(b *brush.Mesh) (*Mesh, error) {
	if err := Check(b); err != nil {
		return nil, err
	}
	return &Mesh{}, nil
}

var _ Kernel = (*stubKernel)(nil)

func TestCheck(t *testing.T) {
	tests := []struct {
		name string
		b    *brush.Mesh
		want error
	}{
		{"nil", nil, ErrEmptyMesh},
		{"empty", brush.New(), ErrEmptyMesh},
		{"triangle", brush.NewFromLoops(
			[]v3.Vec{{}, {X: 1}, {Y: 1}},
			[][]int{{0, 1, 2}, {2, 1, 0}},
			[]brush.Surface{{ID: 1}, {ID: 2}},
		), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Check(tt.b); !errors.Is(got, tt.want) {
				t.Errorf("Check() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStubKernelToMesh(t *testing.T) {
	var k Kernel = &stubKernel{}
	if _, err := k.ToMesh(nil); !errors.Is(err, ErrEmptyMesh) {
		t.Errorf("ToMesh(nil) error = %v, want ErrEmptyMesh", err)
	}
}
