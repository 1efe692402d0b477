// Package kernel defines the interface between brush meshes and the
// triangle meshes handed to renderers and exporters. Backends live in
// subpackages so the choice of triangulation strategy is isolated from
// the design and engine packages.
package kernel

import (
	"errors"

	"github.com/chazu/brushkit/pkg/brush"
)

// Errors returned by Kernel implementations.
var (
	// ErrEmptyMesh is returned when a brush has no polygons.
	ErrEmptyMesh = errors.New("kernel: brush mesh is empty")
	// ErrNotConvex is returned by backends that only handle convex brushes.
	ErrNotConvex = errors.New("kernel: brush mesh is not convex")
)

// Kernel turns a half-edge brush into a triangle mesh.
type Kernel interface {
	// Name identifies the backend in logs and configuration.
	Name() string

	// ToMesh triangulates b. The brush is not modified.
	ToMesh(b *brush.Mesh) (*Mesh, error)
}

// Check returns ErrEmptyMesh for nil or empty brushes and nil otherwise.
// Backends call it before doing any work.
func Check(b *brush.Mesh) error {
	if b == nil || b.IsEmpty() || len(b.Polygons) == 0 {
		return ErrEmptyMesh
	}
	return nil
}
