// Package tessellate walks a design and produces triangle meshes using a
// geometry kernel. One mesh is produced per brush, in design order.
package tessellate

import (
	"fmt"

	"github.com/chazu/brushkit/internal/logger"
	"github.com/chazu/brushkit/pkg/design"
	"github.com/chazu/brushkit/pkg/kernel"
	"go.uber.org/zap"
)

// Tessellate triangulates every brush of d with k. The tessellator is
// read-only and never mutates the design or its meshes. The first kernel
// failure aborts the walk.
func Tessellate(d *design.Design, k kernel.Kernel) ([]*kernel.Mesh, error) {
	if d == nil {
		return nil, nil
	}

	meshes := make([]*kernel.Mesh, 0, d.Len())
	for i, b := range d.Brushes {
		m, err := Brush(b, k)
		if err != nil {
			return nil, fmt.Errorf("tessellate: brush %d (%s): %w", i, b.Label(), err)
		}
		meshes = append(meshes, m)
	}
	logger.Debug("design tessellated",
		zap.String("kernel", k.Name()),
		zap.Int("brushes", d.Len()))
	return meshes, nil
}

// Brush triangulates a single brush and tags the result with the brush's
// label and operation.
func Brush(b *design.Brush, k kernel.Kernel) (*kernel.Mesh, error) {
	if b == nil {
		return nil, kernel.ErrEmptyMesh
	}
	m, err := k.ToMesh(b.Mesh)
	if err != nil {
		return nil, err
	}
	m.PartName = b.Label()
	m.Operation = b.Operation.String()
	return m, nil
}
