package shapes

import (
	"github.com/chazu/brushkit/internal/logger"
	"github.com/chazu/brushkit/pkg/brush"
	"github.com/chazu/brushkit/pkg/curve"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"go.uber.org/zap"
)

// CreateCurveBrushes tessellates c, splits the outline into convex parts
// and extrudes each part from height z along extrusion. Surfaces[0] and
// Surfaces[1] are the caps; the side of each part that came from curve
// segment i gets Surfaces[2+i], or the last surface when the list is
// shorter. It returns false when the curve cannot be partitioned or any
// part fails to build.
func CreateCurveBrushes(c *curve.Curve2D, curveSegments int, z float64, extrusion v3.Vec, surfaces []brush.Surface) ([]*brush.Mesh, bool) {
	if c == nil {
		return nil, false
	}
	return CreateOutlineBrushes(c.Vertices(curveSegments), z, extrusion, surfaces)
}

// CreateOutlineBrushes is CreateCurveBrushes for an already tessellated
// outline.
func CreateOutlineBrushes(outline []curve.SegmentVertex, z float64, extrusion v3.Vec, surfaces []brush.Surface) ([]*brush.Mesh, bool) {
	if len(surfaces) < 3 {
		return nil, false
	}
	vertices, boundaries, ok := curve.PartitionOutline(outline)
	if !ok {
		return nil, false
	}

	var out []*brush.Mesh
	for i, part := range curve.Parts(vertices, boundaries) {
		bottom := make([]v3.Vec, len(part))
		top := make([]v3.Vec, len(part))
		partSurfaces := []brush.Surface{surfaces[0], surfaces[1]}
		for k, v := range part {
			bottom[k] = v3.Vec{X: v.Position.X, Y: v.Position.Y, Z: z}
			top[k] = bottom[k].Add(extrusion)
			partSurfaces = append(partSurfaces, surfaces[min(2+v.SegmentIndex, len(surfaces)-1)])
		}
		m := brush.New()
		if !BuildLoft(m, LoftParams{Bottom: bottom, Top: top, Surfaces: partSurfaces}) {
			logger.Debug("curve brush part failed", zap.Int("part", i), zap.Int("vertices", len(part)))
			return nil, false
		}
		out = append(out, m)
	}
	return out, true
}
