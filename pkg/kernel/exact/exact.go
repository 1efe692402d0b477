// Package exact implements kernel.Kernel by triangulating each brush
// polygon directly. Output vertices lie exactly on the brush, so the mesh is
// suitable for export as well as preview.
package exact

import (
	"fmt"

	"github.com/chazu/brushkit/pkg/brush"
	"github.com/chazu/brushkit/pkg/geom"
	"github.com/chazu/brushkit/pkg/kernel"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/rclancey/earcut"
)

// Compile-time interface check.
var _ kernel.Kernel = (*ExactKernel)(nil)

// ExactKernel implements kernel.Kernel with per-polygon triangulation.
// Convex polygons are fanned from their first vertex, concave ones go
// through ear clipping. Polygons that share a non-zero smoothing group share
// averaged vertex normals; all others are flat shaded.
type ExactKernel struct{}

// New returns a new ExactKernel.
func New() *ExactKernel {
	return &ExactKernel{}
}

// Name returns "exact".
func (k *ExactKernel) Name() string { return "exact" }

type smoothKey struct {
	vertex int
	group  uint32
}

// ToMesh triangulates every polygon of b.
func (k *ExactKernel) ToMesh(b *brush.Mesh) (*kernel.Mesh, error) {
	if err := kernel.Check(b); err != nil {
		return nil, err
	}

	normals := make([]v3.Vec, len(b.Polygons))
	for p := range b.Polygons {
		normals[p] = polygonNormal(b, p)
	}

	// Accumulate area weighted normals per smoothing group.
	smooth := map[smoothKey]v3.Vec{}
	for p, poly := range b.Polygons {
		if poly.Surface.SmoothingGroup == 0 {
			continue
		}
		weighted := geom.NewellNormal(b.PolygonVertices(p))
		for _, v := range b.PolygonVertexIndices(p) {
			key := smoothKey{v, poly.Surface.SmoothingGroup}
			smooth[key] = smooth[key].Add(weighted)
		}
	}

	out := &kernel.Mesh{}
	for p, poly := range b.Polygons {
		indices := b.PolygonVertexIndices(p)
		points := b.PolygonVertices(p)

		tris, err := triangulate(points, normals[p])
		if err != nil {
			return nil, fmt.Errorf("polygon %d: %w", p, err)
		}

		base := make([]uint32, len(points))
		for i, pt := range points {
			n := normals[p]
			if g := poly.Surface.SmoothingGroup; g != 0 {
				if s, ok := geom.Normalize(smooth[smoothKey{indices[i], g}]); ok {
					n = s
				}
			}
			base[i] = out.AddVertex(pt, n)
		}
		for _, t := range tris {
			out.AddTriangle(base[t[0]], base[t[1]], base[t[2]])
		}
	}
	return out, nil
}

func polygonNormal(b *brush.Mesh, p int) v3.Vec {
	if p < len(b.Planes) {
		if n, ok := geom.Normalize(b.Planes[p].Normal); ok {
			return n
		}
	}
	n, _ := geom.Normalize(geom.NewellNormal(b.PolygonVertices(p)))
	return n
}

// triangulate returns index triples into points whose winding matches the
// polygon's, seen from the side normal points to.
func triangulate(points []v3.Vec, normal v3.Vec) ([][3]int, error) {
	if len(points) < 3 {
		return nil, fmt.Errorf("%d vertices", len(points))
	}
	flat := geom.ProjectToPlane2(points, normal)
	if geom.IsConvex2(flat) {
		return fan(len(points)), nil
	}

	coords := make([]float64, 0, 2*len(flat))
	for _, p := range flat {
		coords = append(coords, p.X, p.Y)
	}
	idx, err := earcut.Earcut(coords, nil, 2)
	if err != nil {
		return nil, fmt.Errorf("ear clipping: %w", err)
	}
	if len(idx)%3 != 0 || len(idx) == 0 {
		return nil, fmt.Errorf("ear clipping returned %d indices", len(idx))
	}

	ccw := geom.Orientation(flat) >= 0
	tris := make([][3]int, 0, len(idx)/3)
	for i := 0; i < len(idx); i += 3 {
		t := [3]int{idx[i], idx[i+1], idx[i+2]}
		if (area2(flat, t) >= 0) != ccw {
			t[1], t[2] = t[2], t[1]
		}
		tris = append(tris, t)
	}
	return tris, nil
}

func fan(n int) [][3]int {
	tris := make([][3]int, 0, n-2)
	for i := 1; i+1 < n; i++ {
		tris = append(tris, [3]int{0, i, i + 1})
	}
	return tris
}

func area2(flat []v2.Vec, t [3]int) float64 {
	return geom.Area2(flat[t[0]], flat[t[1]], flat[t[2]])
}
