// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library. A convex brush is the
// intersection of its polygon half-spaces, which maps directly onto a
// signed distance field; marching cubes then produces a preview mesh.
package sdfx

import (
	"fmt"

	"github.com/chazu/brushkit/pkg/brush"
	"github.com/chazu/brushkit/pkg/geom"
	"github.com/chazu/brushkit/pkg/kernel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface checks.
var (
	_ kernel.Kernel = (*SdfxKernel)(nil)
	_ sdf.SDF3      = (*brushSDF)(nil)
)

// DefaultMeshCells controls marching cubes tessellation resolution.
const DefaultMeshCells = 64

// brushSDF evaluates a convex brush as the maximum of its plane distances.
// The value is exact on faces and a lower bound near edges and corners,
// which is enough for marching cubes.
type brushSDF struct {
	planes []geom.Plane
	bb     sdf.Box3
}

// Evaluate returns the signed distance estimate at p.
func (s *brushSDF) Evaluate(p v3.Vec) float64 {
	d := s.planes[0].Distance(p)
	for _, pl := range s.planes[1:] {
		d = max(d, pl.Distance(p))
	}
	return d
}

// BoundingBox returns the padded bounds of the brush.
func (s *brushSDF) BoundingBox() sdf.Box3 {
	return s.bb
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct {
	cells int
}

// New returns a new SdfxKernel sampling the longest bounding box side with
// cells marching cubes cells. Non-positive values select DefaultMeshCells.
func New(cells int) *SdfxKernel {
	if cells <= 0 {
		cells = DefaultMeshCells
	}
	return &SdfxKernel{cells: cells}
}

// Name returns "sdfx".
func (k *SdfxKernel) Name() string { return "sdfx" }

// Cells returns the marching cubes resolution.
func (k *SdfxKernel) Cells() int { return k.cells }

// Solid returns the distance field of a convex brush. It fails with
// kernel.ErrNotConvex for brushes that are not convex within
// geom.DistanceEpsilon.
func Solid(b *brush.Mesh) (sdf.SDF3, error) {
	if err := kernel.Check(b); err != nil {
		return nil, err
	}
	if !b.IsConvex(geom.DistanceEpsilon) {
		return nil, kernel.ErrNotConvex
	}

	planes := make([]geom.Plane, 0, len(b.Planes))
	for p, pl := range b.Planes {
		n, ok := geom.Normalize(pl.Normal)
		if !ok {
			return nil, fmt.Errorf("polygon %d has no plane", p)
		}
		// Normalize keeps distances in world units even if a plane was set
		// by hand with a scaled normal.
		scale := pl.Normal.Length()
		planes = append(planes, geom.Plane{Normal: n, D: pl.D / scale})
	}

	bb := b.Bounds
	pad := bb.Size().MaxComponent() * 0.05
	margin := v3.Vec{X: pad, Y: pad, Z: pad}
	return &brushSDF{
		planes: planes,
		bb:     sdf.Box3{Min: bb.Min.Sub(margin), Max: bb.Max.Add(margin)},
	}, nil
}

// ToMesh converts a convex brush to a triangle mesh using marching cubes.
func (k *SdfxKernel) ToMesh(b *brush.Mesh) (*kernel.Mesh, error) {
	s, err := Solid(b)
	if err != nil {
		return nil, err
	}

	renderer := render.NewMarchingCubesUniform(k.cells)
	triangles := render.ToTriangles(s, renderer)

	numTri := len(triangles)
	numVerts := numTri * 3

	out := &kernel.Mesh{
		Vertices: make([]float32, 0, numVerts*3),
		Normals:  make([]float32, 0, numVerts*3),
		Indices:  make([]uint32, 0, numVerts),
	}
	for _, tri := range triangles {
		n := tri.Normal()
		a := out.AddVertex(tri[0], n)
		bi := out.AddVertex(tri[1], n)
		c := out.AddVertex(tri[2], n)
		out.AddTriangle(a, bi, c)
	}
	return out, nil
}
