// Package shapes builds half-edge brush meshes for primitive solids.
//
// Boxes, pyramids and wedges have small fixed connectivity and are built
// straight from constant topology tables. Cylinders, extrusions and lofts
// go through the segmented builder, which picks quad or triangle topology
// per side segment.
//
// Every builder returns nil (or false) for unusable input instead of a
// partially built mesh. Builders share no state and may run concurrently.
package shapes

import "fmt"

// Kind identifies a fixed-topology template.
type Kind int

const (
	KindBox Kind = iota
	KindInvertedBox
	KindSquarePyramid
	KindInvertedSquarePyramid
	KindTriangularPyramid
	KindInvertedTriangularPyramid
	KindWedge
	KindInvertedWedge
)

var kindNames = [...]string{
	KindBox:                       "box",
	KindInvertedBox:               "inverted-box",
	KindSquarePyramid:             "square-pyramid",
	KindInvertedSquarePyramid:     "inverted-square-pyramid",
	KindTriangularPyramid:         "triangular-pyramid",
	KindInvertedTriangularPyramid: "inverted-triangular-pyramid",
	KindWedge:                     "wedge",
	KindInvertedWedge:             "inverted-wedge",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// TemplateEdge is one half-edge of a template: the index of its twin and
// its destination vertex.
type TemplateEdge struct {
	Twin   int
	Vertex int
}

// TemplatePolygon is a contiguous range of template half-edges.
type TemplatePolygon struct {
	FirstEdge int
	EdgeCount int
}

// Template is the constant connectivity of a fixed primitive.
type Template struct {
	Vertices  int
	HalfEdges []TemplateEdge
	Polygons  []TemplatePolygon
}

// TemplateFor returns the topology table for kind. The tables are shared;
// callers must not modify them.
func TemplateFor(kind Kind) (Template, bool) {
	if kind < 0 || int(kind) >= len(templates) {
		return Template{}, false
	}
	return templates[kind], true
}

// Corner order for boxes:
//
//	0 (x0,y1,z0)  1 (x1,y1,z0)  2 (x1,y1,z1)  3 (x0,y1,z1)   top
//	4 (x0,y0,z0)  5 (x1,y0,z0)  6 (x1,y0,z1)  7 (x0,y0,z1)   bottom
//
// Polygons are top, bottom, -X, +X, -Z, +Z.
var boxPolygons = []TemplatePolygon{{0, 4}, {4, 4}, {8, 4}, {12, 4}, {16, 4}, {20, 4}}

var boxHalfEdges = []TemplateEdge{
	{11, 3}, {23, 2}, {13, 1}, {17, 0},
	{9, 4}, {19, 5}, {15, 6}, {21, 7},
	{16, 4}, {4, 7}, {20, 3}, {0, 0},
	{18, 1}, {2, 2}, {22, 6}, {6, 5},
	{8, 0}, {3, 1}, {12, 5}, {5, 4},
	{10, 7}, {7, 6}, {14, 2}, {1, 3},
}

var invertedBoxHalfEdges = []TemplateEdge{
	{9, 0}, {19, 1}, {15, 2}, {21, 3},
	{11, 7}, {23, 6}, {13, 5}, {17, 4},
	{16, 0}, {0, 3}, {20, 7}, {4, 4},
	{18, 5}, {6, 6}, {22, 2}, {2, 1},
	{8, 4}, {7, 5}, {12, 1}, {1, 0},
	{10, 3}, {3, 2}, {14, 6}, {5, 7},
}

// Square pyramid: base 0..3, apex 4. Polygons are base then the four sides.
var squarePyramidPolygons = []TemplatePolygon{{0, 4}, {4, 3}, {7, 3}, {10, 3}, {13, 3}}

var squarePyramidHalfEdges = []TemplateEdge{
	{15, 0}, {6, 1}, {9, 2}, {12, 3},
	{14, 4}, {7, 1}, {1, 0},
	{5, 4}, {10, 2}, {2, 1},
	{8, 4}, {13, 3}, {3, 2},
	{11, 4}, {4, 0}, {0, 3},
}

var invertedSquarePyramidHalfEdges = []TemplateEdge{
	{14, 3}, {11, 2}, {8, 1}, {5, 0},
	{15, 0}, {3, 1}, {7, 4},
	{6, 1}, {2, 2}, {10, 4},
	{9, 2}, {1, 3}, {13, 4},
	{12, 3}, {0, 0}, {4, 4},
}

// Triangular pyramid: base 0..2, apex 3.
var triangularPyramidPolygons = []TemplatePolygon{{0, 3}, {3, 3}, {6, 3}, {9, 3}}

var triangularPyramidHalfEdges = []TemplateEdge{
	{11, 0}, {5, 1}, {8, 2},
	{10, 3}, {6, 1}, {1, 0},
	{4, 3}, {9, 2}, {2, 1},
	{7, 3}, {3, 0}, {0, 2},
}

var invertedTriangularPyramidHalfEdges = []TemplateEdge{
	{10, 2}, {7, 1}, {4, 0},
	{11, 0}, {2, 1}, {6, 3},
	{5, 1}, {1, 2}, {9, 3},
	{8, 2}, {0, 0}, {3, 3},
}

// Wedge: bottom quad 0..3, ridge 5-4 above edge 3-2. Polygons are bottom,
// back, slope, then the two triangular ends.
var wedgePolygons = []TemplatePolygon{{0, 4}, {4, 4}, {8, 4}, {12, 3}, {15, 3}}

var wedgeHalfEdges = []TemplateEdge{
	{13, 0}, {11, 1}, {17, 2}, {5, 3},
	{14, 3}, {3, 2}, {16, 4}, {9, 5},
	{12, 5}, {7, 4}, {15, 1}, {1, 0},
	{8, 0}, {0, 3}, {4, 5},
	{10, 4}, {6, 2}, {2, 1},
}

var invertedWedgeHalfEdges = []TemplateEdge{
	{14, 3}, {7, 2}, {16, 1}, {9, 0},
	{13, 5}, {11, 4}, {17, 2}, {1, 3},
	{12, 0}, {3, 1}, {15, 4}, {5, 5},
	{8, 5}, {4, 3}, {0, 0},
	{10, 1}, {2, 2}, {6, 4},
}

var templates = [...]Template{
	KindBox:                       {Vertices: 8, HalfEdges: boxHalfEdges, Polygons: boxPolygons},
	KindInvertedBox:               {Vertices: 8, HalfEdges: invertedBoxHalfEdges, Polygons: boxPolygons},
	KindSquarePyramid:             {Vertices: 5, HalfEdges: squarePyramidHalfEdges, Polygons: squarePyramidPolygons},
	KindInvertedSquarePyramid:     {Vertices: 5, HalfEdges: invertedSquarePyramidHalfEdges, Polygons: squarePyramidPolygons},
	KindTriangularPyramid:         {Vertices: 4, HalfEdges: triangularPyramidHalfEdges, Polygons: triangularPyramidPolygons},
	KindInvertedTriangularPyramid: {Vertices: 4, HalfEdges: invertedTriangularPyramidHalfEdges, Polygons: triangularPyramidPolygons},
	KindWedge:                     {Vertices: 6, HalfEdges: wedgeHalfEdges, Polygons: wedgePolygons},
	KindInvertedWedge:             {Vertices: 6, HalfEdges: invertedWedgeHalfEdges, Polygons: wedgePolygons},
}
