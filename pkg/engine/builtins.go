package engine

import (
	"fmt"

	"github.com/chazu/brushkit/internal/logger"
	"github.com/chazu/brushkit/pkg/brush"
	"github.com/chazu/brushkit/pkg/curve"
	"github.com/chazu/brushkit/pkg/design"
	"github.com/chazu/brushkit/pkg/geom"
	"github.com/chazu/brushkit/pkg/shapes"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
	"go.uber.org/zap"
)

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the brush DSL builtins into a zygomys environment.
// Shape builtins return unplaced shapes; defbrush adds them to d.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, d *design.Design, opts Options) {

	// -----------------------------------------------------------------------
	// (vec2 1 2) (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec2", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		c, err := coords("vec2", args, 2)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpVec2{vec: v2.Vec{X: c[0], Y: c[1]}}, nil
	})

	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		c, err := coords("vec3", args, 3)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpVec3{vec: v3.Vec{X: c[0], Y: c[1], Z: c[2]}}, nil
	})

	// -----------------------------------------------------------------------
	// (surface :id 3 :material "brick" :smoothing 1)
	// -----------------------------------------------------------------------
	env.AddFunction("surface", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		var s brush.Surface
		if v, ok := pa.kw["id"]; ok {
			id, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("surface: id: %w", err)
			}
			s.ID = id
		}
		if v, ok := pa.kw["material"]; ok {
			m, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("surface: material: %w", err)
			}
			s.Material = m
		}
		if v, ok := pa.kw["smoothing"]; ok {
			g, err := toInt(v)
			if err != nil || g < 0 {
				return zygo.SexpNull, fmt.Errorf("surface: smoothing: expected non-negative integer")
			}
			s.SmoothingGroup = uint32(g)
		}
		return &sexpSurfaces{list: []brush.Surface{s}}, nil
	})

	// -----------------------------------------------------------------------
	// (surfaces 6 :material "stone")
	// -----------------------------------------------------------------------
	env.AddFunction("surfaces", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("surfaces requires a count")
		}
		n, err := toInt(pa.positional[0])
		if err != nil || n < 1 {
			return zygo.SexpNull, fmt.Errorf("surfaces: count must be a positive integer")
		}
		var material string
		if v, ok := pa.kw["material"]; ok {
			if material, err = toString(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("surfaces: material: %w", err)
			}
		}
		return &sexpSurfaces{list: numberedSurfaces(n, material)}, nil
	})

	// -----------------------------------------------------------------------
	// Fixed-topology shapes, each taking its corner points positionally:
	//   (box p0 ... p7) (pyramid p0 ... p4) (triangular-pyramid p0 ... p3)
	//   (wedge p0 ... p5)
	// All accept :inverted true and :surfaces.
	// -----------------------------------------------------------------------
	for _, f := range []struct {
		name          string
		kind, inverse shapes.Kind
	}{
		{"box", shapes.KindBox, shapes.KindInvertedBox},
		{"pyramid", shapes.KindSquarePyramid, shapes.KindInvertedSquarePyramid},
		{"triangular_pyramid", shapes.KindTriangularPyramid, shapes.KindInvertedTriangularPyramid},
		{"wedge", shapes.KindWedge, shapes.KindInvertedWedge},
	} {
		env.AddFunction(f.name, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			pa := parseArgs(args)
			points, err := vec3s(pa.positional)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", f.name, err)
			}
			return fixedShape(f.name, f.kind, f.inverse, points, pa)
		})
	}

	// -----------------------------------------------------------------------
	// (box-bounds (vec3 0 0 0) (vec3 4 3 1) :inverted true)
	// -----------------------------------------------------------------------
	env.AddFunction("box_bounds", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 2 {
			return zygo.SexpNull, fmt.Errorf("box-bounds requires two corner points, got %d", len(pa.positional))
		}
		c, err := vec3s(pa.positional)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("box-bounds: %w", err)
		}
		corners := shapes.BoxCorners(c[0].Min(c[1]), c[0].Max(c[1]))
		return fixedShape("box-bounds", shapes.KindBox, shapes.KindInvertedBox, corners[:], pa)
	})

	// -----------------------------------------------------------------------
	// (cylinder :center (vec3 0 0 0) :height 2 :radius 1 :top-radius 0.5 :sides 12)
	// -----------------------------------------------------------------------
	env.AddFunction("cylinder", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		var center v3.Vec
		if v, ok := pa.kw["center"]; ok {
			c, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("cylinder: center: %w", err)
			}
			center = c
		}
		height, err := pa.float("height", 1)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cylinder: height: %w", err)
		}
		radius, err := pa.float("radius", 1)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cylinder: radius: %w", err)
		}
		top, err := pa.float("top-radius", radius)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cylinder: top-radius: %w", err)
		}
		sides := 8
		if v, ok := pa.kw["sides"]; ok {
			if sides, err = toInt(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("cylinder: sides: %w", err)
			}
		}
		surfaces, err := toSurfaces(pa, sides+2)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cylinder: surfaces: %w", err)
		}
		m := shapes.CreateCylinder(center, height, radius, top, sides, surfaces)
		if m == nil {
			return zygo.SexpNull, fmt.Errorf("cylinder: cannot build %d sides with height %g and radii %g/%g", sides, height, radius, top)
		}
		return &sexpShape{kind: "cylinder", meshes: []*brush.Mesh{m}}, nil
	})

	// -----------------------------------------------------------------------
	// (loft :bottom (list (vec3 ...) ...) :top (list (vec3 ...) ...))
	// -----------------------------------------------------------------------
	env.AddFunction("loft", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		bv, ok1 := pa.kw["bottom"]
		tv, ok2 := pa.kw["top"]
		if !ok1 || !ok2 {
			return zygo.SexpNull, fmt.Errorf("loft requires :bottom and :top rings")
		}
		bottom, err := toVec3List(bv)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("loft: bottom: %w", err)
		}
		top, err := toVec3List(tv)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("loft: top: %w", err)
		}
		if len(bottom) != len(top) {
			return zygo.SexpNull, fmt.Errorf("loft: rings differ in length (%d and %d)", len(bottom), len(top))
		}
		surfaces, err := toSurfaces(pa, len(bottom)+2)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("loft: surfaces: %w", err)
		}
		m := shapes.CreateLoft(bottom, top, surfaces)
		if m == nil {
			return zygo.SexpNull, fmt.Errorf("loft: rings do not form a valid brush")
		}
		return &sexpShape{kind: "loft", meshes: []*brush.Mesh{m}}, nil
	})

	// -----------------------------------------------------------------------
	// (extrude (list (vec2 0 0) (vec2 1 0) (vec2 0 1)) :z 0 :direction (vec3 0 0 2))
	// -----------------------------------------------------------------------
	env.AddFunction("extrude", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("extrude requires an outline")
		}
		outline, err := toVec2List(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("extrude: outline: %w", err)
		}
		z, dir, err := placement("extrude", pa)
		if err != nil {
			return zygo.SexpNull, err
		}
		surfaces, err := toSurfaces(pa, len(outline)+2)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("extrude: surfaces: %w", err)
		}
		m := shapes.CreateExtrudedPolygon(outline, z, dir, surfaces)
		if m == nil {
			return zygo.SexpNull, fmt.Errorf("extrude: outline of %d points does not form a valid brush", len(outline))
		}
		return &sexpShape{kind: "extrude", meshes: []*brush.Mesh{m}}, nil
	})

	// -----------------------------------------------------------------------
	// (point (vec2 1 0) :in (vec2 0 -0.5) :out (vec2 0 0.5) :straight true)
	// -----------------------------------------------------------------------
	env.AddFunction("point", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		var cp curve.ControlPoint
		switch len(pa.positional) {
		case 1:
			p, err := toVec2(pa.positional[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("point: %w", err)
			}
			cp.Position = p
		case 2:
			c, err := coords("point", pa.positional, 2)
			if err != nil {
				return zygo.SexpNull, err
			}
			cp.Position = v2.Vec{X: c[0], Y: c[1]}
		default:
			return zygo.SexpNull, fmt.Errorf("point requires a position")
		}
		if v, ok := pa.kw["in"]; ok {
			t, err := toVec2(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("point: in: %w", err)
			}
			cp.Tangent1 = t
		}
		if v, ok := pa.kw["out"]; ok {
			t, err := toVec2(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("point: out: %w", err)
			}
			cp.Tangent2 = t
		}
		for _, k := range []struct {
			kw     string
			target []*curve.Constraint
		}{
			{"straight", []*curve.Constraint{&cp.Constraint1, &cp.Constraint2}},
			{"straight-in", []*curve.Constraint{&cp.Constraint1}},
			{"straight-out", []*curve.Constraint{&cp.Constraint2}},
		} {
			on, err := pa.flag(k.kw)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("point: %s: %w", k.kw, err)
			}
			if on {
				for _, c := range k.target {
					*c = curve.Straight
				}
			}
		}
		return &sexpPoint{cp: cp}, nil
	})

	// -----------------------------------------------------------------------
	// (curve (point ...) (point ...) ... :open true)
	// -----------------------------------------------------------------------
	env.AddFunction("curve", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		c := &curve.Curve2D{Closed: true}
		for i, a := range pa.positional {
			p, ok := a.(*sexpPoint)
			if !ok {
				return zygo.SexpNull, fmt.Errorf("curve: entry %d: expected point, got %T (%s)", i, a, a.SexpString(nil))
			}
			c.ControlPoints = append(c.ControlPoints, p.cp)
		}
		if len(c.ControlPoints) < 2 {
			return zygo.SexpNull, fmt.Errorf("curve requires at least 2 points, got %d", len(c.ControlPoints))
		}
		open, err := pa.flag("open")
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("curve: open: %w", err)
		}
		c.Closed = !open
		return &sexpCurve{c: c}, nil
	})

	// -----------------------------------------------------------------------
	// (curve-brush c :z 0 :direction (vec3 0 0 3) :segments 8)
	// -----------------------------------------------------------------------
	env.AddFunction("curve_brush", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("curve-brush requires a curve")
		}
		c, err := toCurve(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("curve-brush: %w", err)
		}
		z, dir, err := placement("curve-brush", pa)
		if err != nil {
			return zygo.SexpNull, err
		}
		surfaces, err := toSurfaces(pa, len(c.ControlPoints)+2)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("curve-brush: surfaces: %w", err)
		}

		var outline []curve.SegmentVertex
		if v, ok := pa.kw["segments"]; ok {
			n, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("curve-brush: segments: %w", err)
			}
			outline = c.Vertices(n)
		} else if opts.Tolerance > 0 {
			outline = c.FlattenedPathVertices(opts.Tolerance)
		} else {
			outline = c.Vertices(opts.CurveSegments)
		}

		meshes, ok := shapes.CreateOutlineBrushes(outline, z, dir, surfaces)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("curve-brush: curve cannot be split into convex brushes")
		}
		return &sexpShape{kind: "curve-brush", meshes: meshes}, nil
	})

	// -----------------------------------------------------------------------
	// (translate shape (vec3 1 0 0))
	// -----------------------------------------------------------------------
	env.AddFunction("translate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("translate requires a shape and an offset")
		}
		sh, err := toShape(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("translate: %w", err)
		}
		offset, err := toVec3(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("translate: offset: %w", err)
		}
		out := sh.clone()
		for _, m := range out.meshes {
			m.Translate(offset)
		}
		return out, nil
	})

	// -----------------------------------------------------------------------
	// (split-non-planar shape)
	// -----------------------------------------------------------------------
	env.AddFunction("split_non_planar", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("split-non-planar requires a shape")
		}
		sh, err := toShape(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("split-non-planar: %w", err)
		}
		out := sh.clone()
		for _, m := range out.meshes {
			m.SplitNonPlanarPolygons(geom.DistanceEpsilon)
		}
		return out, nil
	})

	// -----------------------------------------------------------------------
	// (defbrush "name" shape :operation :subtractive)
	// -----------------------------------------------------------------------
	env.AddFunction("defbrush", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 2 {
			return zygo.SexpNull, fmt.Errorf("defbrush requires a name and a shape expression")
		}
		brushName, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defbrush: name: %w", err)
		}
		sh, err := toShape(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defbrush: %w", err)
		}
		op := design.Additive
		if v, ok := pa.kw["operation"]; ok {
			if op, err = toOperation(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("defbrush: operation: %w", err)
			}
		}

		refs := make([]zygo.Sexp, len(sh.meshes))
		for i, m := range sh.clone().meshes {
			n := brushName
			if len(sh.meshes) > 1 {
				n = fmt.Sprintf("%s/%d", brushName, i)
			}
			b := design.NewBrush(n, op, m)
			d.Add(b)
			refs[i] = &sexpBrushRef{id: b.ID, name: n}
			logger.Debug("brush defined",
				zap.String("name", n),
				zap.Stringer("operation", op),
				zap.String("shape", sh.kind))
		}
		if len(refs) == 1 {
			return refs[0], nil
		}
		return zygo.MakeList(refs), nil
	})

	// -----------------------------------------------------------------------
	// (brush "name")
	// -----------------------------------------------------------------------
	env.AddFunction("brush", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("brush requires a name argument")
		}
		brushName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("brush: name: %w", err)
		}
		b := d.Lookup(brushName)
		if b == nil {
			return zygo.SexpNull, fmt.Errorf("brush: no brush named %q", brushName)
		}
		return &sexpBrushRef{id: b.ID, name: brushName}, nil
	})
}

// coords reads exactly n numbers.
func coords(fn string, args []zygo.Sexp, n int) ([]float64, error) {
	if len(args) != n {
		return nil, fmt.Errorf("%s requires exactly %d arguments, got %d", fn, n, len(args))
	}
	out := make([]float64, n)
	for i, a := range args {
		f, err := toFloat64(a)
		if err != nil {
			return nil, fmt.Errorf("%s: %c: %w", fn, "xyz"[i], err)
		}
		out[i] = f
	}
	return out, nil
}

// placement reads :z and :direction for outline extrusions. The default
// extrudes one unit along +Z.
func placement(fn string, pa kwArgs) (float64, v3.Vec, error) {
	z, err := pa.float("z", 0)
	if err != nil {
		return 0, v3.Vec{}, fmt.Errorf("%s: z: %w", fn, err)
	}
	dir := v3.Vec{Z: 1}
	if v, ok := pa.kw["direction"]; ok {
		if dir, err = toVec3(v); err != nil {
			return 0, v3.Vec{}, fmt.Errorf("%s: direction: %w", fn, err)
		}
	}
	return z, dir, nil
}

// fixedShape builds a template shape, switching to the inverted template
// when :inverted is set.
func fixedShape(fn string, kind, inverse shapes.Kind, points []v3.Vec, pa kwArgs) (zygo.Sexp, error) {
	inverted, err := pa.flag("inverted")
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("%s: inverted: %w", fn, err)
	}
	if inverted {
		kind = inverse
	}
	t, _ := shapes.TemplateFor(kind)
	if len(points) != t.Vertices {
		return zygo.SexpNull, fmt.Errorf("%s requires %d points, got %d", fn, t.Vertices, len(points))
	}
	surfaces, err := toSurfaces(pa, shapes.RequiredSurfaces(kind))
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("%s: surfaces: %w", fn, err)
	}
	m := shapes.FromTemplate(kind, points, surfaces)
	if m == nil {
		return zygo.SexpNull, fmt.Errorf("%s: points do not form a valid %s", fn, kind)
	}
	return &sexpShape{kind: fn, meshes: []*brush.Mesh{m}}, nil
}
