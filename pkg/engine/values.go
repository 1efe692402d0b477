package engine

import (
	"fmt"
	"strings"

	"github.com/chazu/brushkit/pkg/brush"
	"github.com/chazu/brushkit/pkg/curve"
	"github.com/chazu/brushkit/pkg/design"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

type sexpVec2 struct {
	vec v2.Vec
}

func (v *sexpVec2) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec2 %g %g)", v.vec.X, v.vec.Y)
}
func (v *sexpVec2) Type() *zygo.RegisteredType { return nil }

type sexpVec3 struct {
	vec v3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpSurfaces wraps an ordered surface list as accepted by :surfaces.
type sexpSurfaces struct {
	list []brush.Surface
}

func (s *sexpSurfaces) SexpString(ps *zygo.PrintState) string {
	if len(s.list) == 1 {
		return fmt.Sprintf("(surface :id %d)", s.list[0].ID)
	}
	return fmt.Sprintf("(surfaces %d)", len(s.list))
}
func (s *sexpSurfaces) Type() *zygo.RegisteredType { return nil }

// sexpShape wraps one or more built brush meshes that have not yet been
// added to the design. Curve brushes produce several.
type sexpShape struct {
	kind   string
	meshes []*brush.Mesh
}

func (s *sexpShape) SexpString(ps *zygo.PrintState) string {
	if len(s.meshes) == 1 {
		return fmt.Sprintf("(%s)", s.kind)
	}
	return fmt.Sprintf("(%s x%d)", s.kind, len(s.meshes))
}
func (s *sexpShape) Type() *zygo.RegisteredType { return nil }

func (s *sexpShape) clone() *sexpShape {
	out := &sexpShape{kind: s.kind, meshes: make([]*brush.Mesh, len(s.meshes))}
	for i, m := range s.meshes {
		out.meshes[i] = m.Clone()
	}
	return out
}

type sexpPoint struct {
	cp curve.ControlPoint
}

func (p *sexpPoint) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(point %g %g)", p.cp.Position.X, p.cp.Position.Y)
}
func (p *sexpPoint) Type() *zygo.RegisteredType { return nil }

type sexpCurve struct {
	c *curve.Curve2D
}

func (c *sexpCurve) SexpString(ps *zygo.PrintState) string {
	kind := "closed"
	if !c.c.Closed {
		kind = "open"
	}
	return fmt.Sprintf("(curve %s %d)", kind, len(c.c.ControlPoints))
}
func (c *sexpCurve) Type() *zygo.RegisteredType { return nil }

// sexpBrushRef wraps a design.BrushID so it can be passed between builtins.
type sexpBrushRef struct {
	id   design.BrushID
	name string // human-readable name for error messages
}

func (b *sexpBrushRef) SexpString(ps *zygo.PrintState) string {
	if b.name != "" {
		return fmt.Sprintf("(brush %q)", b.name)
	}
	return fmt.Sprintf("(brush %s)", b.id.Short())
}
func (b *sexpBrushRef) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value: treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// flag reports whether a boolean keyword is set. A bare keyword counts as
// true.
func (a kwArgs) flag(name string) (bool, error) {
	v, ok := a.kw[name]
	if !ok {
		return false, nil
	}
	if v == zygo.SexpNull {
		return true, nil
	}
	return toBool(v)
}

// float returns a numeric keyword or def when it is absent.
func (a kwArgs) float(name string, def float64) (float64, error) {
	v, ok := a.kw[name]
	if !ok {
		return def, nil
	}
	return toFloat64(v)
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

func toBool(s zygo.Sexp) (bool, error) {
	if v, ok := s.(*zygo.SexpBool); ok {
		return v.Val, nil
	}
	return false, fmt.Errorf("expected boolean, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_additive) and plain strings.
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

// toOperation converts :additive, :subtractive or :intersect.
func toOperation(s zygo.Sexp) (design.Operation, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return 0, err
	}
	return design.ParseOperation(name)
}

func toVec2(s zygo.Sexp) (v2.Vec, error) {
	if v, ok := s.(*sexpVec2); ok {
		return v.vec, nil
	}
	return v2.Vec{}, fmt.Errorf("expected vec2, got %T (%s)", s, s.SexpString(nil))
}

// toVec3 extracts a v3.Vec from a sexpVec3.
func toVec3(s zygo.Sexp) (v3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return v3.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

func toShape(s zygo.Sexp) (*sexpShape, error) {
	if sh, ok := s.(*sexpShape); ok {
		return sh, nil
	}
	return nil, fmt.Errorf("expected shape, got %T (%s)", s, s.SexpString(nil))
}

func toCurve(s zygo.Sexp) (*curve.Curve2D, error) {
	if c, ok := s.(*sexpCurve); ok {
		return c.c, nil
	}
	return nil, fmt.Errorf("expected curve, got %T (%s)", s, s.SexpString(nil))
}

// toVec2List accepts a list or array of vec2 values.
func toVec2List(s zygo.Sexp) ([]v2.Vec, error) {
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, err
	}
	out := make([]v2.Vec, len(items))
	for i, item := range items {
		if out[i], err = toVec2(item); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
	}
	return out, nil
}

// toVec3List accepts a list or array of vec3 values.
func toVec3List(s zygo.Sexp) ([]v3.Vec, error) {
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, err
	}
	return vec3s(items)
}

func vec3s(items []zygo.Sexp) ([]v3.Vec, error) {
	out := make([]v3.Vec, len(items))
	for i, item := range items {
		v, err := toVec3(item)
		if err != nil {
			return nil, fmt.Errorf("point %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// toSurfaces reads :surfaces as either a (surfaces n) value or a list of
// (surface ...) entries. When the keyword is absent, n numbered surfaces are
// generated.
func toSurfaces(a kwArgs, n int) ([]brush.Surface, error) {
	v, ok := a.kw["surfaces"]
	if !ok {
		return numberedSurfaces(n, ""), nil
	}
	if s, ok := v.(*sexpSurfaces); ok {
		return s.list, nil
	}
	items, err := sexpListToSlice(v)
	if err != nil {
		return nil, err
	}
	out := make([]brush.Surface, len(items))
	for i, item := range items {
		s, ok := item.(*sexpSurfaces)
		if !ok || len(s.list) != 1 {
			return nil, fmt.Errorf("entry %d: expected surface, got %T", i, item)
		}
		out[i] = s.list[0]
	}
	return out, nil
}

// numberedSurfaces returns n surfaces with IDs 1..n.
func numberedSurfaces(n int, material string) []brush.Surface {
	out := make([]brush.Surface, n)
	for i := range out {
		out[i] = brush.Surface{ID: i + 1, Material: material}
	}
	return out
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}
