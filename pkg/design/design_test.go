package design

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/chazu/brushkit/pkg/brush"
	"github.com/chazu/brushkit/pkg/shapes"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

func surfaces(n int) []brush.Surface {
	out := make([]brush.Surface, n)
	for i := range out {
		out[i] = brush.Surface{ID: i + 1}
	}
	return out
}

func box(lo, hi v3.Vec) *brush.Mesh {
	return shapes.CreateBoxFromBounds(lo, hi, surfaces(6))
}

func unitBox() *brush.Mesh {
	return box(v3.Vec{}, v3.Vec{X: 1, Y: 1, Z: 1})
}

// ---------------------------------------------------------------------------
// IDs and operations
// ---------------------------------------------------------------------------

func TestNewBrushIDDeterministic(t *testing.T) {
	a := NewBrushID("wall", Additive, unitBox())
	b := NewBrushID("wall", Additive, unitBox())
	if a != b {
		t.Errorf("NewBrushID() differs for equal input: %s vs %s", a.Short(), b.Short())
	}
	if len(a) != 64 {
		t.Errorf("len(NewBrushID()) = %d, want 64", len(a))
	}
	if a.Short() != string(a[:8]) {
		t.Errorf("Short() = %q", a.Short())
	}
}

func TestNewBrushIDDistinguishes(t *testing.T) {
	base := NewBrushID("wall", Additive, unitBox())
	tests := []struct {
		name string
		id   BrushID
	}{
		{"name", NewBrushID("door", Additive, unitBox())},
		{"operation", NewBrushID("wall", Subtractive, unitBox())},
		{"geometry", NewBrushID("wall", Additive, box(v3.Vec{}, v3.Vec{X: 2, Y: 1, Z: 1}))},
		{"nil mesh", NewBrushID("wall", Additive, nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.id == base {
				t.Error("IDs should differ")
			}
		})
	}
}

func TestParseOperation(t *testing.T) {
	tests := []struct {
		in      string
		want    Operation
		wantErr bool
	}{
		{"additive", Additive, false},
		{"add", Additive, false},
		{"subtractive", Subtractive, false},
		{"intersect", Intersect, false},
		{"union", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseOperation(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseOperation(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseOperation(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
	if got := Operation(9).String(); got != "Operation(9)" {
		t.Errorf("String() = %q", got)
	}
}

func TestOperationJSON(t *testing.T) {
	b, err := json.Marshal(struct{ Op Operation }{Subtractive})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(b) != `{"Op":"subtractive"}` {
		t.Errorf("Marshal() = %s", b)
	}
	var out struct{ Op Operation }
	if err := json.Unmarshal([]byte(`{"Op":"intersect"}`), &out); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if out.Op != Intersect {
		t.Errorf("Unmarshal() = %v, want intersect", out.Op)
	}
}

// ---------------------------------------------------------------------------
// Design
// ---------------------------------------------------------------------------

func TestDesignAddLookup(t *testing.T) {
	d := New()
	wall := NewBrush("wall", Additive, unitBox())
	hole := NewBrush("hole", Subtractive, unitBox())
	anon := NewBrush("", Additive, box(v3.Vec{X: 5}, v3.Vec{X: 6, Y: 1, Z: 1}))
	d.Add(wall)
	d.Add(hole)
	d.Add(anon)

	if d.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", d.Len())
	}
	if got := d.Lookup("hole"); got != hole {
		t.Errorf("Lookup(hole) = %v", got)
	}
	if got := d.Lookup("missing"); got != nil {
		t.Errorf("Lookup(missing) = %v, want nil", got)
	}
	if got := d.Get(anon.ID); got != anon {
		t.Errorf("Get() = %v", got)
	}
	if got := anon.Label(); got != anon.ID.Short() {
		t.Errorf("Label() = %q, want short ID", got)
	}
	if got := d.ByOperation(Additive); len(got) != 2 || got[0] != wall || got[1] != anon {
		t.Errorf("ByOperation(additive) = %v", got)
	}
}

func TestDesignAddKeepsFirstName(t *testing.T) {
	d := New()
	first := NewBrush("a", Additive, unitBox())
	d.Add(first)
	d.Add(NewBrush("a", Subtractive, unitBox()))
	if d.Lookup("a") != first {
		t.Error("Lookup() should return the first brush with a name")
	}
}

// ---------------------------------------------------------------------------
// Validation
// ---------------------------------------------------------------------------

func messages(errs []ValidationError) string {
	var parts []string
	for _, e := range errs {
		parts = append(parts, e.Error())
	}
	return strings.Join(parts, "; ")
}

func TestValidateClean(t *testing.T) {
	d := New()
	d.Add(NewBrush("wall", Additive, box(v3.Vec{}, v3.Vec{X: 4, Y: 3, Z: 1})))
	d.Add(NewBrush("door", Subtractive, box(v3.Vec{X: 1}, v3.Vec{X: 2, Y: 2, Z: 1})))

	if errs := Validate(d); len(errs) != 0 {
		t.Errorf("Validate() = %s", messages(errs))
	}
	res := ValidateAll(d)
	if !res.OK() || len(res.Warnings) != 0 {
		t.Errorf("ValidateAll() = %+v", res)
	}
}

func TestValidateStructural(t *testing.T) {
	tests := []struct {
		name  string
		build func(d *Design)
		want  string
	}{
		{
			"duplicate name",
			func(d *Design) {
				d.Add(NewBrush("a", Additive, unitBox()))
				d.Add(NewBrush("a", Additive, box(v3.Vec{}, v3.Vec{X: 2, Y: 2, Z: 2})))
			},
			`duplicate name "a"`,
		},
		{
			"nil mesh",
			func(d *Design) { d.Add(NewBrush("a", Additive, nil)) },
			"no mesh",
		},
		{
			"empty mesh",
			func(d *Design) { d.Add(NewBrush("a", Additive, brush.New())) },
			"empty",
		},
		{
			"broken twin",
			func(d *Design) {
				m := unitBox()
				m.HalfEdges[0].TwinIndex = 0
				d.Add(NewBrush("a", Additive, m))
			},
			"twin",
		},
		{
			"dangling name index",
			func(d *Design) { d.NameIndex["ghost"] = 4 },
			`"ghost"`,
		},
		{
			"missing ID",
			func(d *Design) { d.Add(&Brush{Name: "a", Mesh: unitBox()}) },
			"no ID",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New()
			tt.build(d)
			errs := Validate(d)
			if len(errs) == 0 {
				t.Fatal("Validate() found nothing")
			}
			if got := messages(errs); !strings.Contains(got, tt.want) {
				t.Errorf("Validate() = %s, want mention of %s", got, tt.want)
			}
			for _, e := range errs {
				if e.Severity != SeverityError {
					t.Errorf("finding %v should be an error", e)
				}
			}
		})
	}
}

func TestValidateDuplicateBrushWarns(t *testing.T) {
	d := New()
	d.Add(NewBrush("", Additive, unitBox()))
	d.Add(NewBrush("", Additive, unitBox()))
	res := ValidateAll(d)
	if !res.OK() {
		t.Errorf("errors = %v", res.Errors)
	}
	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0].Message, "identical") {
		t.Errorf("warnings = %+v", res.Warnings)
	}
}

func TestValidateAllNonConvex(t *testing.T) {
	// Pull a vertex of the top face inwards to dent it.
	m := unitBox()
	for v, p := range m.Vertices {
		if p == (v3.Vec{X: 1, Y: 1, Z: 1}) {
			m.Vertices[v] = v3.Vec{X: 0.6, Y: 0.6, Z: 0.6}
		}
	}
	m.CalculatePlanes()
	m.CalculateBounds()

	d := New()
	d.Add(NewBrush("dent", Additive, m))
	res := ValidateAll(d)
	found := false
	for _, e := range res.Errors {
		if strings.Contains(e.Message, "not convex") {
			found = true
		}
	}
	if !found {
		t.Errorf("errors = %v, want a convexity error", res.Errors)
	}
	found = false
	for _, w := range res.Warnings {
		if strings.Contains(w.Message, "soft edge") {
			found = true
		}
	}
	if !found {
		t.Errorf("warnings = %+v, want a soft edge warning", res.Warnings)
	}
}

func TestValidateAllSkipsBrokenGeometry(t *testing.T) {
	d := New()
	d.Add(NewBrush("a", Additive, brush.New()))
	res := ValidateAll(d)
	if len(res.Errors) != 1 {
		t.Errorf("errors = %v, want only the empty mesh error", res.Errors)
	}
}

func TestValidateAllUselessSubtraction(t *testing.T) {
	tests := []struct {
		name string
		lo   v3.Vec
		warn bool
	}{
		{"overlapping", v3.Vec{X: 0.5}, false},
		{"touching only", v3.Vec{X: 1}, true},
		{"far away", v3.Vec{X: 10}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New()
			d.Add(NewBrush("base", Additive, unitBox()))
			d.Add(NewBrush("cut", Subtractive, box(tt.lo, tt.lo.Add(v3.Vec{X: 1, Y: 1, Z: 1}))))
			res := ValidateAll(d)
			if got := len(res.Warnings) > 0; got != tt.warn {
				t.Errorf("warned = %v, want %v (%+v)", got, tt.warn, res.Warnings)
			}
		})
	}
}

func TestValidateAllLeadingIntersect(t *testing.T) {
	d := New()
	d.Add(NewBrush("clip", Intersect, unitBox()))
	res := ValidateAll(d)
	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0].Message, "intersect") {
		t.Errorf("warnings = %+v", res.Warnings)
	}
}

func TestValidationErrorString(t *testing.T) {
	e := ValidationError{Message: "bad", Severity: SeverityError}
	if got := e.Error(); got != "[error] bad" {
		t.Errorf("Error() = %q", got)
	}
	e = ValidationError{BrushID: "abcdef0123", Brush: "wall", Message: "bad", Severity: SeverityWarning}
	if got := e.Error(); got != "[warning] brush wall: bad" {
		t.Errorf("Error() = %q", got)
	}
}

func TestValidateNil(t *testing.T) {
	if errs := Validate(nil); errs != nil {
		t.Errorf("Validate(nil) = %v", errs)
	}
	if res := ValidateAll(nil); !res.OK() {
		t.Errorf("ValidateAll(nil) = %+v", res)
	}
}
