package design

import (
	"fmt"

	"github.com/chazu/brushkit/pkg/brush"
	"github.com/chazu/brushkit/pkg/geom"
	"github.com/deadsy/sdfx/sdf"
)

// ValidationSeverity indicates whether a validation finding blocks
// tessellation or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks tessellation
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	BrushID  BrushID            // which brush has the problem (zero if design-level)
	Brush    string             // brush label for messages
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	if e.BrushID.IsZero() {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] brush %s: %s", e.Severity, e.Brush, e.Message)
}

// ValidationWarning describes a non-blocking advisory finding.
type ValidationWarning struct {
	BrushID BrushID
	Brush   string
	Message string
}

// ValidationResult bundles errors (blocking) and warnings (advisory)
// from all validation tiers.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// OK reports whether no blocking errors were found.
func (r ValidationResult) OK() bool { return len(r.Errors) == 0 }

func finding(b *Brush, sev ValidationSeverity, format string, args ...any) ValidationError {
	return ValidationError{
		BrushID:  b.ID,
		Brush:    b.Label(),
		Message:  fmt.Sprintf(format, args...),
		Severity: sev,
	}
}

// Validate runs the structural checks on the design and returns every
// finding. An empty slice means the design is structurally sound. This
// function is read-only and never mutates the design.
func Validate(d *Design) []ValidationError {
	if d == nil {
		return nil
	}
	var errs []ValidationError
	errs = append(errs, validateNames(d)...)
	errs = append(errs, validateIDs(d)...)
	errs = append(errs, validateMeshes(d)...)
	return errs
}

// ValidateAll runs all validation tiers (structural, geometric) and
// returns a ValidationResult with separated errors and warnings. Geometric
// checks skip brushes that failed structurally.
func ValidateAll(d *Design) ValidationResult {
	var result ValidationResult
	if d == nil {
		return result
	}

	tier1 := Validate(d)
	broken := make(map[BrushID]bool)
	for _, e := range tier1 {
		if e.Severity == SeverityWarning {
			result.Warnings = append(result.Warnings, ValidationWarning{
				BrushID: e.BrushID,
				Brush:   e.Brush,
				Message: e.Message,
			})
			continue
		}
		result.Errors = append(result.Errors, e)
		if !e.BrushID.IsZero() {
			broken[e.BrushID] = true
		}
	}

	tier2Errs, tier2Warnings := validateGeometry(d, broken)
	result.Errors = append(result.Errors, tier2Errs...)
	result.Warnings = append(result.Warnings, tier2Warnings...)
	return result
}

// ---------------------------------------------------------------------------
// Tier 1: structural validation
// ---------------------------------------------------------------------------

// validateNames checks the name index and rejects duplicate names.
func validateNames(d *Design) []ValidationError {
	var errs []ValidationError

	for name, i := range d.NameIndex {
		if i < 0 || i >= len(d.Brushes) {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("name index entry %q references missing brush %d", name, i),
				Severity: SeverityError,
			})
			continue
		}
		if d.Brushes[i].Name != name {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("name index entry %q points at brush %q", name, d.Brushes[i].Name),
				Severity: SeverityError,
			})
		}
	}

	seen := make(map[string]int)
	for _, b := range d.Brushes {
		if b.Name == "" {
			continue
		}
		seen[b.Name]++
		if seen[b.Name] == 2 {
			errs = append(errs, finding(b, SeverityError, "duplicate name %q", b.Name))
		}
	}
	return errs
}

// validateIDs warns about brushes that are exact copies of each other.
func validateIDs(d *Design) []ValidationError {
	var errs []ValidationError
	seen := make(map[BrushID]bool)
	for _, b := range d.Brushes {
		if b.ID.IsZero() {
			errs = append(errs, finding(b, SeverityError, "brush has no ID"))
			continue
		}
		if seen[b.ID] {
			errs = append(errs, finding(b, SeverityWarning, "identical to an earlier brush"))
		}
		seen[b.ID] = true
	}
	return errs
}

// validateMeshes reports missing, empty and structurally invalid meshes.
func validateMeshes(d *Design) []ValidationError {
	var errs []ValidationError
	for _, b := range d.Brushes {
		switch {
		case b.Mesh == nil:
			errs = append(errs, finding(b, SeverityError, "brush has no mesh"))
		case b.Mesh.IsEmpty() || len(b.Mesh.Polygons) == 0:
			errs = append(errs, finding(b, SeverityError, "brush mesh is empty"))
		default:
			for _, p := range b.Mesh.Problems() {
				errs = append(errs, finding(b, SeverityError, "%v", p))
			}
		}
	}
	return errs
}

// ---------------------------------------------------------------------------
// Tier 2: geometric validation (errors and warnings)
// ---------------------------------------------------------------------------

// validateGeometry runs all geometric checks on brushes that passed the
// structural tier.
func validateGeometry(d *Design, broken map[BrushID]bool) ([]ValidationError, []ValidationWarning) {
	var errs []ValidationError
	var warnings []ValidationWarning

	for i, b := range d.Brushes {
		if b.Mesh == nil || broken[b.ID] {
			continue
		}
		if !b.Mesh.IsConvex(geom.DistanceEpsilon) {
			errs = append(errs, finding(b, SeverityError, "brush is not convex"))
		}
		if n := softEdges(b.Mesh); n > 0 {
			warnings = append(warnings, warning(b, "%d non-planar polygon(s) need %d soft edge(s)", nonPlanar(b.Mesh), n))
		}
		if b.Operation != Additive && !overlapsEarlier(d, i, broken) {
			warnings = append(warnings, warning(b, "%s brush touches no earlier brush and has no effect", b.Operation))
		}
	}
	return errs, warnings
}

func warning(b *Brush, format string, args ...any) ValidationWarning {
	return ValidationWarning{BrushID: b.ID, Brush: b.Label(), Message: fmt.Sprintf(format, args...)}
}

// nonPlanar counts polygons that deviate from their plane.
func nonPlanar(m *brush.Mesh) int {
	n := 0
	for p := range m.Polygons {
		if m.PolygonDeviation(p) > geom.DistanceEpsilon {
			n++
		}
	}
	return n
}

// softEdges returns how many hidden edges the optimized brush adds.
func softEdges(m *brush.Mesh) int {
	if nonPlanar(m) == 0 {
		return 0
	}
	return brush.SoftEdgeCount(m, m.Optimized(geom.DistanceEpsilon))
}

func overlapsEarlier(d *Design, i int, broken map[BrushID]bool) bool {
	bb := d.Brushes[i].Mesh.Bounds
	for _, other := range d.Brushes[:i] {
		if other.Mesh == nil || broken[other.ID] {
			continue
		}
		if boxesOverlap(bb, other.Mesh.Bounds) {
			return true
		}
	}
	return false
}

// boxesOverlap reports whether a and b share interior volume.
func boxesOverlap(a, b sdf.Box3) bool {
	return a.Min.X < b.Max.X && b.Min.X < a.Max.X &&
		a.Min.Y < b.Max.Y && b.Min.Y < a.Max.Y &&
		a.Min.Z < b.Max.Z && b.Min.Z < a.Max.Z
}
