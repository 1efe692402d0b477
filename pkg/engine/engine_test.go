package engine

import (
	"strings"
	"sync"
	"testing"
	"time"
)

func TestEvaluateEmptyString(t *testing.T) {
	eng := NewEngine()

	d, evalErrs, err := eng.Evaluate("")
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
	if d == nil {
		t.Fatal("expected non-nil design for empty source")
	}
	if d.Len() != 0 {
		t.Errorf("expected empty design, got %d brushes", d.Len())
	}
}

func TestEvaluateWhitespaceOnly(t *testing.T) {
	eng := NewEngine()

	d, evalErrs, err := eng.Evaluate("   \n\t  \n  ")
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
	if d == nil || d.Len() != 0 {
		t.Fatalf("expected empty design, got %v", d)
	}
}

func TestEvaluateMultipleExpressions(t *testing.T) {
	eng := NewEngine()

	source := `
(def x 10)
(def y 20)
(+ x y)
`
	d, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
	if d == nil {
		t.Fatal("expected non-nil design")
	}
	if d.Len() != 0 {
		t.Errorf("expected no brushes, got %d", d.Len())
	}
}

func TestEvaluateSyntaxError(t *testing.T) {
	eng := NewEngine()

	// Unmatched paren is a parse error.
	d, evalErrs, err := eng.Evaluate("(+ 1 2")
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if d != nil {
		t.Fatal("expected nil design on syntax error")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected at least one eval error for syntax error")
	}
	if evalErrs[0].Message == "" {
		t.Error("eval error message should not be empty")
	}
}

func TestEvaluateUndefinedSymbol(t *testing.T) {
	eng := NewEngine()

	d, evalErrs, err := eng.Evaluate("(+ 1 undefined-symbol)")
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if d != nil {
		t.Fatal("expected nil design on eval error")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected at least one eval error for undefined symbol")
	}
}

func TestEvaluateSyntaxErrorHasLineInfo(t *testing.T) {
	eng := NewEngine()

	// Put the error on line 2.
	source := "(+ 1 2)\n(+ 3"
	d, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if d != nil {
		t.Fatal("expected nil design on syntax error")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected at least one eval error")
	}

	// Line info depends on the zygomys error format; only the message is
	// guaranteed.
	e := evalErrs[0]
	if e.Message == "" {
		t.Error("eval error message should not be empty")
	}
	if e.Line > 0 {
		t.Logf("extracted line info: line=%d, message=%q", e.Line, e.Message)
	}
}

func TestEvalErrorImplementsError(t *testing.T) {
	var err error = EvalError{Line: 5, Message: "something went wrong"}
	s := err.Error()
	if !strings.Contains(s, "line 5") {
		t.Errorf("Error() should contain line info, got: %s", s)
	}
	if !strings.Contains(s, "something went wrong") {
		t.Errorf("Error() should contain message, got: %s", s)
	}

	e2 := EvalError{Message: "no location"}
	if s2 := e2.Error(); strings.Contains(s2, "line") {
		t.Errorf("Error() with no line should not contain 'line', got: %s", s2)
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	eng := NewEngine()
	source := `(defbrush "block" (box-bounds (vec3 0 0 0) (vec3 1 2 3)))`

	var first string
	for i := 0; i < 5; i++ {
		d, evalErrs, err := eng.Evaluate(source)
		if err != nil {
			t.Fatalf("iteration %d: unexpected fatal error: %v", i, err)
		}
		if len(evalErrs) > 0 {
			t.Fatalf("iteration %d: unexpected eval errors: %v", i, evalErrs)
		}
		if d.Len() != 1 {
			t.Fatalf("iteration %d: expected 1 brush, got %d", i, d.Len())
		}
		id := d.Brushes[0].ID.String()
		if i == 0 {
			first = id
		} else if id != first {
			t.Errorf("iteration %d: brush ID = %s, want %s", i, id, first)
		}
	}
}

func TestEngineOptionsDefaults(t *testing.T) {
	eng := NewEngineWithOptions(Options{CurveSegments: -1})
	opts := eng.Options()
	if opts.Timeout != EvalTimeout {
		t.Errorf("Timeout = %s, want %s", opts.Timeout, EvalTimeout)
	}
	if opts.CurveSegments != DefaultCurveSegments {
		t.Errorf("CurveSegments = %d, want %d", opts.CurveSegments, DefaultCurveSegments)
	}

	custom := NewEngineWithOptions(Options{Timeout: time.Second, CurveSegments: 3, Tolerance: 0.1}).Options()
	if custom.Timeout != time.Second || custom.CurveSegments != 3 || custom.Tolerance != 0.1 {
		t.Errorf("Options() = %+v, want the values passed in", custom)
	}
}

func TestEvaluateTimeout(t *testing.T) {
	// A channel that never sends stands in for a runaway script.
	var mu sync.Mutex
	var gen uint64 = 1
	ch := make(chan evalResult)

	start := time.Now()
	_, _, err := waitWithTimeout(ch, 1, 50*time.Millisecond, &mu, &gen)
	if err == nil {
		t.Fatal("expected timeout error, got nil")
	}
	if !strings.Contains(err.Error(), "timed out after 50ms") {
		t.Errorf("expected timeout error message, got: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("timeout took %s", elapsed)
	}
}

func TestEvaluateGenerationDiscardsStale(t *testing.T) {
	var mu sync.Mutex
	gen := uint64(2) // Current generation is 2

	ch := make(chan evalResult, 1)
	ch <- evalResult{}

	// Pass generation 1 (stale).
	_, _, err := waitWithTimeout(ch, 1, EvalTimeout, &mu, &gen)
	if err == nil {
		t.Fatal("expected error for stale generation")
	}
	if !strings.Contains(err.Error(), "superseded") {
		t.Errorf("expected superseded error, got: %v", err)
	}
}

func TestParseZygomysError(t *testing.T) {
	tests := []struct {
		name     string
		msg      string
		wantLine int
		wantMsg  string
	}{
		{
			name:     "error on line format",
			msg:      "Error on line 5: unexpected token\n",
			wantLine: 5,
			wantMsg:  "unexpected token",
		},
		{
			name:     "no line info",
			msg:      "some generic error",
			wantLine: 0,
			wantMsg:  "some generic error",
		},
		{
			name:     "line format lowercase",
			msg:      "error on line 12: missing paren",
			wantLine: 12,
			wantMsg:  "missing paren",
		},
		{
			name:     "short line format",
			msg:      "line 3: bad vec3",
			wantLine: 3,
			wantMsg:  "bad vec3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := parseZygomysError(errString(tt.msg))
			if len(errs) == 0 {
				t.Fatal("expected at least one error")
			}
			e := errs[0]
			if e.Line != tt.wantLine {
				t.Errorf("line = %d, want %d", e.Line, tt.wantLine)
			}
			if !strings.Contains(e.Message, tt.wantMsg) {
				t.Errorf("message = %q, want containing %q", e.Message, tt.wantMsg)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Run (evaluate + validate)
// ---------------------------------------------------------------------------

func TestRunValidDesign(t *testing.T) {
	res, err := NewEngine().Run(`
(defbrush "room" (box-bounds (vec3 0 0 0) (vec3 4 3 4)))
(defbrush "door" (box-bounds (vec3 1 0 -1) (vec3 2 2 1)) :operation :subtractive)
`)
	if err != nil {
		t.Fatalf("Run() fatal error: %v", err)
	}
	if len(res.Errors) > 0 {
		t.Fatalf("Run() errors = %v", res.Errors)
	}
	if res.Design == nil || res.Design.Len() != 2 {
		t.Fatalf("expected design with 2 brushes, got %v", res.Design)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("expected no warnings, got %v", res.Warnings)
	}
}

func TestRunUselessSubtractionWarns(t *testing.T) {
	res, err := NewEngine().Run(`
(defbrush "room" (box-bounds (vec3 0 0 0) (vec3 1 1 1)))
(defbrush "hole" (box-bounds (vec3 5 5 5) (vec3 6 6 6)) :operation :subtractive)
`)
	if err != nil {
		t.Fatalf("Run() fatal error: %v", err)
	}
	if res.Design == nil {
		t.Fatalf("warnings must not drop the design, errors: %v", res.Errors)
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %v", res.Warnings)
	}
	w := res.Warnings[0]
	if w.BrushID != res.Design.Brushes[1].ID {
		t.Errorf("warning BrushID = %s, want the hole brush", w.BrushID.Short())
	}
	if !strings.Contains(w.Message, "hole") {
		t.Errorf("warning message %q should name the brush", w.Message)
	}
}

func TestRunDuplicateNameIsError(t *testing.T) {
	res, err := NewEngine().Run(`
(defbrush "a" (box-bounds (vec3 0 0 0) (vec3 1 1 1)))
(defbrush "a" (box-bounds (vec3 2 0 0) (vec3 3 1 1)))
`)
	if err != nil {
		t.Fatalf("Run() fatal error: %v", err)
	}
	if res.Design != nil {
		t.Error("expected design to be dropped on validation errors")
	}
	if len(res.Errors) == 0 {
		t.Fatal("expected a validation error for the duplicate name")
	}
}

func TestRunEvalErrorShortCircuits(t *testing.T) {
	res, err := NewEngine().Run(`(defbrush "a" 42)`)
	if err != nil {
		t.Fatalf("Run() fatal error: %v", err)
	}
	if res.Design != nil || len(res.Errors) == 0 {
		t.Errorf("Run() = %+v, want eval errors and no design", res)
	}
}

// errString is a simple error type for testing.
type errString string

func (e errString) Error() string { return string(e) }
