// Package engine provides the Lisp evaluation engine for brushkit.
// It wraps zygomys in a sandboxed environment and produces a Design
// from user source code.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chazu/brushkit/internal/logger"
	"github.com/chazu/brushkit/pkg/design"
	zygo "github.com/glycerine/zygomys/zygo"
	"go.uber.org/zap"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// EvalWarning represents a non-fatal warning produced after evaluation.
type EvalWarning struct {
	Line    int
	Col     int
	Message string
	BrushID design.BrushID
}

// EvalResult bundles the full output of an evaluation for use by front ends.
type EvalResult struct {
	Design   *design.Design
	Errors   []EvalError
	Warnings []EvalWarning
}

// Options tune evaluation.
type Options struct {
	// Timeout is the hard limit for a single evaluation.
	Timeout time.Duration
	// CurveSegments is the default number of points per curved segment for
	// curve-brush.
	CurveSegments int
	// Tolerance switches curve-brush to adaptive flattening when positive.
	Tolerance float64
}

// DefaultOptions returns the settings used by NewEngine.
func DefaultOptions() Options {
	return Options{
		Timeout:       EvalTimeout,
		CurveSegments: DefaultCurveSegments,
	}
}

// DefaultCurveSegments is used when a script does not pass :segments.
const DefaultCurveSegments = 8

// Engine wraps the zygomys interpreter for brushkit evaluation.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment for determinism.
type Engine struct {
	mu         sync.Mutex
	generation uint64
	opts       Options
}

// NewEngine creates a new Engine instance with DefaultOptions.
func NewEngine() *Engine {
	return NewEngineWithOptions(DefaultOptions())
}

// NewEngineWithOptions creates an Engine; zero fields take their defaults.
func NewEngineWithOptions(opts Options) *Engine {
	if opts.Timeout <= 0 {
		opts.Timeout = EvalTimeout
	}
	if opts.CurveSegments < 0 {
		opts.CurveSegments = DefaultCurveSegments
	}
	return &Engine{opts: opts}
}

// Options returns the engine settings.
func (e *Engine) Options() Options {
	return e.opts
}

// Evaluate takes Lisp source code and produces a new Design.
// Each call creates a fresh zygomys sandbox for deterministic evaluation.
//
// Return semantics:
//   - On success: returns design + nil errors + nil error
//   - On parse/eval failure: returns nil design + eval errors + nil error
//   - On fatal failure (timeout, panic): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*design.Design, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		d, evalErrs, err := e.evaluate(source)
		ch <- evalResult{design: d, errors: evalErrs, err: err}
	}()

	return waitWithTimeout(ch, gen, e.opts.Timeout, &e.mu, &e.generation)
}

// Run evaluates source and validates the resulting design. Validation
// errors are reported as eval errors and drop the design; validation
// warnings are passed through.
func (e *Engine) Run(source string) (EvalResult, error) {
	d, evalErrs, err := e.Evaluate(source)
	if err != nil {
		return EvalResult{}, err
	}
	if len(evalErrs) > 0 {
		return EvalResult{Errors: evalErrs}, nil
	}

	res := design.ValidateAll(d)
	out := EvalResult{Design: d}
	for _, w := range res.Warnings {
		out.Warnings = append(out.Warnings, EvalWarning{
			Message: fmt.Sprintf("brush %s: %s", w.Brush, w.Message),
			BrushID: w.BrushID,
		})
	}
	if !res.OK() {
		for _, ve := range res.Errors {
			out.Errors = append(out.Errors, EvalError{Message: ve.Error()})
		}
		out.Design = nil
	}
	return out, nil
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) (*design.Design, []EvalError, error) {
	// Empty source is a valid program that produces an empty design.
	if strings.TrimSpace(source) == "" {
		return design.New(), nil, nil
	}

	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	d := design.New()
	registerBuiltins(env, d, e.opts)

	err := env.LoadString(preprocessSource(source))
	if err != nil {
		evalErrs := parseZygomysError(err)
		logger.Debug("script failed to parse", zap.Error(err))
		return nil, evalErrs, nil
	}

	_, err = env.Run()
	if err != nil {
		evalErrs := parseZygomysError(err)
		logger.Debug("script failed", zap.Error(err))
		return nil, evalErrs, nil
	}

	logger.Debug("script evaluated", zap.Int("brushes", d.Len()))
	return d, nil, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
// It attempts to extract line number information from the error message.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	// zygomys formats parse errors as "Error on line N: <details>\n"
	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{
				Line:    line,
				Message: strings.TrimSpace(m[2]),
			}}
		}
	}

	// Fallback: no line info available.
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
