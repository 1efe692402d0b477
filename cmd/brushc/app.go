package main

import (
	"github.com/chazu/brushkit/internal/config"
	"github.com/chazu/brushkit/internal/logger"
	"github.com/chazu/brushkit/pkg/engine"
	"github.com/chazu/brushkit/pkg/kernel"
	"github.com/chazu/brushkit/pkg/kernel/exact"
	"github.com/chazu/brushkit/pkg/kernel/sdfx"
	"github.com/chazu/brushkit/pkg/tessellate"
	"go.uber.org/zap"
)

// colorPalette is a default palette used to assign distinct colors to brushes.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// subtractiveColor marks brushes that carve space rather than fill it.
const subtractiveColor = "#C0392B"

// App runs the script-to-mesh pipeline for the command line.
type App struct {
	engine *engine.Engine
	kernel kernel.Kernel
}

// MeshData is the JSON-serializable mesh format written to stdout.
type MeshData struct {
	Vertices  []float32 `json:"vertices"`
	Normals   []float32 `json:"normals"`
	Indices   []uint32  `json:"indices"`
	PartName  string    `json:"partName"`
	Operation string    `json:"operation"`
	Color     string    `json:"color"`
}

// EvalErrorData is a JSON-serializable eval error or warning.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
	BrushID string `json:"brushId,omitempty"`
}

// EvalResult is the full result of one run.
type EvalResult struct {
	Kernel   string          `json:"kernel"`
	Meshes   []MeshData      `json:"meshes"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
}

// NewApp creates an App with an engine and the kernel selected by cfg.
func NewApp(cfg *config.Config) *App {
	return &App{
		engine: engine.NewEngineWithOptions(engine.Options{
			Timeout:       cfg.Engine.Timeout,
			CurveSegments: cfg.Tessellation.CurveSegments,
			Tolerance:     cfg.Tessellation.Tolerance,
		}),
		kernel: newKernel(cfg.Kernel),
	}
}

func newKernel(cfg config.KernelConfig) kernel.Kernel {
	if cfg.Backend == config.BackendSdfx {
		return sdfx.New(cfg.MeshCells)
	}
	return exact.New()
}

// Evaluate takes script source and returns mesh data, errors and warnings.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{
		Kernel:   a.kernel.Name(),
		Meshes:   []MeshData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}

	// Step 1: Evaluate the script into a validated design.
	run, err := a.engine.Run(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		logger.Error("evaluate failed", zap.Error(err))
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}

	for _, w := range run.Warnings {
		result.Warnings = append(result.Warnings, EvalErrorData{
			Line:    w.Line,
			Col:     w.Col,
			Message: w.Message,
			BrushID: w.BrushID.String(),
		})
	}

	// Step 2: Eval and validation errors stop the pipeline.
	if len(run.Errors) > 0 {
		for _, e := range run.Errors {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result
	}

	// Step 3: Tessellate every brush into a triangle mesh.
	meshes, err := tessellate.Tessellate(run.Design, a.kernel)
	if err != nil {
		logger.Warn("tessellation failed", zap.Error(err))
		result.Errors = append(result.Errors, EvalErrorData{
			Message: "tessellation failed: " + err.Error(),
		})
		return result
	}

	// Step 4: Convert kernel meshes to the output format.
	for i, m := range meshes {
		color := colorPalette[i%len(colorPalette)]
		if m.Operation == "subtractive" {
			color = subtractiveColor
		}
		result.Meshes = append(result.Meshes, MeshData{
			Vertices:  m.Vertices,
			Normals:   m.Normals,
			Indices:   m.Indices,
			PartName:  m.PartName,
			Operation: m.Operation,
			Color:     color,
		})
	}
	logger.Info("design evaluated",
		zap.Int("meshes", len(result.Meshes)),
		zap.Int("warnings", len(result.Warnings)))

	return result
}
