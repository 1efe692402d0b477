// Package config handles brushkit configuration loading and management.
package config

import "time"

// Config holds all tool settings.
type Config struct {
	Tessellation TessellationConfig `yaml:"tessellation"`
	Kernel       KernelConfig       `yaml:"kernel"`
	Engine       EngineConfig       `yaml:"engine"`
	Logging      LoggingConfig      `yaml:"logging"`
}

// TessellationConfig controls curve subdivision.
type TessellationConfig struct {
	CurveSegments int     `yaml:"curve_segments"` // points per curved segment
	Tolerance     float64 `yaml:"tolerance"`      // adaptive flattening; 0 uses CurveSegments
}

// KernelConfig selects the brush-to-triangle backend.
type KernelConfig struct {
	Backend   string `yaml:"backend"`    // "exact" or "sdfx"
	MeshCells int    `yaml:"mesh_cells"` // marching cubes resolution for sdfx
}

// EngineConfig holds script evaluation settings.
type EngineConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Backend names accepted by KernelConfig.Backend.
const (
	BackendExact = "exact"
	BackendSdfx  = "sdfx"
)

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Tessellation: TessellationConfig{
			CurveSegments: 8,
			Tolerance:     0,
		},
		Kernel: KernelConfig{
			Backend:   BackendExact,
			MeshCells: 64,
		},
		Engine: EngineConfig{
			Timeout: 5 * time.Second,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
