package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// FileName is the configuration file looked up in the standard locations.
const FileName = "brushkit.yaml"

// Load loads configuration with priority: defaults < file < flags.
func Load() (*Config, error) {
	cfg := Default()

	configPath := ConfigPath()
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings no backend can honor.
func (c *Config) Validate() error {
	switch c.Kernel.Backend {
	case BackendExact, BackendSdfx:
	default:
		return fmt.Errorf("config: unknown kernel backend %q", c.Kernel.Backend)
	}
	if c.Tessellation.CurveSegments < 0 {
		return fmt.Errorf("config: curve_segments must be >= 0, got %d", c.Tessellation.CurveSegments)
	}
	if c.Tessellation.Tolerance < 0 {
		return fmt.Errorf("config: tolerance must be >= 0, got %g", c.Tessellation.Tolerance)
	}
	if c.Kernel.MeshCells <= 0 {
		return fmt.Errorf("config: mesh_cells must be > 0, got %d", c.Kernel.MeshCells)
	}
	if c.Engine.Timeout <= 0 {
		return fmt.Errorf("config: engine timeout must be positive, got %s", c.Engine.Timeout)
	}
	return nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		filepath.Join(".", FileName),
		filepath.Join(ConfigDir(), FileName),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "brushkit")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "brushkit")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "brushkit")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "brushkit")
	}
}

// LoadFile reads a YAML file over the defaults without consulting flags.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := loadFromFile(cfg, path); err != nil {
		return nil, fmt.Errorf("loading config from %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}
