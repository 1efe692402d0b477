// Command brushc evaluates a brush script and prints the resulting meshes,
// errors and warnings as JSON.
//
// Usage:
//
//	brushc [flags] script.brush
//
// Pass "-" to read the script from stdin.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/chazu/brushkit/internal/config"
	"github.com/chazu/brushkit/internal/logger"
	"go.uber.org/zap"
)

func main() {
	os.Exit(run())
}

func run() int {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "brushc: %v\n", err)
		return 2
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "brushc: %v\n", err)
		return 2
	}
	defer logger.Sync()

	args := config.Args()
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: brushc [flags] script.brush")
		return 2
	}

	source, err := readScript(args[0])
	if err != nil {
		logger.Error("cannot read script", zap.String("path", args[0]), zap.Error(err))
		return 1
	}
	logger.Debug("running script",
		zap.String("path", args[0]),
		zap.String("kernel", cfg.Kernel.Backend))

	result := NewApp(cfg).Evaluate(source)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		logger.Error("cannot write result", zap.Error(err))
		return 1
	}
	if len(result.Errors) > 0 {
		return 1
	}
	return 0
}

func readScript(path string) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(os.Stdin)
		return string(b), err
	}
	b, err := os.ReadFile(path)
	return string(b), err
}
