package config

import "flag"

var (
	flagConfig   = flag.String("config", "", "Path to config file")
	flagDebug    = flag.Bool("debug", false, "Enable debug logging")
	flagSegments = flag.Int("segments", 0, "Points per curved segment")
	flagKernel   = flag.String("kernel", "", "Mesh backend: exact or sdfx")
	flagCells    = flag.Int("cells", 0, "Marching cubes cells for the sdfx backend")
	flagLogFile  = flag.String("log-file", "", "Write rotated logs to this file")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the positional arguments left after flag parsing.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagSegments > 0 {
		cfg.Tessellation.CurveSegments = *flagSegments
	}
	if *flagKernel != "" {
		cfg.Kernel.Backend = *flagKernel
	}
	if *flagCells > 0 {
		cfg.Kernel.MeshCells = *flagCells
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
}
