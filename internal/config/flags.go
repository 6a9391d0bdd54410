package config

import (
	"flag"
)

var (
	flagConfig    = flag.String("config", "", "Path to config file")
	flagDebug     = flag.Bool("debug", false, "Enable debug logging")
	flagPredictor = flag.String("predictor", "", "Prediction server address (enables remote predictor)")
	flagSeed      = flag.Int64("seed", 0, "Random seed for carving")
	flagSize      = flag.Int("size", 0, "Grid edge length (sets x, y and z)")
	flagOutput    = flag.String("output", "", "Dataset output directory")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
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
	if *flagPredictor != "" {
		cfg.Predictor.Kind = "remote"
		cfg.Predictor.Address = *flagPredictor
	}
	if *flagSeed != 0 {
		cfg.Grid.Seed = *flagSeed
	}
	if *flagSize > 0 {
		cfg.Grid.SizeX = *flagSize
		cfg.Grid.SizeY = *flagSize
		cfg.Grid.SizeZ = *flagSize
	}
	if *flagOutput != "" {
		cfg.Dataset.OutputDir = *flagOutput
	}
}
