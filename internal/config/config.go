// Package config handles configuration loading and management.
package config

import (
	"fmt"
	"time"

	"github.com/Faultbox/voxelslice/pkg/voxel"
)

// Config holds all session settings.
type Config struct {
	Grid      GridConfig      `yaml:"grid"`
	Carve     CarveConfig     `yaml:"carve"`
	Predictor PredictorConfig `yaml:"predictor"`
	Dataset   DatasetConfig   `yaml:"dataset"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// GridConfig holds voxel grid dimensions and placement.
type GridConfig struct {
	SizeX     int        `yaml:"size_x"`
	SizeY     int        `yaml:"size_y"`
	SizeZ     int        `yaml:"size_z"`
	VoxelSize float32    `yaml:"voxel_size"`
	Origin    [3]float32 `yaml:"origin"`
	Seed      int64      `yaml:"seed"`
}

// CarveConfig holds the ranges used for random carving.
type CarveConfig struct {
	MinWidth     int  `yaml:"min_width"`
	MaxWidth     int  `yaml:"max_width"`
	MinDepth     int  `yaml:"min_depth"`
	MaxDepth     int  `yaml:"max_depth"`
	MinHeight    int  `yaml:"min_height"`
	MaxHeight    int  `yaml:"max_height"`
	Picky        bool `yaml:"picky"`
	MinNeighbors int  `yaml:"min_neighbors"`
}

// PredictorConfig selects the image-to-image transform.
type PredictorConfig struct {
	Kind      string        `yaml:"kind"`    // "identity" or "remote"
	Address   string        `yaml:"address"` // host:port of the prediction server
	Timeout   time.Duration `yaml:"timeout"`
	InputSize int           `yaml:"input_size"`
}

// DatasetConfig holds offline dataset generation settings.
type DatasetConfig struct {
	OutputDir   string `yaml:"output_dir"`
	Manifest    string `yaml:"manifest"` // SQLite file, relative to OutputDir
	SampleSize  int    `yaml:"sample_size"`
	MinAmount   int    `yaml:"min_amount"`
	MaxAmount   int    `yaml:"max_amount"`
	MinRadius   int    `yaml:"min_radius"`
	MaxRadius   int    `yaml:"max_radius"`
	Transparent bool   `yaml:"transparent"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Grid: GridConfig{
			SizeX:     64,
			SizeY:     64,
			SizeZ:     64,
			VoxelSize: 1,
			Seed:      666,
		},
		Carve: CarveConfig{
			MinWidth:     2,
			MaxWidth:     12,
			MinDepth:     4,
			MaxDepth:     20,
			MinHeight:    10,
			MaxHeight:    15,
			Picky:        false,
			MinNeighbors: 15,
		},
		Predictor: PredictorConfig{
			Kind:      "identity",
			Address:   "127.0.0.1:7070",
			Timeout:   30 * time.Second,
			InputSize: 256,
		},
		Dataset: DatasetConfig{
			OutputDir:  "Output",
			Manifest:   "manifest.db",
			SampleSize: 500,
			MinAmount:  3,
			MaxAmount:  4,
			MinRadius:  3,
			MaxRadius:  32,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports settings that would make a session unusable.
func (c *Config) Validate() error {
	if c.Grid.SizeX <= 0 || c.Grid.SizeY <= 0 || c.Grid.SizeZ <= 0 {
		return fmt.Errorf("%w: %dx%dx%d", voxel.ErrInvalidSize, c.Grid.SizeX, c.Grid.SizeY, c.Grid.SizeZ)
	}
	if !(c.Grid.VoxelSize > 0) {
		return fmt.Errorf("voxel size must be positive, got %v", c.Grid.VoxelSize)
	}
	switch c.Predictor.Kind {
	case "identity", "remote":
	default:
		return fmt.Errorf("unknown predictor kind %q", c.Predictor.Kind)
	}
	if c.Predictor.InputSize <= 0 {
		return fmt.Errorf("predictor input size must be positive, got %d", c.Predictor.InputSize)
	}
	if c.Carve.MinWidth > c.Carve.MaxWidth || c.Carve.MinDepth > c.Carve.MaxDepth || c.Carve.MinHeight > c.Carve.MaxHeight {
		return fmt.Errorf("carve ranges are inverted")
	}
	if c.Dataset.MinAmount > c.Dataset.MaxAmount || c.Dataset.MinRadius > c.Dataset.MaxRadius {
		return fmt.Errorf("dataset ranges are inverted")
	}
	return nil
}
