// Package dataset generates training images of randomly carved grids.
package dataset

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"github.com/Faultbox/voxelslice/internal/config"
	"github.com/Faultbox/voxelslice/internal/logger"
	"github.com/Faultbox/voxelslice/internal/session"
	"github.com/Faultbox/voxelslice/pkg/slicecodec"
	"github.com/Faultbox/voxelslice/pkg/voxel"
)

// Summary describes a finished generation run.
type Summary struct {
	Samples int
	Carved  int // voxels carved across all samples

	// Per-sample carved voxel statistics. StdDev is the unbiased estimate
	// and zero for fewer than two samples.
	CarvedMean   float64
	CarvedStdDev float64

	OutputDir string
	Manifest  string
	Elapsed   time.Duration
}

// Generator writes carved ground layers as PNG files and records each one in
// a manifest. Material renders black; carved voxels render as the background,
// or fully transparent when cfg.Transparent is set.
type Generator struct {
	session *session.Session
	cfg     config.DatasetConfig
	codec   *slicecodec.Codec
	log     *zap.Logger
}

// NewGenerator creates a generator that carves the grid owned by s.
func NewGenerator(s *session.Session, cfg config.DatasetConfig) *Generator {
	p := slicecodec.DefaultPalette()
	p.Colors[voxel.None] = slicecodec.ColorBlack
	if cfg.Transparent {
		p.Background = color.RGBA{}
	}
	return &Generator{
		session: s,
		cfg:     cfg,
		codec:   slicecodec.New(p),
		log:     logger.Named("dataset"),
	}
}

// Generate produces cfg.SampleSize images named Grid_<i>.png. Every sample
// starts from a cleared grid. The grid is left holding the last sample.
func (gen *Generator) Generate(ctx context.Context) (Summary, error) {
	start := time.Now()
	sum := Summary{OutputDir: gen.cfg.OutputDir}

	if gen.cfg.MinAmount < 0 || gen.cfg.MaxAmount < gen.cfg.MinAmount {
		return sum, fmt.Errorf("invalid rectangle amount range [%d, %d)", gen.cfg.MinAmount, gen.cfg.MaxAmount)
	}
	if err := os.MkdirAll(gen.cfg.OutputDir, 0755); err != nil {
		return sum, fmt.Errorf("creating output dir: %w", err)
	}

	var manifest *Manifest
	if gen.cfg.Manifest != "" {
		sum.Manifest = filepath.Join(gen.cfg.OutputDir, gen.cfg.Manifest)
		m, err := OpenManifest(sum.Manifest)
		if err != nil {
			return sum, err
		}
		defer m.Close()
		manifest = m
	}

	g := gen.session.Grid
	size := g.Size()
	carvedPerSample := make([]float64, 0, max(gen.cfg.SampleSize, 0))
	for i := 0; i < gen.cfg.SampleSize; i++ {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		g.ClearGrid()
		amt := gen.cfg.MinAmount
		if gen.cfg.MaxAmount > gen.cfg.MinAmount {
			amt += gen.session.Rand.IntN(gen.cfg.MaxAmount - gen.cfg.MinAmount)
		}
		if err := gen.session.CarveRandomRectangles(amt, gen.cfg.MinRadius, gen.cfg.MaxRadius); err != nil {
			return sum, fmt.Errorf("sample %d: %w", i, err)
		}

		path, err := gen.saveSample(i)
		if err != nil {
			return sum, fmt.Errorf("sample %d: %w", i, err)
		}

		carved := g.Len() - g.ActiveCount()
		if manifest != nil {
			rec := &Sample{
				Seq:    i,
				Path:   path,
				SizeX:  size.X,
				SizeY:  size.Y,
				SizeZ:  size.Z,
				Carved: carved,
			}
			if err := manifest.Insert(rec); err != nil {
				return sum, fmt.Errorf("sample %d: %w", i, err)
			}
		}

		sum.Samples++
		sum.Carved += carved
		carvedPerSample = append(carvedPerSample, float64(carved))
		gen.log.Debug("sample written", zap.Int("index", i), zap.String("path", path), zap.Int("carved", carved))
	}

	switch len(carvedPerSample) {
	case 0:
	case 1:
		sum.CarvedMean = carvedPerSample[0]
	default:
		sum.CarvedMean, sum.CarvedStdDev = stat.MeanStdDev(carvedPerSample, nil)
	}

	sum.Elapsed = time.Since(start)
	gen.log.Info("dataset generated",
		zap.Int("samples", sum.Samples),
		zap.Float64("carved_mean", sum.CarvedMean),
		zap.String("output", sum.OutputDir),
		zap.Duration("elapsed", sum.Elapsed),
	)
	return sum, nil
}

func (gen *Generator) saveSample(i int) (string, error) {
	img, err := gen.codec.Encode(gen.session.Grid, slicecodec.Layer, 0)
	if err != nil {
		return "", err
	}
	resized := slicecodec.Resize256(img, gen.codec.Palette.Background)

	path := filepath.Join(gen.cfg.OutputDir, fmt.Sprintf("Grid_%d.png", i))
	return path, SavePNG(path, resized)
}

// SavePNG encodes img to path, creating parent directories as needed.
func SavePNG(path string, img image.Image) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output dir: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}

	if err := png.Encode(file, img); err != nil {
		file.Close()
		return fmt.Errorf("encoding PNG: %w", err)
	}
	return file.Close()
}

// LoadPNG decodes the PNG at path.
func LoadPNG(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, err := png.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decoding PNG: %w", err)
	}
	return img, nil
}
