// Package session drives a voxel grid through carve and predict cycles.
package session

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math/rand/v2"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/voxelslice/internal/config"
	"github.com/Faultbox/voxelslice/internal/logger"
	"github.com/Faultbox/voxelslice/internal/predict"
	"github.com/Faultbox/voxelslice/pkg/slicecodec"
	"github.com/Faultbox/voxelslice/pkg/voxel"
)

// Session owns one grid together with the predictor and random source that
// act on it. It is not safe for concurrent use.
type Session struct {
	Grid      *voxel.Grid
	Codec     *slicecodec.Codec
	Predictor predict.Predictor
	Rand      *rand.Rand

	// InputSize is the square resolution the predictor expects.
	InputSize int
	// OverlayTag is cleared before every refresh so stale predictions do
	// not accumulate.
	OverlayTag voxel.FunctionState

	carve config.CarveConfig
	log   *zap.Logger
}

// New creates a session from configuration.
func New(cfg *config.Config, p predict.Predictor) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	size := voxel.Index{X: cfg.Grid.SizeX, Y: cfg.Grid.SizeY, Z: cfg.Grid.SizeZ}
	origin := mgl32.Vec3{cfg.Grid.Origin[0], cfg.Grid.Origin[1], cfg.Grid.Origin[2]}

	grid, err := voxel.New(size, origin, cfg.Grid.VoxelSize)
	if err != nil {
		return nil, fmt.Errorf("creating grid: %w", err)
	}

	seed := uint64(cfg.Grid.Seed)
	s := &Session{
		Grid:       grid,
		Codec:      slicecodec.New(slicecodec.DefaultPalette()),
		Predictor:  p,
		Rand:       rand.New(rand.NewPCG(seed, seed)),
		InputSize:  cfg.Predictor.InputSize,
		OverlayTag: voxel.Red,
		carve:      cfg.Carve,
		log:        logger.Named("session"),
	}

	s.log.Info("session created",
		zap.Stringer("size", size),
		zap.Float32("voxel_size", cfg.Grid.VoxelSize),
		zap.Int64("seed", cfg.Grid.Seed),
	)
	return s, nil
}

// Report summarizes a refresh.
type Report struct {
	Cleared  int // voxels whose overlay tag was reset
	Layers   int // layers merged
	Sections int // sections merged
	Failed   int // slices skipped after a prediction failure
}

// Refresh re-predicts the grid. Layers are processed first, then every
// section; a voxel touched by both keeps the section result. With allLayers
// unset only layer 0 is refreshed before the section pass.
//
// A failed prediction skips that slice and the pass continues. The returned
// error then wraps predict.ErrPredictionFailed for every skipped slice. Other
// errors abort the refresh; slices merged before the abort remain applied.
func (s *Session) Refresh(ctx context.Context, allLayers bool) (Report, error) {
	var rep Report
	rep.Cleared = s.Grid.ClearFunctionState(s.OverlayTag)

	layerCount := 1
	if allLayers {
		layerCount = slicecodec.SliceCount(s.Grid, slicecodec.Layer)
	}

	var failures error
	passes := []struct {
		axis  slicecodec.Axis
		count int
		done  *int
	}{
		{slicecodec.Layer, layerCount, &rep.Layers},
		{slicecodec.Section, slicecodec.SliceCount(s.Grid, slicecodec.Section), &rep.Sections},
	}

	for _, pass := range passes {
		for n := 0; n < pass.count; n++ {
			if err := ctx.Err(); err != nil {
				return rep, multierr.Append(failures, err)
			}

			err := s.RefreshSlice(ctx, pass.axis, n)
			switch {
			case err == nil:
				*pass.done++
			case errors.Is(err, predict.ErrPredictionFailed):
				rep.Failed++
				failures = multierr.Append(failures, fmt.Errorf("%s %d: %w", pass.axis, n, err))
				s.log.Warn("prediction failed, slice skipped",
					zap.Stringer("axis", pass.axis),
					zap.Int("slice", n),
					zap.Error(err),
				)
			default:
				return rep, multierr.Append(failures, fmt.Errorf("%s %d: %w", pass.axis, n, err))
			}
		}
		s.log.Debug("pass complete", zap.Stringer("axis", pass.axis), zap.Int("slices", pass.count))
	}

	s.log.Info("refresh complete",
		zap.Int("cleared", rep.Cleared),
		zap.Int("layers", rep.Layers),
		zap.Int("sections", rep.Sections),
		zap.Int("failed", rep.Failed),
	)
	return rep, failures
}

// RefreshSlice encodes one slice, runs it through the predictor at
// InputSize, scales the result back and merges it into the grid. The grid
// is untouched unless the whole slice merges.
func (s *Session) RefreshSlice(ctx context.Context, axis slicecodec.Axis, n int) error {
	img, err := s.Codec.Encode(s.Grid, axis, n)
	if err != nil {
		return err
	}

	bg := s.Codec.Palette.Background
	in := slicecodec.Resize(img, s.InputSize, s.InputSize, bg)

	out, err := predict.Run(ctx, s.Predictor, in)
	if err != nil {
		return err
	}

	w, h := slicecodec.SliceSize(s.Grid, axis)
	return s.Codec.Decode(s.Grid, slicecodec.Resize(out, w, h, bg), axis, n)
}

// EncodeSlice returns the raster for one slice.
func (s *Session) EncodeSlice(axis slicecodec.Axis, n int) (*image.RGBA, error) {
	return s.Codec.Encode(s.Grid, axis, n)
}
