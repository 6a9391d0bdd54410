package session

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/voxelslice/pkg/voxel"
)

// maxCarveAttempts bounds the retry loop of CarveRandomRectangles.
const maxCarveAttempts = 1000

// blobRadius is the radius used when picky carving is enabled.
const blobRadius = 15

// CarveAt carves material at a picked voxel. By default it removes a box
// with random width, depth and height from the carve config; in picky mode it
// removes a neighbor-constrained blob instead.
func (s *Session) CarveAt(idx voxel.Index) (bool, error) {
	if !s.Grid.InBounds(idx) {
		return false, fmt.Errorf("%w: voxel %s", voxel.ErrIndexOutOfRange, idx)
	}

	var ok bool
	if s.carve.Picky {
		ok = s.Grid.CarveBlob(idx, blobRadius, true, false, s.carve.MinNeighbors)
	} else {
		width := s.rangeInt(s.carve.MinWidth, s.carve.MaxWidth)
		depth := s.rangeInt(s.carve.MinDepth, s.carve.MaxDepth)
		height := s.rangeInt(s.carve.MinHeight, s.carve.MaxHeight)
		ok = s.Grid.CarveRectangle(idx, width, depth, height)
	}

	s.log.Debug("carve at", zap.Stringer("index", idx), zap.Bool("carved", ok))
	return ok, nil
}

// CarveRay carves at the first active voxel hit by r. It returns
// voxel.ErrIndexOutOfRange when the ray hits nothing.
func (s *Session) CarveRay(r voxel.Ray) (voxel.Index, bool, error) {
	idx, hit := s.Grid.Pick(r)
	if !hit {
		return voxel.Index{}, false, fmt.Errorf("%w: ray hits no active voxel", voxel.ErrIndexOutOfRange)
	}
	ok, err := s.CarveAt(idx)
	return idx, ok, err
}

// CarveRandomRectangles carves amt one-voxel-high rectangles into the ground
// layer. Origins favor the x=0 and z=0 edges half of the time; footprints
// are drawn from [minSize, maxSize). Each rectangle is retried until it
// carves something.
func (s *Session) CarveRandomRectangles(amt, minSize, maxSize int) error {
	if minSize < 1 {
		return fmt.Errorf("minimum rectangle size must be at least 1, got %d", minSize)
	}

	size := s.Grid.Size()
	for i := 0; i < amt; i++ {
		success := false
		for attempt := 0; !success; attempt++ {
			if attempt == maxCarveAttempts {
				return fmt.Errorf("rectangle %d: no successful carve after %d attempts", i, attempt)
			}

			var x, z int
			if s.Rand.Float64() < 0.5 {
				x = s.edgeOrAny(size.X)
				z = s.Rand.IntN(size.Z)
			} else {
				z = s.edgeOrAny(size.Z)
				x = s.Rand.IntN(size.X)
			}

			origin := voxel.Index{X: x, Y: 0, Z: z}
			success = s.Grid.CarveRectangle(origin, s.rangeInt(minSize, maxSize), s.rangeInt(minSize, maxSize), 1)
		}
	}
	return nil
}

// edgeOrAny returns 0 half of the time and a uniform coordinate otherwise.
func (s *Session) edgeOrAny(n int) int {
	if s.Rand.Float64() < 0.5 {
		return 0
	}
	return s.Rand.IntN(n)
}

// rangeInt returns a value in [lo, hi), or lo when the range is empty.
func (s *Session) rangeInt(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + s.Rand.IntN(hi-lo)
}
