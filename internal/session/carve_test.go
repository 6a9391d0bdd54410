package session

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/go-cmp/cmp"

	"github.com/Faultbox/voxelslice/internal/predict"
	"github.com/Faultbox/voxelslice/pkg/voxel"
)

func TestCarveRandomRectangles_Deterministic(t *testing.T) {
	cfg := testConfig(16, 4, 16)
	cfg.Grid.Seed = 1234

	a := newTestSession(t, cfg, predict.Identity{})
	b := newTestSession(t, cfg, predict.Identity{})

	if err := a.CarveRandomRectangles(4, 3, 6); err != nil {
		t.Fatalf("carve a failed: %v", err)
	}
	if err := b.CarveRandomRectangles(4, 3, 6); err != nil {
		t.Fatalf("carve b failed: %v", err)
	}

	if diff := cmp.Diff(a.Grid.ActiveMask(), b.Grid.ActiveMask()); diff != "" {
		t.Errorf("same seed produced different carves:\n%s", diff)
	}
}

func TestCarveRandomRectangles_GroundLayerOnly(t *testing.T) {
	s := newTestSession(t, testConfig(12, 3, 12), predict.Identity{})

	if err := s.CarveRandomRectangles(3, 2, 5); err != nil {
		t.Fatalf("CarveRandomRectangles failed: %v", err)
	}

	carved := 0
	for _, v := range s.Grid.Snapshot() {
		if v.Active {
			continue
		}
		carved++
		if v.Index.Y != 0 {
			t.Errorf("voxel %s carved above the ground layer", v.Index)
		}
	}
	if carved == 0 {
		t.Error("expected at least one carved voxel")
	}
}

func TestCarveRandomRectangles_InvalidSize(t *testing.T) {
	s := newTestSession(t, testConfig(4, 4, 4), predict.Identity{})

	if err := s.CarveRandomRectangles(1, 0, 3); err == nil {
		t.Error("expected error for zero minimum size")
	}
	if n := s.Grid.ActiveCount(); n != s.Grid.Len() {
		t.Errorf("expected untouched grid, %d of %d active", n, s.Grid.Len())
	}
}

func TestCarveRandomRectangles_ZeroAmount(t *testing.T) {
	s := newTestSession(t, testConfig(4, 2, 4), predict.Identity{})

	if err := s.CarveRandomRectangles(0, 1, 2); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if n := s.Grid.ActiveCount(); n != s.Grid.Len() {
		t.Errorf("expected untouched grid, %d of %d active", n, s.Grid.Len())
	}
}

func TestCarveAt(t *testing.T) {
	tests := []struct {
		name    string
		picky   bool
		idx     voxel.Index
		wantErr error
		wantOK  bool
	}{
		{"box", false, voxel.Index{X: 1, Y: 1, Z: 1}, nil, true},
		{"blob", true, voxel.Index{X: 4, Y: 4, Z: 4}, nil, true},
		{"out of bounds", false, voxel.Index{X: 9, Y: 0, Z: 0}, voxel.ErrIndexOutOfRange, false},
		{"negative", true, voxel.Index{X: -1, Y: 0, Z: 0}, voxel.ErrIndexOutOfRange, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(9, 9, 9)
			cfg.Carve.Picky = tt.picky
			cfg.Carve.MinNeighbors = 1
			s := newTestSession(t, cfg, predict.Identity{})

			ok, err := s.CarveAt(tt.idx)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
			if ok != tt.wantOK {
				t.Errorf("expected carved=%v, got %v", tt.wantOK, ok)
			}
			if tt.wantOK {
				if v, _ := s.Grid.At(tt.idx); v.Active {
					t.Errorf("expected %s carved", tt.idx)
				}
			}
		})
	}
}

func TestCarveRay(t *testing.T) {
	cfg := testConfig(6, 6, 6)
	cfg.Carve.MinWidth, cfg.Carve.MaxWidth = 1, 1
	cfg.Carve.MinDepth, cfg.Carve.MaxDepth = 1, 1
	cfg.Carve.MinHeight, cfg.Carve.MaxHeight = 1, 1
	s := newTestSession(t, cfg, predict.Identity{})

	down := voxel.Ray{Origin: mgl32.Vec3{2, 20, 3}, Direction: mgl32.Vec3{0, -1, 0}}

	for y := 5; y >= 0; y-- {
		idx, ok, err := s.CarveRay(down)
		if err != nil {
			t.Fatalf("CarveRay failed at y=%d: %v", y, err)
		}
		if want := (voxel.Index{X: 2, Y: y, Z: 3}); idx != want || !ok {
			t.Fatalf("expected to carve %s, got %s (carved=%v)", want, idx, ok)
		}
	}

	if _, _, err := s.CarveRay(down); !errors.Is(err, voxel.ErrIndexOutOfRange) {
		t.Errorf("expected ErrIndexOutOfRange once the column is empty, got %v", err)
	}
}

func TestCarveAt_BoxExtents(t *testing.T) {
	cfg := testConfig(40, 20, 40)

	for seed := int64(1); seed <= 20; seed++ {
		cfg.Grid.Seed = seed
		s := newTestSession(t, cfg, predict.Identity{})

		ok, err := s.CarveAt(voxel.Index{})
		if err != nil || !ok {
			t.Fatalf("seed %d: CarveAt failed: ok=%v err=%v", seed, ok, err)
		}

		var ext voxel.Index
		for _, v := range s.Grid.Snapshot() {
			if !v.Active {
				ext.X = max(ext.X, v.Index.X+1)
				ext.Y = max(ext.Y, v.Index.Y+1)
				ext.Z = max(ext.Z, v.Index.Z+1)
			}
		}

		if ext.X < cfg.Carve.MinWidth || ext.X >= cfg.Carve.MaxWidth {
			t.Errorf("seed %d: width %d outside [%d, %d)", seed, ext.X, cfg.Carve.MinWidth, cfg.Carve.MaxWidth)
		}
		if ext.Z < cfg.Carve.MinDepth || ext.Z >= cfg.Carve.MaxDepth {
			t.Errorf("seed %d: depth %d outside [%d, %d)", seed, ext.Z, cfg.Carve.MinDepth, cfg.Carve.MaxDepth)
		}
		if ext.Y < cfg.Carve.MinHeight || ext.Y >= cfg.Carve.MaxHeight {
			t.Errorf("seed %d: height %d outside [%d, %d)", seed, ext.Y, cfg.Carve.MinHeight, cfg.Carve.MaxHeight)
		}
		if s.Grid.Len()-s.Grid.ActiveCount() != ext.Volume() {
			t.Errorf("seed %d: expected a solid %s box", seed, ext)
		}
	}
}
