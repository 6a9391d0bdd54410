package voxel

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

// newTestGrid creates a grid at the origin with unit voxels.
func newTestGrid(t *testing.T, x, y, z int) *Grid {
	t.Helper()
	g, err := New(Index{x, y, z}, mgl32.Vec3{}, 1)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return g
}

func TestNew_InitialState(t *testing.T) {
	sizes := []Index{{1, 1, 1}, {4, 4, 4}, {3, 5, 2}, {7, 1, 9}}

	for _, size := range sizes {
		t.Run(size.String(), func(t *testing.T) {
			g := newTestGrid(t, size.X, size.Y, size.Z)

			if g.Len() != size.Volume() {
				t.Fatalf("expected %d voxels, got %d", size.Volume(), g.Len())
			}

			seen := make(map[Index]bool)
			for y := 0; y < size.Y; y++ {
				for z := 0; z < size.Z; z++ {
					for x := 0; x < size.X; x++ {
						idx := Index{x, y, z}
						v, ok := g.At(idx)
						if !ok {
							t.Fatalf("voxel %s missing", idx)
						}
						if v.Index != idx {
							t.Errorf("expected index %s, got %s", idx, v.Index)
						}
						if !v.Active || v.State != None {
							t.Errorf("voxel %s: expected active/None, got %v/%s", idx, v.Active, v.State)
						}
						seen[v.Index] = true
					}
				}
			}
			if len(seen) != size.Volume() {
				t.Errorf("expected %d unique indices, got %d", size.Volume(), len(seen))
			}
		})
	}
}

func TestNew_InvalidSize(t *testing.T) {
	tests := []struct {
		name      string
		size      Index
		voxelSize float32
	}{
		{"zero x", Index{0, 4, 4}, 1},
		{"zero y", Index{4, 0, 4}, 1},
		{"zero z", Index{4, 4, 0}, 1},
		{"negative", Index{-1, 4, 4}, 1},
		{"zero voxel size", Index{4, 4, 4}, 0},
		{"negative voxel size", Index{4, 4, 4}, -0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := New(tt.size, mgl32.Vec3{}, tt.voxelSize)
			if !errors.Is(err, ErrInvalidSize) {
				t.Errorf("expected ErrInvalidSize, got %v", err)
			}
			if g != nil {
				t.Error("expected nil grid")
			}
		})
	}
}

func TestGrid_AtOutOfBounds(t *testing.T) {
	g := newTestGrid(t, 2, 2, 2)

	for _, idx := range []Index{{-1, 0, 0}, {2, 0, 0}, {0, 2, 0}, {0, 0, 2}} {
		if _, ok := g.At(idx); ok {
			t.Errorf("expected %s to be out of bounds", idx)
		}
		if g.IsActive(idx) {
			t.Errorf("out of bounds voxel %s reported active", idx)
		}
	}
}

func TestGrid_WorldPosition(t *testing.T) {
	g, err := New(Index{4, 4, 4}, mgl32.Vec3{10, 0, -5}, 0.5)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	got := g.WorldPosition(Index{2, 1, 4})
	want := mgl32.Vec3{11, 0.5, -3}
	if !got.ApproxEqual(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestGrid_ClearGrid(t *testing.T) {
	g := newTestGrid(t, 4, 4, 4)
	g.CarveRectangle(Index{0, 0, 0}, 2, 2, 2)
	if err := g.SetState(Index{3, 3, 3}, Cyan); err != nil {
		t.Fatalf("SetState failed: %v", err)
	}

	g.ClearGrid()
	first := g.Snapshot()
	g.ClearGrid()

	for i, v := range g.Snapshot() {
		if !v.Active || v.State != None {
			t.Fatalf("voxel %s not reset", v.Index)
		}
		if v != first[i] {
			t.Fatalf("ClearGrid not idempotent at %s", v.Index)
		}
	}
}

func TestGrid_ClearFunctionState(t *testing.T) {
	g := newTestGrid(t, 4, 4, 4)

	reds := []Index{{0, 0, 0}, {1, 2, 3}, {3, 3, 3}}
	greens := []Index{{2, 2, 2}, {0, 1, 0}}
	for _, idx := range reds {
		g.SetState(idx, Red)
	}
	for _, idx := range greens {
		g.SetState(idx, Green)
	}
	// A carved red voxel is still reset but stays inactive.
	g.CarveRectangle(Index{3, 3, 3}, 1, 1, 1)

	if n := g.ClearFunctionState(Red); n != len(reds) {
		t.Errorf("expected %d voxels reset, got %d", len(reds), n)
	}

	for _, idx := range reds {
		v, _ := g.At(idx)
		if v.State != None {
			t.Errorf("voxel %s: expected None, got %s", idx, v.State)
		}
	}
	for _, idx := range greens {
		v, _ := g.At(idx)
		if v.State != Green {
			t.Errorf("voxel %s: expected Green, got %s", idx, v.State)
		}
	}
	if g.IsActive(Index{3, 3, 3}) {
		t.Error("ClearFunctionState must not reactivate voxels")
	}
}

func TestGrid_ApplyStatesAllOrNothing(t *testing.T) {
	g := newTestGrid(t, 2, 2, 2)

	err := g.ApplyStates([]StateUpdate{
		{Index: Index{0, 0, 0}, State: Red},
		{Index: Index{5, 0, 0}, State: Red},
	})
	if !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
	if v, _ := g.At(Index{0, 0, 0}); v.State != None {
		t.Error("partial update applied")
	}

	err = g.ApplyStates([]StateUpdate{{Index: Index{0, 0, 0}, State: FunctionState(200)}})
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("expected ErrInvalidState, got %v", err)
	}
}

func TestGrid_CountByState(t *testing.T) {
	g := newTestGrid(t, 2, 2, 2)
	g.SetState(Index{0, 0, 0}, Yellow)
	g.SetState(Index{1, 0, 0}, Yellow)
	g.SetState(Index{1, 1, 1}, Magenta)
	g.CarveRectangle(Index{1, 1, 1}, 1, 1, 1)

	counts := g.CountByState()
	if counts[Yellow] != 2 {
		t.Errorf("expected 2 yellow, got %d", counts[Yellow])
	}
	if counts[Magenta] != 0 {
		t.Errorf("inactive voxels should not be counted, got %d magenta", counts[Magenta])
	}
	if counts[None] != 5 {
		t.Errorf("expected 5 void voxels, got %d", counts[None])
	}
	if g.ActiveCount() != 7 {
		t.Errorf("expected 7 active voxels, got %d", g.ActiveCount())
	}
}

func TestParseFunctionState(t *testing.T) {
	for _, s := range FunctionStates() {
		got, err := ParseFunctionState(s.String())
		if err != nil {
			t.Fatalf("ParseFunctionState(%q) failed: %v", s.String(), err)
		}
		if got != s {
			t.Errorf("expected %s, got %s", s, got)
		}
	}

	if got, err := ParseFunctionState("red"); err != nil || got != Red {
		t.Errorf("expected case-insensitive match, got %s, %v", got, err)
	}
	if _, err := ParseFunctionState("blue"); err == nil {
		t.Error("expected error for unknown state")
	}
	if s := FunctionState(42).String(); s != "Unknown(42)" {
		t.Errorf("expected Unknown(42), got %s", s)
	}
}
