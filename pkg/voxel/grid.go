package voxel

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Grid errors.
var (
	ErrInvalidSize     = errors.New("invalid grid size")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrInvalidState    = errors.New("invalid function state")
)

// Grid is a fixed-size dense voxel volume.
//
// Cells are stored in one slice with x varying fastest, then z, then y, so a
// horizontal layer is a contiguous run of Size.X*Size.Z voxels.
type Grid struct {
	size      Index
	origin    mgl32.Vec3
	voxelSize float32
	cells     []Voxel
}

// New allocates a grid with every voxel active and untagged.
func New(size Index, origin mgl32.Vec3, voxelSize float32) (*Grid, error) {
	if size.X <= 0 || size.Y <= 0 || size.Z <= 0 {
		return nil, fmt.Errorf("%w: %dx%dx%d", ErrInvalidSize, size.X, size.Y, size.Z)
	}
	if !(voxelSize > 0) {
		return nil, fmt.Errorf("%w: voxel size %v", ErrInvalidSize, voxelSize)
	}

	g := &Grid{
		size:      size,
		origin:    origin,
		voxelSize: voxelSize,
		cells:     make([]Voxel, size.Volume()),
	}
	for y := 0; y < size.Y; y++ {
		for z := 0; z < size.Z; z++ {
			for x := 0; x < size.X; x++ {
				idx := Index{x, y, z}
				g.cells[g.offset(idx)] = Voxel{Index: idx, Active: true, State: None}
			}
		}
	}
	return g, nil
}

// Size returns the grid dimensions.
func (g *Grid) Size() Index { return g.size }

// Origin returns the world-space anchor of voxel (0,0,0).
func (g *Grid) Origin() mgl32.Vec3 { return g.origin }

// VoxelSize returns the world-space edge length of one voxel.
func (g *Grid) VoxelSize() float32 { return g.voxelSize }

// Len returns the number of voxels.
func (g *Grid) Len() int { return len(g.cells) }

// InBounds reports whether idx addresses a voxel of this grid.
func (g *Grid) InBounds(idx Index) bool {
	return idx.X >= 0 && idx.X < g.size.X &&
		idx.Y >= 0 && idx.Y < g.size.Y &&
		idx.Z >= 0 && idx.Z < g.size.Z
}

// At returns a copy of the voxel at idx.
// The second result is false if idx is out of bounds.
func (g *Grid) At(idx Index) (Voxel, bool) {
	if !g.InBounds(idx) {
		return Voxel{}, false
	}
	return g.cells[g.offset(idx)], true
}

// IsActive reports whether the voxel at idx exists and is active.
func (g *Grid) IsActive(idx Index) bool {
	if !g.InBounds(idx) {
		return false
	}
	return g.cells[g.offset(idx)].Active
}

// WorldPosition returns the world-space position of a voxel.
func (g *Grid) WorldPosition(idx Index) mgl32.Vec3 {
	p := mgl32.Vec3{float32(idx.X), float32(idx.Y), float32(idx.Z)}
	return p.Mul(g.voxelSize).Add(g.origin)
}

// SetState tags a single voxel. Activity is left unchanged.
func (g *Grid) SetState(idx Index, state FunctionState) error {
	return g.ApplyStates([]StateUpdate{{Index: idx, State: state}})
}

// StateUpdate assigns State to the voxel at Index.
type StateUpdate struct {
	Index Index
	State FunctionState
}

// ApplyStates writes a batch of state updates. Every update is validated
// before any is applied, so a bad entry leaves the grid untouched.
// Later entries win when the batch addresses a voxel more than once.
func (g *Grid) ApplyStates(updates []StateUpdate) error {
	for _, u := range updates {
		if !g.InBounds(u.Index) {
			return fmt.Errorf("%w: voxel %s", ErrIndexOutOfRange, u.Index)
		}
		if !u.State.Valid() {
			return fmt.Errorf("%w: %d", ErrInvalidState, u.State)
		}
	}
	for _, u := range updates {
		g.cells[g.offset(u.Index)].State = u.State
	}
	return nil
}

// ClearGrid resets every voxel to active and untagged.
func (g *Grid) ClearGrid() {
	for i := range g.cells {
		g.cells[i].Active = true
		g.cells[i].State = None
	}
}

// ClearFunctionState resets voxels tagged with state back to None and
// returns how many were reset.
func (g *Grid) ClearFunctionState(state FunctionState) int {
	if state == None {
		return 0
	}
	n := 0
	for i := range g.cells {
		if g.cells[i].State == state {
			g.cells[i].State = None
			n++
		}
	}
	return n
}

// Snapshot returns a copy of every voxel in storage order.
func (g *Grid) Snapshot() []Voxel {
	out := make([]Voxel, len(g.cells))
	copy(out, g.cells)
	return out
}

// ActiveMask returns the active flag of every voxel in storage order.
func (g *Grid) ActiveMask() []bool {
	mask := make([]bool, len(g.cells))
	for i, v := range g.cells {
		mask[i] = v.Active
	}
	return mask
}

// ActiveCount returns the number of active voxels.
func (g *Grid) ActiveCount() int {
	n := 0
	for _, v := range g.cells {
		if v.Active {
			n++
		}
	}
	return n
}

// CountByState returns the number of active voxels carrying each state.
func (g *Grid) CountByState() map[FunctionState]int {
	counts := make(map[FunctionState]int)
	for _, v := range g.cells {
		if v.Active {
			counts[v.State]++
		}
	}
	return counts
}

// offset returns the storage position of an in-bounds index.
func (g *Grid) offset(idx Index) int {
	return idx.X + idx.Z*g.size.X + idx.Y*g.size.X*g.size.Z
}
