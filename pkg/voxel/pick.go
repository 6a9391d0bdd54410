package voxel

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Ray is a half-line in world space. Direction need not be normalized.
type Ray struct {
	Origin    mgl32.Vec3
	Direction mgl32.Vec3
}

// At returns the point at parameter t along the ray.
func (r Ray) At(t float32) mgl32.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// Bounds returns the world-space box covered by the grid. Each voxel is a
// cube of edge VoxelSize centered on its WorldPosition.
func (g *Grid) Bounds() AABB {
	half := mgl32.Vec3{g.voxelSize, g.voxelSize, g.voxelSize}.Mul(0.5)
	return AABB{
		Min: g.WorldPosition(Index{}).Sub(half),
		Max: g.WorldPosition(Index{g.size.X - 1, g.size.Y - 1, g.size.Z - 1}).Add(half),
	}
}

// IntersectAABB tests the ray against box using the slab method. It returns
// the entry distance, or the exit distance when the ray starts inside.
func (r Ray) IntersectAABB(box AABB) (t float32, hit bool) {
	tmin := float32(-math.MaxFloat32)
	tmax := float32(math.MaxFloat32)

	for i := 0; i < 3; i++ {
		if r.Direction[i] == 0 {
			if r.Origin[i] < box.Min[i] || r.Origin[i] > box.Max[i] {
				return 0, false
			}
			continue
		}
		t1 := (box.Min[i] - r.Origin[i]) / r.Direction[i]
		t2 := (box.Max[i] - r.Origin[i]) / r.Direction[i]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = max(tmin, t1)
		tmax = min(tmax, t2)
	}

	if tmax < tmin || tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		return tmax, true
	}
	return tmin, true
}

// Pick returns the first active voxel the ray passes through. Inactive voxels
// are transparent to the ray.
func (g *Grid) Pick(r Ray) (Index, bool) {
	if r.Direction.Len() == 0 {
		return Index{}, false
	}

	box := g.Bounds()
	start := float32(0)
	if !box.Contains(r.Origin) {
		t, ok := r.IntersectAABB(box)
		if !ok {
			return Index{}, false
		}
		start = t
	}

	// Cell coordinates of the entry point, clamped against rounding at the
	// boundary.
	local := r.At(start).Sub(box.Min).Mul(1 / g.voxelSize)
	var (
		cell  [3]int
		step  [3]int
		tMax  [3]float32
		tStep [3]float32
	)
	dims := [3]int{g.size.X, g.size.Y, g.size.Z}
	for i := 0; i < 3; i++ {
		cell[i] = min(max(int(math.Floor(float64(local[i]))), 0), dims[i]-1)

		d := r.Direction[i]
		switch {
		case d > 0:
			step[i] = 1
			tStep[i] = g.voxelSize / d
			tMax[i] = start + (float32(cell[i]+1)-local[i])*tStep[i]
		case d < 0:
			step[i] = -1
			tStep[i] = -g.voxelSize / d
			tMax[i] = start + (local[i]-float32(cell[i]))*tStep[i]
		default:
			tMax[i] = math.MaxFloat32
			tStep[i] = math.MaxFloat32
		}
	}

	for {
		idx := Index{cell[0], cell[1], cell[2]}
		if !g.InBounds(idx) {
			return Index{}, false
		}
		if g.IsActive(idx) {
			return idx, true
		}

		axis := 0
		if tMax[1] < tMax[axis] {
			axis = 1
		}
		if tMax[2] < tMax[axis] {
			axis = 2
		}
		cell[axis] += step[axis]
		tMax[axis] += tStep[axis]
	}
}

// Contains reports whether p lies inside or on the box.
func (b AABB) Contains(p mgl32.Vec3) bool {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] || p[i] > b.Max[i] {
			return false
		}
	}
	return true
}
