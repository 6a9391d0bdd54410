package voxel

// Shape enumerates candidate voxels for a carving operation.
// Candidates must be in bounds, unique, and returned in a deterministic order.
type Shape interface {
	Candidates(g *Grid) []Index
}

// Box is an axis-aligned block anchored at Origin. Width runs along x,
// Height along y and Depth along z.
type Box struct {
	Origin Index
	Width  int
	Depth  int
	Height int
}

// Candidates returns the box clipped to grid bounds. A box whose origin lies
// outside the grid yields nothing.
func (b Box) Candidates(g *Grid) []Index {
	if !g.InBounds(b.Origin) {
		return nil
	}

	size := g.Size()
	// Clamp extents before adding so huge boxes cannot overflow.
	maxX := b.Origin.X + min(b.Width, size.X-b.Origin.X)
	maxY := b.Origin.Y + min(b.Height, size.Y-b.Origin.Y)
	maxZ := b.Origin.Z + min(b.Depth, size.Z-b.Origin.Z)
	if maxX <= b.Origin.X || maxY <= b.Origin.Y || maxZ <= b.Origin.Z {
		return nil
	}

	out := make([]Index, 0, (maxX-b.Origin.X)*(maxY-b.Origin.Y)*(maxZ-b.Origin.Z))
	for y := b.Origin.Y; y < maxY; y++ {
		for z := b.Origin.Z; z < maxZ; z++ {
			for x := b.Origin.X; x < maxX; x++ {
				out = append(out, Index{x, y, z})
			}
		}
	}
	return out
}

// Blob is a flood fill from Origin over the 26-neighborhood, limited to
// voxels within Radius (Euclidean) of the origin. A Flat blob stays in the
// origin's layer.
type Blob struct {
	Origin Index
	Radius int
	Flat   bool
}

// Candidates returns the blob's voxels in breadth-first order.
func (b Blob) Candidates(g *Grid) []Index {
	if !g.InBounds(b.Origin) || b.Radius < 0 {
		return nil
	}

	r2 := b.Radius * b.Radius
	visited := make([]bool, g.Len())
	visited[g.offset(b.Origin)] = true

	queue := []Index{b.Origin}
	var out []Index
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		out = append(out, cur)

		for _, d := range neighborOffsets {
			if b.Flat && d.Y != 0 {
				continue
			}
			n := cur.Add(d)
			if !g.InBounds(n) || visited[g.offset(n)] {
				continue
			}
			dx, dy, dz := n.X-b.Origin.X, n.Y-b.Origin.Y, n.Z-b.Origin.Z
			if dx*dx+dy*dy+dz*dz > r2 {
				continue
			}
			visited[g.offset(n)] = true
			queue = append(queue, n)
		}
	}
	return out
}

// neighborOffsets lists the 26 neighbors of a voxel in a fixed order.
var neighborOffsets = func() []Index {
	offsets := make([]Index, 0, 26)
	for _, y := range []int{-1, 0, 1} {
		for _, z := range []int{-1, 0, 1} {
			for _, x := range []int{-1, 0, 1} {
				if x == 0 && y == 0 && z == 0 {
					continue
				}
				offsets = append(offsets, Index{x, y, z})
			}
		}
	}
	return offsets
}()

// Neighbors returns the in-bounds 26-neighborhood of idx.
func (g *Grid) Neighbors(idx Index) []Index {
	out := make([]Index, 0, len(neighborOffsets))
	for _, d := range neighborOffsets {
		if n := idx.Add(d); g.InBounds(n) {
			out = append(out, n)
		}
	}
	return out
}
