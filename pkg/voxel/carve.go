package voxel

// Predicate decides whether a candidate voxel is carved.
// It observes the grid as it was before the carve started.
type Predicate func(g *Grid, idx Index) bool

// Always carves every candidate.
func Always(*Grid, Index) bool { return true }

// OnlyActive carves candidates that still hold material.
func OnlyActive(g *Grid, idx Index) bool { return g.IsActive(idx) }

// MinActiveNeighbors carves a candidate only when at least n of its 26
// neighbors are active. Voxels outside the grid count as empty.
func MinActiveNeighbors(n int) Predicate {
	return func(g *Grid, idx Index) bool {
		count := 0
		for _, nb := range neighborOffsets {
			if g.IsActive(idx.Add(nb)) {
				count++
				if count >= n {
					return true
				}
			}
		}
		return count >= n
	}
}

// Carve deactivates every candidate of shape accepted by pred.
// It returns false, leaving the grid untouched, when nothing is selected.
// A nil pred behaves like Always.
func (g *Grid) Carve(shape Shape, pred Predicate) bool {
	if pred == nil {
		pred = Always
	}

	// Select against the unmodified grid so the outcome does not depend on
	// enumeration order.
	var selected []int
	for _, idx := range shape.Candidates(g) {
		if pred(g, idx) {
			selected = append(selected, g.offset(idx))
		}
	}
	if len(selected) == 0 {
		return false
	}

	for _, off := range selected {
		g.cells[off].Active = false
	}
	return true
}

// CarveRectangle deactivates the box [origin.X, origin.X+width) x
// [origin.Y, origin.Y+height) x [origin.Z, origin.Z+depth), clipped to the
// grid. It returns false when origin is out of bounds or the clipped box is
// empty.
func (g *Grid) CarveRectangle(origin Index, width, depth, height int) bool {
	return g.Carve(Box{Origin: origin, Width: width, Depth: depth, Height: height}, Always)
}

// CarveBlob deactivates a flood-filled blob around origin. When picky is set
// a voxel is only removed if at least minNeighbors of its neighbors are
// active, which roughens the blob's outline.
func (g *Grid) CarveBlob(origin Index, radius int, picky, flat bool, minNeighbors int) bool {
	pred := Always
	if picky {
		pred = MinActiveNeighbors(minNeighbors)
	}
	return g.Carve(Blob{Origin: origin, Radius: radius, Flat: flat}, pred)
}
