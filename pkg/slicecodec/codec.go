package slicecodec

import (
	"errors"
	"fmt"
	"image"

	"github.com/Faultbox/voxelslice/pkg/voxel"
)

// ErrDimensionMismatch is returned when a decoded image does not match the
// in-plane extents of the target slice.
var ErrDimensionMismatch = errors.New("image dimension mismatch")

// Axis selects the orientation of a slice.
type Axis int

const (
	// Layer is a horizontal slice at constant y, imaged as x by z.
	Layer Axis = iota
	// Section is a vertical slice at constant z, imaged as x by y.
	Section
)

// String returns the axis name.
func (a Axis) String() string {
	switch a {
	case Layer:
		return "layer"
	case Section:
		return "section"
	default:
		return fmt.Sprintf("Axis(%d)", int(a))
	}
}

// Codec encodes and decodes grid slices with a fixed palette.
type Codec struct {
	Palette Palette
}

// New creates a codec for the given palette.
func New(p Palette) *Codec {
	return &Codec{Palette: p}
}

var defaultCodec = New(DefaultPalette())

// EncodeLayer encodes layer y of g with the default palette.
func EncodeLayer(g *voxel.Grid, layerY int) (*image.RGBA, error) {
	return defaultCodec.Encode(g, Layer, layerY)
}

// EncodeSection encodes section z of g with the default palette.
func EncodeSection(g *voxel.Grid, sectionZ int) (*image.RGBA, error) {
	return defaultCodec.Encode(g, Section, sectionZ)
}

// DecodeIntoLayer merges img into layer y of g with the default palette.
func DecodeIntoLayer(g *voxel.Grid, img image.Image, layerY int) error {
	return defaultCodec.Decode(g, img, Layer, layerY)
}

// DecodeIntoSection merges img into section z of g with the default palette.
func DecodeIntoSection(g *voxel.Grid, img image.Image, sectionZ int) error {
	return defaultCodec.Decode(g, img, Section, sectionZ)
}

// SliceSize returns the image width and height of a slice along axis.
func SliceSize(g *voxel.Grid, axis Axis) (w, h int) {
	size := g.Size()
	if axis == Section {
		return size.X, size.Y
	}
	return size.X, size.Z
}

// SliceCount returns the number of slices along axis.
func SliceCount(g *voxel.Grid, axis Axis) int {
	size := g.Size()
	if axis == Section {
		return size.Z
	}
	return size.Y
}

// Encode renders one slice to an image. Pixel (u, v) holds voxel (u, n, v)
// for a layer and voxel (u, v, n) for a section.
func (c *Codec) Encode(g *voxel.Grid, axis Axis, n int) (*image.RGBA, error) {
	if err := checkSlice(g, axis, n); err != nil {
		return nil, err
	}

	w, h := SliceSize(g, axis)
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for v := 0; v < h; v++ {
		for u := 0; u < w; u++ {
			vox, _ := g.At(sliceIndex(axis, n, u, v))
			img.SetRGBA(u, v, c.Palette.Color(vox))
		}
	}
	return img, nil
}

// Decode maps every pixel of img to its nearest palette state and writes it
// onto the slice. Background pixels reset the voxel to None. Activity is
// never changed. On error the grid is left untouched.
func (c *Codec) Decode(g *voxel.Grid, img image.Image, axis Axis, n int) error {
	if err := checkSlice(g, axis, n); err != nil {
		return err
	}

	w, h := SliceSize(g, axis)
	b := img.Bounds()
	if b.Dx() != w || b.Dy() != h {
		return fmt.Errorf("%w: %s expects %dx%d, got %dx%d", ErrDimensionMismatch, axis, w, h, b.Dx(), b.Dy())
	}

	updates := make([]voxel.StateUpdate, 0, w*h)
	for v := 0; v < h; v++ {
		for u := 0; u < w; u++ {
			updates = append(updates, voxel.StateUpdate{
				Index: sliceIndex(axis, n, u, v),
				State: c.Palette.Nearest(img.At(b.Min.X+u, b.Min.Y+v)),
			})
		}
	}
	return g.ApplyStates(updates)
}

// checkSlice validates a slice number against the grid.
func checkSlice(g *voxel.Grid, axis Axis, n int) error {
	count := SliceCount(g, axis)
	if n < 0 || n >= count {
		return fmt.Errorf("%w: %s %d not in [0, %d)", voxel.ErrIndexOutOfRange, axis, n, count)
	}
	return nil
}

// sliceIndex maps pixel (u, v) of slice n to a grid index.
func sliceIndex(axis Axis, n, u, v int) voxel.Index {
	if axis == Section {
		return voxel.Index{X: u, Y: v, Z: n}
	}
	return voxel.Index{X: u, Y: n, Z: v}
}
