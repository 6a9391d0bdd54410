// Package slicecodec converts 2D cross-sections of a voxel grid to and from
// fixed-palette raster images.
package slicecodec

import (
	"image/color"

	"github.com/Faultbox/voxelslice/pkg/voxel"
)

// Palette colors.
var (
	ColorBackground = color.RGBA{128, 128, 128, 255}
	ColorBlack      = color.RGBA{0, 0, 0, 255}
	ColorRed        = color.RGBA{255, 0, 0, 255}
	ColorYellow     = color.RGBA{255, 255, 0, 255}
	ColorGreen      = color.RGBA{0, 255, 0, 255}
	ColorCyan       = color.RGBA{0, 255, 255, 255}
	ColorMagenta    = color.RGBA{255, 0, 255, 255}
)

// Palette maps function states to raster colors. Background stands for
// "no material": inactive voxels and untagged voxels both encode to it.
type Palette struct {
	Background color.RGBA
	Colors     map[voxel.FunctionState]color.RGBA
}

// DefaultPalette returns the palette used by the prediction model.
func DefaultPalette() Palette {
	return Palette{
		Background: ColorBackground,
		Colors: map[voxel.FunctionState]color.RGBA{
			voxel.Black:   ColorBlack,
			voxel.Red:     ColorRed,
			voxel.Yellow:  ColorYellow,
			voxel.Green:   ColorGreen,
			voxel.Cyan:    ColorCyan,
			voxel.Magenta: ColorMagenta,
		},
	}
}

// Color returns the raster color for a voxel.
func (p Palette) Color(v voxel.Voxel) color.RGBA {
	if !v.Active {
		return p.Background
	}
	if c, ok := p.Colors[v.State]; ok {
		return c
	}
	return p.Background
}

// Nearest returns the state whose palette color is closest to c.
// Colors closest to the background, and fully transparent pixels, decode as
// None. Ties resolve to the background first, then to the lower state value.
func (p Palette) Nearest(c color.Color) voxel.FunctionState {
	rgba := color.RGBAModel.Convert(c).(color.RGBA)
	if rgba.A == 0 {
		return voxel.None
	}

	best := voxel.None
	bestDist := distSq(rgba, p.Background)
	for _, s := range voxel.FunctionStates() {
		pc, ok := p.Colors[s]
		if !ok {
			continue
		}
		if d := distSq(rgba, pc); d < bestDist {
			best, bestDist = s, d
		}
	}
	return best
}

// distSq returns the squared RGB distance between two colors.
func distSq(a, b color.RGBA) int {
	dr := int(a.R) - int(b.R)
	dg := int(a.G) - int(b.G)
	db := int(a.B) - int(b.B)
	return dr*dr + dg*dg + db*db
}
