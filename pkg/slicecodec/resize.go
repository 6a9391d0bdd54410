package slicecodec

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// PredictSize is the square edge length the prediction model works at.
const PredictSize = 256

// Resize point-samples img to w by h. The destination is filled with
// background first, so transparent source pixels come out as background.
func Resize(img image.Image, w, h int, background color.Color) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
	return dst
}

// Resize256 resizes img to the model's input resolution.
func Resize256(img image.Image, background color.Color) *image.RGBA {
	return Resize(img, PredictSize, PredictSize, background)
}
