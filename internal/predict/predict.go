// Package predict defines the image-to-image prediction boundary.
package predict

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"reflect"
)

// ErrPredictionFailed is returned when the external transform errors or
// returns malformed output.
var ErrPredictionFailed = errors.New("prediction failed")

// Predictor maps a raster to a raster of the same size.
type Predictor interface {
	Predict(ctx context.Context, img image.Image) (image.Image, error)
}

// Func adapts a plain function to Predictor.
type Func func(ctx context.Context, img image.Image) (image.Image, error)

// Predict calls f.
func (f Func) Predict(ctx context.Context, img image.Image) (image.Image, error) {
	return f(ctx, img)
}

// Identity returns a copy of its input. It stands in for the model in tests
// and offline runs.
type Identity struct{}

// Predict returns a copy of img.
func (Identity) Predict(_ context.Context, img image.Image) (image.Image, error) {
	out := image.NewRGBA(img.Bounds())
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Src)
	return out, nil
}

// Run invokes p and checks its output. Any failure is wrapped in
// ErrPredictionFailed.
func Run(ctx context.Context, p Predictor, in image.Image) (image.Image, error) {
	out, err := p.Predict(ctx, in)
	if err != nil {
		if errors.Is(err, ErrPredictionFailed) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrPredictionFailed, err)
	}
	if err := Validate(in, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Validate checks that out is a well-formed response to in.
func Validate(in, out image.Image) error {
	if isNil(out) {
		return fmt.Errorf("%w: nil image", ErrPredictionFailed)
	}
	ib, ob := in.Bounds(), out.Bounds()
	if ib.Dx() != ob.Dx() || ib.Dy() != ob.Dy() {
		return fmt.Errorf("%w: expected %dx%d output, got %dx%d",
			ErrPredictionFailed, ib.Dx(), ib.Dy(), ob.Dx(), ob.Dy())
	}
	return nil
}

// isNil reports whether img is nil or an interface holding a nil pointer.
func isNil(img image.Image) bool {
	if img == nil {
		return true
	}
	v := reflect.ValueOf(img)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}
