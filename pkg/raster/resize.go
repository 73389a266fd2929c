package raster

import (
	"image"
	"math"

	xdraw "golang.org/x/image/draw"

	"github.com/matzehuels/chartkit/pkg/errors"
)

// Resize scales img to exactly w x h with Catmull-Rom resampling.
func Resize(img image.Image, w, h int) *image.NRGBA {
	s := Size(img)
	if s.X == w && s.Y == h {
		return Clone(img)
	}
	dst := New(w, h, nil)
	if w <= 0 || h <= 0 || s.X == 0 || s.Y == 0 {
		return dst
	}
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return dst
}

// ResizeSpec selects a fixed-aspect resize target. Exactly one field must
// be set.
type ResizeSpec struct {
	Width  int
	Height int
	Scale  float64
}

// ResizeFixedAspect resizes img keeping its aspect ratio. The other
// dimension is rounded and is at least one pixel.
func ResizeFixedAspect(img image.Image, spec ResizeSpec) (*image.NRGBA, error) {
	set := 0
	if spec.Width != 0 {
		set++
	}
	if spec.Height != 0 {
		set++
	}
	if spec.Scale != 0 {
		set++
	}
	if set != 1 {
		return nil, errors.New(errors.ErrCodeArgument, "exactly one of width, height or scale is required")
	}
	if spec.Width < 0 || spec.Height < 0 || spec.Scale < 0 {
		return nil, errors.New(errors.ErrCodeArgument, "resize target must be positive")
	}

	s := Size(img)
	if s.X == 0 || s.Y == 0 {
		return Clone(img), nil
	}
	fw, fh := float64(s.X), float64(s.Y)
	var w, h int
	switch {
	case spec.Width != 0:
		w = spec.Width
		h = int(math.Round(fh * float64(w) / fw))
	case spec.Height != 0:
		h = spec.Height
		w = int(math.Round(fw * float64(h) / fh))
	default:
		w = int(math.Round(fw * spec.Scale))
		h = int(math.Round(fh * spec.Scale))
	}
	return Resize(img, max(w, 1), max(h, 1)), nil
}

// CroppedResize scales img to cover w x h and crops the excess, keeping
// the part selected by align.
func CroppedResize(img image.Image, w, h int, align Align) *image.NRGBA {
	s := Size(img)
	if s.X == 0 || s.Y == 0 || w <= 0 || h <= 0 {
		return New(w, h, nil)
	}
	scale := math.Max(float64(w)/float64(s.X), float64(h)/float64(s.Y))
	rw := max(w, int(math.Ceil(float64(s.X)*scale)))
	rh := max(h, int(math.Ceil(float64(s.Y)*scale)))
	big := Resize(img, rw, rh)
	off := align.Offset(image.Pt(rw, rh), image.Pt(w, h))
	return Crop(big, image.Rectangle{Min: off, Max: off.Add(image.Pt(w, h))})
}
