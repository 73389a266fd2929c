package raster

import (
	"image"
	"image/color"
	"math"
)

// Pad adds margins around img filled with bg. Negative insets count as
// zero.
func Pad(img image.Image, in Insets, bg color.Color) *image.NRGBA {
	in = Insets{max(in.Left, 0), max(in.Top, 0), max(in.Right, 0), max(in.Bottom, 0)}
	s := Size(img)
	dst := New(s.X+in.Horizontal(), s.Y+in.Vertical(), bg)
	if img != nil {
		copyRect(dst, asNRGBA(img), image.Pt(in.Left, in.Top))
	}
	return dst
}

// PadTo pads img to at least w x h, positioning it by align. It never
// crops: a dimension already larger than requested is kept.
func PadTo(img image.Image, w, h int, align Align, bg color.Color) *image.NRGBA {
	s := Size(img)
	out := image.Pt(max(w, s.X), max(h, s.Y))
	off := align.Offset(out, s)
	return Pad(img, Insets{off.X, off.Y, out.X - s.X - off.X, out.Y - s.Y - off.Y}, bg)
}

// PadToAspect pads img along one axis until its width:height ratio is
// aw:ah.
func PadToAspect(img image.Image, aw, ah float64, align Align, bg color.Color) *image.NRGBA {
	s := Size(img)
	if aw <= 0 || ah <= 0 || s.X == 0 || s.Y == 0 {
		return Clone(img)
	}
	target := aw / ah
	if float64(s.X)/float64(s.Y) < target {
		return PadTo(img, int(math.Round(float64(s.Y)*target)), s.Y, align, bg)
	}
	return PadTo(img, s.X, int(math.Round(float64(s.X)/target)), align, bg)
}

// Crop returns the part of img inside r, clipped to img's bounds.
func Crop(img image.Image, r image.Rectangle) *image.NRGBA {
	src := asNRGBA(img)
	r = r.Intersect(src.Rect)
	dst := New(r.Dx(), r.Dy(), nil)
	copyRect(dst, src, r.Min.Mul(-1))
	return dst
}

// Trim removes margins from each edge.
func Trim(img image.Image, in Insets) *image.NRGBA {
	s := Size(img)
	return Crop(img, image.Rect(in.Left, in.Top, s.X-in.Right, s.Y-in.Bottom))
}

// CropToAspect crops img along one axis until its width:height ratio is
// aw:ah, keeping the part selected by align.
func CropToAspect(img image.Image, aw, ah float64, align Align) *image.NRGBA {
	s := Size(img)
	if aw <= 0 || ah <= 0 || s.X == 0 || s.Y == 0 {
		return Clone(img)
	}
	target := aw / ah
	out := s
	if float64(s.X)/float64(s.Y) > target {
		out.X = max(1, int(math.Round(float64(s.Y)*target)))
	} else {
		out.Y = max(1, int(math.Round(float64(s.X)/target)))
	}
	off := align.Offset(s, out)
	return Crop(img, image.Rectangle{Min: off, Max: off.Add(out)})
}

// Bounds returns the smallest rectangle containing every pixel with
// nonzero alpha.
func Bounds(img image.Image) image.Rectangle {
	src := asNRGBA(img)
	r := image.Rectangle{}
	for y := 0; y < src.Rect.Dy(); y++ {
		for x := 0; x < src.Rect.Dx(); x++ {
			if src.Pix[src.PixOffset(x, y)+3] != 0 {
				r = r.Union(image.Rect(x, y, x+1, y+1))
			}
		}
	}
	return r
}
