package raster

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/chartkit/pkg/colors"
	"github.com/matzehuels/chartkit/pkg/errors"
)

// Fill paints a region of the given size.
type Fill interface {
	Paint(size image.Point) *image.NRGBA
}

// SolidFill fills with a single color.
type SolidFill struct {
	Color colors.Color
}

// Solid returns a fill of a single color.
func Solid(c color.Color) SolidFill {
	return SolidFill{Color: colors.Convert(c)}
}

// Paint implements Fill.
func (s SolidFill) Paint(size image.Point) *image.NRGBA {
	return New(size.X, size.Y, s.Color)
}

// Pattern tiles an image from the origin of the painted region.
// Rotation, in degrees counter-clockwise, rotates the tiling about the
// centre of the region.
type Pattern struct {
	Tile     *image.NRGBA
	Rotation float64
}

// NewPattern returns a pattern tiling img.
func NewPattern(img image.Image) *Pattern {
	return &Pattern{Tile: Clone(img)}
}

// Rotated returns a copy of the pattern with the given rotation.
func (p *Pattern) Rotated(degrees float64) *Pattern {
	return &Pattern{Tile: p.Tile, Rotation: degrees}
}

// Paint implements Fill.
func (p *Pattern) Paint(size image.Point) *image.NRGBA {
	if p == nil || p.Tile == nil || Size(p.Tile).X == 0 || Size(p.Tile).Y == 0 {
		return New(size.X, size.Y, nil)
	}
	if math.Mod(p.Rotation, 360) == 0 {
		return tile(p.Tile, size)
	}
	d := int(math.Ceil(math.Hypot(float64(size.X), float64(size.Y)))) + 2
	big := tile(p.Tile, image.Pt(d, d))
	rot := imaging.Rotate(big, p.Rotation, color.Transparent)
	off := Center.Offset(Size(rot), size)
	return Crop(rot, image.Rectangle{Min: off, Max: off.Add(size)})
}

func tile(t *image.NRGBA, size image.Point) *image.NRGBA {
	dst := New(size.X, size.Y, nil)
	ts := Size(t)
	for y := 0; y < size.Y; y += ts.Y {
		for x := 0; x < size.X; x += ts.X {
			copyRect(dst, t, image.Pt(x, y))
		}
	}
	return dst
}

// copyRect copies src into dst at pt, replacing the pixels underneath.
func copyRect(dst, src *image.NRGBA, pt image.Point) {
	r := image.Rectangle{Min: pt, Max: pt.Add(src.Rect.Size())}.Intersect(dst.Rect)
	if r.Empty() {
		return
	}
	n := 4 * r.Dx()
	for y := r.Min.Y; y < r.Max.Y; y++ {
		so := src.PixOffset(src.Rect.Min.X+r.Min.X-pt.X, src.Rect.Min.Y+y-pt.Y)
		do := dst.PixOffset(r.Min.X, y)
		copy(dst.Pix[do:do+n], src.Pix[so:so+n])
	}
}

// ImageFill paints with an image, either tiled from the origin or
// stretched to the painted size.
type ImageFill struct {
	Image   image.Image
	Stretch bool
}

// Paint implements Fill.
func (f ImageFill) Paint(size image.Point) *image.NRGBA {
	if f.Image == nil {
		return New(size.X, size.Y, nil)
	}
	if f.Stretch {
		return Resize(f.Image, size.X, size.Y)
	}
	return (&Pattern{Tile: asNRGBA(f.Image)}).Paint(size)
}

// FillOf converts a fill specification to a Fill: a Fill is returned as
// is, an image becomes a tiling pattern and anything else is parsed as a
// color. nil gives a nil Fill.
func FillOf(v any) (Fill, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case Fill:
		return x, nil
	case *image.Uniform:
		return Solid(x.C), nil
	case image.Image:
		return NewPattern(x), nil
	}
	c, err := colors.Parse(v)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeArgument, err, "invalid fill")
	}
	return Solid(c), nil
}

// PaintFill paints f at size; a nil fill gives a transparent image.
func PaintFill(f Fill, size image.Point) *image.NRGBA {
	if f == nil {
		return New(size.X, size.Y, nil)
	}
	img := f.Paint(size)
	if Size(img) != size {
		return PadTo(Crop(img, image.Rectangle{Max: size}), size.X, size.Y, TopLeft, nil)
	}
	return img
}
