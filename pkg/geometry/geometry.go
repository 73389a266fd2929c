// Package geometry draws primitive shapes and patterns as images: filled
// rectangles, ellipses and right triangles, frames, diagonal stripes,
// checkerboards and mask intersections.
//
// Shapes take a [raster.Fill] and are antialiased with gg. Pixels on the
// boundary belong to the shape.
package geometry

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"

	"github.com/matzehuels/chartkit/pkg/colors"
	"github.com/matzehuels/chartkit/pkg/errors"
	"github.com/matzehuels/chartkit/pkg/raster"
)

// Rectangle fills the whole size with fill; nil is transparent.
func Rectangle(size image.Point, fill raster.Fill) *image.NRGBA {
	return raster.PaintFill(fill, size)
}

// Ellipse draws the ellipse inscribed in size. The rest is transparent.
func Ellipse(size image.Point, fill raster.Fill) *image.NRGBA {
	if size.X <= 0 || size.Y <= 0 {
		return raster.New(size.X, size.Y, nil)
	}
	dc := gg.NewContext(size.X, size.Y)
	w, h := float64(size.X), float64(size.Y)
	dc.DrawEllipse(w/2, h/2, w/2, h/2)
	dc.SetColor(color.White)
	dc.Fill()
	return masked(raster.PaintFill(fill, size), coverage(dc.Image()), false)
}

// Triangle draws the right triangle with vertices (0,0), (0,h) and
// (p*w,h): the right angle sits at the bottom-left and p sets how far the
// hypotenuse reaches along the bottom edge. The area outside is painted
// with outside (nil is transparent). p must be positive.
func Triangle(size image.Point, fill, outside raster.Fill, p float64) (*image.NRGBA, error) {
	if p <= 0 {
		return nil, errors.New(errors.ErrCodeArgument, "triangle proportion must be positive, got %v", p)
	}
	if size.X <= 0 || size.Y <= 0 {
		return raster.New(size.X, size.Y, nil), nil
	}
	dc := gg.NewContext(size.X, size.Y)
	w, h := float64(size.X), float64(size.Y)
	dc.MoveTo(0, 0)
	dc.LineTo(0, h)
	dc.LineTo(p*w, h)
	dc.ClosePath()
	dc.SetColor(color.White)
	dc.Fill()
	m := coverage(dc.Image())

	out := masked(raster.PaintFill(outside, size), m, true)
	raster.Paste(out, masked(raster.PaintFill(fill, size), m, false), image.Point{})
	return out, nil
}

// Frame draws the outline of a rectangle of the given size with a stroke
// of width pixels, inside the size, and corners rounded by radius.
func Frame(size image.Point, c color.Color, width int, radius float64) *image.NRGBA {
	if size.X <= 0 || size.Y <= 0 || width <= 0 {
		return raster.New(size.X, size.Y, nil)
	}
	dc := gg.NewContext(size.X, size.Y)
	half := float64(width) / 2
	w, h := float64(size.X)-float64(width), float64(size.Y)-float64(width)
	if radius > 0 {
		dc.DrawRoundedRectangle(half, half, w, h, radius)
	} else {
		dc.DrawRectangle(half, half, w, h)
	}
	dc.SetLineWidth(float64(width))
	dc.SetColor(color.White)
	dc.Stroke()
	return masked(raster.New(size.X, size.Y, c), coverage(dc.Image()), false)
}

// coverage extracts the alpha channel of a gg image.
func coverage(img image.Image) []uint8 {
	b := img.Bounds()
	m := make([]uint8, 0, b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			_, _, _, a := img.At(x, y).RGBA()
			m = append(m, uint8(a>>8))
		}
	}
	return m
}

// masked scales img's alpha by the coverage (or its inverse) in place.
func masked(img *image.NRGBA, m []uint8, invert bool) *image.NRGBA {
	for i, a := range m {
		if invert {
			a = 255 - a
		}
		p := &img.Pix[4*i+3]
		*p = uint8(uint32(*p) * uint32(a) / 255)
	}
	return img
}

// Stripe returns a pattern of 45 degree stripes, each period pixels wide,
// cycling through the given colors: pixel (x, y) takes
// colors[((x+y)/period) mod n]. The tile is n*period pixels square.
func Stripe(period int, cs ...color.Color) (*raster.Pattern, error) {
	if period <= 0 {
		return nil, errors.New(errors.ErrCodeArgument, "stripe period must be positive, got %d", period)
	}
	if len(cs) == 0 {
		return nil, errors.New(errors.ErrCodeArgument, "stripes need at least one color")
	}
	n := len(cs)
	pal := make([]colors.Color, n)
	for i, c := range cs {
		pal[i] = colors.Convert(c)
	}
	size := n * period
	tile := raster.New(size, size, nil)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			tile.SetNRGBA(x, y, pal[((x+y)/period)%n].NRGBA())
		}
	}
	return &raster.Pattern{Tile: tile}, nil
}

// Checkers draws a checkerboard of shape.X columns by shape.Y rows. Cell
// (c, r) is colored cmap(((c+r) mod n) / (n-1)); with n = 1 every cell is
// cmap(0). Cell edges are rounded to whole pixels.
func Checkers(size, shape image.Point, cmap colors.ColorMap, n int) (*image.NRGBA, error) {
	if shape.X <= 0 || shape.Y <= 0 {
		return nil, errors.New(errors.ErrCodeArgument, "checker shape must be positive, got %v", shape)
	}
	if n <= 0 {
		return nil, errors.New(errors.ErrCodeArgument, "checker color count must be positive, got %d", n)
	}
	if cmap == nil {
		return nil, errors.New(errors.ErrCodeArgument, "checkers need a color map")
	}
	img := raster.New(size.X, size.Y, nil)
	edge := func(i, cells, length int) int { return (i*length + cells/2) / cells }
	for r := 0; r < shape.Y; r++ {
		for c := 0; c < shape.X; c++ {
			t := 0.0
			if n > 1 {
				t = float64((c+r)%n) / float64(n-1)
			}
			rect := image.Rect(edge(c, shape.X, size.X), edge(r, shape.Y, size.Y), edge(c+1, shape.X, size.X), edge(r+1, shape.Y, size.Y))
			raster.FillRect(img, rect, cmap(t))
		}
	}
	return img, nil
}

// MaskIntersection paints fg wherever every mask has alpha of at least
// 128; elsewhere the result is transparent. Masks smaller than size count
// as unset outside their bounds.
func MaskIntersection(size image.Point, fg color.Color, masks ...image.Image) *image.NRGBA {
	img := raster.New(size.X, size.Y, nil)
	ms := make([]*image.NRGBA, len(masks))
	for i, m := range masks {
		ms[i] = raster.Clone(m)
	}
	c := colors.Convert(fg).NRGBA()
	for y := 0; y < size.Y; y++ {
	pixel:
		for x := 0; x < size.X; x++ {
			for _, m := range ms {
				if !raster.MaskSet(m, x, y) {
					continue pixel
				}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}
