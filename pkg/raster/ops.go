package raster

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/chartkit/pkg/colors"
	"github.com/matzehuels/chartkit/pkg/errors"
)

// Overlay composites img onto a copy of base at pos. When mask is non-nil
// only pixels where the mask's alpha is at least 128 are drawn; mask
// coordinates are relative to img.
func Overlay(base, img image.Image, pos image.Point, mask image.Image) *image.NRGBA {
	dst := Clone(base)
	if mask == nil {
		Paste(dst, img, pos)
		return dst
	}
	src, m := asNRGBA(img), asNRGBA(mask)
	r := image.Rectangle{Min: pos, Max: pos.Add(src.Rect.Size())}.Intersect(dst.Rect)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			mx, my := x-pos.X, y-pos.Y
			if !MaskSet(m, mx, my) {
				continue
			}
			so := src.PixOffset(mx, my)
			do := dst.PixOffset(x, y)
			over(dst.Pix[do:do+4:do+4], src.Pix[so:so+4:so+4])
		}
	}
	return dst
}

// MaskSet reports whether the 1-bit mask m is set at (x, y). Points outside
// the mask are unset.
func MaskSet(m *image.NRGBA, x, y int) bool {
	if !(image.Point{x, y}.In(m.Rect)) {
		return false
	}
	return m.Pix[m.PixOffset(x, y)+3] >= 128
}

// ShadowOptions configures AddShadow.
type ShadowOptions struct {
	Color  colors.Color
	Offset image.Point
	// Blur is the Gaussian sigma in pixels.
	Blur float64
	// Grow dilates the silhouette by this many pixels before blurring.
	Grow int
}

// AddShadow draws a blurred silhouette of img under it. The canvas grows to
// fit the shadow.
func AddShadow(img image.Image, opts ShadowOptions) *image.NRGBA {
	src := asNRGBA(img)
	margin := opts.Grow + int(math.Ceil(3*opts.Blur))
	sil := Pad(silhouette(src, opts.Color), Uniform(margin), nil)
	if opts.Grow > 0 {
		sil = dilate(sil, opts.Grow)
	}
	if opts.Blur > 0 {
		sil = imaging.Blur(sil, opts.Blur)
	}
	// The shadow's top-left corner sits at pos in image coordinates.
	pos := opts.Offset.Sub(image.Pt(margin, margin))
	c := NewCanvas(sil, nil)
	c.Pin(src, pos.Mul(-1), TopLeft)
	return c.Image()
}

func silhouette(src *image.NRGBA, c colors.Color) *image.NRGBA {
	dst := New(src.Rect.Dx(), src.Rect.Dy(), nil)
	for i := 0; i < len(src.Pix); i += 4 {
		a := uint32(src.Pix[i+3]) * uint32(c.A) / 255
		if a == 0 {
			continue
		}
		dst.Pix[i], dst.Pix[i+1], dst.Pix[i+2], dst.Pix[i+3] = c.R, c.G, c.B, uint8(a)
	}
	return dst
}

// dilate grows opaque regions with a square structuring element.
func dilate(src *image.NRGBA, r int) *image.NRGBA {
	dst := Clone(src)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			best := -1
			for dy := -r; dy <= r; dy++ {
				for dx := -r; dx <= r; dx++ {
					sx, sy := x+dx, y+dy
					if sx < 0 || sy < 0 || sx >= w || sy >= h {
						continue
					}
					o := src.PixOffset(sx, sy)
					if best < 0 || src.Pix[o+3] > src.Pix[best+3] {
						best = o
					}
				}
			}
			d := dst.PixOffset(x, y)
			copy(dst.Pix[d:d+4], src.Pix[best:best+4])
		}
	}
	return dst
}

// GridOptions configures AddGrid.
type GridOptions struct {
	Cols, Rows int
	Color      color.Color
	Width      int
}

// AddGrid draws grid lines dividing img into Cols x Rows cells, including
// the outer border. Lines are drawn inside the image.
func AddGrid(img image.Image, opts GridOptions) *image.NRGBA {
	dst := Clone(img)
	s := Size(dst)
	w := max(opts.Width, 1)
	c := colors.Convert(opts.Color)
	if opts.Color == nil {
		c = colors.Black
	}
	if opts.Cols > 0 {
		for i := 0; i <= opts.Cols; i++ {
			x := min(int(math.Round(float64(i*s.X)/float64(opts.Cols))), s.X-w)
			line := New(w, s.Y, c)
			Paste(dst, line, image.Pt(x, 0))
		}
	}
	if opts.Rows > 0 {
		for i := 0; i <= opts.Rows; i++ {
			y := min(int(math.Round(float64(i*s.Y)/float64(opts.Rows))), s.Y-w)
			line := New(s.X, w, c)
			Paste(dst, line, image.Pt(0, y))
		}
	}
	return dst
}

// Blend interpolates two images of equal size pixel by pixel in linear
// light. t=0 gives a and t=1 gives b.
func Blend(a, b image.Image, t float64) (*image.NRGBA, error) {
	if Size(a) != Size(b) {
		return nil, errors.New(errors.ErrCodeSizeMismatch, "cannot blend %v image with %v image", Size(a), Size(b))
	}
	na, nb := asNRGBA(a), asNRGBA(b)
	dst := New(na.Rect.Dx(), na.Rect.Dy(), nil)
	for i := 0; i < len(dst.Pix); i += 4 {
		ca := colors.Color{R: na.Pix[i], G: na.Pix[i+1], B: na.Pix[i+2], A: na.Pix[i+3]}
		cb := colors.Color{R: nb.Pix[i], G: nb.Pix[i+1], B: nb.Pix[i+2], A: nb.Pix[i+3]}
		c := ca.Blend(cb, t)
		dst.Pix[i], dst.Pix[i+1], dst.Pix[i+2], dst.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return dst, nil
}

// ReplaceColor replaces every pixel equal to from by to. With ignoreAlpha
// only RGB is compared and the pixel keeps its alpha.
func ReplaceColor(img image.Image, from, to colors.Color, ignoreAlpha bool) *image.NRGBA {
	dst := Clone(img)
	for i := 0; i < len(dst.Pix); i += 4 {
		p := dst.Pix[i : i+4 : i+4]
		if p[0] != from.R || p[1] != from.G || p[2] != from.B {
			continue
		}
		if ignoreAlpha {
			p[0], p[1], p[2] = to.R, to.G, to.B
		} else if p[3] == from.A {
			p[0], p[1], p[2], p[3] = to.R, to.G, to.B, to.A
		}
	}
	return dst
}

// RemoveTransparency composites img over an opaque bg.
func RemoveTransparency(img image.Image, bg color.Color) *image.NRGBA {
	s := Size(img)
	dst := New(s.X, s.Y, colors.Convert(bg).Opaque())
	Paste(dst, img, image.Point{})
	return dst
}

// ToPalette maps every pixel to its nearest palette color, keeping alpha.
func ToPalette(img image.Image, p *colors.Palette) *image.NRGBA {
	dst := Clone(img)
	cache := make(map[colors.Color]colors.Color)
	for i := 0; i < len(dst.Pix); i += 4 {
		c := colors.Color{R: dst.Pix[i], G: dst.Pix[i+1], B: dst.Pix[i+2], A: 255}
		q, ok := cache[c]
		if !ok {
			q = p.Quantize(c)
			cache[c] = q
		}
		dst.Pix[i], dst.Pix[i+1], dst.Pix[i+2] = q.R, q.G, q.B
	}
	return dst
}

// Transpose flips img over its main diagonal.
func Transpose(img image.Image) *image.NRGBA { return imaging.Transpose(img) }

// Rotate90 rotates img 90 degrees counter-clockwise.
func Rotate90(img image.Image) *image.NRGBA { return imaging.Rotate90(img) }

// Rotate270 rotates img 90 degrees clockwise.
func Rotate270(img image.Image) *image.NRGBA { return imaging.Rotate270(img) }

// FlipH mirrors img left to right.
func FlipH(img image.Image) *image.NRGBA { return imaging.FlipH(img) }

// FlipV mirrors img top to bottom.
func FlipV(img image.Image) *image.NRGBA { return imaging.FlipV(img) }
