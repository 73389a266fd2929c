package raster

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/matzehuels/chartkit/pkg/colors"
)

// Insets are per-edge margins in pixels.
type Insets struct {
	Left, Top, Right, Bottom int
}

// Uniform returns insets of n on every edge.
func Uniform(n int) Insets { return Insets{n, n, n, n} }

// Symmetric returns insets of x on the left and right and y on the top and
// bottom.
func Symmetric(x, y int) Insets { return Insets{x, y, x, y} }

// Horizontal returns Left+Right.
func (i Insets) Horizontal() int { return i.Left + i.Right }

// Vertical returns Top+Bottom.
func (i Insets) Vertical() int { return i.Top + i.Bottom }

// Align positions an image inside a larger area as fractions of the free
// space on each axis.
type Align struct {
	X, Y float64
}

// Common alignments.
var (
	TopLeft     = Align{0, 0}
	Top         = Align{0.5, 0}
	TopRight    = Align{1, 0}
	Left        = Align{0, 0.5}
	Center      = Align{0.5, 0.5}
	Right       = Align{1, 0.5}
	BottomLeft  = Align{0, 1}
	Bottom      = Align{0.5, 1}
	BottomRight = Align{1, 1}
)

// Offset returns where an inner box of size inner goes inside outer.
func (a Align) Offset(outer, inner image.Point) image.Point {
	return image.Pt(
		int(math.Round(float64(outer.X-inner.X)*a.X)),
		int(math.Round(float64(outer.Y-inner.Y)*a.Y)),
	)
}

// Anchor returns the point of a box of the given size that a refers to.
func (a Align) Anchor(size image.Point) image.Point {
	return image.Pt(
		int(math.Round(float64(size.X)*a.X)),
		int(math.Round(float64(size.Y)*a.Y)),
	)
}

// New returns a w x h image filled with bg. A nil bg leaves it transparent.
func New(w, h int, bg color.Color) *image.NRGBA {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	if bg != nil {
		c := colors.Convert(bg)
		if c != colors.Transparent {
			fillRect(img, img.Bounds(), c)
		}
	}
	return img
}

func fillRect(img *image.NRGBA, r image.Rectangle, c colors.Color) {
	r = r.Intersect(img.Bounds())
	if r.Empty() {
		return
	}
	first := img.PixOffset(r.Min.X, r.Min.Y)
	row := img.Pix[first : first+4*r.Dx()]
	for i := 0; i < len(row); i += 4 {
		row[i], row[i+1], row[i+2], row[i+3] = c.R, c.G, c.B, c.A
	}
	for y := r.Min.Y + 1; y < r.Max.Y; y++ {
		off := img.PixOffset(r.Min.X, y)
		copy(img.Pix[off:off+len(row)], row)
	}
}

// FillRect paints r with c, replacing the pixels underneath.
func FillRect(img *image.NRGBA, r image.Rectangle, c color.Color) {
	fillRect(img, r, colors.Convert(c))
}

// Size returns the width and height of img. A nil image has size zero.
func Size(img image.Image) image.Point {
	if img == nil {
		return image.Point{}
	}
	return img.Bounds().Size()
}

// Clone returns a copy of img as an *image.NRGBA anchored at the origin.
// A nil image gives an empty image.
func Clone(img image.Image) *image.NRGBA {
	if img == nil {
		return image.NewNRGBA(image.Rectangle{})
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	if src, ok := img.(*image.NRGBA); ok {
		for y := 0; y < b.Dy(); y++ {
			so := src.PixOffset(b.Min.X, b.Min.Y+y)
			do := dst.PixOffset(0, y)
			copy(dst.Pix[do:do+4*b.Dx()], src.Pix[so:so+4*b.Dx()])
		}
		return dst
	}
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// asNRGBA returns img itself when it is already an origin-anchored NRGBA.
func asNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	return Clone(img)
}

// Equal reports whether a and b have the same size and identical
// non-premultiplied pixels.
func Equal(a, b image.Image) bool {
	if Size(a) != Size(b) {
		return false
	}
	na, nb := asNRGBA(a), asNRGBA(b)
	w, h := na.Rect.Dx(), na.Rect.Dy()
	for y := 0; y < h; y++ {
		oa, ob := na.PixOffset(0, y), nb.PixOffset(0, y)
		ra, rb := na.Pix[oa:oa+4*w], nb.Pix[ob:ob+4*w]
		for i := range ra {
			if ra[i] != rb[i] {
				return false
			}
		}
	}
	return true
}

// At returns the color of the pixel at (x, y).
func At(img *image.NRGBA, x, y int) colors.Color {
	return colors.Color(img.NRGBAAt(x, y))
}

// Paste composites src over dst with src's top-left corner at pt.
func Paste(dst *image.NRGBA, src image.Image, pt image.Point) {
	if src == nil {
		return
	}
	s := asNRGBA(src)
	r := image.Rectangle{Min: pt, Max: pt.Add(s.Rect.Size())}.Intersect(dst.Rect)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			so := s.PixOffset(x-pt.X, y-pt.Y)
			do := dst.PixOffset(x, y)
			over(dst.Pix[do:do+4:do+4], s.Pix[so:so+4:so+4])
		}
	}
}

// over composites one non-premultiplied src pixel onto dst in place.
func over(dst, src []uint8) {
	sa := src[3]
	switch {
	case sa == 0:
		return
	case sa == 255 || dst[3] == 0:
		copy(dst, src)
		return
	}
	as := float64(sa) / 255
	ad := float64(dst[3]) / 255
	ao := as + ad*(1-as)
	for i := 0; i < 3; i++ {
		v := (float64(src[i])*as + float64(dst[i])*ad*(1-as)) / ao
		dst[i] = uint8(math.Round(v))
	}
	dst[3] = uint8(math.Round(ao * 255))
}
