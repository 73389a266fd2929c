package raster

import (
	"image"
	"image/color"
)

// Pin composites img onto base so that the point of img selected by align
// lands on pos, given in base coordinates. The canvas grows as needed; new
// area is filled with bg. Pin returns the new image and where base's origin
// ended up in it.
func Pin(base, img image.Image, pos image.Point, align Align, bg color.Color) (*image.NRGBA, image.Point) {
	bs := Size(base)
	tl := pos.Sub(align.Anchor(Size(img)))
	r := image.Rectangle{Max: bs}.Union(image.Rectangle{Min: tl, Max: tl.Add(Size(img))})
	if r.Empty() {
		r = image.Rectangle{Max: bs}
	}
	offset := r.Min.Mul(-1)
	dst := New(r.Dx(), r.Dy(), bg)
	if base != nil {
		copyRect(dst, asNRGBA(base), offset)
	}
	Paste(dst, img, tl.Add(offset))
	return dst, offset
}

// Canvas is a growable image addressed in logical coordinates: the
// coordinates of the image it was created from, however much it has grown
// since.
type Canvas struct {
	img    *image.NRGBA
	origin image.Point
	bg     color.Color
}

// NewCanvas starts a canvas from base. Area added by later pins is filled
// with bg.
func NewCanvas(base image.Image, bg color.Color) *Canvas {
	return &Canvas{img: Clone(base), bg: bg}
}

// Pin places img with its align point at the logical position pos.
func (c *Canvas) Pin(img image.Image, pos image.Point, align Align) {
	if img == nil || Size(img) == (image.Point{}) {
		return
	}
	var off image.Point
	c.img, off = Pin(c.img, img, pos.Add(c.origin), align, c.bg)
	c.origin = c.origin.Add(off)
}

// Origin returns where logical (0, 0) lies in the current image.
func (c *Canvas) Origin() image.Point { return c.origin }

// Bounds returns the current extent in logical coordinates.
func (c *Canvas) Bounds() image.Rectangle {
	return c.img.Rect.Sub(c.origin)
}

// Image returns the current image.
func (c *Canvas) Image() *image.NRGBA { return c.img }
