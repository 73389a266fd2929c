package raster

import (
	"image"
	"image/color"
	"math"

	"github.com/matzehuels/chartkit/pkg/errors"
)

// RowOptions configures Row and Column.
type RowOptions struct {
	// Padding is added on both sides of each image, per axis.
	Padding image.Point
	// BG fills the cells; nil is transparent.
	BG color.Color
	// Align is the cross-axis alignment, either one value for every image
	// or one per image. Empty means 0.5.
	Align []float64
	// Equal pads every image with BG to the largest cross-axis extent,
	// placed by its alignment.
	Equal bool
}

func broadcastAlign(align []float64, n int) ([]float64, error) {
	for _, a := range align {
		if !(a >= 0 && a <= 1) {
			return nil, errors.New(errors.ErrCodeArgument, "alignment %v outside [0, 1]", a)
		}
	}
	switch len(align) {
	case 0:
		out := make([]float64, n)
		for i := range out {
			out[i] = 0.5
		}
		return out, nil
	case 1:
		out := make([]float64, n)
		for i := range out {
			out[i] = align[0]
		}
		return out, nil
	case n:
		return align, nil
	}
	return nil, errors.New(errors.ErrCodeArgument, "got %d alignments for %d images", len(align), n)
}

// Row lays images out left to right. The row is as tall as the tallest
// image plus padding; shorter images are aligned vertically by
// opts.Align. nil images take no space beyond their padding.
func Row(images []image.Image, opts RowOptions) (*image.NRGBA, error) {
	return line(images, opts, false)
}

// Column lays images out top to bottom; the dual of Row.
func Column(images []image.Image, opts RowOptions) (*image.NRGBA, error) {
	return line(images, opts, true)
}

func line(images []image.Image, opts RowOptions, vertical bool) (*image.NRGBA, error) {
	align, err := broadcastAlign(opts.Align, len(images))
	if err != nil {
		return nil, err
	}
	if len(images) == 0 {
		return New(0, 0, nil), nil
	}

	// Work in (main, cross) coordinates and swap at the end for columns.
	swap := func(p image.Point) image.Point {
		if vertical {
			return image.Pt(p.Y, p.X)
		}
		return p
	}
	pad := swap(opts.Padding)

	imgs := make([]image.Image, len(images))
	copy(imgs, images)
	cross := 0
	for _, img := range imgs {
		cross = max(cross, swap(Size(img)).Y)
	}
	if opts.Equal {
		for i, img := range imgs {
			s := Size(img)
			if img == nil || swap(s).Y == cross {
				continue
			}
			if vertical {
				imgs[i] = PadTo(img, cross, s.Y, Align{X: align[i]}, opts.BG)
			} else {
				imgs[i] = PadTo(img, s.X, cross, Align{Y: align[i]}, opts.BG)
			}
		}
	}

	total := 0
	for _, img := range imgs {
		total += swap(Size(img)).X + 2*pad.X
	}
	size := swap(image.Pt(total, cross+2*pad.Y))
	dst := New(size.X, size.Y, opts.BG)

	pos := 0
	for i, img := range imgs {
		s := swap(Size(img))
		off := int(math.Round(float64(cross-s.Y) * align[i]))
		Paste(dst, img, swap(image.Pt(pos+pad.X, pad.Y+off)))
		pos += s.X + 2*pad.X
	}
	return dst, nil
}

// ArrayOptions configures Array.
type ArrayOptions struct {
	// Padding is added on both sides of each cell, per axis.
	Padding image.Point
	// BG fills the cells; nil is transparent.
	BG color.Color
	// XAlign is the horizontal alignment, one value or one per column.
	XAlign []float64
	// YAlign is the vertical alignment, one value or one per row.
	YAlign []float64
}

// Layout describes the geometry of an array of images.
type Layout struct {
	Size       image.Point
	ColWidths  []int
	RowHeights []int
	// Cells holds the box of each cell, padding included.
	Cells [][]image.Rectangle
	// Images holds where each image's top-left corner goes.
	Images [][]image.Point
}

// ArrayLayout computes the geometry Array would use. Columns are as wide as
// their widest image and rows as tall as their tallest. Short rows are
// treated as padded with nil cells.
func ArrayLayout(rows [][]image.Image, opts ArrayOptions) (*Layout, error) {
	ncols := 0
	for _, r := range rows {
		ncols = max(ncols, len(r))
	}
	xalign, err := broadcastAlign(opts.XAlign, ncols)
	if err != nil {
		return nil, err
	}
	yalign, err := broadcastAlign(opts.YAlign, len(rows))
	if err != nil {
		return nil, err
	}

	l := &Layout{
		ColWidths:  make([]int, ncols),
		RowHeights: make([]int, len(rows)),
	}
	for i, r := range rows {
		for j, img := range r {
			s := Size(img)
			l.ColWidths[j] = max(l.ColWidths[j], s.X)
			l.RowHeights[i] = max(l.RowHeights[i], s.Y)
		}
	}

	pad := opts.Padding
	l.Cells = make([][]image.Rectangle, len(rows))
	l.Images = make([][]image.Point, len(rows))
	y := 0
	for i, r := range rows {
		l.Cells[i] = make([]image.Rectangle, ncols)
		l.Images[i] = make([]image.Point, ncols)
		x := 0
		h := l.RowHeights[i] + 2*pad.Y
		for j := 0; j < ncols; j++ {
			w := l.ColWidths[j] + 2*pad.X
			l.Cells[i][j] = image.Rect(x, y, x+w, y+h)
			var s image.Point
			if j < len(r) {
				s = Size(r[j])
			}
			inner := image.Pt(l.ColWidths[j], l.RowHeights[i])
			off := Align{xalign[j], yalign[i]}.Offset(inner, s)
			l.Images[i][j] = image.Pt(x+pad.X, y+pad.Y).Add(off)
			x += w
		}
		l.Size.X = x
		y += h
	}
	l.Size.Y = y
	return l, nil
}

// Array lays images out in a grid. nil cells are transparent placeholders.
func Array(rows [][]image.Image, opts ArrayOptions) (*image.NRGBA, error) {
	l, err := ArrayLayout(rows, opts)
	if err != nil {
		return nil, err
	}
	dst := New(l.Size.X, l.Size.Y, opts.BG)
	for i, r := range rows {
		for j, img := range r {
			Paste(dst, img, l.Images[i][j])
		}
	}
	return dst, nil
}

// Place composites img onto a copy of base inside the area left by
// padding, aligned by align. The result has the size of base; parts of img
// that do not fit are clipped.
func Place(base, img image.Image, align Align, padding Insets) *image.NRGBA {
	dst := Clone(base)
	area := Size(base).Sub(image.Pt(padding.Horizontal(), padding.Vertical()))
	off := align.Offset(area, Size(img))
	Paste(dst, img, image.Pt(padding.Left, padding.Top).Add(off))
	return dst
}
