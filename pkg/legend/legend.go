// Package legend draws chart legends: a column of swatches with labels,
// optionally framed by a header, a footer and a border.
package legend

import (
	"image"
	"image/color"

	"github.com/matzehuels/chartkit/pkg/colors"
	"github.com/matzehuels/chartkit/pkg/config"
	"github.com/matzehuels/chartkit/pkg/errors"
	"github.com/matzehuels/chartkit/pkg/raster"
	"github.com/matzehuels/chartkit/pkg/text"
)

// MatchLabel as a BoxSize dimension means "the height of the label".
const MatchLabel = -1

// BoxSize is the size of a color or fill swatch.
type BoxSize struct {
	W, H int
}

// Square returns a BoxSize of n x n.
func Square(n int) BoxSize { return BoxSize{n, n} }

// Swatch is the sample drawn next to a label.
type Swatch struct {
	fill raster.Fill
	img  image.Image
}

// ColorSwatch is a box of solid color.
func ColorSwatch(c color.Color) Swatch { return Swatch{fill: raster.Solid(c)} }

// FillSwatch is a box painted with a fill, such as a pattern.
func FillSwatch(f raster.Fill) Swatch { return Swatch{fill: f} }

// ImageSwatch is an image used at its own size.
func ImageSwatch(img image.Image) Swatch { return Swatch{img: img} }

func (s Swatch) draw(box BoxSize, labelHeight int) *image.NRGBA {
	if s.img != nil {
		return raster.Clone(s.img)
	}
	w, h := box.W, box.H
	if w == MatchLabel {
		w = labelHeight
	}
	if h == MatchLabel {
		h = labelHeight
	}
	return raster.PaintFill(s.fill, image.Pt(max(w, 0), max(h, 0)))
}

// Options configures Generate.
type Options struct {
	// BoxSizes holds one size for every swatch or one per swatch. Empty
	// means squares as tall as the labels.
	BoxSizes []BoxSize

	Font   text.Font
	FG, BG color.Color

	// Header and Footer are markup rendered above and below the entries,
	// wrapped at the legend width.
	Header, Footer string

	// MaxWidth wraps labels; zero disables wrapping.
	MaxWidth int

	// NoBorder omits the frame. BorderColor defaults to black and
	// BorderWidth to 1.
	NoBorder    bool
	BorderColor color.Color
	BorderWidth int

	// Padding is the space inside the border, 1 when zero. NoPadding
	// removes it.
	Padding   int
	NoPadding bool
	// Spacing separates a swatch from its label.
	Spacing int
	// RowSpacing separates entries.
	RowSpacing int

	// Markup renders labels as markup.
	Markup bool

	Loader text.Loader
	Config *config.Config
}

// Generate draws a legend with one entry per swatch and label.
func Generate(swatches []Swatch, labels []string, opts Options) (*image.NRGBA, error) {
	if len(swatches) != len(labels) {
		return nil, errors.New(errors.ErrCodeArgument, "got %d swatches for %d labels", len(swatches), len(labels))
	}
	boxes, err := boxSizes(opts.BoxSizes, len(swatches))
	if err != nil {
		return nil, err
	}
	topts := text.Options{
		Font:      opts.Font,
		Loader:    opts.Loader,
		FG:        opts.FG,
		MaxWidth:  opts.MaxWidth,
		BeardLine: true,
		Config:    opts.Config,
	}

	rows := make([]image.Image, 0, 2*len(labels))
	for i, label := range labels {
		var lbl *image.NRGBA
		if opts.Markup {
			lbl, err = text.Markup(label, text.MarkupOptions{Options: topts})
		} else {
			lbl, err = text.Render(label, topts)
		}
		if err != nil {
			return nil, err
		}
		sw := swatches[i].draw(boxes[i], raster.Size(lbl).Y)
		row, err := raster.Row([]image.Image{sw, raster.New(opts.Spacing, 0, nil), lbl}, raster.RowOptions{})
		if err != nil {
			return nil, err
		}
		if i > 0 && opts.RowSpacing > 0 {
			rows = append(rows, raster.New(0, opts.RowSpacing, nil))
		}
		rows = append(rows, row)
	}
	body, err := raster.Column(rows, raster.RowOptions{Align: []float64{0}})
	if err != nil {
		return nil, err
	}

	parts := []image.Image{body}
	align := []float64{0}
	width := raster.Size(body).X
	for _, extra := range []struct {
		s     string
		first bool
	}{{opts.Header, true}, {opts.Footer, false}} {
		if extra.s == "" {
			continue
		}
		mo := text.MarkupOptions{Options: topts}
		mo.MaxWidth = width
		img, err := text.Markup(extra.s, mo)
		if err != nil {
			return nil, err
		}
		if extra.first {
			parts = append([]image.Image{img}, parts...)
			align = append([]float64{0.5}, align...)
		} else {
			parts = append(parts, img)
			align = append(align, 0.5)
		}
	}
	out, err := raster.Column(parts, raster.RowOptions{Align: align})
	if err != nil {
		return nil, err
	}

	if opts.BG != nil && colors.Convert(opts.BG).A > 0 {
		out = raster.RemoveTransparency(out, opts.BG)
	}
	if !opts.NoPadding {
		pad := opts.Padding
		if pad <= 0 {
			pad = 1
		}
		out = raster.Pad(out, raster.Uniform(pad), opts.BG)
	}
	if !opts.NoBorder {
		bc, bw := opts.BorderColor, opts.BorderWidth
		if bc == nil {
			bc = colors.Black
		}
		if bw <= 0 {
			bw = 1
		}
		out = raster.Pad(out, raster.Uniform(bw), bc)
	}
	return out, nil
}

func boxSizes(sizes []BoxSize, n int) ([]BoxSize, error) {
	switch len(sizes) {
	case 0:
		sizes = []BoxSize{{MatchLabel, MatchLabel}}
		fallthrough
	case 1:
		out := make([]BoxSize, n)
		for i := range out {
			out[i] = sizes[0]
		}
		return out, nil
	case n:
		return sizes, nil
	}
	return nil, errors.New(errors.ErrCodeArgument, "got %d box sizes for %d swatches", len(sizes), n)
}
